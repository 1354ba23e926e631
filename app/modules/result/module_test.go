package result

import (
	"testing"
	"time"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/Black-And-White-Club/cube-records/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.RecordsConfig
		wantTiers []resultdomain.RecordTier
		wantErr   bool
	}{
		{
			name: "empty keeps the service default",
			cfg:  config.RecordsConfig{LockTimeout: time.Second},
		},
		{
			name:      "orders widest first",
			cfg:       config.RecordsConfig{Tiers: []string{"NR", "WR"}},
			wantTiers: []resultdomain.RecordTier{resultdomain.TierWorld, resultdomain.TierNational},
		},
		{
			name:    "unknown tier",
			cfg:     config.RecordsConfig{Tiers: []string{"OR"}},
			wantErr: true,
		},
		{
			name:    "none cannot be enabled",
			cfg:     config.RecordsConfig{Tiers: []string{"none"}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Settings(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.LockTimeout, got.LockTimeout)

			var tiers []resultdomain.RecordTier
			for _, d := range got.Tiers {
				tiers = append(tiers, d.Tier)
			}
			assert.Equal(t, tt.wantTiers, tiers)
		})
	}
}
