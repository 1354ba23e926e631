package resultdb

import (
	"errors"
	"fmt"
	"testing"
	"time"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsLockConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "lock timeout", err: &pgconn.PgError{Code: "55P03"}, want: true},
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, want: true},
		{name: "deadlock", err: fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40P01"}), want: true},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLockConflict(tt.err))
		})
	}
}

func TestResultRowConversion(t *testing.T) {
	roundID := uuid.New()
	r := resultdomain.Result{
		ID:               uuid.New(),
		EventID:          "333bf",
		RoundID:          &roundID,
		Format:           resultdomain.BestOf3,
		CompetitorIDs:    []string{"2019WANG01"},
		Attempts:         []resultdomain.Attempt{resultdomain.DNF, 2412, resultdomain.DNS},
		Date:             time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
		Location:         resultdomain.Location{CountryCode: "CN", ContinentCode: "AS"},
		Best:             2412,
		SingleRecordTier: resultdomain.TierContinental,
	}

	row := ResultFromDomain(r)
	assert.Equal(t, []int64{-1, 2412, -2}, row.Attempts)
	assert.Equal(t, "CR", row.SingleRecordTier)
	assert.Equal(t, "", row.AverageRecordTier)
	assert.Equal(t, r, row.ToDomain())

	standing := row.ToStanding(resultdomain.MetricSingle)
	assert.Equal(t, r.ID, standing.ResultID)
	assert.Equal(t, resultdomain.Attempt(2412), standing.Value)
	assert.Equal(t, r.Location, standing.Location)
}

func TestRoundRowConversion(t *testing.T) {
	r := resultdomain.Round{
		ID:        uuid.New(),
		ContestID: "WarsawOpen2026",
		EventID:   "333",
		Format:    resultdomain.Average5,
		Cutoff:    &resultdomain.Cutoff{Attempts: 2, Value: 1500},
		Proceed:   &resultdomain.ProceedRule{Type: resultdomain.ProceedPercentage, Value: 75},
		Date:      time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, r, RoundFromDomain(r).ToDomain())
}

func TestColumnsForMetric(t *testing.T) {
	assert.Equal(t, "best", metricColumn(resultdomain.MetricSingle))
	assert.Equal(t, "average", metricColumn(resultdomain.MetricAverage))
	assert.Equal(t, "single_record_tier", tierColumn(resultdomain.MetricSingle))
	assert.Equal(t, "average_record_tier", tierColumn(resultdomain.MetricAverage))
}
