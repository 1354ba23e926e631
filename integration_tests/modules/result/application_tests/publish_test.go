package resultintegrationtests

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	resultservice "github.com/Black-And-White-Club/cube-records/app/modules/result/application"
	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	resultpublisher "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/publisher"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordChangesArePublished(t *testing.T) {
	deps := SetupTestResultService(t, WithPublisher())

	a := submit(t, deps, ao5("2020ALIC01", day(time.May, 2), usa, 1000, 1000, 1000, 1000, 1000))
	b := submit(t, deps, ao5("2020BERT01", day(time.May, 1), germany, 900, 900, 900, 900, 900))

	// a: two WR labels, b: two WR labels, a demoted to CR twice.
	payloads := fetchRecordChanges(t, deps, 6)

	byResult := map[string][]resultpublisher.RecordChangedPayloadV1{}
	for _, p := range payloads {
		assert.Equal(t, "333", p.EventID)
		byResult[p.ResultID] = append(byResult[p.ResultID], p)
	}
	require.Len(t, byResult[a.ID.String()], 4)
	require.Len(t, byResult[b.ID.String()], 2)

	last := byResult[a.ID.String()][3]
	assert.Equal(t, string(resultdomain.TierWorld), last.OldTier)
	assert.Equal(t, string(resultdomain.TierContinental), last.NewTier)
	assert.Equal(t, "2026-05-02", last.Date)
}

func TestRestrictedTiers(t *testing.T) {
	tiers, err := resultdomain.TiersFor([]resultdomain.RecordTier{resultdomain.TierWorld, resultdomain.TierNational})
	require.NoError(t, err)
	deps := SetupTestResultService(t, WithSettings(resultservice.Settings{Tiers: tiers, LockTimeout: time.Second}))

	submit(t, deps, ao5("2020ALIC01", day(time.June, 1), usa, 900, 900, 900, 900, 900))
	b := submit(t, deps, ao5("2020BERT01", day(time.June, 2), germany, 1000, 1000, 1000, 1000, 1000))

	// No continental tier: the next wider active tier after the world is national.
	assert.Equal(t, resultdomain.TierNational, labels(t, deps, b.ID).Single)
}

func fetchRecordChanges(t *testing.T, deps TestDeps, want int) []resultpublisher.RecordChangedPayloadV1 {
	t.Helper()
	ctx, cancel := context.WithTimeout(deps.Ctx, 10*time.Second)
	defer cancel()

	consumer, err := deps.Env.JetStream.OrderedConsumer(ctx, resultpublisher.StreamName, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{resultpublisher.RecordChangedV1},
	})
	require.NoError(t, err)

	var out []resultpublisher.RecordChangedPayloadV1
	for len(out) < want {
		batch, err := consumer.Fetch(want-len(out), jetstream.FetchMaxWait(2*time.Second))
		require.NoError(t, err)
		for msg := range batch.Messages() {
			var p resultpublisher.RecordChangedPayloadV1
			require.NoError(t, json.Unmarshal(msg.Data(), &p))
			out = append(out, p)
		}
		require.NoError(t, batch.Error())
		require.NoError(t, ctx.Err(), "got %d of %d record changes", len(out), want)
	}
	return out
}
