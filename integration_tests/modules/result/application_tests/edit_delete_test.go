package resultintegrationtests

import (
	"testing"
	"time"

	resultservice "github.com/Black-And-White-Club/cube-records/app/modules/result/application"
	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attempts(values ...int64) *[]resultdomain.Attempt {
	out := make([]resultdomain.Attempt, len(values))
	for i, v := range values {
		out[i] = resultdomain.Attempt(v)
	}
	return &out
}

func TestDeleteResult_RepromotesEarlierHolder(t *testing.T) {
	deps := SetupTestResultService(t)

	a := submit(t, deps, ao5("2020ALIC01", day(time.January, 1), usa, 1000, 1000, 1000, 1000, 1000))
	b := submit(t, deps, ao5("2020BERT01", day(time.January, 1), germany, 900, 900, 900, 900, 900))
	require.Equal(t, resultdomain.TierContinental, labels(t, deps, a.ID).Single)

	require.NoError(t, deps.Service.DeleteResult(deps.Ctx, b.ID))

	assert.Equal(t, resultdomain.Labels{Single: resultdomain.TierWorld, Average: resultdomain.TierWorld}, labels(t, deps, a.ID))
	_, err := deps.Service.GetResult(deps.Ctx, b.ID)
	assert.ErrorIs(t, err, resultservice.ErrResultNotFound)

	err = deps.Service.DeleteResult(deps.Ctx, b.ID)
	assert.ErrorIs(t, err, resultservice.ErrResultNotFound)
}

func TestEditResult_Directions(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(a uuid.UUID) resultservice.EditRequest
		wantA resultdomain.RecordTier
		wantB resultdomain.RecordTier
		wantC resultdomain.RecordTier
	}{
		{
			name: "better edit demotes later holders",
			edit: func(uuid.UUID) resultservice.EditRequest {
				return resultservice.EditRequest{Attempts: attempts(800, 800, 800, 800, 800)}
			},
			wantA: resultdomain.TierWorld,
			wantB: resultdomain.TierNone,
			wantC: resultdomain.TierNone,
		},
		{
			name: "worse edit promotes later results",
			edit: func(uuid.UUID) resultservice.EditRequest {
				return resultservice.EditRequest{Attempts: attempts(1100, 1100, 1100, 1100, 1100)}
			},
			wantA: resultdomain.TierWorld,
			wantB: resultdomain.TierWorld,
			wantC: resultdomain.TierWorld,
		},
		{
			name: "moving the result later re-derives from the old date",
			edit: func(uuid.UUID) resultservice.EditRequest {
				d := day(time.January, 20)
				return resultservice.EditRequest{Date: &d}
			},
			wantA: resultdomain.TierNone,
			wantB: resultdomain.TierWorld,
			wantC: resultdomain.TierWorld,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := SetupTestResultService(t)

			a := submit(t, deps, ao5("2020ALIC01", day(time.January, 5), usa, 900, 900, 900, 900, 900))
			b := submit(t, deps, ao5("2020BERT01", day(time.January, 10), usa, 1000, 1000, 1000, 1000, 1000))
			c := submit(t, deps, ao5("2020CARL01", day(time.January, 15), usa, 850, 850, 850, 850, 850))
			require.Equal(t, resultdomain.TierNone, labels(t, deps, b.ID).Single)
			require.Equal(t, resultdomain.TierWorld, labels(t, deps, c.ID).Single)

			_, err := deps.Service.EditResult(deps.Ctx, a.ID, tt.edit(a.ID))
			require.NoError(t, err)

			assert.Equal(t, tt.wantA, labels(t, deps, a.ID).Single, "a")
			assert.Equal(t, tt.wantB, labels(t, deps, b.ID).Single, "b")
			assert.Equal(t, tt.wantC, labels(t, deps, c.ID).Single, "c")

			// Incremental repair and a full rebuild agree.
			changed, err := deps.Service.RebuildEvent(deps.Ctx, "333")
			require.NoError(t, err)
			assert.Zero(t, changed)
		})
	}
}

func TestRecordProgression(t *testing.T) {
	deps := SetupTestResultService(t)

	a := submit(t, deps, ao5("2020ALIC01", day(time.January, 1), usa, 1000, 1000, 1000, 1000, 1000))
	b := submit(t, deps, ao5("2020BERT01", day(time.January, 2), germany, 950, 950, 950, 950, 950))
	submit(t, deps, ao5("2020CARL01", day(time.January, 3), canada, 1200, 1200, 1200, 1200, 1200))

	world, err := deps.Service.RecordProgression(deps.Ctx, "333", resultdomain.MetricSingle, resultdomain.Region{})
	require.NoError(t, err)
	require.Len(t, world, 2)
	assert.Equal(t, a.ID, world[0].ID)
	assert.Equal(t, b.ID, world[1].ID)

	northAmerica, err := deps.Service.RecordProgression(deps.Ctx, "333", resultdomain.MetricSingle, resultdomain.Region{Continent: "NA"})
	require.NoError(t, err)
	require.Len(t, northAmerica, 1)
	assert.Equal(t, a.ID, northAmerica[0].ID)
}
