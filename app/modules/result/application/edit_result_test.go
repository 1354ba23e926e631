package resultservice

import (
	"context"
	"testing"
	"time"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultService_EditResult(t *testing.T) {
	ctx := context.Background()

	// a: Jan 5, 900 (WR). b: Jan 10, 1000 (nothing, same country as a).
	// c: Jan 15, 850 (WR).
	setup := func(t *testing.T) (*FakeResultRepo, *ResultService, *resultdomain.Result, *resultdomain.Result, *resultdomain.Result) {
		repo := NewFakeResultRepo()
		svc := newTestService(repo, nil)
		a := seed(t, repo, ao5(900, day(time.January, 5), "US", "NA"))
		b := seed(t, repo, ao5(1000, day(time.January, 10), "US", "NA"))
		c := seed(t, repo, ao5(850, day(time.January, 15), "US", "NA"))
		require.Equal(t, resultdomain.TierWorld, repo.Labels(a.ID).Single)
		require.Equal(t, resultdomain.TierNone, repo.Labels(b.ID).Single)
		require.Equal(t, resultdomain.TierWorld, repo.Labels(c.ID).Single)
		return repo, svc, a, b, c
	}

	t.Run("better edit demotes later holders", func(t *testing.T) {
		repo, svc, a, b, c := setup(t)
		improved := attempts(800, 800, 800, 800, 800)

		got, err := svc.EditResult(ctx, b.ID, EditRequest{Attempts: &improved})
		require.NoError(t, err)
		assert.Equal(t, resultdomain.Attempt(800), got.Average)
		assert.Equal(t, resultdomain.TierWorld, got.SingleRecordTier)
		assert.Equal(t, resultdomain.TierWorld, repo.Labels(a.ID).Single)
		assert.Equal(t, resultdomain.Labels{}, repo.Labels(c.ID))
	})

	t.Run("worse edit promotes later results", func(t *testing.T) {
		repo, svc, a, b, c := setup(t)
		worse := attempts(1100, 1100, 1100, 1100, 1100)

		got, err := svc.EditResult(ctx, a.ID, EditRequest{Attempts: &worse})
		require.NoError(t, err)
		assert.Equal(t, resultdomain.TierWorld, got.SingleRecordTier)
		assert.Equal(t, resultdomain.TierWorld, repo.Labels(a.ID).Single)
		assert.Equal(t, resultdomain.TierWorld, repo.Labels(b.ID).Single)
		assert.Equal(t, resultdomain.TierWorld, repo.Labels(c.ID).Single)
	})

	t.Run("moving a holder later re-derives from the old date", func(t *testing.T) {
		repo, svc, a, b, c := setup(t)
		later := day(time.January, 20)

		got, err := svc.EditResult(ctx, a.ID, EditRequest{Date: &later})
		require.NoError(t, err)
		assert.True(t, got.Date.Equal(later))
		assert.Equal(t, resultdomain.TierWorld, repo.Labels(b.ID).Single)
		assert.Equal(t, resultdomain.TierWorld, repo.Labels(c.ID).Single)
		// c (850) now precedes a (900).
		assert.Equal(t, resultdomain.TierNone, repo.Labels(a.ID).Single)
	})

	t.Run("mixed edit re-derives from the earlier date", func(t *testing.T) {
		repo, svc, a, b, c := setup(t)
		// c moves before b and gets worse than a.
		earlier := day(time.January, 7)
		worse := attempts(950, 950, 950, 950, 950)

		_, err := svc.EditResult(ctx, c.ID, EditRequest{Attempts: &worse, Date: &earlier})
		require.NoError(t, err)
		assert.Equal(t, resultdomain.TierWorld, repo.Labels(a.ID).Single)
		assert.Equal(t, resultdomain.TierNone, repo.Labels(b.ID).Single)
		assert.Equal(t, resultdomain.TierNone, repo.Labels(c.ID).Single)
	})

	t.Run("unchanged edit runs no cascade", func(t *testing.T) {
		repo, svc, _, b, _ := setup(t)
		same := attempts(1000, 1000, 1000, 1000, 1000)
		scans := repo.Count("GetEventResultsSince")

		_, err := svc.EditResult(ctx, b.ID, EditRequest{Attempts: &same})
		require.NoError(t, err)
		assert.Equal(t, scans, repo.Count("GetEventResultsSince"))
	})

	t.Run("malformed attempts are rejected before locking", func(t *testing.T) {
		repo, svc, a, _, _ := setup(t)
		locks := repo.Count("AcquireEventLock")
		short := attempts(900, 900)

		_, err := svc.EditResult(ctx, a.ID, EditRequest{Attempts: &short})
		assert.ErrorIs(t, err, resultdomain.ErrMalformedAttemptSet)
		assert.Equal(t, locks, repo.Count("AcquireEventLock"))
	})

	t.Run("unknown result", func(t *testing.T) {
		_, svc, _, _, _ := setup(t)
		_, err := svc.EditResult(ctx, uuid.New(), EditRequest{})
		assert.ErrorIs(t, err, ErrResultNotFound)
	})
}

func TestResultService_DeleteResult(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting the holder re-promotes the next result", func(t *testing.T) {
		repo := NewFakeResultRepo()
		pub := &FakeRecordPublisher{}
		svc := newTestService(repo, pub)

		a := seed(t, repo, ao5(1000, day(time.January, 10), "US", "NA"))
		b := seed(t, repo, ao5(900, day(time.January, 5), "DE", "EU"))
		require.Equal(t, resultdomain.TierContinental, repo.Labels(a.ID).Single)

		require.NoError(t, svc.DeleteResult(ctx, b.ID))
		assert.Equal(t, resultdomain.Labels{Single: resultdomain.TierWorld, Average: resultdomain.TierWorld}, repo.Labels(a.ID))

		var removed, promoted int
		for _, c := range pub.Changes() {
			switch c.ResultID {
			case b.ID:
				assert.Equal(t, resultdomain.TierNone, c.NewTier)
				removed++
			case a.ID:
				assert.Equal(t, resultdomain.TierWorld, c.NewTier)
				promoted++
			}
		}
		assert.Equal(t, 2, removed)
		assert.Equal(t, 2, promoted)

		_, err := svc.GetResult(ctx, b.ID)
		assert.ErrorIs(t, err, ErrResultNotFound)
	})

	t.Run("deleting a result without labels changes nothing", func(t *testing.T) {
		repo := NewFakeResultRepo()
		pub := &FakeRecordPublisher{}
		svc := newTestService(repo, pub)

		a := seed(t, repo, ao5(900, day(time.January, 5), "US", "NA"))
		b := seed(t, repo, ao5(1000, day(time.January, 10), "US", "NA"))

		require.NoError(t, svc.DeleteResult(ctx, b.ID))
		assert.Equal(t, resultdomain.TierWorld, repo.Labels(a.ID).Single)
		assert.Empty(t, pub.Changes())
	})

	t.Run("unknown result", func(t *testing.T) {
		svc := newTestService(NewFakeResultRepo(), nil)
		assert.ErrorIs(t, svc.DeleteResult(ctx, uuid.New()), ErrResultNotFound)
	})
}
