package resulthandlers

import (
	"context"

	resultservice "github.com/Black-And-White-Club/cube-records/app/modules/result/application"
	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	resultqueue "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/queue"
	"github.com/google/uuid"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	SubmitResultFunc      func(ctx context.Context, candidate resultdomain.Candidate) (*resultdomain.Result, error)
	EditResultFunc        func(ctx context.Context, id uuid.UUID, req resultservice.EditRequest) (*resultdomain.Result, error)
	DeleteResultFunc      func(ctx context.Context, id uuid.UUID) error
	RankRoundFunc         func(ctx context.Context, roundID uuid.UUID) ([]resultdomain.RankedResult, error)
	GetResultFunc         func(ctx context.Context, id uuid.UUID) (*resultdomain.Result, error)
	GetRoundFunc          func(ctx context.Context, id uuid.UUID) (*resultdomain.Round, error)
	RecordProgressionFunc func(ctx context.Context, eventID string, metric resultdomain.Metric, region resultdomain.Region) ([]resultdomain.Result, error)
	RebuildEventFunc      func(ctx context.Context, eventID string) (int, error)
}

func (f *FakeService) SubmitResult(ctx context.Context, candidate resultdomain.Candidate) (*resultdomain.Result, error) {
	if f.SubmitResultFunc != nil {
		return f.SubmitResultFunc(ctx, candidate)
	}
	return &resultdomain.Result{ID: uuid.New(), EventID: candidate.EventID}, nil
}

func (f *FakeService) EditResult(ctx context.Context, id uuid.UUID, req resultservice.EditRequest) (*resultdomain.Result, error) {
	if f.EditResultFunc != nil {
		return f.EditResultFunc(ctx, id, req)
	}
	return &resultdomain.Result{ID: id, EventID: "333"}, nil
}

func (f *FakeService) DeleteResult(ctx context.Context, id uuid.UUID) error {
	if f.DeleteResultFunc != nil {
		return f.DeleteResultFunc(ctx, id)
	}
	return nil
}

func (f *FakeService) RankRound(ctx context.Context, roundID uuid.UUID) ([]resultdomain.RankedResult, error) {
	if f.RankRoundFunc != nil {
		return f.RankRoundFunc(ctx, roundID)
	}
	return nil, nil
}

func (f *FakeService) GetResult(ctx context.Context, id uuid.UUID) (*resultdomain.Result, error) {
	if f.GetResultFunc != nil {
		return f.GetResultFunc(ctx, id)
	}
	return nil, resultservice.ErrResultNotFound
}

func (f *FakeService) GetRound(ctx context.Context, id uuid.UUID) (*resultdomain.Round, error) {
	if f.GetRoundFunc != nil {
		return f.GetRoundFunc(ctx, id)
	}
	return &resultdomain.Round{ID: id, EventID: "333", Format: resultdomain.Average5}, nil
}

func (f *FakeService) RecordProgression(ctx context.Context, eventID string, metric resultdomain.Metric, region resultdomain.Region) ([]resultdomain.Result, error) {
	if f.RecordProgressionFunc != nil {
		return f.RecordProgressionFunc(ctx, eventID, metric, region)
	}
	return nil, nil
}

func (f *FakeService) RebuildEvent(ctx context.Context, eventID string) (int, error) {
	if f.RebuildEventFunc != nil {
		return f.RebuildEventFunc(ctx, eventID)
	}
	return 0, nil
}

var _ resultservice.Service = (*FakeService)(nil)

// ------------------------
// Fake Rebuild Queue
// ------------------------

type FakeRebuildQueue struct {
	EnqueueRebuildFunc func(ctx context.Context, eventID string) (resultqueue.JobInfo, error)
}

func (f *FakeRebuildQueue) EnqueueRebuild(ctx context.Context, eventID string) (resultqueue.JobInfo, error) {
	if f.EnqueueRebuildFunc != nil {
		return f.EnqueueRebuildFunc(ctx, eventID)
	}
	return resultqueue.JobInfo{ID: 1, EventID: eventID, State: "available"}, nil
}

var _ RebuildQueue = (*FakeRebuildQueue)(nil)
