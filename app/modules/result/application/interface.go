package resultservice

import (
	"context"
	"time"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/google/uuid"
)

// Service defines the result operations exposed to transports and commands.
type Service interface {
	// SubmitResult aggregates, classifies and stores a new result, then repairs
	// the labels of later results of the same event.
	SubmitResult(ctx context.Context, candidate resultdomain.Candidate) (*resultdomain.Result, error)

	// EditResult changes the attempts and/or date of a result and repairs labels
	// in the direction the edit moved the result.
	EditResult(ctx context.Context, id uuid.UUID, req EditRequest) (*resultdomain.Result, error)

	// DeleteResult removes a result and re-derives the labels of later results.
	DeleteResult(ctx context.Context, id uuid.UUID) error

	// RankRound ranks the stored results of a round.
	RankRound(ctx context.Context, roundID uuid.UUID) ([]resultdomain.RankedResult, error)

	// GetResult retrieves a stored result.
	GetResult(ctx context.Context, id uuid.UUID) (*resultdomain.Result, error)

	// GetRound retrieves a round.
	GetRound(ctx context.Context, id uuid.UUID) (*resultdomain.Round, error)

	// RecordProgression lists the results that set a record in region, oldest first.
	RecordProgression(ctx context.Context, eventID string, metric resultdomain.Metric, region resultdomain.Region) ([]resultdomain.Result, error)

	// RebuildEvent re-derives every label of an event and returns how many labels changed.
	RebuildEvent(ctx context.Context, eventID string) (int, error)
}

// EditRequest holds the fields an edit may change. Nil fields stay as they are.
type EditRequest struct {
	Attempts *[]resultdomain.Attempt
	Date     *time.Time
}

// RecordPublisher announces committed record label changes.
type RecordPublisher interface {
	PublishRecordChanges(ctx context.Context, changes []resultdomain.RecordChange) error
}
