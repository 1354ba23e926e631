package resulthandlers

import (
	"context"
	"net/http"

	resultqueue "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/queue"
)

// Handlers serves the results HTTP API.
type Handlers interface {
	HandleSubmitResult(w http.ResponseWriter, r *http.Request)
	HandleEditResult(w http.ResponseWriter, r *http.Request)
	HandleDeleteResult(w http.ResponseWriter, r *http.Request)
	HandleGetResult(w http.ResponseWriter, r *http.Request)
	HandleRoundRanking(w http.ResponseWriter, r *http.Request)
	HandleRoundRankingXLSX(w http.ResponseWriter, r *http.Request)
	HandleRecordProgressionPNG(w http.ResponseWriter, r *http.Request)
	HandleRebuildRecords(w http.ResponseWriter, r *http.Request)
}

// RebuildQueue schedules background record rebuilds.
type RebuildQueue interface {
	EnqueueRebuild(ctx context.Context, eventID string) (resultqueue.JobInfo, error)
}
