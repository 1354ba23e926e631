package resulthandlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	resultservice "github.com/Black-And-White-Club/cube-records/app/modules/result/application"
	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/google/uuid"
)

type resultResponse struct {
	ID             uuid.UUID                `json:"id"`
	EventID        string                   `json:"event_id"`
	RoundID        *uuid.UUID               `json:"round_id,omitempty"`
	Format         resultdomain.RoundFormat `json:"format"`
	CompetitorIDs  []string                 `json:"competitor_ids"`
	Attempts       []int64                  `json:"attempts"`
	Date           string                   `json:"date"`
	CountryCode    string                   `json:"country_code,omitempty"`
	ContinentCode  string                   `json:"continent_code,omitempty"`
	Best           int64                    `json:"best"`
	Average        int64                    `json:"average"`
	BestDisplay    string                   `json:"best_display"`
	AverageDisplay string                   `json:"average_display"`
	Records        resultdomain.Labels      `json:"records"`
}

type rankedResultResponse struct {
	resultResponse
	Ranking  int  `json:"ranking"`
	Proceeds bool `json:"proceeds"`
}

type rebuildResponse struct {
	EventID string `json:"event_id"`
	Changed int    `json:"changed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newResultResponse(r resultdomain.Result) resultResponse {
	ev, _ := resultdomain.LookupEvent(r.EventID)
	attempts := make([]int64, len(r.Attempts))
	for i, a := range r.Attempts {
		attempts[i] = int64(a)
	}
	return resultResponse{
		ID:             r.ID,
		EventID:        r.EventID,
		RoundID:        r.RoundID,
		Format:         r.Format,
		CompetitorIDs:  r.CompetitorIDs,
		Attempts:       attempts,
		Date:           r.Date.Format(time.DateOnly),
		CountryCode:    r.CountryCode,
		ContinentCode:  r.ContinentCode,
		Best:           int64(r.Best),
		Average:        int64(r.Average),
		BestDisplay:    ev.Display(r.Best, false),
		AverageDisplay: ev.Display(r.Average, true),
		Records:        r.Labels(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps a failure to a status code and a message safe to show users.
// Details stay in the logs.
func (h *ResultHandlers) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, resultdomain.ErrMalformedAttemptSet),
		errors.Is(err, resultdomain.ErrInvalidRegionScope),
		errors.Is(err, resultdomain.ErrInvalidCompetitors),
		errors.Is(err, resultdomain.ErrUnknownEvent),
		errors.Is(err, resultservice.ErrRoundMismatch):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, resultdomain.ErrInvalidRound):
		status, msg = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, resultservice.ErrResultNotFound):
		status, msg = http.StatusNotFound, "result not found"
	case errors.Is(err, resultservice.ErrRoundNotFound):
		status, msg = http.StatusNotFound, "round not found"
	case errors.Is(err, resultservice.ErrConcurrentModification):
		status, msg = http.StatusConflict, "another change to this event is in progress, try again"
	case errors.Is(err, resultservice.ErrCascadeFailure):
		w.Header().Set("Retry-After", "1")
		status, msg = http.StatusServiceUnavailable, "records could not be updated, nothing was saved; try again"
	}

	log := h.logger.WarnContext
	if status >= http.StatusInternalServerError {
		log = h.logger.ErrorContext
	}
	log(r.Context(), "Request failed",
		"operation", op,
		"status", status,
		"error", err,
	)
	writeJSONError(w, status, msg)
}
