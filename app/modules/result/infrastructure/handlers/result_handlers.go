package resulthandlers

import (
	"fmt"
	"net/http"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	resultexport "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/export"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func (h *ResultHandlers) HandleSubmitResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HTTP SubmitResult")
	defer span.End()
	r = r.WithContext(ctx)

	var req submitResultRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, "SubmitResult", err)
		return
	}
	date, err := parseDate(req.Date, h.now())
	if err != nil {
		h.writeError(w, r, "SubmitResult", err)
		return
	}
	span.SetAttributes(attribute.String("event_id", req.EventID))

	result, err := h.service.SubmitResult(ctx, req.toCandidate(date))
	if err != nil {
		h.writeError(w, r, "SubmitResult", err)
		return
	}
	writeJSON(w, http.StatusCreated, newResultResponse(*result))
}

func (h *ResultHandlers) HandleEditResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HTTP EditResult")
	defer span.End()
	r = r.WithContext(ctx)

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "EditResult", err)
		return
	}
	var req editResultRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, "EditResult", err)
		return
	}
	edit, err := h.toEditRequest(req)
	if err != nil {
		h.writeError(w, r, "EditResult", err)
		return
	}

	result, err := h.service.EditResult(ctx, id, edit)
	if err != nil {
		h.writeError(w, r, "EditResult", err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(*result))
}

func (h *ResultHandlers) HandleDeleteResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HTTP DeleteResult")
	defer span.End()
	r = r.WithContext(ctx)

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "DeleteResult", err)
		return
	}
	if err := h.service.DeleteResult(ctx, id); err != nil {
		h.writeError(w, r, "DeleteResult", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ResultHandlers) HandleGetResult(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "GetResult", err)
		return
	}
	result, err := h.service.GetResult(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "GetResult", err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(*result))
}

func (h *ResultHandlers) HandleRoundRanking(w http.ResponseWriter, r *http.Request) {
	_, ranked, ok := h.rankRound(w, r)
	if !ok {
		return
	}
	out := make([]rankedResultResponse, len(ranked))
	for i, rr := range ranked {
		out[i] = rankedResultResponse{
			resultResponse: newResultResponse(rr.Result),
			Ranking:        rr.Ranking,
			Proceeds:       rr.Proceeds,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ResultHandlers) HandleRoundRankingXLSX(w http.ResponseWriter, r *http.Request) {
	round, ranked, ok := h.rankRound(w, r)
	if !ok {
		return
	}
	ev, err := resultdomain.LookupEvent(round.EventID)
	if err != nil {
		h.writeError(w, r, "RoundRankingXLSX", err)
		return
	}
	data, err := resultexport.RankingWorkbook(*round, ev, ranked)
	if err != nil {
		h.writeError(w, r, "RoundRankingXLSX", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", round.ID.String()+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *ResultHandlers) HandleRecordProgressionPNG(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HTTP RecordProgression")
	defer span.End()
	r = r.WithContext(ctx)

	eventID := chi.URLParam(r, "event")
	ev, err := resultdomain.LookupEvent(eventID)
	if err != nil {
		h.writeError(w, r, "RecordProgression", err)
		return
	}

	q := r.URL.Query()
	metric := resultdomain.MetricSingle
	if s := q.Get("metric"); s != "" {
		if metric, err = resultdomain.ParseMetric(s); err != nil {
			h.writeError(w, r, "RecordProgression", fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}
	region, err := resultdomain.RegionFor(q.Get("continent"), q.Get("country"))
	if err != nil {
		h.writeError(w, r, "RecordProgression", err)
		return
	}
	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("metric", string(metric)),
		attribute.String("region", region.String()),
	)

	history, err := h.service.RecordProgression(ctx, eventID, metric, region)
	if err != nil {
		h.writeError(w, r, "RecordProgression", err)
		return
	}
	data, err := resultexport.ProgressionChart(ev, metric, region, history, resultexport.DefaultPalette)
	if err != nil {
		h.writeError(w, r, "RecordProgression", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *ResultHandlers) HandleRebuildRecords(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HTTP RebuildRecords")
	defer span.End()
	r = r.WithContext(ctx)

	eventID := chi.URLParam(r, "event")
	if _, err := resultdomain.LookupEvent(eventID); err != nil {
		h.writeError(w, r, "RebuildRecords", err)
		return
	}
	span.SetAttributes(attribute.String("event_id", eventID))

	if h.queue != nil {
		job, err := h.queue.EnqueueRebuild(ctx, eventID)
		if err != nil {
			h.writeError(w, r, "RebuildRecords", err)
			return
		}
		writeJSON(w, http.StatusAccepted, job)
		return
	}

	changed, err := h.service.RebuildEvent(ctx, eventID)
	if err != nil {
		h.writeError(w, r, "RebuildRecords", err)
		return
	}
	writeJSON(w, http.StatusOK, rebuildResponse{EventID: eventID, Changed: changed})
}

func (h *ResultHandlers) rankRound(w http.ResponseWriter, r *http.Request) (*resultdomain.Round, []resultdomain.RankedResult, bool) {
	ctx, span := h.tracer.Start(r.Context(), "HTTP RankRound", trace.WithAttributes(
		attribute.String("round_id", chi.URLParam(r, "id")),
	))
	defer span.End()
	r = r.WithContext(ctx)

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "RankRound", err)
		return nil, nil, false
	}
	round, err := h.service.GetRound(ctx, id)
	if err != nil {
		h.writeError(w, r, "RankRound", err)
		return nil, nil, false
	}
	ranked, err := h.service.RankRound(ctx, id)
	if err != nil {
		h.writeError(w, r, "RankRound", err)
		return nil, nil, false
	}
	return round, ranked, true
}
