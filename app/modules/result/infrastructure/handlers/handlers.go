package resulthandlers

import (
	"log/slog"
	"time"

	resultservice "github.com/Black-And-White-Club/cube-records/app/modules/result/application"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/trace"
)

// ResultHandlers implements the Handlers interface over a result service.
type ResultHandlers struct {
	service  resultservice.Service
	queue    RebuildQueue
	logger   *slog.Logger
	tracer   trace.Tracer
	validate *validator.Validate
	now      func() time.Time
}

// NewResultHandlers creates a new ResultHandlers instance. With a nil queue
// record rebuilds run inside the request.
func NewResultHandlers(
	service resultservice.Service,
	queue RebuildQueue,
	logger *slog.Logger,
	tracer trace.Tracer,
) *ResultHandlers {
	return &ResultHandlers{
		service:  service,
		queue:    queue,
		logger:   logger,
		tracer:   tracer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

var _ Handlers = (*ResultHandlers)(nil)

// RegisterRoutes mounts the results API on r. Writes are rate limited per
// client IP when limiter is non-nil.
func RegisterRoutes(r chi.Router, h Handlers, limiter *IPRateLimiter) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/results/{id}", h.HandleGetResult)
		r.Get("/rounds/{id}/ranking", h.HandleRoundRanking)
		r.Get("/rounds/{id}/ranking.xlsx", h.HandleRoundRankingXLSX)
		r.Get("/records/{event}/progression.png", h.HandleRecordProgressionPNG)

		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(RateLimitMiddleware(limiter))
			}
			r.Post("/results", h.HandleSubmitResult)
			r.Patch("/results/{id}", h.HandleEditResult)
			r.Delete("/results/{id}", h.HandleDeleteResult)
			r.Post("/records/{event}/rebuild", h.HandleRebuildRecords)
		})
	})
}
