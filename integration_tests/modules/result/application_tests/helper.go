package resultintegrationtests

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	resultservice "github.com/Black-And-White-Club/cube-records/app/modules/result/application"
	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	resultmetrics "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/metrics"
	resultpublisher "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/publisher"
	resultdb "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/repositories"
	"github.com/Black-And-White-Club/cube-records/integration_tests/testutils"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

type TestDeps struct {
	Ctx     context.Context
	Env     *testutils.TestEnvironment
	Repo    resultdb.Repository
	BunDB   *bun.DB
	Service resultservice.Service
	Logger  *slog.Logger
}

type setupOptions struct {
	publish  bool
	settings resultservice.Settings
	wrapRepo func(resultdb.Repository) resultdb.Repository
}

type SetupOption func(*setupOptions)

// WithPublisher publishes record changes to the NATS container.
func WithPublisher() SetupOption {
	return func(o *setupOptions) { o.publish = true }
}

// WithRepository lets the test wrap the postgres repository the service uses.
func WithRepository(wrap func(resultdb.Repository) resultdb.Repository) SetupOption {
	return func(o *setupOptions) { o.wrapRepo = wrap }
}

// WithSettings overrides the service settings.
func WithSettings(s resultservice.Settings) SetupOption {
	return func(o *setupOptions) { o.settings = s }
}

func SetupTestResultService(t *testing.T, opts ...SetupOption) TestDeps {
	t.Helper()

	env := testutils.GetOrCreateTestEnv(t)
	env.Reset(t)

	o := setupOptions{settings: resultservice.Settings{LockTimeout: 2 * time.Second}}
	for _, opt := range opts {
		opt(&o)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := resultdb.NewRepository(env.DB)
	if o.wrapRepo != nil {
		repo = o.wrapRepo(repo)
	}

	var publisher resultservice.RecordPublisher
	if o.publish {
		pub, err := resultpublisher.NewNATSPublisher(env.Ctx, env.Config.NATS.URL, watermill.NopLogger{})
		if err != nil {
			t.Fatalf("Failed to create publisher: %v", err)
		}
		p := resultpublisher.New(pub, logger)
		t.Cleanup(func() { _ = p.Close() })
		publisher = p
	}

	service := resultservice.NewResultService(
		repo,
		publisher,
		logger,
		resultmetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test_result_service"),
		env.DB,
		o.settings,
	)

	return TestDeps{
		Ctx:     env.Ctx,
		Env:     env,
		Repo:    repo,
		BunDB:   env.DB,
		Service: service,
		Logger:  logger,
	}
}

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 0, 0, 0, 0, time.UTC)
}

func ao5(competitor string, date time.Time, loc resultdomain.Location, values ...int64) resultdomain.Candidate {
	attempts := make([]resultdomain.Attempt, len(values))
	for i, v := range values {
		attempts[i] = resultdomain.Attempt(v)
	}
	return resultdomain.Candidate{
		EventID:       "333",
		Format:        resultdomain.Average5,
		CompetitorIDs: []string{competitor},
		Attempts:      attempts,
		Date:          date,
		Location:      loc,
	}
}

var (
	usa     = resultdomain.Location{CountryCode: "US", ContinentCode: "NA"}
	canada  = resultdomain.Location{CountryCode: "CA", ContinentCode: "NA"}
	germany = resultdomain.Location{CountryCode: "DE", ContinentCode: "EU"}
)

func submit(t *testing.T, deps TestDeps, c resultdomain.Candidate) *resultdomain.Result {
	t.Helper()
	r, err := deps.Service.SubmitResult(deps.Ctx, c)
	if err != nil {
		t.Fatalf("SubmitResult: %v", err)
	}
	return r
}

// submitWithRetry retries writes that lost the event lock.
func submitWithRetry(deps TestDeps, c resultdomain.Candidate, attempts int) (*resultdomain.Result, error) {
	var err error
	for i := range attempts {
		var r *resultdomain.Result
		r, err = deps.Service.SubmitResult(deps.Ctx, c)
		if !errors.Is(err, resultservice.ErrConcurrentModification) {
			return r, err
		}
		time.Sleep(time.Duration(i+1) * 50 * time.Millisecond)
	}
	return nil, err
}

// labels reads the stored labels of id.
func labels(t *testing.T, deps TestDeps, id uuid.UUID) resultdomain.Labels {
	t.Helper()
	r, err := deps.Service.GetResult(deps.Ctx, id)
	if err != nil {
		t.Fatalf("GetResult(%s): %v", id, err)
	}
	return r.Labels()
}
