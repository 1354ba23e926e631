package resultservice

import (
	"cmp"
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	resultmetrics "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/metrics"
	resultdb "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

// ------------------------
// Fake Result Repo
// ------------------------

// FakeResultRepo keeps results and rounds in memory and answers standing
// queries the way the postgres repository does. The ...Func fields override
// single methods to inject failures.
type FakeResultRepo struct {
	mu      sync.Mutex
	trace   []string
	results map[uuid.UUID]resultdb.Result
	rounds  map[uuid.UUID]resultdb.Round
	seq     int

	AcquireEventLockFunc  func(ctx context.Context, db bun.IDB, eventID string, timeout time.Duration) error
	UpdateRecordTiersFunc func(ctx context.Context, db bun.IDB, id uuid.UUID, single, average resultdomain.RecordTier) error
	GetStandingFunc       func(ctx context.Context, db bun.IDB, q resultdomain.StandingQuery) (*resultdomain.Standing, error)
}

func NewFakeResultRepo() *FakeResultRepo {
	return &FakeResultRepo{
		results: map[uuid.UUID]resultdb.Result{},
		rounds:  map[uuid.UUID]resultdb.Round{},
	}
}

func (f *FakeResultRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeResultRepo) AcquireEventLock(ctx context.Context, db bun.IDB, eventID string, timeout time.Duration) error {
	f.mu.Lock()
	f.record("AcquireEventLock")
	f.mu.Unlock()
	if f.AcquireEventLockFunc != nil {
		return f.AcquireEventLockFunc(ctx, db, eventID, timeout)
	}
	return nil
}

func (f *FakeResultRepo) GetResult(ctx context.Context, db bun.IDB, id uuid.UUID) (*resultdb.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetResult")
	row, ok := f.results[id]
	if !ok {
		return nil, resultdb.ErrNotFound
	}
	return &row, nil
}

func (f *FakeResultRepo) InsertResult(ctx context.Context, db bun.IDB, result *resultdb.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InsertResult")
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	// Monotonic creation times keep same-day ties deterministic.
	f.seq++
	result.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Second)
	f.results[result.ID] = cloneRow(*result)
	return nil
}

func (f *FakeResultRepo) UpdateResult(ctx context.Context, db bun.IDB, result *resultdb.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateResult")
	existing, ok := f.results[result.ID]
	if !ok {
		return resultdb.ErrNoRowsAffected
	}
	row := cloneRow(*result)
	row.CreatedAt = existing.CreatedAt
	f.results[result.ID] = row
	return nil
}

func (f *FakeResultRepo) UpdateRecordTiers(ctx context.Context, db bun.IDB, id uuid.UUID, single, average resultdomain.RecordTier) error {
	if f.UpdateRecordTiersFunc != nil {
		return f.UpdateRecordTiersFunc(ctx, db, id, single, average)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateRecordTiers")
	row, ok := f.results[id]
	if !ok {
		return resultdb.ErrNoRowsAffected
	}
	row.SingleRecordTier = string(single)
	row.AverageRecordTier = string(average)
	f.results[id] = row
	return nil
}

func (f *FakeResultRepo) DeleteResult(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteResult")
	if _, ok := f.results[id]; !ok {
		return resultdb.ErrNoRowsAffected
	}
	delete(f.results, id)
	return nil
}

func (f *FakeResultRepo) GetResultsForRound(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]resultdb.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetResultsForRound")
	var out []resultdb.Result
	for _, row := range f.sorted() {
		if row.RoundID != nil && *row.RoundID == roundID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *FakeResultRepo) GetEventResultsSince(ctx context.Context, db bun.IDB, eventID string, since time.Time) ([]resultdb.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetEventResultsSince")
	var out []resultdb.Result
	for _, row := range f.sorted() {
		if row.EventID == eventID && !row.Date.Before(since) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *FakeResultRepo) GetStanding(ctx context.Context, db bun.IDB, q resultdomain.StandingQuery) (*resultdomain.Standing, error) {
	if f.GetStandingFunc != nil {
		return f.GetStandingFunc(ctx, db, q)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, err := resultdomain.LookupEvent(q.EventID)
	if err != nil {
		return nil, err
	}

	var best *resultdb.Result
	for _, row := range f.sorted() {
		if row.EventID != q.EventID || row.Date.After(q.AsOf) || slices.Contains(q.Excluding, row.ID) {
			continue
		}
		if q.Region.Continent != "" && row.ContinentCode != q.Region.Continent {
			continue
		}
		if q.Region.Country != "" && row.CountryCode != q.Region.Country {
			continue
		}
		d := row.ToDomain()
		if !q.Metric.Value(d).IsReal() {
			continue
		}
		if best == nil || q.Metric.Compare(q.Metric.Value(d), q.Metric.Value(best.ToDomain()), ev) < 0 {
			best = &row
		}
	}
	if best == nil {
		return nil, nil
	}
	return best.ToStanding(q.Metric), nil
}

func (f *FakeResultRepo) GetRecordHistory(ctx context.Context, db bun.IDB, eventID string, metric resultdomain.Metric, region resultdomain.Region) ([]resultdb.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetRecordHistory")
	var out []resultdb.Result
	for _, row := range f.sorted() {
		d := row.ToDomain()
		tier := metric.Tier(d)
		if row.EventID != eventID || tier == resultdomain.TierNone {
			continue
		}
		switch {
		case region.Country != "":
			if row.CountryCode != region.Country {
				continue
			}
		case region.Continent != "":
			if row.ContinentCode != region.Continent || tier == resultdomain.TierNational {
				continue
			}
		default:
			if tier != resultdomain.TierWorld {
				continue
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *FakeResultRepo) GetRound(ctx context.Context, db bun.IDB, id uuid.UUID) (*resultdb.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetRound")
	round, ok := f.rounds[id]
	if !ok {
		return nil, resultdb.ErrNotFound
	}
	return &round, nil
}

func (f *FakeResultRepo) InsertRound(ctx context.Context, db bun.IDB, round *resultdb.Round) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InsertRound")
	if round.ID == uuid.Nil {
		round.ID = uuid.New()
	}
	f.rounds[round.ID] = *round
	return nil
}

// --- Accessors for assertions ---

func (f *FakeResultRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}

func (f *FakeResultRepo) Count(step string) int {
	n := 0
	for _, s := range f.Trace() {
		if s == step {
			n++
		}
	}
	return n
}

// Labels returns the stored labels of a result.
func (f *FakeResultRepo) Labels(id uuid.UUID) resultdomain.Labels {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := f.results[id]
	return resultdomain.Labels{
		Single:  resultdomain.RecordTier(row.SingleRecordTier),
		Average: resultdomain.RecordTier(row.AverageRecordTier),
	}
}

// sorted returns the stored rows ordered by date, creation time and id.
func (f *FakeResultRepo) sorted() []resultdb.Result {
	rows := make([]resultdb.Result, 0, len(f.results))
	for _, row := range f.results {
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b resultdb.Result) int {
		return cmp.Or(
			a.Date.Compare(b.Date),
			a.CreatedAt.Compare(b.CreatedAt),
			cmp.Compare(a.ID.String(), b.ID.String()),
		)
	})
	return rows
}

func cloneRow(r resultdb.Result) resultdb.Result {
	r.Attempts = slices.Clone(r.Attempts)
	r.CompetitorIDs = slices.Clone(r.CompetitorIDs)
	return r
}

var _ resultdb.Repository = (*FakeResultRepo)(nil)

// ------------------------
// Fake Record Publisher
// ------------------------

type FakeRecordPublisher struct {
	mu      sync.Mutex
	calls   int
	changes []resultdomain.RecordChange
	err     error
}

func (p *FakeRecordPublisher) PublishRecordChanges(ctx context.Context, changes []resultdomain.RecordChange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.changes = append(p.changes, changes...)
	return p.err
}

func (p *FakeRecordPublisher) Changes() []resultdomain.RecordChange {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.changes)
}

// ------------------------
// Helpers
// ------------------------

func newTestService(repo *FakeResultRepo, pub RecordPublisher) *ResultService {
	return newTestServiceWith(repo, pub, Settings{})
}

func newTestServiceWith(repo *FakeResultRepo, pub RecordPublisher, settings Settings) *ResultService {
	return NewResultService(
		repo,
		pub,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		resultmetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
		settings,
	)
}

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 0, 0, 0, 0, time.UTC)
}

func attempts(values ...int64) []resultdomain.Attempt {
	out := make([]resultdomain.Attempt, len(values))
	for i, v := range values {
		out[i] = resultdomain.Attempt(v)
	}
	return out
}

// ao5 builds a 3x3 Ao5 candidate whose single and average both equal value.
func ao5(value int64, date time.Time, country, continent string) resultdomain.Candidate {
	return resultdomain.Candidate{
		EventID:       "333",
		Format:        resultdomain.Average5,
		CompetitorIDs: []string{uuid.NewString()},
		Attempts:      attempts(value, value, value, value, value),
		Date:          date,
		Location:      resultdomain.Location{CountryCode: country, ContinentCode: continent},
	}
}
