// Package boundary implements the Boundary API (spec.md §6): the single
// surface a host process (CLI, dashboard) drives the core through. It is
// mechanism-agnostic — this package exposes it as plain Go methods; a
// transport (HTTP, RPC) adapts them, it doesn't reimplement them.
package boundary

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chatlab/corpus/internal/analytics"
	"github.com/chatlab/corpus/internal/catalog"
	"github.com/chatlab/corpus/internal/chaterr"
	"github.com/chatlab/corpus/internal/corpusstore"
	"github.com/chatlab/corpus/internal/importer"
	"github.com/chatlab/corpus/internal/worker"
)

// MaxQueryRows is query.sql's default row cap (spec.md §6: "cap rows at
// 1000 by default").
const MaxQueryRows = 1000

// JobEventKind tags one event on an import job's event stream.
type JobEventKind string

const (
	JobEventProgress JobEventKind = "progress"
	JobEventDone     JobEventKind = "done"
	JobEventError    JobEventKind = "error"
)

// JobEvent is one event delivered on an import job's stream (spec.md §6:
// "events progress, done, error stream on jobId").
type JobEvent struct {
	Kind     JobEventKind
	Progress *importer.Progress
	Result   *importer.Result
	Err      error
}

// ImportOptions parameterizes import.start.
type ImportOptions struct {
	CorpusID    string
	BatchSize   int
	DefaultZone *time.Location
}

// QueryResult is query.sql's response shape (spec.md §6).
type QueryResult struct {
	Columns  []string
	Rows     [][]any
	RowCount int
	Duration time.Duration
	Limited  bool
}

// API is the boundary surface, bound to one corpus store and worker pool.
type API struct {
	store   *corpusstore.Store
	catalog *catalog.Catalog
	pool    *worker.Pool
	imp     *importer.Coordinator

	mu        sync.Mutex
	jobEvents map[string]chan JobEvent
}

// New builds an API over store, running import and analytics jobs on pool.
func New(store *corpusstore.Store, pool *worker.Pool) *API {
	a := &API{
		store:     store,
		catalog:   catalog.New(store),
		pool:      pool,
		imp:       importer.New(store),
		jobEvents: make(map[string]chan JobEvent),
	}
	go a.drainResults()
	return a
}

// drainResults demuxes the pool's shared result channel onto each job's
// own event channel, closing it once delivered.
func (a *API) drainResults() {
	for res := range a.pool.Results() {
		a.mu.Lock()
		ch, ok := a.jobEvents[res.ID]
		a.mu.Unlock()
		if !ok {
			continue
		}
		if res.OK {
			result, _ := res.Data.(importer.Result)
			ch <- JobEvent{Kind: JobEventDone, Result: &result}
		} else {
			ch <- JobEvent{Kind: JobEventError, Err: res.Err}
		}
		close(ch)
		a.mu.Lock()
		delete(a.jobEvents, res.ID)
		a.mu.Unlock()
	}
}

// --- sessions.* ---

// SessionsList implements spec.md §6 sessions.list.
func (a *API) SessionsList(ctx context.Context) ([]corpusstore.Corpus, error) {
	return a.catalog.List(ctx)
}

// SessionsSelect implements spec.md §6 sessions.select.
func (a *API) SessionsSelect(ctx context.Context, corpusID string) error {
	return a.catalog.Select(ctx, corpusID)
}

// SessionsDelete implements spec.md §6 sessions.delete.
func (a *API) SessionsDelete(ctx context.Context, corpusID string) error {
	return a.catalog.Delete(ctx, corpusID)
}

// SessionsSetOwner implements spec.md §6 sessions.setOwner. An empty
// platformID clears ownership ("platformId|null").
func (a *API) SessionsSetOwner(ctx context.Context, corpusID, platformID string) error {
	return a.catalog.SetOwner(ctx, corpusID, platformID)
}

// SessionsActive returns the currently-selected corpus id, or "" if none.
func (a *API) SessionsActive(ctx context.Context) (string, error) {
	return a.catalog.Active(ctx)
}

// --- import.start ---

// ImportStart implements spec.md §6 import.start: submits the import as a
// KindImport job on the worker pool and returns its id immediately. Call
// Events(jobID) to receive progress/done/error.
func (a *API) ImportStart(ctx context.Context, path string, opts ImportOptions) (string, error) {
	jobID := opts.CorpusID
	if jobID == "" {
		jobID = uuid.NewString()
	}

	events := make(chan JobEvent, 64)
	a.mu.Lock()
	a.jobEvents[jobID] = events
	a.mu.Unlock()

	progress := make(chan importer.Progress, 16)
	go func() {
		for p := range progress {
			events <- JobEvent{Kind: JobEventProgress, Progress: &p}
		}
	}()

	err := a.pool.Submit(ctx, worker.Job{
		ID:   jobID,
		Kind: worker.KindImport,
		Run: func(jobCtx context.Context) (any, error) {
			res, err := a.imp.Run(jobCtx, importer.Options{
				Path: path, CorpusID: opts.CorpusID, BatchSize: opts.BatchSize, DefaultZone: opts.DefaultZone,
			}, progress)
			close(progress)
			return res, err
		},
	})
	if err != nil {
		a.mu.Lock()
		delete(a.jobEvents, jobID)
		a.mu.Unlock()
		close(events)
		return "", err
	}
	return jobID, nil
}

// Events returns the event stream for a job started by ImportStart. The
// channel closes once the job reaches done or error.
func (a *API) Events(jobID string) (<-chan JobEvent, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ch, ok := a.jobEvents[jobID]
	return ch, ok
}

// --- schema.get ---

// SchemaGet implements spec.md §6 schema.get.
func (a *API) SchemaGet(ctx context.Context) ([]corpusstore.TableSchema, error) {
	return a.store.TableSchemas(ctx)
}

// --- query.sql ---

// QuerySQL implements spec.md §6 query.sql: read-only, rejecting anything
// that isn't a single SELECT statement and capping rows at MaxQueryRows.
func (a *API) QuerySQL(ctx context.Context, query string) (QueryResult, error) {
	if !isReadOnlySelect(query) {
		return QueryResult{}, chaterr.New(chaterr.KindParseStructural, "boundary.QuerySQL",
			errNonSelectQuery)
	}

	start := time.Now()
	rows, err := a.store.DB().QueryContext(ctx, query)
	if err != nil {
		return QueryResult{}, chaterr.New(chaterr.KindInternal, "boundary.QuerySQL", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return QueryResult{}, chaterr.New(chaterr.KindInternal, "boundary.QuerySQL", err)
	}

	var out [][]any
	limited := false
	for rows.Next() {
		if len(out) >= MaxQueryRows {
			limited = true
			break
		}
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return QueryResult{}, chaterr.New(chaterr.KindInternal, "boundary.QuerySQL", err)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return QueryResult{}, chaterr.New(chaterr.KindInternal, "boundary.QuerySQL", err)
	}

	return QueryResult{
		Columns:  cols,
		Rows:     out,
		RowCount: len(out),
		Duration: time.Since(start),
		Limited:  limited,
	}, nil
}

var errNonSelectQuery = errors.New("query.sql only accepts a single read-only SELECT statement")

// isReadOnlySelect rejects anything but one SELECT/WITH...SELECT
// statement, per spec.md §6's "core MUST reject non-SELECT statements".
// A single trailing semicolon is tolerated; an embedded one means
// multiple statements, which this guardrail never lets through.
func isReadOnlySelect(query string) bool {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return false
	}
	if idx := strings.Index(trimmed, ";"); idx != -1 && idx != len(trimmed)-1 {
		return false
	}
	upper := strings.ToUpper(strings.TrimSuffix(trimmed, ";"))
	return strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "WITH")
}

// --- migrations.pending ---

// MigrationsPending implements spec.md §6 migrations.pending.
func (a *API) MigrationsPending() ([]corpusstore.MigrationInfo, error) {
	return a.store.PendingMigrations()
}

// --- corpus inspection (backs the dashboard's overview/detail pages) ---

// CorpusMembers lists a corpus's members.
func (a *API) CorpusMembers(ctx context.Context, corpusID string) ([]corpusstore.Member, error) {
	return a.store.ListMembers(ctx, corpusID)
}

// CorpusMessageCount counts a corpus's messages within an optional time filter.
func (a *API) CorpusMessageCount(ctx context.Context, corpusID string, f analytics.TimeFilter) (int, error) {
	return a.store.MessageCount(ctx, corpusID, f.StartTs, f.EndTs)
}

// --- analytics.* ---

// AnalyticsActivity implements analytics.activity (spec.md §4.6).
func (a *API) AnalyticsActivity(ctx context.Context, corpusID string, f analytics.TimeFilter) ([]analytics.ActivityEntry, error) {
	return analytics.ActivityRanking(ctx, a.store, corpusID, f)
}

// AnalyticsNameHistory implements analytics.nameHistory.
func (a *API) AnalyticsNameHistory(ctx context.Context, corpusID string, memberID int64) ([]analytics.NameHistoryInterval, error) {
	return analytics.NameHistory(ctx, a.store, corpusID, memberID)
}

// AnalyticsDragonKing implements analytics.dragonKing.
func (a *API) AnalyticsDragonKing(ctx context.Context, corpusID string, f analytics.TimeFilter, loc *time.Location) (analytics.DragonKingResult, error) {
	return analytics.DragonKing(ctx, a.store, corpusID, f, loc)
}

// AnalyticsMonologueStreaks implements analytics.monologueStreak.
func (a *API) AnalyticsMonologueStreaks(ctx context.Context, corpusID string, f analytics.TimeFilter, minLength int, idleGap int64) ([]analytics.StreakEntry, *analytics.MaxComboRecord, error) {
	return analytics.MonologueStreaks(ctx, a.store, corpusID, f, minLength, idleGap)
}

// AnalyticsRepeatChains implements analytics.repeatChain.
func (a *API) AnalyticsRepeatChains(ctx context.Context, corpusID string, f analytics.TimeFilter, chainIdleGap int64) (analytics.RepeatChainResult, error) {
	return analytics.RepeatChains(ctx, a.store, corpusID, f, chainIdleGap)
}

// AnalyticsCatchphrases implements analytics.catchphrase.
func (a *API) AnalyticsCatchphrases(ctx context.Context, corpusID string, f analytics.TimeFilter, k, minLen, maxLen int) ([]analytics.CatchphraseMember, error) {
	return analytics.Catchphrases(ctx, a.store, corpusID, f, k, minLen, maxLen)
}

// AnalyticsSessions implements the restored session/burst summary.
func (a *API) AnalyticsSessions(ctx context.Context, corpusID string, f analytics.TimeFilter, idleGapSeconds int64) (analytics.SessionSummary, error) {
	return analytics.Sessions(ctx, a.store, corpusID, f, idleGapSeconds)
}

// AnalyticsHeatmap implements the restored hourly/weekday heatmap.
func (a *API) AnalyticsHeatmap(ctx context.Context, corpusID string, f analytics.TimeFilter, loc *time.Location) ([]analytics.HeatmapCell, error) {
	return analytics.Heatmap(ctx, a.store, corpusID, f, loc)
}
