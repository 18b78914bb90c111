package web

// session.go holds the server-side table state.
//
// Each client gets its own grid.Table per dataset. Clients are told apart by
// a session cookie, or by the X-Table-Session header for API callers that do
// not keep cookies. Handlers lock the session, apply one mutation, then
// refresh. The table's reload callback only marks the session stale; the
// fetch happens in refresh so a handler that changes several slices still
// issues a single query.

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/tableview/internal/config"
	"github.com/JonMunkholm/tableview/internal/dataset"
	"github.com/JonMunkholm/tableview/internal/export"
	"github.com/JonMunkholm/tableview/internal/grid"
	"github.com/JonMunkholm/tableview/internal/source"
)

const (
	sessionCookie = "tableview_session"
	sessionHeader = "X-Table-Session"
)

type clientKey struct{}

// clientSession makes sure every request carries a client id. New clients
// get a cookie and the id echoed in the X-Table-Session response header.
func clientSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(sessionHeader)
		if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
			id = c.Value
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(sessionHeader, id)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientKey{}, id)))
	})
}

// clientID returns the id set by clientSession.
func clientID(r *http.Request) string {
	id, _ := r.Context().Value(clientKey{}).(string)
	return id
}

type tableSession struct {
	mu       sync.Mutex
	def      dataset.Definition
	table    *grid.Table[dataset.Row]
	stale    bool
	lastUsed time.Time // Guarded by sessions.mu
}

func newTableSession(def dataset.Definition, cfg config.TableConfig, logger *slog.Logger) (*tableSession, error) {
	ts := &tableSession{def: def, stale: true}

	opts := []grid.Option[dataset.Row]{
		grid.WithPageSize[dataset.Row](cfg.DefaultPageSize),
		grid.WithLogger[dataset.Row](logger.With("dataset", def.Info.Key)),
		grid.WithCallbacks(grid.Callbacks[dataset.Row]{
			OnReload: func(grid.Query) { ts.stale = true },
			OnExport: export.WriterFunc(export.Default),
		}),
	}
	if len(cfg.PageSizeOptions) > 0 {
		opts = append(opts, grid.WithPageSizeOptions[dataset.Row](cfg.PageSizeOptions...))
	}
	if cfg.EmptyMessage != "" {
		opts = append(opts, grid.WithEmptyMessage[dataset.Row](cfg.EmptyMessage))
	}

	table, err := def.NewTable(opts...)
	if err != nil {
		return nil, err
	}
	ts.table = table
	return ts, nil
}

// refresh refetches the current page when a mutation asked for it. When the
// new total clamps the page, the clamped page is fetched too. Callers hold mu.
func (ts *tableSession) refresh(ctx context.Context, src source.Source) error {
	if !ts.stale {
		return nil
	}

	ts.table.SetLoading(true)
	defer ts.table.SetLoading(false)

	q := ts.table.Query()
	page, err := src.Fetch(ctx, ts.def, q)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", ts.def.Info.Key, err)
	}
	ts.table.SetData(page.Rows, page.Total)

	if clamped := ts.table.Pagination().Page(); clamped != q.Page {
		page, err = src.Fetch(ctx, ts.def, ts.table.Query())
		if err != nil {
			return fmt.Errorf("fetch %s page %d: %w", ts.def.Info.Key, clamped, err)
		}
		ts.table.SetData(page.Rows, page.Total)
	}

	ts.stale = false
	return nil
}

// rowByID finds a row of the current page by its identity. Ids arrive as
// strings from forms and as float64 from JSON, so they compare as text.
func (ts *tableSession) rowByID(id any) (dataset.Row, bool) {
	want := fmt.Sprint(id)
	identity := ts.def.Identity()
	for _, row := range ts.table.Rows() {
		if fmt.Sprint(identity(row)) == want {
			return row, true
		}
	}
	return nil, false
}

type sessionKey struct {
	client  string
	dataset string
}

// sessions lazily creates one tableSession per client and dataset, and
// drops the ones idle for longer than the configured timeout.
type sessions struct {
	mu     sync.Mutex
	byKey  map[sessionKey]*tableSession
	cfg    config.TableConfig
	logger *slog.Logger
	now    func() time.Time
}

func newSessions(cfg config.TableConfig, logger *slog.Logger) *sessions {
	return &sessions{
		byKey:  make(map[sessionKey]*tableSession),
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// get returns the client's session for dataset, wrapping
// dataset.ErrUnknownDataset.
func (s *sessions) get(client, key string) (*tableSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictIdle(now)

	sk := sessionKey{client: client, dataset: key}
	if ts, ok := s.byKey[sk]; ok {
		ts.lastUsed = now
		return ts, nil
	}
	def, err := dataset.Lookup(key)
	if err != nil {
		return nil, err
	}
	ts, err := newTableSession(def, s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	ts.lastUsed = now
	s.byKey[sk] = ts
	return ts, nil
}

// evictIdle drops sessions unused since before now minus the idle timeout.
// A handler still holding an evicted session finishes with it undisturbed.
func (s *sessions) evictIdle(now time.Time) {
	ttl := s.cfg.SessionIdleTimeout
	if ttl <= 0 {
		return
	}
	for k, ts := range s.byKey {
		if now.Sub(ts.lastUsed) > ttl {
			delete(s.byKey, k)
			s.logger.Debug("table session expired", "dataset", k.dataset)
		}
	}
}

// count returns the number of live sessions.
func (s *sessions) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byKey)
}
