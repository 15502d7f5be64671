package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/repview/internal/replacements"
	"github.com/raysh454/repview/internal/server"
	"github.com/raysh454/repview/internal/store"
	"github.com/raysh454/repview/internal/testutil"
	"github.com/raysh454/repview/internal/watcher"
)

type fakeChecker struct {
	mu     sync.Mutex
	calls  int
	result *watcher.Result
	err    error
}

func (f *fakeChecker) Check(context.Context) (*watcher.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}

func (f *fakeChecker) History() []*watcher.Result {
	if f.result == nil {
		return []*watcher.Result{}
	}
	return []*watcher.Result{f.result}
}

type fixture struct {
	srv     *server.Server
	page    *server.Page
	store   *store.SQLiteStore
	checker *fakeChecker
}

func newFixture(t *testing.T, cfg server.Config) *fixture {
	t.Helper()
	logger := &testutil.DummyLogger{}

	st, err := store.Open(store.Config{Path: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	page := server.NewPage("content")
	checker := &fakeChecker{result: &watcher.Result{ID: "check-1", Status: watcher.StatusUnchanged, Reason: "ok"}}
	srv, err := server.NewServer(cfg, page, st, checker, logger)
	require.NoError(t, err)

	return &fixture{srv: srv, page: page, store: st, checker: checker}
}

func seed(t *testing.T, st *store.SQLiteStore, body string, groups map[string][]replacements.Replacement) *store.Snapshot {
	t.Helper()
	snap := &store.Snapshot{
		Body:     body,
		Schedule: &replacements.Schedule{Date: "2024-10-14", RawDate: "Замены 14.10.24", Groups: groups},
	}
	require.NoError(t, st.Save(context.Background(), snap))
	return snap
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(""))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v), "body: %s", rec.Body.String())
}

var sampleGroups = map[string][]replacements.Replacement{
	"101": {{Pair: "1", OriginalSubject: "Математика", Teacher: "Иванова И.И.", NewSubject: "Физика", Classroom: "305"}},
	"102": {{Pair: "3", OriginalSubject: "История", Teacher: replacements.TeacherCancelled}},
}

// ─── Construction / CORS ───────────────────────────────────────────────

func TestNewServer_RequiresDependencies(t *testing.T) {
	t.Parallel()
	_, err := server.NewServer(server.DefaultConfig(), nil, nil, nil, &testutil.DummyLogger{})
	require.Error(t, err)
}

func TestServer_CORS(t *testing.T) {
	t.Parallel()
	f := newFixture(t, server.DefaultConfig())

	rec := do(t, f.srv, http.MethodGet, "/api/groups")
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, f.srv, http.MethodOptions, "/api/refresh")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
}

// ─── Page ──────────────────────────────────────────────────────────────

func TestServer_ViewRendersCurrentContent(t *testing.T) {
	t.Parallel()
	f := newFixture(t, server.DefaultConfig())
	f.page.SetContent("<table><tr><td>101</td></tr></table>")

	rec := do(t, f.srv, http.MethodGet, server.ViewPath)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	require.Contains(t, body, `<div id="content"><table><tr><td>101</td></tr></table></div>`)
	require.Contains(t, body, "new WebSocket(")
}

func TestServer_ViewRendersErrorLine(t *testing.T) {
	t.Parallel()
	f := newFixture(t, server.DefaultConfig())
	f.page.SetContent("error: 0 - connection failed")

	rec := do(t, f.srv, http.MethodGet, server.ViewPath)
	require.Contains(t, rec.Body.String(), `<div id="content">error: 0 - connection failed</div>`)
}

func TestServer_RootRedirectsToView(t *testing.T) {
	t.Parallel()
	f := newFixture(t, server.DefaultConfig())
	rec := do(t, f.srv, http.MethodGet, "/")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, server.ViewPath, rec.Header().Get("Location"))
}

func TestServer_SocketStreamsContent(t *testing.T) {
	t.Parallel()
	f := newFixture(t, server.DefaultConfig())
	f.page.SetContent("first")

	ts := httptest.NewServer(f.srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + server.SocketPath
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var msg struct {
		Content string `json:"content"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "first", msg.Content)

	require.Eventually(t, func() bool { return f.page.Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)
	f.page.SetContent("second")
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "second", msg.Content)
}

// ─── Schedule API ──────────────────────────────────────────────────────

func TestServer_ScheduleNotFoundBeforeFirstFetch(t *testing.T) {
	t.Parallel()
	f := newFixture(t, server.DefaultConfig())

	for _, path := range []string{"/api/schedule", "/api/groups", "/api/groups/101", "/api/teachers", "/api/teachers/x"} {
		rec := do(t, f.srv, http.MethodGet, path)
		require.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestServer_Schedule(t *testing.T) {
	t.Parallel()
	f := newFixture(t, server.DefaultConfig())
	seed(t, f.store, "<table/>", sampleGroups)

	rec := do(t, f.srv, http.MethodGet, "/api/schedule")
	require.Equal(t, http.StatusOK, rec.Code)
	var s replacements.Schedule
	decodeJSON(t, rec, &s)
	require.Equal(t, "2024-10-14", s.Date)
	require.Equal(t, sampleGroups, s.Groups)
}

func TestServer_Groups(t *testing.T) {
	t.Parallel()
	f := newFixture(t, server.DefaultConfig())
	seed(t, f.store, "<table/>", sampleGroups)

	rec := do(t, f.srv, http.MethodGet, "/api/groups")
	var groups server.GroupsResponse
	decodeJSON(t, rec, &groups)
	require.Equal(t, []string{"101", "102"}, groups.Groups)

	rec = do(t, f.srv, http.MethodGet, "/api/groups/101")
	require.Equal(t, http.StatusOK, rec.Code)
	var group server.GroupResponse
	decodeJSON(t, rec, &group)
	require.Equal(t, "101", group.Group)
	require.Len(t, group.Pairs, 1)
	require.Equal(t, 1, group.Pairs[0].Pair)
	require.Contains(t, group.Text, "📅 Замены для группы 101")

	rec = do(t, f.srv, http.MethodGet, "/api/groups/999")
	decodeJSON(t, rec, &group)
	require.Empty(t, group.Pairs)
	require.Equal(t, "Для группы 999 замен нет", group.Text)
}

func TestServer_Teachers(t *testing.T) {
	t.Parallel()
	f := newFixture(t, server.DefaultConfig())
	seed(t, f.store, "<table/>", sampleGroups)

	rec := do(t, f.srv, http.MethodGet, "/api/teachers")
	var teachers server.TeachersResponse
	decodeJSON(t, rec, &teachers)
	require.Equal(t, []string{"Иванова И.И."}, teachers.Teachers)

	rec = do(t, f.srv, http.MethodGet, "/api/teachers/"+url.PathEscape("Иванова И.И."))
	require.Equal(t, http.StatusOK, rec.Code)
	var teacher server.TeacherResponse
	decodeJSON(t, rec, &teacher)
	require.Equal(t, "Иванова И.И.", teacher.Teacher)
	require.Len(t, teacher.Pairs, 1)
	require.Equal(t, "101", teacher.Pairs[0].Group)
}

// ─── Snapshots ─────────────────────────────────────────────────────────

func TestServer_Snapshots(t *testing.T) {
	t.Parallel()
	f := newFixture(t, server.DefaultConfig())
	first := seed(t, f.store, "<p>Физика</p>", sampleGroups)
	second := seed(t, f.store, "<p>Химия</p>", map[string][]replacements.Replacement{"101": sampleGroups["101"]})

	rec := do(t, f.srv, http.MethodGet, "/api/snapshots")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []server.SnapshotSummary
	decodeJSON(t, rec, &list)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, 1, list[0].Groups)

	rec = do(t, f.srv, http.MethodGet, "/api/snapshots?limit=1")
	decodeJSON(t, rec, &list)
	require.Len(t, list, 1)

	rec = do(t, f.srv, http.MethodGet, "/api/snapshots/"+first.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap store.Snapshot
	decodeJSON(t, rec, &snap)
	require.Equal(t, "<p>Физика</p>", snap.Body)

	rec = do(t, f.srv, http.MethodGet, "/api/snapshots/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_SnapshotDiff(t *testing.T) {
	t.Parallel()
	f := newFixture(t, server.DefaultConfig())
	first := seed(t, f.store, "<p>Физика</p>", sampleGroups)
	second := seed(t, f.store, "<p>Химия</p>", sampleGroups)

	rec := do(t, f.srv, http.MethodGet, "/api/snapshots/"+second.ID+"/diff")
	require.Equal(t, http.StatusOK, rec.Code)
	var diff store.Diff
	decodeJSON(t, rec, &diff)
	require.Equal(t, first.ID, diff.BaseID)
	require.Equal(t, []store.Chunk{{Type: "removed", Content: "Физика"}, {Type: "added", Content: "Химия"}}, diff.Chunks)

	rec = do(t, f.srv, http.MethodGet, "/api/snapshots/"+first.ID+"/diff?base=missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// ─── Refresh ───────────────────────────────────────────────────────────

func TestServer_RefreshRunsCheck(t *testing.T) {
	t.Parallel()
	f := newFixture(t, server.DefaultConfig())

	rec := do(t, f.srv, http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	var res watcher.Result
	decodeJSON(t, rec, &res)
	require.Equal(t, "check-1", res.ID)
	require.Equal(t, 1, f.checker.calls)

	rec = do(t, f.srv, http.MethodGet, "/api/checks")
	var checks []watcher.Result
	decodeJSON(t, rec, &checks)
	require.Len(t, checks, 1)
}

func TestServer_RefreshIsRateLimited(t *testing.T) {
	t.Parallel()
	cfg := server.DefaultConfig()
	cfg.RefreshPerMinute = 1
	f := newFixture(t, cfg)

	require.Equal(t, http.StatusOK, do(t, f.srv, http.MethodPost, "/api/refresh").Code)
	require.Equal(t, http.StatusTooManyRequests, do(t, f.srv, http.MethodPost, "/api/refresh").Code)
	require.Equal(t, 1, f.checker.calls)
}

func TestServer_RefreshDisabled(t *testing.T) {
	t.Parallel()
	cfg := server.DefaultConfig()
	cfg.RefreshPerMinute = 0
	f := newFixture(t, cfg)

	require.Equal(t, http.StatusServiceUnavailable, do(t, f.srv, http.MethodPost, "/api/refresh").Code)
	require.Zero(t, f.checker.calls)
}

func TestServer_RefreshFetchFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t, server.DefaultConfig())
	f.checker.result = &watcher.Result{ID: "check-2", Status: watcher.StatusFailed, Reason: "0 - connection failed"}
	f.checker.err = watcher.ErrFetchFailed

	rec := do(t, f.srv, http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	var res watcher.Result
	decodeJSON(t, rec, &res)
	require.Equal(t, "0 - connection failed", res.Reason)
}

// ─── Swagger ───────────────────────────────────────────────────────────

func TestServer_SwaggerDocument(t *testing.T) {
	t.Parallel()
	f := newFixture(t, server.DefaultConfig())

	rec := do(t, f.srv, http.MethodGet, "/swagger/doc.json")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	decodeJSON(t, rec, &doc)
	require.Contains(t, doc["paths"], "/api/refresh")
}
