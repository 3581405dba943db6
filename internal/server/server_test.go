package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/aristath/marketpulse/internal/clientdata"
	"github.com/aristath/marketpulse/internal/events"
	"github.com/aristath/marketpulse/internal/modules/market"
	"github.com/aristath/marketpulse/internal/modules/portfolio"
	"github.com/aristath/marketpulse/internal/scheduler"
	testingpkg "github.com/aristath/marketpulse/internal/testing"
)

type stubJob struct {
	name string
	err  error
}

func (j *stubJob) Name() string { return j.name }
func (j *stubJob) Run() error   { return j.err }

type testEnv struct {
	server *Server
	bus    *events.Bus
	cache  *clientdata.Repository
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()

	db, cleanup := testingpkg.NewTestDB(t, "cache")
	t.Cleanup(cleanup)

	log := zerolog.Nop()
	data := testingpkg.NewMockMarketData()
	cache := clientdata.NewRepository(db.Conn())
	bus := events.NewBus(log)

	sched := scheduler.New(log)
	require.NoError(t, sched.AddJob("@hourly", &stubJob{name: "ok_job"}))
	require.NoError(t, sched.AddJob("@hourly", &stubJob{name: "bad_job", err: errors.New("boom")}))

	srv := New(Config{
		Log:       log,
		Port:      0,
		DevMode:   true,
		CacheDB:   db,
		Cache:     cache,
		Bus:       bus,
		Scheduler: sched,
		Market:    market.NewMarketService(data, log),
		Portfolio: portfolio.NewPortfolioService(data, log),
	})
	return &testEnv{server: srv, bus: bus, cache: cache}
}

func do(h http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	env := setupServer(t)

	rec := do(env.server.Router(), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"marketpulse"}`, rec.Body.String())
}

func TestRoutesMounted(t *testing.T) {
	env := setupServer(t)

	for _, path := range []string{
		"/api/dashboard",
		"/api/assets",
		"/api/news",
		"/api/alerts/grouped",
		"/api/views",
		"/api/portfolio/",
		"/api/portfolio/trend",
		"/api/system/jobs",
	} {
		t.Run(path, func(t *testing.T) {
			rec := do(env.server.Router(), http.MethodGet, path)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestSystemStatus(t *testing.T) {
	env := setupServer(t)
	require.NoError(t, env.cache.Store("stocks", testingpkg.NewStockFixtures(), time.Minute))

	rec := do(env.server.Router(), http.MethodGet, "/api/system/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SystemStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Positive(t, resp.Process.Goroutines)
	require.Len(t, resp.Cache, 1)
	assert.Equal(t, "stocks", resp.Cache[0].Key)
	assert.True(t, resp.Cache[0].Fresh)
	assert.NotNil(t, resp.Database)
	require.Len(t, resp.Jobs, 2)
	assert.Equal(t, "bad_job", resp.Jobs[0].Name)
}

func TestTriggerJob(t *testing.T) {
	env := setupServer(t)

	testCases := []struct {
		name     string
		job      string
		expected int
	}{
		{"success", "ok_job", http.StatusOK},
		{"failure", "bad_job", http.StatusInternalServerError},
		{"unknown", "nope", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(env.server.Router(), http.MethodPost, "/api/system/jobs/"+tc.job)
			assert.Equal(t, tc.expected, rec.Code)
		})
	}

	rec := do(env.server.Router(), http.MethodGet, "/api/system/jobs/ok_job")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestEventStream(t *testing.T) {
	env := setupServer(t)
	ts := httptest.NewServer(env.server.Router())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/stream?types=SNAPSHOTS_REFRESHED"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	_, hello, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(hello), `"connected"`)

	// Filtered out, then delivered
	env.bus.Publish("test", &events.ArchiveCompletedData{Key: "k"})
	env.bus.Publish("test", &events.SnapshotsRefreshedData{Keys: []string{"stocks"}, DurationMs: 12})

	_, msg, err := conn.Read(ctx)
	require.NoError(t, err)

	var event events.Event
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, events.SnapshotsRefreshed, event.Type)
	assert.Equal(t, "test", event.Module)
	data, ok := event.Data.(*events.SnapshotsRefreshedData)
	require.True(t, ok)
	assert.Equal(t, []string{"stocks"}, data.Keys)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	assert.Eventually(t, func() bool {
		return env.bus.Subscribers() == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestEventStream_UnknownTypes(t *testing.T) {
	env := setupServer(t)

	rec := do(env.server.Router(), http.MethodGet, "/api/stream?types=NOPE")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
