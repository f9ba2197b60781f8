package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/config"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/exceptions"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/history"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			HTTPPort:        0,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: 2 * time.Second,
		},
		History: config.HistoryConfig{Backend: "memory", Limit: 10},
		Engine:  config.EngineConfig{DefaultRate: "25", DefaultFormat: "smpte"},
		Batch:   config.BatchConfig{SampleRate: 48000},
	}
}

type testServer struct {
	*Server
	store    history.Store
	reporter *exceptions.RecordingReporter
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()

	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	store := history.NewMemoryStore(cfg.History.Limit)
	reporter := &exceptions.RecordingReporter{}

	s := New(Options{
		Config:   cfg,
		Logger:   logger.Discard(),
		History:  store,
		Reporter: reporter,
	})
	return &testServer{Server: s, store: store, reporter: reporter}
}

func TestNew(t *testing.T) {
	ts := newTestServer(t)

	assert.NotNil(t, ts.router)
	assert.NotNil(t, ts.healthMgr)
	assert.NotNil(t, ts.errorHandler)
	assert.Nil(t, ts.limiter, "rate limit of zero disables limiting")
	assert.Equal(t, int64(48000), ts.defaultSampleRate)
	assert.IsType(t, &mux.Router{}, ts.GetRouter())
}

func TestNew_RateLimiter(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = 10
		cfg.Server.RateBurst = 5
	})

	require.NotNil(t, ts.limiter)
	assert.Equal(t, 5, ts.limiter.Burst())
}

func TestRoutes(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/live", http.StatusOK},
		{"GET", "/health", http.StatusOK},
		{"GET", "/version", http.StatusOK},
		{"GET", "/api/v1/rates", http.StatusOK},
		{"GET", "/api/v1/formats", http.StatusOK},
		{"GET", "/api/v1/history", http.StatusOK},
		{"DELETE", "/api/v1/history", http.StatusNoContent},
		{"OPTIONS", "/api/v1/convert", http.StatusNoContent},
		{"GET", "/api/v1/convert", http.StatusMethodNotAllowed},
		{"GET", "/api/v1/streams", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rr := httptest.NewRecorder()
			ts.router.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestRoutes_APIErrorsAreJSON(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		method string
		path   string
		status int
		typ    string
	}{
		{"GET", "/api/v1/calculate", http.StatusMethodNotAllowed, "VALIDATION_ERROR"},
		{"PUT", "/api/v1/history", http.StatusMethodNotAllowed, "VALIDATION_ERROR"},
		{"POST", "/api/v1/unknown", http.StatusNotFound, "NOT_FOUND"},
		{"GET", "/nowhere", http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := do(t, ts.router, tt.method, tt.path, "")
			require.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var body errorBody
			decodeBody(t, rr, &body)
			assert.Equal(t, tt.typ, body.Error.Type)
		})
	}
}

func TestHealth_DegradedWithoutBWFTool(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Status string `json:"status"`
		Checks map[string]struct {
			Status   string `json:"status"`
			Optional bool   `json:"optional"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "ok", body.Checks["history"].Status)
	assert.Equal(t, "degraded", body.Checks["bwfmetaedit"].Status, "optional check failures degrade")
	assert.True(t, body.Checks["bwfmetaedit"].Optional)
}

func TestVersion(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest("GET", "/version", nil)
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var info map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, "tctool", info["product"])
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ts := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ts.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/live"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestShutdown_NotStarted(t *testing.T) {
	ts := newTestServer(t)
	assert.NoError(t, ts.Shutdown())
}
