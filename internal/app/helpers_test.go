package app

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/NivBraz/topworkplaces/internal/config"
)

type stubResponse struct {
	status int
	body   string
	delay  time.Duration
}

// fakeAPI serves /shifts and /workplaces/{id} from canned responses and
// records which workplace ids were requested.
type fakeAPI struct {
	shifts     stubResponse
	workplaces map[string]stubResponse

	mu        sync.Mutex
	requested []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var resp stubResponse
	switch {
	case r.URL.Path == "/shifts":
		resp = f.shifts
	case strings.HasPrefix(r.URL.Path, "/workplaces/"):
		id := strings.TrimPrefix(r.URL.Path, "/workplaces/")
		f.mu.Lock()
		f.requested = append(f.requested, id)
		f.mu.Unlock()
		var ok bool
		if resp, ok = f.workplaces[id]; !ok {
			resp = stubResponse{status: http.StatusNotFound, body: `{"error":"not found"}`}
		}
	default:
		resp = stubResponse{status: http.StatusNotFound}
	}

	if resp.delay > 0 {
		select {
		case <-time.After(resp.delay):
		case <-r.Context().Done():
			return
		}
	}
	if resp.status == 0 {
		resp.status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	io.WriteString(w, resp.body)
}

func (f *fakeAPI) workplaceRequests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requested...)
}

func newTestConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.API.BaseURL = baseURL
	cfg.API.Timeout = 5
	cfg.RateLimit.RequestsPerSecond = 1000
	cfg.RateLimit.Burst = 100
	return cfg
}

// newTestApp starts api on an httptest server and returns an App wired to
// it together with an observer of everything it logs.
func newTestApp(t *testing.T, api *fakeAPI, mutate ...func(*config.Config)) (*App, *observer.ObservedLogs) {
	t.Helper()

	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	cfg := newTestConfig(server.URL)
	for _, m := range mutate {
		m(cfg)
	}

	core, logs := observer.New(zapcore.DebugLevel)
	a, err := New(cfg, WithLogger(zap.New(core)), WithProgressWriter(io.Discard))
	require.NoError(t, err)
	t.Cleanup(a.Close)

	return a, logs
}
