package admin

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	gh "edmrepos/internal/github"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var testRef = RepositoryRef{Owner: "acme", Name: "widgets"}

// callLog counts requests per "METHOD path" so tests can assert which
// provider calls were (and were not) made.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (c *callLog) record(r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, r.Method+" "+r.URL.Path)
}

func (c *callLog) count(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, k := range c.calls {
		if k == key {
			n++
		}
	}
	return n
}

func (c *callLog) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type testEnv struct {
	svc   *Service
	mux   *http.ServeMux
	calls *callLog
	logs  *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{mux: http.NewServeMux(), calls: &callLog{}, logs: &bytes.Buffer{}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.calls.record(r)
		env.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := gh.NewClient(context.Background(), "test-token")
	require.NoError(t, err)
	u, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.Client.BaseURL = u
	client.Client.UploadURL = u

	log := logrus.New()
	log.SetOutput(env.logs)
	log.SetLevel(logrus.DebugLevel)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	env.svc, err = NewService(client, WithLogger(log), WithConcurrency(2))
	require.NoError(t, err)
	return env
}

func writeStatus(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
