package cmd

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elasticinbox/elasticinbox-go/internal/iocontext"
)

const (
	testAccount = "test@test.com"
	testUUID    = "7a8e6d30-4dd7-11e2-8dd9-040ccee13a02"
	testPrefix  = "/rest/v2/test.com/test"
)

// seenRequest is a request received by a routeHandler.
type seenRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// routeHandler routes requests by exact "METHOD PATH" and records every
// request it receives. Unknown routes get 404.
type routeHandler struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []seenRequest
}

func newRouteHandler() *routeHandler {
	return &routeHandler{routes: make(map[string]http.HandlerFunc)}
}

// On registers a handler for the given HTTP method and path.
func (rh *routeHandler) On(method, path string, handler http.HandlerFunc) *routeHandler {
	rh.routes[method+" "+path] = handler
	return rh
}

func (rh *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	rh.mu.Lock()
	rh.requests = append(rh.requests, seenRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	handler, ok := rh.routes[r.Method+" "+r.URL.Path]
	rh.mu.Unlock()
	if ok {
		handler(w, r)
		return
	}
	http.NotFound(w, r)
}

// Requests returns a snapshot of the recorded requests.
func (rh *routeHandler) Requests() []seenRequest {
	rh.mu.Lock()
	defer rh.mu.Unlock()
	return append([]seenRequest(nil), rh.requests...)
}

// find returns the first recorded request matching method and path.
func (rh *routeHandler) find(t *testing.T, method, path string) seenRequest {
	t.Helper()
	for _, r := range rh.Requests() {
		if r.Method == method && r.Path == path {
			return r
		}
	}
	t.Fatalf("no %s %s request among %d", method, path, len(rh.Requests()))
	return seenRequest{}
}

func jsonResponse(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}

func status(code int) http.HandlerFunc {
	return jsonResponse(code, "")
}

// setupTestEnv starts a server for handler and points the CLI at it through
// the environment, with testAccount as the account.
func setupTestEnv(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	t.Setenv("ELASTICINBOX_HOST", u.Hostname())
	t.Setenv("ELASTICINBOX_PORT", u.Port())
	t.Setenv("ELASTICINBOX_ACCOUNT", testAccount)
	return server
}

type result struct {
	Out string
	Err string
	err error
}

// run executes the CLI with buffered streams and stdin.
func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	streams, out, errOut := iocontext.Buffered(stdin)
	err := Execute(iocontext.WithIO(context.Background(), streams), args)
	return result{Out: out.String(), Err: errOut.String(), err: err}
}
