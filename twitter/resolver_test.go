package twitter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/birdsync/birdsync/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profilePage = `<html><head><title>Alice Example (@alice) / X</title></head>
<body><a href="https://mobile.x.com/login?screen_name=alice">Open app</a></body></html>`

func newTestResolver(server *httptest.Server) *Resolver {
	r := NewResolver().WithHTTPClient(server.Client())
	r.intentURL = server.URL + "/intent/user?user_id=%s"
	r.baseWait = time.Millisecond
	return r
}

func TestResolve(t *testing.T) {
	t.Run("matching page resolves handle", resolveOKTest)
	t.Run("404 maps to not found", resolve404Test)
	t.Run("suspended marker maps to suspended", resolveSuspendedTest)
	t.Run("unrecognized markup maps to ambiguous page", resolveAmbiguousTest)
	t.Run("transient failures retried then resolved", resolveRetryTest)
	t.Run("retries exhausted downgrade to not found", resolveExhaustedTest)
}

func resolveOKTest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1234567890", r.URL.Query().Get("user_id"))
		_, _ = w.Write([]byte(profilePage))
	}))
	defer server.Close()

	resolved := newTestResolver(server).Resolve(context.Background(), archive.FollowRecord{AccountID: "1234567890"})
	assert.Equal(t, StatusResolved, resolved.Status)
	assert.Equal(t, "alice", resolved.Handle)
}

func resolve404Test(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resolved := newTestResolver(server).Resolve(context.Background(), archive.FollowRecord{AccountID: "1"})
	assert.Equal(t, StatusNotFound, resolved.Status)
	assert.Empty(t, resolved.Handle)
}

func resolveSuspendedTest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>Account suspended. X suspends accounts that violate the rules.</body></html>`))
	}))
	defer server.Close()

	resolved := newTestResolver(server).Resolve(context.Background(), archive.FollowRecord{AccountID: "2"})
	assert.Equal(t, StatusSuspended, resolved.Status)
}

func resolveAmbiguousTest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>Something went wrong, try reloading.</p></body></html>`))
	}))
	defer server.Close()

	resolved := newTestResolver(server).Resolve(context.Background(), archive.FollowRecord{AccountID: "3"})
	assert.Equal(t, StatusAmbiguousPage, resolved.Status)
	assert.Contains(t, resolved.Diagnostic, "no handle found")
}

func resolveRetryTest(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(profilePage))
	}))
	defer server.Close()

	resolved := newTestResolver(server).Resolve(context.Background(), archive.FollowRecord{AccountID: "4"})
	require.Equal(t, 3, attempts)
	assert.Equal(t, StatusResolved, resolved.Status)
	assert.Equal(t, "alice", resolved.Handle)
}

func resolveExhaustedTest(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	resolver := newTestResolver(server)
	resolved := resolver.Resolve(context.Background(), archive.FollowRecord{AccountID: "5"})
	assert.Equal(t, resolver.maxRetries+1, attempts)
	assert.Equal(t, StatusNotFound, resolved.Status)
	assert.Contains(t, resolved.Diagnostic, "fetch failed")
}
