package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	var sawLogger bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = LoggerFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	RequestLogger(base)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.True(t, sawLogger, "handler should see the request logger")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	out := buf.String()
	assert.Contains(t, out, "request completed")
	assert.Contains(t, out, "request_id=1")
	assert.Contains(t, out, "path=/api/health")
	assert.Contains(t, out, "status=418")
}

func TestRecoverer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Recoverer(logger)(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), statusMessage(http.StatusInternalServerError))
	assert.Contains(t, buf.String(), "handler panicked")
}

func TestCORS(t *testing.T) {
	t.Parallel()

	const origin = "http://localhost:3000"
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})

	request := func(h http.Handler, method, from string, preflight bool) *httptest.ResponseRecorder {
		reached = false
		req := httptest.NewRequest(method, "/api/health", nil)
		if from != "" {
			req.Header.Set("Origin", from)
		}
		if preflight {
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	allowed := CORS([]string{origin})(next)

	t.Run("allowed origin", func(t *testing.T) {
		rec := request(allowed, http.MethodGet, origin, false)
		assert.True(t, reached)
		assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin", func(t *testing.T) {
		rec := request(allowed, http.MethodGet, "http://evil.example", false)
		assert.True(t, reached)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight is answered by the middleware", func(t *testing.T) {
		rec := request(allowed, http.MethodOptions, origin, true)
		assert.False(t, reached)
		assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.MethodGet, rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("no origins configured", func(t *testing.T) {
		rec := request(CORS(nil)(next), http.MethodGet, origin, false)
		assert.True(t, reached)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
