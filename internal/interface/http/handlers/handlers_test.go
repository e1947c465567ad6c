package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCompositeHealthChecker(t *testing.T) {
	t.Run("no checks", func(t *testing.T) {
		status := NewCompositeHealthChecker("test").Check(context.Background())
		assert.True(t, status.Healthy)
		assert.Equal(t, "No health checks registered", status.Message)
	})

	t.Run("all pass", func(t *testing.T) {
		c := NewCompositeHealthChecker("test")
		c.AddCheck("store", NewStoreCheck(pingFunc(func(context.Context) error { return nil })))

		status := c.Check(context.Background())
		assert.True(t, status.Healthy)
		assert.True(t, status.Ready)
		assert.Equal(t, "OK", status.Checks["store"].Message)
	})

	t.Run("failure and timeout", func(t *testing.T) {
		c := NewCompositeHealthChecker("test")
		c.SetTimeout(20 * time.Millisecond)
		c.AddCheck("store", NewStoreCheck(pingFunc(func(context.Context) error { return errors.New("disk gone") })))
		c.AddCheck("redis", func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})

		status := c.Check(context.Background())
		assert.False(t, status.Healthy)
		assert.False(t, status.Ready)
		assert.Equal(t, "Some checks failed: redis, store", status.Message)
		assert.Equal(t, "disk gone", status.Checks["store"].Message)
	})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	auth := NewBasicAuth("me", string(hash), "")
	h := auth.Middleware(okHandler())

	tests := []struct {
		name       string
		user, pass string
		noAuth     bool
		wantStatus int
	}{
		{name: "valid", user: "me", pass: "s3cret", wantStatus: http.StatusOK},
		{name: "valid again from cache", user: "me", pass: "s3cret", wantStatus: http.StatusOK},
		{name: "wrong password", user: "me", pass: "nope", wantStatus: http.StatusUnauthorized},
		{name: "wrong user", user: "you", pass: "s3cret", wantStatus: http.StatusUnauthorized},
		{name: "missing", noAuth: true, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
			if !tt.noAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Header().Get("WWW-Authenticate"), `realm="tracker"`)
				assert.Contains(t, rec.Body.String(), `"unauthorized"`)
			}
		})
	}
}

func TestBasicAuth_DisabledWithoutHash(t *testing.T) {
	auth := NewBasicAuth("me", "", "")
	assert.False(t, auth.Enabled())

	rec := httptest.NewRecorder()
	auth.Middleware(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))
}

func TestReadOnlyMiddleware(t *testing.T) {
	writable := false
	h := ReadOnlyMiddleware(func() bool { return writable })(okHandler())

	serve := func(method string) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, "/api/v1/notes", nil))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve(http.MethodGet))
	assert.Equal(t, http.StatusForbidden, serve(http.MethodPost))
	assert.Equal(t, http.StatusForbidden, serve(http.MethodDelete))

	writable = true
	assert.Equal(t, http.StatusOK, serve(http.MethodPatch))
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	h := RequestSizeLimitMiddleware(8)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123")))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChainHandler_Order(t *testing.T) {
	var order []string
	mark := func(name string) MiddlewareFunc {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := ChainHandler(okHandler(), mark("outer"), mark("inner"), SecurityHeadersMiddleware, NoCacheMiddleware)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
}
