package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonathan/resume-builder/internal/server/ratelimit"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*Server
	db      *mockDB
	handler http.Handler
}

func newTestServer(t *testing.T, deps Deps) *testServer {
	t.Helper()
	mock := newMockDB()
	if deps.DB == nil {
		deps.DB = mock
	}
	if deps.JWT == nil {
		deps.JWT = testJWTService()
	}
	if deps.Passwords == nil {
		deps.Passwords = testPasswordConfig()
	}
	s := NewWithDeps(0, deps)
	t.Cleanup(s.rateLimiter.Stop)
	return &testServer{Server: s, db: mock, handler: s.Handler()}
}

// do sends a request through the full middleware chain. body may be a string or a value to encode.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its token.
func (ts *testServer) register(t *testing.T, email string) (string, *types.User) {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/auth/register", "", types.CreateUserRequest{
		Name:     "Jane Doe",
		Email:    email,
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body types.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Deps{})

	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, Deps{})

	rec := ts.do(t, http.MethodOptions, "/resumes", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/improve", Method: http.MethodPost, Limit: 2, Window: time.Minute},
		},
	})
	ts := newTestServer(t, Deps{RateLimiter: limiter})

	for i := 0; i < 2; i++ {
		rec := ts.do(t, http.MethodPost, "/improve", "", `{"text":"x"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "improver is not configured")
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := ts.do(t, http.MethodPost, "/improve", "", `{"text":"x"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "rate_limit_exceeded", body["error"])

	// Other endpoints draw from their own bucket
	rec = ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBodyLimit(t *testing.T) {
	ts := newTestServer(t, Deps{})

	huge := `{"personalInfo":{"fullName":"` + string(bytes.Repeat([]byte("a"), maxBodyBytes)) + `"}}`
	rec := ts.do(t, http.MethodPost, "/resumes/parse", "", huge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUnknownMethod(t *testing.T) {
	ts := newTestServer(t, Deps{})

	rec := ts.do(t, http.MethodPut, "/resumes/parse", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRelease_ClosesDatabase(t *testing.T) {
	ts := newTestServer(t, Deps{})
	closed := false
	ts.closers = append(ts.closers, func() error { closed = true; return nil })

	ts.release()
	assert.True(t, closed)
	assert.True(t, ts.db.closed)
}
