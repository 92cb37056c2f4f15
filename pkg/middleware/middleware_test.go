package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/course-progress-server/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiterAllowsBurstThenRejects(t *testing.T) {
	rl := NewRateLimiter(2)

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"), "buckets are per client")
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(5)
	rl.Allow("a")
	rl.evict(time.Now().Add(time.Hour))
	assert.Empty(t, rl.clients)
}

func TestRateLimiterMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(1).Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"too_many_requests"`)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(time.Second))
	var hasDeadline bool
	r.GET("/", func(c *gin.Context) {
		_, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, hasDeadline)
}

func TestRequestIDPropagatesHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc", w.Body.String())
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRecoveryHidesPanicValue(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.Discard()))
	r.GET("/", func(c *gin.Context) { panic("db password leaked") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db password")
	assert.Contains(t, w.Body.String(), `"code":"internal_error"`)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
