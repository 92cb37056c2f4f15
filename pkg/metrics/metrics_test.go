package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(quizAttempts.WithLabelValues("true"))
	RecordQuizAttempt(true)
	assert.Equal(t, before+1, testutil.ToFloat64(quizAttempts.WithLabelValues("true")))

	before = testutil.ToFloat64(lessonUnlocks)
	RecordLessonUnlock()
	assert.Equal(t, before+1, testutil.ToFloat64(lessonUnlocks))
}

func TestMiddlewareLabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/quizzes/:quizId", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/api/quizzes/:quizId", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/quizzes/abc", nil))
	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/api/quizzes/:quizId", "200"))

	assert.Equal(t, before+1, after)
}
