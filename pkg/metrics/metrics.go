package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "course_progress"

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)

	dbQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Duration of database queries",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation", "table"},
	)

	quizAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_attempts_total",
			Help:      "Graded quiz attempts by outcome",
		},
		[]string{"passed"},
	)

	lessonUnlocks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lesson_unlocks_total",
		Help:      "Lessons unlocked by a passed quiz",
	})

	enrollmentsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrollments_completed_total",
		Help:      "Enrollments that reached 100% progress",
	})

	attemptConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attempt_number_conflicts_total",
		Help:      "Attempt inserts retried after a concurrent submission took the same number",
	})
)

func init() {
	prometheus.MustRegister(
		httpRequests,
		httpDuration,
		dbQueryDuration,
		quizAttempts,
		lessonUnlocks,
		enrollmentsCompleted,
		attemptConflicts,
	)
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordDBQuery observes one SQL statement.
func RecordDBQuery(operation, table string, elapsed time.Duration) {
	dbQueryDuration.WithLabelValues(strings.ToUpper(operation), table).Observe(elapsed.Seconds())
}

// RecordQuizAttempt counts a graded attempt.
func RecordQuizAttempt(passed bool) {
	quizAttempts.WithLabelValues(strconv.FormatBool(passed)).Inc()
}

// RecordLessonUnlock counts a successor lesson unlocked by the gate.
func RecordLessonUnlock() {
	lessonUnlocks.Inc()
}

// RecordEnrollmentCompleted counts an active to completed transition.
func RecordEnrollmentCompleted() {
	enrollmentsCompleted.Inc()
}

// RecordAttemptConflict counts a retried attempt insert.
func RecordAttemptConflict() {
	attemptConflicts.Inc()
}
