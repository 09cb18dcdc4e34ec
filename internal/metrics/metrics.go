package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QuizSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orientation_quiz_submissions_total",
			Help: "Total number of quiz submissions",
		},
		[]string{"status"}, // graded, rejected, failed
	)

	QuizScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orientation_quiz_score_percent",
			Help:    "Distribution of graded quiz scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orientation_recommendations_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"mode"}, // specialized, general
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orientation_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"status"}, // success, failure, locked
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orientation_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Middleware records request latency labelled by the matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
