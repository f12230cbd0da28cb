package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddlewareCountsRequests(t *testing.T) {
	m := NewMetrics()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/reviews/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reviews/9", nil))
	}

	got := testutil.ToFloat64(m.HttpRequestsTotal.WithLabelValues(http.MethodGet, "/reviews/:id", "404"))
	if got != 2 {
		t.Fatalf("http_requests_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ActiveConnections); got != 0 {
		t.Fatalf("active_connections = %v, want 0", got)
	}
}

func TestObserveReview(t *testing.T) {
	m := NewMetrics()
	m.ObserveReview("create", "ok")
	m.ObserveReview("create", "ok")
	m.ObserveReview("get", "not_found")

	if got := testutil.ToFloat64(m.ReviewOperations.WithLabelValues("create", "ok")); got != 2 {
		t.Fatalf("create/ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ReviewOperations.WithLabelValues("get", "not_found")); got != 1 {
		t.Fatalf("get/not_found = %v, want 1", got)
	}

	var nilMetrics *Metrics
	nilMetrics.ObserveReview("get", "ok")
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics()
	m.ObserveReview("delete", "ok")

	r := gin.New()
	r.GET("/metrics", m.Handler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `review_operations_total{operation="delete",result="ok"} 1`) {
		t.Fatalf("metrics body missing review counter:\n%s", w.Body.String())
	}
}
