package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ReadingIngested("ph", "http")
	m.ViolationCreated()
	m.MailJobs("violation", 1, 0)
	m.TriggerHandled("violation.created", nil)
	m.RefillSkipped("cooldown")
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.MailJobs("refill", 3, 1)
	m.TriggerHandled("distance.written", errors.New("boom"))
	m.ViolationCreated()

	if got := testutil.ToFloat64(m.mailJobsTotal.WithLabelValues("refill", "written")); got != 3 {
		t.Fatalf("written: want 3, got %v", got)
	}
	if got := testutil.ToFloat64(m.mailJobsTotal.WithLabelValues("refill", "failed")); got != 1 {
		t.Fatalf("failed: want 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.triggersTotal.WithLabelValues("distance.written", "error")); got != 1 {
		t.Fatalf("trigger errors: want 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.violationsTotal); got != 1 {
		t.Fatalf("violations: want 1, got %v", got)
	}
}

func TestMetrics_GinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `http_requests_total{route="/health",status="200"} 1`) {
		t.Fatalf("expected health request counted, body:\n%s", w.Body.String())
	}
}
