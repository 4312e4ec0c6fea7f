package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMetricsCollectorEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mc := NewMetricsCollector("svc-a", "v1", "abc")
	counter := mc.NewCounter("things_total", "Things counted", []string{"kind"})
	counter.WithLabelValues("sample").Inc()

	r := gin.New()
	r.Use(mc.MetricsMiddleware())
	r.GET("/metrics", mc.Handler())

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), "GET", "/metrics", nil)
	r.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "svc_a_things_total") {
		t.Fatalf("expected custom counter in output, got:\n%s", body)
	}
	if !strings.Contains(body, "svc_a_service_info") {
		t.Fatalf("expected service info metric in output")
	}
}

func TestMetricsCollectorIsolatedRegistries(t *testing.T) {
	// Two collectors with the same service name must not collide;
	// each owns its registry so tests can create fresh instances.
	NewMetricsCollector("svc-b", "v1", "abc")
	NewMetricsCollector("svc-b", "v1", "abc")
}
