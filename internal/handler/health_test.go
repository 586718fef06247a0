package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"macrotrend-snapshot/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	dashboard := &stubDashboard{}
	h := New(trace.NewNoopTracerProvider().Tracer("test"), dashboard, "", "")
	r.GET("/health", h.Health)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" || body["version"] != tracing.ServiceVersion {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
	if len(dashboard.credentials) != 0 {
		t.Error("health check must not touch the dashboard")
	}
}
