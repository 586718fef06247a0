package handler

import (
	"context"
	"strings"

	"macrotrend-snapshot/internal/domain"
	"macrotrend-snapshot/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// CredentialHeader carries a caller-supplied OpenAI key.
const CredentialHeader = "X-OpenAI-Key"

type DashboardProvider interface {
	Snapshot(ctx context.Context, credential string) (*service.Dashboard, error)
	Refresh(ctx context.Context, credential string) (*service.Dashboard, error)
	History(ctx context.Context, limit int) ([]domain.HistoryPoint, error)
}

type Handler struct {
	tracer            trace.Tracer
	dashboard         DashboardProvider
	defaultCredential string
	serviceAPIKey     string
}

func New(tracer trace.Tracer, dashboard DashboardProvider, defaultCredential, serviceAPIKey string) *Handler {
	return &Handler{
		tracer:            tracer,
		dashboard:         dashboard,
		defaultCredential: defaultCredential,
		serviceAPIKey:     serviceAPIKey,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/dashboard", h.GetDashboard)
	api.POST("/dashboard/refresh", APIKeyAuth(h.serviceAPIKey), h.RefreshDashboard)
	api.GET("/trends", h.GetTrends)
	api.GET("/companies", h.GetCompanies)
	api.GET("/indices", h.GetIndices)
	api.GET("/history", h.GetHistory)
}

func (h *Handler) credential(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader(CredentialHeader)); key != "" {
		return key
	}
	return h.defaultCredential
}
