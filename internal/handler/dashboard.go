package handler

import (
	"errors"
	"net/http"
	"strconv"

	"macrotrend-snapshot/internal/domain"
	"macrotrend-snapshot/internal/resolver"
	"macrotrend-snapshot/internal/service"
	"macrotrend-snapshot/internal/trend"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultHistoryLimit = 60
	maxHistoryLimit     = 500
)

type trendsResponse struct {
	Available bool              `json:"available"`
	Schema    string            `json:"schema,omitempty"`
	Trends    domain.Trends     `json:"trends,omitempty"`
	Formatted map[string]string `json:"formatted,omitempty"`
}

type companiesResponse struct {
	Companies    []domain.CompanyRecord `json:"companies"`
	Provenance   domain.Provenance      `json:"provenance"`
	Source       string                 `json:"source,omitempty"`
	ErrorType    domain.ErrorType       `json:"errorType,omitempty"`
	ErrorMessage string                 `json:"errorMessage,omitempty"`
}

type indicesResponse struct {
	Indices      []domain.StockIndex `json:"indices"`
	Provenance   domain.Provenance   `json:"provenance"`
	Source       string              `json:"source,omitempty"`
	ErrorType    domain.ErrorType    `json:"errorType,omitempty"`
	ErrorMessage string              `json:"errorMessage,omitempty"`
}

// GetDashboard godoc
// @Summary      Get the dashboard snapshot
// @Description  Returns macro indicators, tech company financials, stock indices, provenance and trends. Refreshes when the current result is stale.
// @Tags         dashboard
// @Produce      json
// @Param        X-OpenAI-Key  header  string  false  "OpenAI API key; falls back to the server key"
// @Success      200  {object}  service.Dashboard
// @Failure      500  {object}  map[string]string
// @Router       /api/dashboard [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-dashboard")
	defer span.End()

	d, err := h.dashboard.Snapshot(ctx, h.credential(c))
	if err != nil {
		span.RecordError(err)
		writeDashboardError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// RefreshDashboard godoc
// @Summary      Force a dashboard refresh
// @Description  Runs a fetch cycle regardless of staleness. Requires X-API-Key when the server has one configured.
// @Tags         dashboard
// @Produce      json
// @Param        X-OpenAI-Key  header  string  false  "OpenAI API key; falls back to the server key"
// @Param        X-API-Key     header  string  false  "Service API key"
// @Success      200  {object}  service.Dashboard
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/dashboard/refresh [post]
func (h *Handler) RefreshDashboard(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.refresh-dashboard")
	defer span.End()

	d, err := h.dashboard.Refresh(ctx, h.credential(c))
	if err != nil {
		span.RecordError(err)
		writeDashboardError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GetTrends godoc
// @Summary      Get indicator trends
// @Description  Returns the change between the last two months for every indicator, or available=false when there is not enough history
// @Tags         dashboard
// @Produce      json
// @Param        X-OpenAI-Key  header  string  false  "OpenAI API key; falls back to the server key"
// @Success      200  {object}  trendsResponse
// @Failure      500  {object}  map[string]string
// @Router       /api/trends [get]
func (h *Handler) GetTrends(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-trends")
	defer span.End()

	d, err := h.dashboard.Snapshot(ctx, h.credential(c))
	if err != nil {
		span.RecordError(err)
		writeDashboardError(c, err)
		return
	}

	if !trend.Available(d.Trends) {
		c.JSON(http.StatusOK, trendsResponse{Available: false})
		return
	}
	formatted := make(map[string]string, len(d.Trends))
	for ind, e := range d.Trends {
		formatted[string(ind)] = trend.FormatChange(e)
	}
	c.JSON(http.StatusOK, trendsResponse{
		Available: true,
		Schema:    d.Schema,
		Trends:    d.Trends,
		Formatted: formatted,
	})
}

// GetCompanies godoc
// @Summary      Get tracked tech companies
// @Description  Returns the company records of the current snapshot with their provenance
// @Tags         dashboard
// @Produce      json
// @Param        X-OpenAI-Key  header  string  false  "OpenAI API key; falls back to the server key"
// @Success      200  {object}  companiesResponse
// @Failure      500  {object}  map[string]string
// @Router       /api/companies [get]
func (h *Handler) GetCompanies(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-companies")
	defer span.End()

	d, err := h.dashboard.Snapshot(ctx, h.credential(c))
	if err != nil {
		span.RecordError(err)
		writeDashboardError(c, err)
		return
	}
	c.JSON(http.StatusOK, companiesResponse{
		Companies:    d.TechCompanies,
		Provenance:   d.CompanyProvenance,
		Source:       d.CompanySource,
		ErrorType:    d.ErrorType,
		ErrorMessage: d.ErrorMessage,
	})
}

// GetIndices godoc
// @Summary      Get major stock indices
// @Description  Returns the S&P 500, Dow Jones, NASDAQ and Russell 2000 quotes of the current snapshot with their provenance
// @Tags         dashboard
// @Produce      json
// @Param        X-OpenAI-Key  header  string  false  "OpenAI API key; falls back to the server key"
// @Success      200  {object}  indicesResponse
// @Failure      500  {object}  map[string]string
// @Router       /api/indices [get]
func (h *Handler) GetIndices(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-indices")
	defer span.End()

	d, err := h.dashboard.Snapshot(ctx, h.credential(c))
	if err != nil {
		span.RecordError(err)
		writeDashboardError(c, err)
		return
	}
	c.JSON(http.StatusOK, indicesResponse{
		Indices:      d.StockIndices,
		Provenance:   d.IndexProvenance,
		Source:       d.IndexSource,
		ErrorType:    d.ErrorType,
		ErrorMessage: d.ErrorMessage,
	})
}

// GetHistory godoc
// @Summary      Get stored macro history
// @Description  Returns stored monthly macro points, newest first
// @Tags         dashboard
// @Produce      json
// @Param        limit  query  int  false  "Number of months (default 60, max 500)"  default(60)
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-history")
	defer span.End()

	limit := defaultHistoryLimit
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= maxHistoryLimit {
			limit = n
		}
	}
	span.SetAttributes(attribute.Int("limit", limit))

	points, err := h.dashboard.History(ctx, limit)
	if errors.Is(err, service.ErrHistoryUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"limit": limit, "history": points})
}

func writeDashboardError(c *gin.Context, err error) {
	if errors.Is(err, resolver.ErrSourcesExhausted) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}
