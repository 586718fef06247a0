package mcpserver

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"macrotrend-snapshot/internal/domain"
	"macrotrend-snapshot/internal/service"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	ToolGetDashboard     = "get_dashboard"
	ToolRefreshDashboard = "refresh_dashboard"
	ToolGetIndices       = "get_stock_indices"
)

type DashboardProvider interface {
	Snapshot(ctx context.Context, credential string) (*service.Dashboard, error)
	Refresh(ctx context.Context, credential string) (*service.Dashboard, error)
}

type dashboardArgs struct {
	OpenAIKey string `json:"openai_key,omitempty" jsonschema:"OpenAI API key for live data; the server key is used when omitted"`
}

// Server exposes the dashboard as MCP tools.
type Server struct {
	tracer            trace.Tracer
	dashboard         DashboardProvider
	defaultCredential string
	server            *mcp.Server
}

func New(tracer trace.Tracer, dashboard DashboardProvider, defaultCredential, version string) *Server {
	s := &Server{
		tracer:            tracer,
		dashboard:         dashboard,
		defaultCredential: defaultCredential,
		server:            mcp.NewServer(&mcp.Implementation{Name: "macrotrend-snapshot", Version: version}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolGetDashboard,
		Description: "Current macro indicators, tracked tech company financials, major stock indices, data provenance and month-over-month trends. Served from cache while fresh.",
	}, s.getDashboard)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolGetIndices,
		Description: "S&P 500, Dow Jones, NASDAQ and Russell 2000 prices with daily percent change and their provenance.",
	}, s.getIndices)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolRefreshDashboard,
		Description: "Force a new fetch cycle and return the resulting dashboard.",
	}, s.refreshDashboard)

	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// RunStdio serves over stdin/stdout until ctx is cancelled or the client disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler serves the streamable HTTP transport. A non-empty token
// requires a matching bearer header.
func (s *Server) HTTPHandler(token string, timeout time.Duration) http.Handler {
	var h http.Handler = mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
	if timeout > 0 {
		h = http.TimeoutHandler(h, timeout, `{"error":"request timed out"}`)
	}
	return BearerAuth(token, h)
}

func (s *Server) getDashboard(ctx context.Context, req *mcp.CallToolRequest, args dashboardArgs) (*mcp.CallToolResult, any, error) {
	ctx, span := s.tracer.Start(ctx, "mcp.get-dashboard")
	defer span.End()

	d, err := s.dashboard.Snapshot(ctx, s.credential(args))
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	return dashboardResult(d)
}

func (s *Server) refreshDashboard(ctx context.Context, req *mcp.CallToolRequest, args dashboardArgs) (*mcp.CallToolResult, any, error) {
	ctx, span := s.tracer.Start(ctx, "mcp.refresh-dashboard")
	defer span.End()

	d, err := s.dashboard.Refresh(ctx, s.credential(args))
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	span.SetAttributes(attribute.String("error_type", string(d.ErrorType)))
	return dashboardResult(d)
}

type indicesResult struct {
	Indices    []domain.StockIndex `json:"indices"`
	Provenance domain.Provenance   `json:"provenance"`
	Source     string              `json:"source,omitempty"`
}

func (s *Server) getIndices(ctx context.Context, req *mcp.CallToolRequest, args dashboardArgs) (*mcp.CallToolResult, any, error) {
	ctx, span := s.tracer.Start(ctx, "mcp.get-indices")
	defer span.End()

	d, err := s.dashboard.Snapshot(ctx, s.credential(args))
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	data, err := json.Marshal(indicesResult{Indices: d.StockIndices, Provenance: d.IndexProvenance, Source: d.IndexSource})
	if err != nil {
		return nil, nil, fmt.Errorf("encode indices: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func (s *Server) credential(args dashboardArgs) string {
	if key := strings.TrimSpace(args.OpenAIKey); key != "" {
		return key
	}
	return s.defaultCredential
}

func dashboardResult(d *service.Dashboard) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, nil, fmt.Errorf("encode dashboard: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

// BearerAuth rejects requests without the expected bearer token. An empty
// token disables the check.
func BearerAuth(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(provided)), []byte(token)) != 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
