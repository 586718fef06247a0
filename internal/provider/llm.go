package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"macrotrend-snapshot/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// ClientFactory builds a client for one call. Clients are never cached across
// credentials.
type ClientFactory func(apiKey string) LLMClient

// LLMPayload is a successful combined response.
type LLMPayload struct {
	Macro     []domain.MonthlySnapshot
	Companies []domain.CompanyRecord
	Indices   []domain.StockIndex
}

// PartialError reports a failed macro fetch that still produced company
// records or index quotes.
type PartialError struct {
	Companies []domain.CompanyRecord
	Indices   []domain.StockIndex
	Err       error
}

func (e *PartialError) Error() string { return e.Err.Error() }
func (e *PartialError) Unwrap() error { return e.Err }

// LLMSource asks a language model for current macro indicators and company
// snapshots in one prompt.
type LLMSource struct {
	tracer      trace.Tracer
	newClient   ClientFactory
	model       string
	temperature float64
	schema      domain.Schema
	tickers     []string
}

func NewLLMSource(tracer trace.Tracer, newClient ClientFactory, model string, schema domain.Schema) *LLMSource {
	if newClient == nil {
		newClient = NewOpenAIClient
	}
	if model == "" {
		model = "gpt-4o"
	}
	return &LLMSource{
		tracer:      tracer,
		newClient:   newClient,
		model:       model,
		temperature: 0.2,
		schema:      schema,
		tickers:     domain.TrackedTickers,
	}
}

// Fetch performs a single completion call. A response whose macro section is
// unusable but whose company section is not comes back as *PartialError.
func (s *LLMSource) Fetch(ctx context.Context, apiKey string) (*LLMPayload, error) {
	ctx, span := s.tracer.Start(ctx, "llm.fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", s.model),
		attribute.String("schema", s.schema.Name),
	)

	client := s.newClient(apiKey)
	completion, err := client.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(llmSystemPrompt),
			openai.UserMessage(BuildUserPrompt(s.schema, s.tickers)),
		},
		Temperature: openai.Float(s.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("no choices returned from model")
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return nil, errors.New("no content returned from model")
	}

	payload, err := s.parse(content)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("macro.points", len(payload.Macro)),
		attribute.Int("companies", len(payload.Companies)),
		attribute.Int("indices", len(payload.Indices)),
	)
	return payload, nil
}

func (s *LLMSource) parse(content string) (*LLMPayload, error) {
	var raw struct {
		MacroData     json.RawMessage `json:"macroData"`
		TechCompanies json.RawMessage `json:"techCompanies"`
		StockData     json.RawMessage `json:"stockData"`
		StockIndices  json.RawMessage `json:"stockIndices"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	companies := parseCompanies(raw.TechCompanies)
	indexData := raw.StockData
	if len(indexData) == 0 {
		indexData = raw.StockIndices
	}
	indices := parseIndices(indexData)

	macro, macroErr := s.parseMacro(raw.MacroData)
	if macroErr != nil {
		if len(companies) > 0 || len(indices) > 0 {
			return nil, &PartialError{Companies: companies, Indices: indices, Err: macroErr}
		}
		return nil, macroErr
	}
	return &LLMPayload{Macro: macro, Companies: companies, Indices: indices}, nil
}

func (s *LLMSource) parseMacro(data json.RawMessage) ([]domain.MonthlySnapshot, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, errors.New("invalid data structure returned from model: missing macroData")
	}
	var series []domain.MonthlySnapshot
	if err := json.Unmarshal(data, &series); err != nil {
		return nil, fmt.Errorf("invalid data structure returned from model: %w", err)
	}
	if len(series) < domain.MinSeriesLength {
		return nil, fmt.Errorf("invalid data structure returned from model: %d macro points", len(series))
	}
	if err := s.schema.Validate(series); err != nil {
		return nil, fmt.Errorf("invalid data structure returned from model: %w", err)
	}
	return series, nil
}

// parseCompanies keeps only fully populated records for tracked tickers.
func parseCompanies(data json.RawMessage) []domain.CompanyRecord {
	if len(data) == 0 {
		return nil
	}
	var records []domain.CompanyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("llm: discarding malformed techCompanies: %v", err)
		return nil
	}
	valid := make([]domain.CompanyRecord, 0, len(records))
	for _, r := range records {
		r.Ticker = strings.ToUpper(strings.TrimSpace(r.Ticker))
		if err := r.Validate(); err != nil {
			log.Printf("llm: dropping company record: %v", err)
			continue
		}
		valid = append(valid, r)
	}
	return domain.SortCompanies(valid)
}

// parseIndices keeps only complete quotes for tracked index symbols.
func parseIndices(data json.RawMessage) []domain.StockIndex {
	if len(data) == 0 {
		return nil
	}
	var quotes []domain.StockIndex
	if err := json.Unmarshal(data, &quotes); err != nil {
		log.Printf("llm: discarding malformed stockData: %v", err)
		return nil
	}
	valid := make([]domain.StockIndex, 0, len(quotes))
	for _, q := range quotes {
		q.Symbol = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(q.Symbol)), "^")
		if err := q.Validate(); err != nil {
			log.Printf("llm: dropping index quote: %v", err)
			continue
		}
		valid = append(valid, q)
	}
	return domain.SortIndices(valid)
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

func NewOpenAIClient(apiKey string) LLMClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
