package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"macrotrend-snapshot/internal/domain"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// yahooIndexSymbols maps tracked index symbols to Yahoo chart symbols.
var yahooIndexSymbols = map[string]string{
	"SPX":  "^GSPC",
	"DJI":  "^DJI",
	"IXIC": "^IXIC",
	"RUT":  "^RUT",
}

// quotePlaceholder fills display fields the chart API does not provide.
const quotePlaceholder = "N/A"

// YahooQuoteProvider builds company records from the Yahoo Finance chart API,
// one ticker at a time.
type YahooQuoteProvider struct {
	client      *resty.Client
	tracer      trace.Tracer
	limiter     *RateLimiter
	concurrency int
	now         func() time.Time
}

// NewYahooQuoteProvider allows a burst of 4 requests and one more every 500ms.
func NewYahooQuoteProvider(tracer trace.Tracer, baseURL string) *YahooQuoteProvider {
	if baseURL == "" {
		baseURL = yahooBaseURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(15 * time.Second)
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "macrotrend-snapshot/1.0")

	return &YahooQuoteProvider{
		client:      client,
		tracer:      tracer,
		limiter:     NewRateLimiter(4, 500*time.Millisecond),
		concurrency: 3,
		now:         time.Now,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchCompanies returns records for every ticker that could be fetched, in
// ticker order. It fails only when no ticker succeeded.
func (p *YahooQuoteProvider) FetchCompanies(ctx context.Context, tickers []string) ([]domain.CompanyRecord, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.fetch-companies")
	defer span.End()

	results := make([]*domain.CompanyRecord, len(tickers))
	errs := make([]error, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, ticker := range tickers {
		g.Go(func() error {
			rec, err := p.fetchCompany(gctx, ticker)
			if err != nil {
				log.Printf("yahoo: skipping %s: %v", ticker, err)
				errs[i] = err
				return nil
			}
			results[i] = rec
			return nil
		})
	}
	_ = g.Wait()

	records := make([]domain.CompanyRecord, 0, len(tickers))
	for _, r := range results {
		if r != nil {
			records = append(records, *r)
		}
	}
	span.SetAttributes(attribute.Int("companies", len(records)))

	if len(records) == 0 && len(tickers) > 0 {
		return nil, fmt.Errorf("fetch companies: all %d tickers failed: %w", len(tickers), errors.Join(errs...))
	}
	return records, nil
}

// FetchIndices quotes the tracked indices against their previous close. Like
// FetchCompanies it fails only when no symbol succeeded.
func (p *YahooQuoteProvider) FetchIndices(ctx context.Context, symbols []string) ([]domain.StockIndex, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.fetch-indices")
	defer span.End()

	results := make([]*domain.StockIndex, len(symbols))
	errs := make([]error, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, symbol := range symbols {
		g.Go(func() error {
			q, err := p.fetchIndex(gctx, symbol)
			if err != nil {
				log.Printf("yahoo: skipping index %s: %v", symbol, err)
				errs[i] = err
				return nil
			}
			results[i] = q
			return nil
		})
	}
	_ = g.Wait()

	quotes := make([]domain.StockIndex, 0, len(symbols))
	for _, q := range results {
		if q != nil {
			quotes = append(quotes, *q)
		}
	}
	span.SetAttributes(attribute.Int("indices", len(quotes)))

	if len(quotes) == 0 && len(symbols) > 0 {
		return nil, fmt.Errorf("fetch indices: all %d symbols failed: %w", len(symbols), errors.Join(errs...))
	}
	return quotes, nil
}

func (p *YahooQuoteProvider) fetchIndex(ctx context.Context, symbol string) (*domain.StockIndex, error) {
	chartSymbol, ok := yahooIndexSymbols[symbol]
	if !ok {
		return nil, fmt.Errorf("untracked index %q", symbol)
	}
	chart, err := p.chart(ctx, chartSymbol, map[string]string{"interval": "1d", "range": "1d"})
	if err != nil {
		return nil, err
	}
	meta := chart.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("%s: no market price", symbol)
	}
	return &domain.StockIndex{
		Name:   domain.IndexNames[symbol],
		Symbol: symbol,
		Price:  meta.RegularMarketPrice,
		Change: PercentChange(meta.RegularMarketPrice, meta.ChartPreviousClose),
	}, nil
}

func (p *YahooQuoteProvider) fetchCompany(ctx context.Context, ticker string) (*domain.CompanyRecord, error) {
	current, err := p.chart(ctx, ticker, map[string]string{"interval": "1d", "range": "5d"})
	if err != nil {
		return nil, err
	}
	price := current.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return nil, fmt.Errorf("%s: no market price", ticker)
	}

	now := p.now()
	startOfYear := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	var jan1 float64
	ytd, err := p.chart(ctx, ticker, map[string]string{
		"interval": "1d",
		"period1":  strconv.FormatInt(startOfYear.Unix(), 10),
		"period2":  strconv.FormatInt(now.Unix(), 10),
	})
	if err != nil {
		log.Printf("yahoo: %s year-start price unavailable: %v", ticker, err)
	} else {
		jan1 = firstClose(ytd)
	}

	name := domain.CompanyNames[ticker]
	if name == "" {
		name = ticker
	}
	return &domain.CompanyRecord{
		Name:         name,
		Ticker:       ticker,
		CurrentPrice: price,
		PriceJan1:    jan1,
		PriceChange:  YTDChange(price, jan1),
		Revenue:      quotePlaceholder,
		EarningsDate: quotePlaceholder,
	}, nil
}

func (p *YahooQuoteProvider) chart(ctx context.Context, ticker string, params map[string]string) (*chartResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetPathParam("symbol", ticker).
		Get("/v8/finance/chart/{symbol}")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("yahoo chart API error %d: %s", resp.StatusCode(), resp.String())
	}

	var out chartResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("parse chart for %s: %w", ticker, err)
	}
	if out.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error for %s: %s %s", ticker, out.Chart.Error.Code, out.Chart.Error.Description)
	}
	if len(out.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result for %s", ticker)
	}
	return &out, nil
}

// firstClose is the first non-null close of the range, i.e. the first trading
// day of the year.
func firstClose(c *chartResponse) float64 {
	res := c.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return 0
	}
	for _, v := range res.Indicators.Quote[0].Close {
		if v != nil && *v > 0 {
			return *v
		}
	}
	return 0
}

// YTDChange is the percentage change from jan1 to current, rounded to 2
// decimals; 0 when the year-start price is unknown.
func YTDChange(current, jan1 float64) float64 {
	return PercentChange(current, jan1)
}

// PercentChange rounds (current-base)/base*100 to 2 decimals; 0 when base is
// not positive.
func PercentChange(current, base float64) float64 {
	if base <= 0 {
		return 0
	}
	cur := decimal.NewFromFloat(current)
	b := decimal.NewFromFloat(base)
	return cur.Sub(b).Div(b).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}
