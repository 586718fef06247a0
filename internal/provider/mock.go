package provider

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"macrotrend-snapshot/internal/domain"
)

// MockMonths is the number of monthly points the generator produces.
const MockMonths = 5

// Baselines the generator jitters around.
var mockBaselines = map[domain.Indicator]float64{
	domain.IndicatorInflation:         2.7,
	domain.IndicatorInterest:          4.75,
	domain.IndicatorUnemployment:      3.9,
	domain.IndicatorConsumerSentiment: 65.5,
	domain.IndicatorStockIndex:        6100,
}

// MockGenerator builds a plausible macro series ending at the current month.
type MockGenerator struct {
	schema domain.Schema
	now    func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockGenerator uses a time-seeded source. Pass a seeded *rand.Rand via
// WithRand for reproducible output.
func NewMockGenerator(schema domain.Schema) *MockGenerator {
	seed := uint64(time.Now().UnixNano())
	return &MockGenerator{
		schema: schema,
		now:    time.Now,
		rng:    rand.New(rand.NewPCG(seed, seed>>1)),
	}
}

func (g *MockGenerator) WithRand(r *rand.Rand) *MockGenerator {
	g.rng = r
	return g
}

func (g *MockGenerator) WithClock(now func() time.Time) *MockGenerator {
	g.now = now
	return g
}

// MacroSeries returns MockMonths snapshots, oldest first, the last one being
// the current calendar month.
func (g *MockGenerator) MacroSeries() []domain.MonthlySnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	series := make([]domain.MonthlySnapshot, MockMonths)
	for i := 0; i < MockMonths; i++ {
		month := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		values := make(map[domain.Indicator]float64, len(g.schema.Indicators))
		for _, ind := range g.schema.Indicators {
			values[ind] = mockValue(ind, g.jitter())
		}
		series[MockMonths-1-i] = domain.MonthlySnapshot{
			Label:  month.Format(domain.LabelLayout),
			Values: values,
		}
	}
	return series
}

// jitter is uniform in [-0.1, 0.1).
func (g *MockGenerator) jitter() float64 {
	return g.rng.Float64()*0.2 - 0.1
}

func mockValue(ind domain.Indicator, j float64) float64 {
	base := mockBaselines[ind]
	switch ind {
	case domain.IndicatorInterest:
		return base + j*2
	case domain.IndicatorConsumerSentiment:
		return base + j*5
	case domain.IndicatorStockIndex:
		return base + math.Floor(j*500)
	default:
		return base + j
	}
}

// Companies returns the static mock company table.
func (g *MockGenerator) Companies() []domain.CompanyRecord {
	return MockCompanies()
}

// MockCompanies is the fixed table shown when no live company data is available.
func MockCompanies() []domain.CompanyRecord {
	return []domain.CompanyRecord{
		{Name: "Amazon (AWS)", Ticker: "AMZN", CurrentPrice: 225.94, PriceJan1: 219.39, PriceChange: 2.99, Revenue: "$28.8B", RevenueGrowth: 19.1, EarningsDate: "Feb 6, 2025", PERatio: 48.4},
		{Name: "Google Cloud", Ticker: "GOOGL", CurrentPrice: 196.87, PriceJan1: 189.3, PriceChange: 4.0, Revenue: "$12.0B", RevenueGrowth: 30.1, EarningsDate: "Feb 4, 2025", PERatio: 26.1},
		{Name: "ServiceNow", Ticker: "NOW", CurrentPrice: 1084.37, PriceJan1: 1060.12, PriceChange: 2.29, Revenue: "$2.8B", RevenueGrowth: 21.9, EarningsDate: "Jan 29, 2025", PERatio: 164.5},
		{Name: "Snowflake", Ticker: "SNOW", CurrentPrice: 176.33, PriceJan1: 154.41, PriceChange: 14.2, Revenue: "$0.9B", RevenueGrowth: 28.3, EarningsDate: "Feb 26, 2025", PERatio: 0},
		{Name: "Microsoft", Ticker: "MSFT", CurrentPrice: 424.56, PriceJan1: 421.5, PriceChange: 0.73, Revenue: "$24.1B", RevenueGrowth: 33.0, EarningsDate: "Jan 29, 2025", PERatio: 35.2},
		{Name: "Palo Alto Networks", Ticker: "PANW", CurrentPrice: 184.12, PriceJan1: 181.96, PriceChange: 1.19, Revenue: "$2.1B", RevenueGrowth: 14.3, EarningsDate: "Feb 13, 2025", PERatio: 47.3},
		{Name: "CrowdStrike", Ticker: "CRWD", CurrentPrice: 366.79, PriceJan1: 342.16, PriceChange: 7.2, Revenue: "$1.0B", RevenueGrowth: 28.5, EarningsDate: "Mar 4, 2025", PERatio: 0},
	}
}

// Indices returns the static index table.
func (g *MockGenerator) Indices() []domain.StockIndex {
	return MockIndices()
}

// MockIndices is the fixed index table shown when no live quotes are available.
func MockIndices() []domain.StockIndex {
	return []domain.StockIndex{
		{Name: "S&P 500", Symbol: "SPX", Price: 6100, Change: 1.2},
		{Name: "Dow Jones", Symbol: "DJI", Price: 41500, Change: 0.8},
		{Name: "NASDAQ", Symbol: "IXIC", Price: 19200, Change: 1.5},
		{Name: "Russell 2000", Symbol: "RUT", Price: 2300, Change: -0.4},
	}
}

// StaticMacroSeries is the last-resort macro table for a schema.
func StaticMacroSeries(schema domain.Schema) []domain.MonthlySnapshot {
	rows := []struct {
		label        string
		inflation    float64
		interest     float64
		unemployment float64
		index        float64
		sentiment    float64
	}{
		{"Jul 2024", 3.1, 5.5, 4.3, 5600, 66.4},
		{"Aug 2024", 3.0, 5.5, 4.2, 5650, 67.9},
		{"Sep 2024", 2.9, 5.25, 4.1, 5800, 70.1},
		{"Oct 2024", 2.8, 5.0, 4.0, 5900, 70.5},
		{"Nov 2024", 2.7, 4.75, 3.9, 6100, 71.8},
	}
	series := make([]domain.MonthlySnapshot, 0, len(rows))
	for _, r := range rows {
		all := map[domain.Indicator]float64{
			domain.IndicatorInflation:         r.inflation,
			domain.IndicatorInterest:          r.interest,
			domain.IndicatorUnemployment:      r.unemployment,
			domain.IndicatorStockIndex:        r.index,
			domain.IndicatorConsumerSentiment: r.sentiment,
		}
		values := make(map[domain.Indicator]float64, len(schema.Indicators))
		for _, ind := range schema.Indicators {
			values[ind] = all[ind]
		}
		series = append(series, domain.MonthlySnapshot{Label: r.label, Values: values})
	}
	return series
}
