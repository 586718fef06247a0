package bot

import (
	"strings"
	"testing"

	"macrotrend-snapshot/internal/domain"
	"macrotrend-snapshot/internal/service"
	"macrotrend-snapshot/internal/trend"
)

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	StartTelegramBot(nil, domain.MarketIndexSchema, "")
}

func testDashboard() *service.Dashboard {
	macro := []domain.MonthlySnapshot{
		domain.NewMonthlySnapshot("Oct 2024", map[domain.Indicator]float64{
			domain.IndicatorInflation: 2.9, domain.IndicatorInterest: 4.9,
			domain.IndicatorUnemployment: 4.1, domain.IndicatorStockIndex: 6000,
		}),
		domain.NewMonthlySnapshot("Nov 2024", map[domain.Indicator]float64{
			domain.IndicatorInflation: 2.7, domain.IndicatorInterest: 4.75,
			domain.IndicatorUnemployment: 4.0, domain.IndicatorStockIndex: 6100,
		}),
	}
	return &service.Dashboard{
		FetchResult: domain.FetchResult{
			MacroData: macro,
			TechCompanies: []domain.CompanyRecord{
				{Ticker: "MSFT", CurrentPrice: 510.1, PriceChange: 21.04, PERatio: 37.5},
				{Ticker: "SNOW", CurrentPrice: 168.2, PriceChange: -3.5},
			},
			StockIndices: []domain.StockIndex{
				{Name: "S&P 500", Symbol: "SPX", Price: 6100, Change: 1.2},
				{Name: "Russell 2000", Symbol: "RUT", Price: 2300, Change: -0.4},
			},
			MacroProvenance:   domain.ProvenanceMock,
			CompanyProvenance: domain.ProvenanceReal,
			IndexProvenance:   domain.ProvenanceMock,
		},
		Trends: trend.Calculate(domain.MarketIndexSchema, macro),
	}
}

func TestFormatMacro(t *testing.T) {
	msg := FormatMacro(testDashboard(), domain.MarketIndexSchema)
	for _, want := range []string{
		"Macro indicators (Nov 2024) [sample data]",
		"Inflation: 2.7% (-0.20)",
		"S&P 500: 6100 (+1.67%)",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in:\n%s", want, msg)
		}
	}
}

func TestFormatMacroEmpty(t *testing.T) {
	if got := FormatMacro(&service.Dashboard{}, domain.MarketIndexSchema); got != "No macro data available" {
		t.Fatalf("unexpected message: %s", got)
	}
}

func TestFormatCompanies(t *testing.T) {
	msg := FormatCompanies(testDashboard())
	lines := strings.Split(msg, "\n")
	if len(lines) != 3 || lines[0] != "Tech companies" {
		t.Fatalf("unexpected message:\n%s", msg)
	}
	if lines[1] != "MSFT $510.10 YTD +21.0% P/E 37.5" {
		t.Fatalf("unexpected MSFT line: %s", lines[1])
	}
	if lines[2] != "SNOW $168.20 YTD -3.5% P/E n/a" {
		t.Fatalf("unexpected SNOW line: %s", lines[2])
	}
}

func TestFormatIndices(t *testing.T) {
	msg := FormatIndices(testDashboard())
	lines := strings.Split(msg, "\n")
	if len(lines) != 3 || lines[0] != "Stock indices [sample data]" {
		t.Fatalf("unexpected message:\n%s", msg)
	}
	if lines[1] != "S&P 500 (SPX) 6100.00 +1.20%" {
		t.Fatalf("unexpected SPX line: %s", lines[1])
	}
	if lines[2] != "Russell 2000 (RUT) 2300.00 -0.40%" {
		t.Fatalf("unexpected RUT line: %s", lines[2])
	}
}

func TestFormatIndicesEmpty(t *testing.T) {
	if got := FormatIndices(&service.Dashboard{}); got != "No index data available" {
		t.Fatalf("unexpected message: %s", got)
	}
}
