package trend

import (
	"math"
	"testing"

	"macrotrend-snapshot/internal/domain"
)

const tolerance = 1e-9

func snap(label string, inflation, interest, unemployment, index float64) domain.MonthlySnapshot {
	return domain.NewMonthlySnapshot(label, map[domain.Indicator]float64{
		domain.IndicatorInflation:    inflation,
		domain.IndicatorInterest:     interest,
		domain.IndicatorUnemployment: unemployment,
		domain.IndicatorStockIndex:   index,
	})
}

func TestCalculateUnavailableForShortSeries(t *testing.T) {
	if got := Calculate(domain.MarketIndexSchema, nil); got != nil {
		t.Fatalf("expected nil for empty series, got %+v", got)
	}
	one := []domain.MonthlySnapshot{snap("Nov 2024", 2.7, 4.75, 3.9, 6100)}
	got := Calculate(domain.MarketIndexSchema, one)
	if Available(got) {
		t.Fatalf("expected unavailable for single point, got %+v", got)
	}
}

func TestCalculateAbsoluteDelta(t *testing.T) {
	series := []domain.MonthlySnapshot{
		snap("Oct 2024", 2.9, 5.0, 4.0, 6000),
		snap("Nov 2024", 2.7, 4.75, 3.9, 6100),
	}
	trends := Calculate(domain.MarketIndexSchema, series)

	infl := trends[domain.IndicatorInflation]
	if infl.Current != 2.7 || infl.Previous != 2.9 || infl.Relative {
		t.Fatalf("unexpected inflation entry: %+v", infl)
	}
	if math.Abs(*infl.Change-(2.7-2.9)) > tolerance || math.Abs(*infl.Change-(-0.2)) > 1e-6 {
		t.Fatalf("expected -0.2, got %v", *infl.Change)
	}
	if got := *trends[domain.IndicatorInterest].Change; math.Abs(got-(-0.25)) > tolerance {
		t.Fatalf("expected interest change -0.25, got %v", got)
	}
	if got := *trends[domain.IndicatorUnemployment].Change; math.Abs(got-(3.9-4.0)) > tolerance {
		t.Fatalf("unexpected unemployment change %v", got)
	}
}

func TestCalculatePercentageForIndex(t *testing.T) {
	series := []domain.MonthlySnapshot{
		snap("Oct 2024", 2.9, 5.0, 4.0, 6000),
		snap("Nov 2024", 2.7, 4.75, 3.9, 6100),
	}
	e := Calculate(domain.MarketIndexSchema, series)[domain.IndicatorStockIndex]
	want := ((6100.0 - 6000.0) / 6000.0) * 100
	if !e.Relative || e.Change == nil || math.Abs(*e.Change-want) > tolerance {
		t.Fatalf("expected %v, got %+v", want, e)
	}
	if math.Abs(*e.Change-1.6666666666) > 1e-6 {
		t.Fatalf("expected ~1.6667, got %v", *e.Change)
	}
}

func TestCalculateUsesLastTwoPointsOnly(t *testing.T) {
	series := []domain.MonthlySnapshot{
		snap("Jul 2024", 100, 100, 100, 1),
		snap("Aug 2024", 3.0, 5.5, 4.2, 5650),
		snap("Sep 2024", 2.9, 5.25, 4.1, 5800),
	}
	e := Calculate(domain.MarketIndexSchema, series)[domain.IndicatorInflation]
	if e.Previous != 3.0 || e.Current != 2.9 {
		t.Fatalf("expected last two points, got %+v", e)
	}
}

func TestCalculateSentimentSchema(t *testing.T) {
	mk := func(label string, sentiment float64) domain.MonthlySnapshot {
		return domain.NewMonthlySnapshot(label, map[domain.Indicator]float64{
			domain.IndicatorInflation:         2.7,
			domain.IndicatorInterest:          4.75,
			domain.IndicatorUnemployment:      3.9,
			domain.IndicatorConsumerSentiment: sentiment,
		})
	}
	trends := Calculate(domain.ConsumerSentimentSchema, []domain.MonthlySnapshot{mk("Oct 2024", 64), mk("Nov 2024", 65.5)})
	e := trends[domain.IndicatorConsumerSentiment]
	want := (65.5 - 64) / 64 * 100
	if !e.Relative || math.Abs(*e.Change-want) > tolerance {
		t.Fatalf("expected %v, got %+v", want, e)
	}
	if _, ok := trends[domain.IndicatorStockIndex]; ok {
		t.Fatal("sentiment schema must not produce a stock index entry")
	}
	if len(trends) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(trends))
	}
}

func TestCalculateZeroPreviousRelative(t *testing.T) {
	series := []domain.MonthlySnapshot{
		snap("Oct 2024", 0, 0, 0, 0),
		snap("Nov 2024", 2.7, 4.75, 3.9, 6100),
	}
	trends := Calculate(domain.MarketIndexSchema, series)
	if trends[domain.IndicatorStockIndex].Change != nil {
		t.Fatalf("expected undefined change, got %v", *trends[domain.IndicatorStockIndex].Change)
	}
	if c := trends[domain.IndicatorInflation].Change; c == nil || *c != 2.7 {
		t.Fatalf("absolute change must still be defined, got %v", c)
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	series := []domain.MonthlySnapshot{
		snap("Oct 2024", 2.9, 5.0, 4.0, 6000),
		snap("Nov 2024", 2.7, 4.75, 3.9, 6100),
	}
	a := Calculate(domain.MarketIndexSchema, series)
	b := Calculate(domain.MarketIndexSchema, series)
	for ind, ea := range a {
		eb := b[ind]
		if *ea.Change != *eb.Change || ea.Current != eb.Current {
			t.Fatalf("non-deterministic result for %s", ind)
		}
	}
	if series[1].Values[domain.IndicatorInflation] != 2.7 {
		t.Fatal("input mutated")
	}
}

func TestFormatting(t *testing.T) {
	if got := FormatPercent(2.74); got != "2.7%" {
		t.Fatalf("unexpected percent: %s", got)
	}
	change := -0.2
	if got := FormatChange(domain.TrendEntry{Change: &change}); got != "-0.20" {
		t.Fatalf("unexpected change: %s", got)
	}
	pct := 1.6666
	if got := FormatChange(domain.TrendEntry{Change: &pct, Relative: true}); got != "+1.67%" {
		t.Fatalf("unexpected relative change: %s", got)
	}
	if got := FormatChange(domain.TrendEntry{Relative: true}); got != "n/a" {
		t.Fatalf("unexpected undefined change: %s", got)
	}
}
