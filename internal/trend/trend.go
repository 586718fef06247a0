// Package trend derives current-vs-previous month trends from a macro series.
package trend

import (
	"fmt"

	"macrotrend-snapshot/internal/domain"
)

// Calculate returns one entry per schema indicator computed from the last two
// snapshots of series (oldest first). It returns nil when the series is too
// short to have a previous month. Indicators missing from either snapshot get
// no entry.
func Calculate(schema domain.Schema, series []domain.MonthlySnapshot) domain.Trends {
	if len(series) < domain.MinSeriesLength {
		return nil
	}

	latest := series[len(series)-1]
	previous := series[len(series)-2]

	trends := make(domain.Trends, len(schema.Indicators))
	for _, ind := range schema.Indicators {
		cur, ok := latest.Value(ind)
		if !ok {
			continue
		}
		prev, ok := previous.Value(ind)
		if !ok {
			continue
		}
		trends[ind] = entry(cur, prev, schema.IsRelative(ind))
	}
	return trends
}

func entry(cur, prev float64, relative bool) domain.TrendEntry {
	e := domain.TrendEntry{Current: cur, Previous: prev, Relative: relative}
	if !relative {
		change := cur - prev
		e.Change = &change
		return e
	}
	// Percentage change is undefined against a zero base.
	if prev == 0 {
		return e
	}
	change := ((cur - prev) / prev) * 100
	e.Change = &change
	return e
}

// Available reports whether trends could be computed.
func Available(t domain.Trends) bool {
	return t != nil
}

// FormatPercent renders a rate the way the dashboard shows it ("2.7%").
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// FormatChange renders an entry's change with sign, as a percentage for
// relative indicators.
func FormatChange(e domain.TrendEntry) string {
	if e.Change == nil {
		return "n/a"
	}
	if e.Relative {
		return fmt.Sprintf("%+.2f%%", *e.Change)
	}
	return fmt.Sprintf("%+.2f", *e.Change)
}
