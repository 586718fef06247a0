package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Indicator names a tracked macro indicator. The string value is also the JSON key.
type Indicator string

const (
	IndicatorInflation         Indicator = "inflation"
	IndicatorInterest          Indicator = "interest"
	IndicatorUnemployment      Indicator = "unemployment"
	IndicatorStockIndex        Indicator = "stockIndex"
	IndicatorConsumerSentiment Indicator = "consumerSentiment"
)

// labelKey is the JSON key carrying the month label.
const labelKey = "date"

// LabelLayout formats month labels ("Nov 2024").
const LabelLayout = "Jan 2006"

// MonthlySnapshot is one calendar month of macro indicators.
type MonthlySnapshot struct {
	Label  string
	Values map[Indicator]float64
}

// NewMonthlySnapshot copies values so the snapshot does not alias the caller's map.
func NewMonthlySnapshot(label string, values map[Indicator]float64) MonthlySnapshot {
	cp := make(map[Indicator]float64, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return MonthlySnapshot{Label: label, Values: cp}
}

// Value returns the indicator value and whether it is present.
func (m MonthlySnapshot) Value(ind Indicator) (float64, bool) {
	v, ok := m.Values[ind]
	return v, ok
}

// Month parses the label into the first day of its month (UTC).
func (m MonthlySnapshot) Month() (time.Time, error) {
	return time.Parse(LabelLayout, m.Label)
}

func (m MonthlySnapshot) clone() MonthlySnapshot {
	return NewMonthlySnapshot(m.Label, m.Values)
}

// MarshalJSON writes the flat wire shape: {"date":"Nov 2024","inflation":2.7,...}.
func (m MonthlySnapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Values)+1)
	out[labelKey] = m.Label
	for k, v := range m.Values {
		out[string(k)] = v
	}
	return json.Marshal(out)
}

func (m *MonthlySnapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Label = ""
	m.Values = make(map[Indicator]float64, len(raw))
	for key, msg := range raw {
		if key == labelKey {
			if err := json.Unmarshal(msg, &m.Label); err != nil {
				return fmt.Errorf("parse %s: %w", labelKey, err)
			}
			continue
		}
		if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
			return fmt.Errorf("parse %s: null value", key)
		}
		var v float64
		if err := json.Unmarshal(msg, &v); err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		m.Values[Indicator(key)] = v
	}
	return nil
}

// Schema is the indicator set chosen at configuration time. Exactly one of the
// two deployment variants is active; a series never mixes them.
type Schema struct {
	Name       string
	Indicators []Indicator
	// Relative is the indicator whose trend change is a percentage of the previous value.
	Relative Indicator
}

const (
	SchemaMarketIndex       = "market_index"
	SchemaConsumerSentiment = "consumer_sentiment"
)

var (
	MarketIndexSchema = Schema{
		Name:       SchemaMarketIndex,
		Indicators: []Indicator{IndicatorInflation, IndicatorInterest, IndicatorUnemployment, IndicatorStockIndex},
		Relative:   IndicatorStockIndex,
	}
	ConsumerSentimentSchema = Schema{
		Name:       SchemaConsumerSentiment,
		Indicators: []Indicator{IndicatorInflation, IndicatorInterest, IndicatorUnemployment, IndicatorConsumerSentiment},
		Relative:   IndicatorConsumerSentiment,
	}
)

// SchemaByName resolves a configured schema name.
func SchemaByName(name string) (Schema, error) {
	switch name {
	case SchemaMarketIndex:
		return MarketIndexSchema, nil
	case SchemaConsumerSentiment:
		return ConsumerSentimentSchema, nil
	default:
		return Schema{}, fmt.Errorf("unknown indicator schema: %q", name)
	}
}

// Has reports whether ind belongs to the schema.
func (s Schema) Has(ind Indicator) bool {
	for _, i := range s.Indicators {
		if i == ind {
			return true
		}
	}
	return false
}

// IsRelative reports whether ind uses percentage change.
func (s Schema) IsRelative(ind Indicator) bool {
	return ind == s.Relative
}

// Validate checks that every snapshot carries exactly the schema's indicators.
func (s Schema) Validate(series []MonthlySnapshot) error {
	for i, snap := range series {
		for _, ind := range s.Indicators {
			if _, ok := snap.Values[ind]; !ok {
				return fmt.Errorf("snapshot %d (%s): missing %s", i, snap.Label, ind)
			}
		}
		if len(snap.Values) != len(s.Indicators) {
			extra := make([]string, 0)
			for k := range snap.Values {
				if !s.Has(k) {
					extra = append(extra, string(k))
				}
			}
			sort.Strings(extra)
			return fmt.Errorf("snapshot %d (%s): indicators %v not in schema %s", i, snap.Label, extra, s.Name)
		}
	}
	return nil
}

// MinSeriesLength is the shortest series that supports a trend.
const MinSeriesLength = 2
