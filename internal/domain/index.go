package domain

import (
	"fmt"
	"strings"
)

// StockIndex is one major market index quote.
type StockIndex struct {
	Name   string  `json:"name"`
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	// Change is the session change in percent.
	Change float64 `json:"change"`
}

// TrackedIndices lists the index symbols in display order.
var TrackedIndices = []string{"SPX", "DJI", "IXIC", "RUT"}

// IndexNames maps tracked index symbols to display names.
var IndexNames = map[string]string{
	"SPX":  "S&P 500",
	"DJI":  "Dow Jones",
	"IXIC": "NASDAQ",
	"RUT":  "Russell 2000",
}

func (s StockIndex) Validate() error {
	if _, ok := IndexNames[s.Symbol]; !ok {
		return fmt.Errorf("untracked index: %q", s.Symbol)
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%s: missing name", s.Symbol)
	}
	if s.Price <= 0 {
		return fmt.Errorf("%s: missing price", s.Symbol)
	}
	return nil
}

// SortIndices orders quotes by TrackedIndices; unknown symbols are dropped.
func SortIndices(quotes []StockIndex) []StockIndex {
	bySymbol := make(map[string]StockIndex, len(quotes))
	for _, q := range quotes {
		bySymbol[q.Symbol] = q
	}
	out := make([]StockIndex, 0, len(bySymbol))
	for _, s := range TrackedIndices {
		if q, ok := bySymbol[s]; ok {
			out = append(out, q)
		}
	}
	return out
}
