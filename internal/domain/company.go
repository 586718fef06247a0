package domain

import (
	"fmt"
	"strings"
)

// CompanyRecord is one tracked company's financial snapshot.
type CompanyRecord struct {
	Name          string  `json:"name"`
	Ticker        string  `json:"ticker"`
	CurrentPrice  float64 `json:"currentPrice"`
	PriceJan1     float64 `json:"priceJan1"`
	PriceChange   float64 `json:"priceChange"`
	Revenue       string  `json:"revenue"`
	RevenueGrowth float64 `json:"revenueGrowth"`
	EarningsDate  string  `json:"earningsDate"`
	// PERatio of 0 means not applicable (unprofitable), not a real zero ratio.
	PERatio float64 `json:"peRatio"`
}

// HasPERatio reports whether the P/E ratio is meaningful.
func (c CompanyRecord) HasPERatio() bool {
	return c.PERatio > 0
}

// Validate rejects partially populated records.
func (c CompanyRecord) Validate() error {
	if _, ok := CompanyNames[c.Ticker]; !ok {
		return fmt.Errorf("untracked ticker: %q", c.Ticker)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%s: missing name", c.Ticker)
	}
	if c.CurrentPrice <= 0 {
		return fmt.Errorf("%s: missing current price", c.Ticker)
	}
	if strings.TrimSpace(c.Revenue) == "" {
		return fmt.Errorf("%s: missing revenue", c.Ticker)
	}
	if strings.TrimSpace(c.EarningsDate) == "" {
		return fmt.Errorf("%s: missing earnings date", c.Ticker)
	}
	if c.PERatio < 0 {
		return fmt.Errorf("%s: negative P/E ratio", c.Ticker)
	}
	return nil
}

// TrackedTickers lists the tracked company symbols in display order.
var TrackedTickers = []string{"AMZN", "GOOGL", "NOW", "SNOW", "MSFT", "PANW", "CRWD"}

// CompanyNames maps tracked tickers to display names.
var CompanyNames = map[string]string{
	"AMZN":  "Amazon (AWS)",
	"GOOGL": "Google Cloud",
	"NOW":   "ServiceNow",
	"SNOW":  "Snowflake",
	"MSFT":  "Microsoft",
	"PANW":  "Palo Alto Networks",
	"CRWD":  "CrowdStrike",
}

// SortCompanies orders records by TrackedTickers; unknown tickers are dropped.
func SortCompanies(records []CompanyRecord) []CompanyRecord {
	byTicker := make(map[string]CompanyRecord, len(records))
	for _, r := range records {
		byTicker[r.Ticker] = r
	}
	out := make([]CompanyRecord, 0, len(byTicker))
	for _, t := range TrackedTickers {
		if r, ok := byTicker[t]; ok {
			out = append(out, r)
		}
	}
	return out
}
