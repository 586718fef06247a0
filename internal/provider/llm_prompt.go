package provider

import (
	"fmt"
	"strings"

	"macrotrend-snapshot/internal/domain"
)

const llmSystemPrompt = `You are an economic data analyst assistant. Extract accurate economic data from the listed sources and format it precisely as requested. Never fabricate values you cannot find; omit the company instead.`

// indicatorSources lists where each indicator is read from.
var indicatorSources = map[domain.Indicator]string{
	domain.IndicatorInflation:         "https://tradingeconomics.com/united-states/inflation-cpi",
	domain.IndicatorInterest:          "https://tradingeconomics.com/united-states/interest-rate",
	domain.IndicatorUnemployment:      "https://www.bls.gov/cps/",
	domain.IndicatorStockIndex:        "https://finance.yahoo.com/markets/world-indices/",
	domain.IndicatorConsumerSentiment: "https://www.sca.isr.umich.edu/",
}

var indicatorDescriptions = map[domain.Indicator]string{
	domain.IndicatorInflation:         "US inflation rate (CPI, year over year, percent)",
	domain.IndicatorInterest:          "Federal Reserve interest rate (percent)",
	domain.IndicatorUnemployment:      "US unemployment rate (percent)",
	domain.IndicatorStockIndex:        "S&P 500 index level",
	domain.IndicatorConsumerSentiment: "University of Michigan consumer sentiment index",
}

// BuildUserPrompt asks for MockMonths monthly snapshots of the schema's
// indicators plus one record per tracked ticker, as a single JSON object.
func BuildUserPrompt(schema domain.Schema, tickers []string) string {
	var sb strings.Builder
	sb.WriteString("I need the latest economic data from the United States.\n\n")
	sb.WriteString("Extract these indicators from the listed sources:\n")
	for i, ind := range schema.Indicators {
		sb.WriteString(fmt.Sprintf("%d. %s (key %q) from %s\n", i+1, indicatorDescriptions[ind], ind, indicatorSources[ind]))
	}
	sb.WriteString(fmt.Sprintf("\nProvide %d monthly data points ending with the latest month, ordered from oldest to newest, each labelled \"Mon YYYY\".\n", MockMonths))

	sb.WriteString("\nAlso provide the current financial snapshot for these companies: ")
	names := make([]string, 0, len(tickers))
	for _, t := range tickers {
		names = append(names, fmt.Sprintf("%s (%s)", domain.CompanyNames[t], t))
	}
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString(".\n\nAnd the latest price and session change in percent for these indices: ")
	indices := make([]string, 0, len(domain.TrackedIndices))
	for _, sym := range domain.TrackedIndices {
		indices = append(indices, fmt.Sprintf("%s (%s)", domain.IndexNames[sym], sym))
	}
	sb.WriteString(strings.Join(indices, ", "))
	sb.WriteString(".\n\nRespond with only a JSON object of this exact structure:\n{\n  \"macroData\": [\n    {\"date\": \"Mon YYYY\"")
	for _, ind := range schema.Indicators {
		sb.WriteString(fmt.Sprintf(", %q: number", ind))
	}
	sb.WriteString("}\n  ],\n")
	sb.WriteString(`  "techCompanies": [
    {"name": string, "ticker": string, "currentPrice": number, "priceJan1": number, "priceChange": number,
     "revenue": string, "revenueGrowth": number, "earningsDate": string, "peRatio": number}
  ],
  "stockData": [
    {"name": string, "symbol": string, "price": number, "change": number}
  ]
}
Use peRatio 0 for unprofitable companies. priceChange is the year-to-date percentage change.`)
	return sb.String()
}
