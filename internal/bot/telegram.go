package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"macrotrend-snapshot/internal/domain"
	"macrotrend-snapshot/internal/service"
	"macrotrend-snapshot/internal/trend"

	tele "gopkg.in/telebot.v3"
)

const commandTimeout = 90 * time.Second

type DashboardSnapshotter interface {
	Snapshot(ctx context.Context, credential string) (*service.Dashboard, error)
}

var indicatorLabels = map[domain.Indicator]string{
	domain.IndicatorInflation:         "Inflation",
	domain.IndicatorInterest:          "Interest rate",
	domain.IndicatorUnemployment:      "Unemployment",
	domain.IndicatorStockIndex:        "S&P 500",
	domain.IndicatorConsumerSentiment: "Consumer sentiment",
}

// StartTelegramBot serves the dashboard over Telegram using the server's
// credential. It is a no-op without TELEGRAM_BOT_TOKEN.
func StartTelegramBot(dashboard DashboardSnapshotter, schema domain.Schema, credential string) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Printf("failed to create Telegram bot: %v", err)
		return
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/macro", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		d, err := dashboard.Snapshot(ctx, credential)
		if err != nil {
			return c.Send(fmt.Sprintf("Error loading dashboard: %v", err))
		}
		return c.Send(FormatMacro(d, schema))
	})

	b.Handle("/companies", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		d, err := dashboard.Snapshot(ctx, credential)
		if err != nil {
			return c.Send(fmt.Sprintf("Error loading dashboard: %v", err))
		}
		return c.Send(FormatCompanies(d))
	})

	b.Handle("/indices", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		d, err := dashboard.Snapshot(ctx, credential)
		if err != nil {
			return c.Send(fmt.Sprintf("Error loading dashboard: %v", err))
		}
		return c.Send(FormatIndices(d))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

// FormatMacro renders the latest month with month-over-month changes.
func FormatMacro(d *service.Dashboard, schema domain.Schema) string {
	if len(d.MacroData) == 0 {
		return "No macro data available"
	}
	latest := d.MacroData[len(d.MacroData)-1]

	var sb strings.Builder
	fmt.Fprintf(&sb, "Macro indicators (%s)%s\n", latest.Label, provenanceTag(d.MacroProvenance))
	for _, ind := range schema.Indicators {
		v, ok := latest.Value(ind)
		if !ok {
			continue
		}
		line := fmt.Sprintf("%s: %s", indicatorLabels[ind], formatIndicator(ind, v))
		if e, ok := d.Trends[ind]; ok {
			line += fmt.Sprintf(" (%s)", trend.FormatChange(e))
		}
		sb.WriteString(line + "\n")
	}
	if d.HasError() {
		fmt.Fprintf(&sb, "Note: %s\n", d.ErrorType)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatCompanies renders one line per company: ticker, price, YTD and P/E.
func FormatCompanies(d *service.Dashboard) string {
	if len(d.TechCompanies) == 0 {
		return "No company data available"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tech companies%s\n", provenanceTag(d.CompanyProvenance))
	for _, c := range d.TechCompanies {
		pe := "n/a"
		if c.HasPERatio() {
			pe = fmt.Sprintf("%.1f", c.PERatio)
		}
		fmt.Fprintf(&sb, "%s $%.2f YTD %+.1f%% P/E %s\n", c.Ticker, c.CurrentPrice, c.PriceChange, pe)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatIndices renders one line per stock index with its daily change.
func FormatIndices(d *service.Dashboard) string {
	if len(d.StockIndices) == 0 {
		return "No index data available"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Stock indices%s\n", provenanceTag(d.IndexProvenance))
	for _, idx := range d.StockIndices {
		fmt.Fprintf(&sb, "%s (%s) %.2f %+.2f%%\n", idx.Name, idx.Symbol, idx.Price, idx.Change)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatIndicator(ind domain.Indicator, v float64) string {
	switch ind {
	case domain.IndicatorInflation, domain.IndicatorInterest, domain.IndicatorUnemployment:
		return trend.FormatPercent(v)
	case domain.IndicatorStockIndex:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

func provenanceTag(p domain.Provenance) string {
	if p == domain.ProvenanceMock {
		return " [sample data]"
	}
	return ""
}
