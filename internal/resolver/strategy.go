package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"macrotrend-snapshot/internal/domain"
	"macrotrend-snapshot/internal/provider"
)

// Outcome tags what a strategy attempt produced.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomePartial
	OutcomeFull
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFull:
		return "full"
	case OutcomePartial:
		return "partial"
	default:
		return "failed"
	}
}

// Family is a set of data families, one bit each.
type Family uint8

const (
	FamilyMacro Family = 1 << iota
	FamilyCompanies
	FamilyIndices

	AllFamilies = FamilyMacro | FamilyCompanies | FamilyIndices
)

// Has reports whether every family in f is in the set.
func (s Family) Has(f Family) bool {
	return s&f == f
}

func (s Family) String() string {
	names := make([]string, 0, 3)
	if s.Has(FamilyMacro) {
		names = append(names, "macro")
	}
	if s.Has(FamilyCompanies) {
		names = append(names, "company")
	}
	if s.Has(FamilyIndices) {
		names = append(names, "index")
	}
	return strings.Join(names, ", ")
}

// Attempt is the tagged result of one strategy. A partial attempt may carry an
// error alongside the data it did obtain.
type Attempt struct {
	Outcome   Outcome
	Macro     []domain.MonthlySnapshot
	Companies []domain.CompanyRecord
	Indices   []domain.StockIndex
	Err       error
}

// Strategy is one source in the fallback chain.
type Strategy interface {
	Name() string
	// Live strategies call external services and are only attempted when a
	// credential is present.
	Live() bool
	// Supplies is the set of families the strategy can produce. The resolver
	// skips a strategy once all of them are filled.
	Supplies() Family
	// Attempt fetches data; need lists the families still unfilled.
	Attempt(ctx context.Context, credential string, need Family) Attempt
}

// MacroCompanyFetcher is the combined live source.
type MacroCompanyFetcher interface {
	Fetch(ctx context.Context, apiKey string) (*provider.LLMPayload, error)
}

// CompanyFetcher is a live quote source for companies and indices.
type CompanyFetcher interface {
	FetchCompanies(ctx context.Context, tickers []string) ([]domain.CompanyRecord, error)
	FetchIndices(ctx context.Context, symbols []string) ([]domain.StockIndex, error)
}

// MockSource generates local data.
type MockSource interface {
	MacroSeries() []domain.MonthlySnapshot
	Companies() []domain.CompanyRecord
	Indices() []domain.StockIndex
}

// LLMStrategy asks the language model for every family in one call.
type LLMStrategy struct {
	Source MacroCompanyFetcher
}

func (s LLMStrategy) Name() string     { return "llm" }
func (s LLMStrategy) Live() bool       { return true }
func (s LLMStrategy) Supplies() Family { return AllFamilies }

func (s LLMStrategy) Attempt(ctx context.Context, credential string, _ Family) Attempt {
	payload, err := s.Source.Fetch(ctx, credential)
	if err != nil {
		var partial *provider.PartialError
		if errors.As(err, &partial) && (len(partial.Companies) > 0 || len(partial.Indices) > 0) {
			return Attempt{Outcome: OutcomePartial, Companies: partial.Companies, Indices: partial.Indices, Err: err}
		}
		return Attempt{Outcome: OutcomeFailed, Err: err}
	}
	a := Attempt{Outcome: OutcomeFull, Macro: payload.Macro, Companies: payload.Companies, Indices: payload.Indices}
	if len(payload.Companies) == 0 || len(payload.Indices) == 0 {
		a.Outcome = OutcomePartial
	}
	return a
}

// QuoteStrategy fills the company and index families from a per-symbol quote
// source, fetching only what is still needed.
type QuoteStrategy struct {
	Source  CompanyFetcher
	Tickers []string
	Indices []string
}

func (s QuoteStrategy) Name() string     { return "quotes" }
func (s QuoteStrategy) Live() bool       { return true }
func (s QuoteStrategy) Supplies() Family { return FamilyCompanies | FamilyIndices }

func (s QuoteStrategy) Attempt(ctx context.Context, _ string, need Family) Attempt {
	var (
		a    Attempt
		errs []error
	)
	if need.Has(FamilyCompanies) {
		tickers := s.Tickers
		if len(tickers) == 0 {
			tickers = domain.TrackedTickers
		}
		companies, err := s.Source.FetchCompanies(ctx, tickers)
		if err != nil {
			errs = append(errs, err)
		}
		a.Companies = companies
	}
	if need.Has(FamilyIndices) {
		symbols := s.Indices
		if len(symbols) == 0 {
			symbols = domain.TrackedIndices
		}
		indices, err := s.Source.FetchIndices(ctx, symbols)
		if err != nil {
			errs = append(errs, err)
		}
		a.Indices = indices
	}
	a.Err = errors.Join(errs...)

	if len(a.Companies) == 0 && len(a.Indices) == 0 {
		a.Outcome = OutcomeFailed
		if a.Err == nil {
			a.Err = fmt.Errorf("quote source returned no %s data", need&s.Supplies())
		}
		return a
	}
	a.Outcome = OutcomePartial
	return a
}

// GeneratorStrategy produces a jittered mock series and the static company
// and index tables.
type GeneratorStrategy struct {
	Source MockSource
}

func (s GeneratorStrategy) Name() string     { return "generator" }
func (s GeneratorStrategy) Live() bool       { return false }
func (s GeneratorStrategy) Supplies() Family { return AllFamilies }

func (s GeneratorStrategy) Attempt(_ context.Context, _ string, _ Family) Attempt {
	return Attempt{
		Outcome:   OutcomeFull,
		Macro:     s.Source.MacroSeries(),
		Companies: s.Source.Companies(),
		Indices:   s.Source.Indices(),
	}
}

// StaticStrategy serves the fixed tables; it cannot fail.
type StaticStrategy struct {
	Schema domain.Schema
}

func (s StaticStrategy) Name() string     { return "static" }
func (s StaticStrategy) Live() bool       { return false }
func (s StaticStrategy) Supplies() Family { return AllFamilies }

func (s StaticStrategy) Attempt(_ context.Context, _ string, _ Family) Attempt {
	return Attempt{
		Outcome:   OutcomeFull,
		Macro:     provider.StaticMacroSeries(s.Schema),
		Companies: provider.MockCompanies(),
		Indices:   provider.MockIndices(),
	}
}

// DefaultStrategies builds the standard chain: llm, quotes (when non-nil),
// generator, static.
func DefaultStrategies(llm MacroCompanyFetcher, quotes CompanyFetcher, mock MockSource, schema domain.Schema) []Strategy {
	strategies := make([]Strategy, 0, 4)
	if llm != nil {
		strategies = append(strategies, LLMStrategy{Source: llm})
	}
	if quotes != nil {
		strategies = append(strategies, QuoteStrategy{Source: quotes})
	}
	if mock != nil {
		strategies = append(strategies, GeneratorStrategy{Source: mock})
	}
	return append(strategies, StaticStrategy{Schema: schema})
}
