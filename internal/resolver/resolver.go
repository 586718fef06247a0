package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"macrotrend-snapshot/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrSourcesExhausted is returned when no strategy could supply a family.
var ErrSourcesExhausted = errors.New("all data sources exhausted")

// Resolver walks an ordered strategy list and assembles one FetchResult per
// call. Each family is taken from the first strategy that supplies it.
type Resolver struct {
	tracer     trace.Tracer
	schema     domain.Schema
	strategies []Strategy
	now        func() time.Time
}

func New(tracer trace.Tracer, schema domain.Schema, strategies ...Strategy) *Resolver {
	return &Resolver{
		tracer:     tracer,
		schema:     schema,
		strategies: strategies,
		now:        time.Now,
	}
}

// Schema returns the indicator schema the resolver validates against.
func (r *Resolver) Schema() domain.Schema {
	return r.schema
}

// Strategies returns the configured strategy names in order.
func (r *Resolver) Strategies() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve runs one fetch cycle. An empty credential skips every live strategy.
func (r *Resolver) Resolve(ctx context.Context, credential string) (domain.FetchResult, error) {
	ctx, span := r.tracer.Start(ctx, "resolver.resolve")
	defer span.End()

	credential = strings.TrimSpace(credential)
	span.SetAttributes(
		attribute.String("schema", r.schema.Name),
		attribute.Bool("credential", credential != ""),
	)

	var (
		macro       []domain.MonthlySnapshot
		companies   []domain.CompanyRecord
		indices     []domain.StockIndex
		macroFrom   Strategy
		companyFrom Strategy
		indexFrom   Strategy
		liveErr     error
		liveRan     bool
	)
	need := func() Family {
		var f Family
		if macroFrom == nil {
			f |= FamilyMacro
		}
		if companyFrom == nil {
			f |= FamilyCompanies
		}
		if indexFrom == nil {
			f |= FamilyIndices
		}
		return f
	}

	for _, s := range r.strategies {
		unfilled := need()
		if unfilled == 0 {
			break
		}
		if s.Supplies()&unfilled == 0 {
			continue
		}
		if s.Live() && credential == "" {
			continue
		}

		attempt := r.attempt(ctx, s, credential, unfilled)
		if s.Live() {
			liveRan = true
			if attempt.Err != nil && liveErr == nil {
				liveErr = attempt.Err
			}
		}
		if attempt.Outcome == OutcomeFailed {
			continue
		}

		if macroFrom == nil {
			if series, err := r.acceptMacro(attempt.Macro); err == nil {
				macro, macroFrom = series, s
			} else if len(attempt.Macro) > 0 {
				log.Printf("resolver: %s macro rejected: %v", s.Name(), err)
				if s.Live() && liveErr == nil {
					liveErr = fmt.Errorf("invalid data structure from %s: %w", s.Name(), err)
				}
			}
		}
		if companyFrom == nil {
			if accepted := acceptCompanies(attempt.Companies); len(accepted) > 0 {
				companies, companyFrom = accepted, s
			}
		}
		if indexFrom == nil {
			if accepted := acceptIndices(attempt.Indices); len(accepted) > 0 {
				indices, indexFrom = accepted, s
			}
		}
	}

	if need() != 0 {
		span.RecordError(ErrSourcesExhausted)
		return domain.FetchResult{}, fmt.Errorf("%w: no %s data", ErrSourcesExhausted, need())
	}

	result := domain.FetchResult{
		Schema:            r.schema.Name,
		MacroData:         macro,
		TechCompanies:     companies,
		StockIndices:      indices,
		MacroProvenance:   provenance(macroFrom),
		CompanyProvenance: provenance(companyFrom),
		IndexProvenance:   provenance(indexFrom),
		MacroSource:       macroFrom.Name(),
		CompanySource:     companyFrom.Name(),
		IndexSource:       indexFrom.Name(),
		FetchedAt:         r.now(),
	}

	var mocked Family
	if !macroFrom.Live() {
		mocked |= FamilyMacro
	}
	if !companyFrom.Live() {
		mocked |= FamilyCompanies
	}
	if !indexFrom.Live() {
		mocked |= FamilyIndices
	}
	mixed := mocked != 0 && mocked != AllFamilies

	switch {
	case liveErr != nil:
		result.ErrorType = Classify(liveErr)
		if result.ErrorType == domain.ErrorUnknown && mixed {
			result.ErrorType = domain.ErrorPartialData
		}
		result.ErrorMessage = liveErr.Error()
	case liveRan && mocked != 0:
		result.ErrorType = domain.ErrorPartialData
		result.ErrorMessage = fmt.Sprintf("live sources returned no %s data; showing sample data for it", mocked)
	}

	span.SetAttributes(
		attribute.String("macro.source", result.MacroSource),
		attribute.String("company.source", result.CompanySource),
		attribute.String("index.source", result.IndexSource),
		attribute.String("error_type", string(result.ErrorType)),
	)
	log.Printf("resolver: macro=%s(%s) companies=%s(%s) indices=%s(%s) error=%q",
		result.MacroSource, result.MacroProvenance, result.CompanySource, result.CompanyProvenance,
		result.IndexSource, result.IndexProvenance, result.ErrorType)
	return result, nil
}

func (r *Resolver) attempt(ctx context.Context, s Strategy, credential string, need Family) Attempt {
	ctx, span := r.tracer.Start(ctx, "resolver.attempt")
	defer span.End()
	span.SetAttributes(
		attribute.String("strategy", s.Name()),
		attribute.String("need", need.String()),
	)

	a := s.Attempt(ctx, credential, need)
	span.SetAttributes(attribute.String("outcome", a.Outcome.String()))
	if a.Err != nil {
		span.RecordError(a.Err)
		log.Printf("resolver: %s %s: %v", s.Name(), a.Outcome, a.Err)
	}
	return a
}

func (r *Resolver) acceptMacro(series []domain.MonthlySnapshot) ([]domain.MonthlySnapshot, error) {
	if len(series) < domain.MinSeriesLength {
		return nil, fmt.Errorf("expected at least %d snapshots, got %d", domain.MinSeriesLength, len(series))
	}
	if err := r.schema.Validate(series); err != nil {
		return nil, err
	}
	return series, nil
}

func acceptCompanies(records []domain.CompanyRecord) []domain.CompanyRecord {
	valid := make([]domain.CompanyRecord, 0, len(records))
	for _, c := range records {
		if err := c.Validate(); err != nil {
			continue
		}
		valid = append(valid, c)
	}
	return domain.SortCompanies(valid)
}

func acceptIndices(quotes []domain.StockIndex) []domain.StockIndex {
	valid := make([]domain.StockIndex, 0, len(quotes))
	for _, q := range quotes {
		if err := q.Validate(); err != nil {
			continue
		}
		valid = append(valid, q)
	}
	return domain.SortIndices(valid)
}

func provenance(s Strategy) domain.Provenance {
	if s.Live() {
		return domain.ProvenanceReal
	}
	return domain.ProvenanceMock
}
