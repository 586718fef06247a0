package domain

import "time"

type Provenance string

const (
	ProvenanceReal Provenance = "real"
	ProvenanceMock Provenance = "mock"
)

// ErrorType classifies why a fetch cycle fell back. The zero value means no error.
type ErrorType string

const (
	ErrorNone          ErrorType = ""
	ErrorQuotaExceeded ErrorType = "quota_exceeded"
	ErrorInvalidKey    ErrorType = "invalid_key"
	ErrorPartialData   ErrorType = "partial_data"
	ErrorUnknown       ErrorType = "unknown"
)

// FetchResult is the output of one fetch cycle. It is never mutated after
// construction; the next cycle replaces it wholesale.
type FetchResult struct {
	Schema            string            `json:"schema"`
	MacroData         []MonthlySnapshot `json:"macroData"`
	TechCompanies     []CompanyRecord   `json:"techCompanies"`
	StockIndices      []StockIndex      `json:"stockIndices"`
	MacroProvenance   Provenance        `json:"macroProvenance"`
	CompanyProvenance Provenance        `json:"companyProvenance"`
	IndexProvenance   Provenance        `json:"indexProvenance"`
	MacroSource       string            `json:"macroSource,omitempty"`
	CompanySource     string            `json:"companySource,omitempty"`
	IndexSource       string            `json:"indexSource,omitempty"`
	ErrorType         ErrorType         `json:"errorType,omitempty"`
	ErrorMessage      string            `json:"errorMessage,omitempty"`
	FetchedAt         time.Time         `json:"fetchedAt"`
}

// Clone returns a deep copy so consumers cannot mutate a shared result.
func (r FetchResult) Clone() FetchResult {
	out := r
	out.MacroData = make([]MonthlySnapshot, len(r.MacroData))
	for i, s := range r.MacroData {
		out.MacroData[i] = s.clone()
	}
	out.TechCompanies = append([]CompanyRecord(nil), r.TechCompanies...)
	if out.TechCompanies == nil {
		out.TechCompanies = []CompanyRecord{}
	}
	out.StockIndices = append([]StockIndex(nil), r.StockIndices...)
	if out.StockIndices == nil {
		out.StockIndices = []StockIndex{}
	}
	return out
}

// HasError reports whether the cycle carries an error classification.
func (r FetchResult) HasError() bool {
	return r.ErrorType != ErrorNone
}

// TrendEntry is the two-point trend for one indicator.
type TrendEntry struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	// Change is nil when a relative change is undefined (previous == 0).
	Change *float64 `json:"change"`
	// Relative marks Change as a percentage of Previous instead of an absolute delta.
	Relative bool `json:"relative"`
}

// Trends maps each indicator to its trend. A nil map means insufficient history.
type Trends map[Indicator]TrendEntry

// HistoryPoint is one stored month of macro history.
type HistoryPoint struct {
	Schema     string                `json:"schema"`
	Label      string                `json:"date"`
	Month      time.Time             `json:"month"`
	Values     map[Indicator]float64 `json:"values"`
	Provenance Provenance            `json:"provenance"`
	FetchedAt  time.Time             `json:"fetchedAt"`
}
