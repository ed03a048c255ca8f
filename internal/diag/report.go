package diag

import (
	"encoding/json"
	"errors"

	"github.com/shackle-lang/shackle/internal/source"
)

// Report is the canonical structured error type for the core compiler.
// All error builders return *Report, which is wrapped as ReportError so
// structured reports survive errors.As() unwrapping.
type Report struct {
	Schema  string         `json:"schema"` // Always "shackle.error/v1"
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Span    *source.Span   `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"` // sorted at marshal time
}

// ReportError wraps a Report as an error.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport attempts to extract a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps a Report as a ReportError.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON converts a Report to JSON (deterministic, sorted keys).
func (r *Report) ToJSON(compact bool) (string, error) {
	if compact {
		b, err := json.Marshal(r)
		return string(b), err
	}
	b, err := json.MarshalIndent(r, "", "  ")
	return string(b), err
}

// New builds a Report for code, attaching message and optional span.
func New(code, message string, span *source.Span) *Report {
	info, _ := GetInfo(code)
	return &Report{
		Schema:  "shackle.error/v1",
		Code:    code,
		Phase:   info.Phase,
		Message: message,
		Span:    span,
	}
}

// WithData attaches structured data and returns r for chaining.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	r.Data[key] = value
	return r
}
