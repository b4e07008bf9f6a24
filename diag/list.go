package diag

import (
	"errors"

	"go.uber.org/zap"
)

// Diagnostic is a single recorded problem.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Kind     string   `json:"kind"`
	Subject  string   `json:"subject"`
	Message  string   `json:"message"`
	Err      error    `json:"-"`
}

// List accumulates diagnostics in the order they were reported. Every
// reported problem is logged immediately.
// NOTE: not to be used concurrently.
type List struct {
	log   *zap.Logger
	items []Diagnostic
}

func NewList(log *zap.Logger) *List {
	if log == nil {
		log = zap.NewNop()
	}
	return &List{log: log}
}

// Report records the problem. Errors outside of taxonomy are recorded as
// errors of kind "other". Reporting to nil list discards the problem.
func (l *List) Report(err error) {
	if err == nil || l == nil {
		return
	}

	d := Diagnostic{Severity: SeverityError, Kind: "other", Message: err.Error(), Err: err}
	var p Problem
	if errors.As(err, &p) {
		d.Severity, d.Kind, d.Subject = p.Severity(), p.Kind(), p.Subject()
	}
	l.items = append(l.items, d)

	fields := []zap.Field{zap.String("kind", d.Kind), zap.String("subject", d.Subject), zap.Error(err)}
	switch d.Severity {
	case SeverityWarning:
		l.log.Debug("Input problem", fields...)
	default:
		l.log.Warn("Input problem", fields...)
	}
}

// Items returns copy of collected diagnostics.
func (l *List) Items() []Diagnostic {
	if l == nil {
		return nil
	}
	out := make([]Diagnostic, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Count returns number of diagnostics of a given kind.
func (l *List) Count(kind string) int {
	if l == nil {
		return 0
	}
	n := 0
	for _, d := range l.items {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// CountSeverity returns number of diagnostics of at least given severity.
func (l *List) CountSeverity(s Severity) int {
	if l == nil {
		return 0
	}
	n := 0
	for _, d := range l.items {
		if d.Severity >= s {
			n++
		}
	}
	return n
}

// Summary returns number of diagnostics per kind.
func (l *List) Summary() map[string]int {
	out := make(map[string]int)
	if l == nil {
		return out
	}
	for _, d := range l.items {
		out[d.Kind]++
	}
	return out
}
