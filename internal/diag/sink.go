package diag

// Sink collects Reports produced while a transform runs. A transform's
// Run returns its destination Model together with its Sink; OK() turns
// false once the Sink has collected one or more Reports, and the
// pipeline then halts before the next stage (spec.md §7's propagation
// policy).
type Sink struct {
	reports []*Report
}

// NewSink creates an empty Sink.
func NewSink() *Sink { return &Sink{} }

// Report records r.
func (s *Sink) Report(r *Report) { s.reports = append(s.reports, r) }

// Reports returns every collected Report, in the order reported.
func (s *Sink) Reports() []*Report { return s.reports }

// OK reports whether no error has been collected yet.
func (s *Sink) OK() bool { return len(s.reports) == 0 }

// Len returns the number of collected reports.
func (s *Sink) Len() int { return len(s.reports) }
