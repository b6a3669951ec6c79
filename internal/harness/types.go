package harness

// TraceEvent is one step of a scenario execution.
// The trace records every operation the runner performed, in order, so a
// failure report and a golden file both show the full derivation.
type TraceEvent struct {
	Op     string `json:"op"`              // "parse", "canonical", "refluent", "greedy", "merger", "mergers"
	Label  string `json:"label,omitempty"` // sequence label for per-label operations
	Detail string `json:"detail"`
	Seq    int64  `json:"seq"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every expectation matched.
	Pass bool `json:"pass"`

	// Trace contains all operations in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an operation to the trace.
func (r *Result) AddTrace(op, label, detail string, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Op:     op,
		Label:  label,
		Detail: detail,
		Seq:    seq,
	})
}
