package harness

// TraceEvent records one executed flow step and its outcome.
type TraceEvent struct {
	Seq    int64    `json:"seq"`
	Op     string   `json:"op"`
	Parent string   `json:"parent,omitempty"`
	Child  string   `json:"child,omitempty"`
	Target *int     `json:"target,omitempty"`
	Order  []string `json:"order,omitempty"`

	// Error is the error code the step failed with, if any.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion matched.
	Pass bool `json:"pass"`

	// Trace lists the flow steps in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds one message per failed expectation. Empty if Pass.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
