package domain

import "time"

// CaseResult is the outcome of a single test case in a run.
type CaseResult struct {
	ID         string     `json:"id"`
	Script     string     `json:"script"`
	Name       string     `json:"name"`
	Status     TestStatus `json:"status"`
	DurationMS float64    `json:"duration_ms,omitempty"`
	Message    string     `json:"message,omitempty"`
	File       string     `json:"file,omitempty"`
	Line       int        `json:"line,omitempty"`
}

// RunMeta contains counters about a test run
type RunMeta struct {
	Scripts         int     `json:"scripts"`
	Total           int     `json:"total"`
	Passed          int     `json:"passed"`
	Failed          int     `json:"failed"`
	Skipped         int     `json:"skipped"`
	Errored         int     `json:"errored"`
	Diagnostics     int     `json:"diagnostics"`
	Cancelled       bool    `json:"cancelled,omitempty"`
	GUI             bool    `json:"gui,omitempty"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Timestamp       string  `json:"timestamp"`
}

// RunRecord is the complete, persisted result of the last run
type RunRecord struct {
	Meta        RunMeta      `json:"meta"`
	Results     []CaseResult `json:"results"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Failures returns the failed and errored results.
func (r *RunRecord) Failures() []CaseResult {
	var out []CaseResult
	for _, res := range r.Results {
		if res.Status == StatusFailed || res.Status == StatusErrored {
			out = append(out, res)
		}
	}
	return out
}

// Finish fills the counters from Results and stamps the duration.
func (r *RunRecord) Finish(duration time.Duration) {
	r.Meta.Total = len(r.Results)
	r.Meta.Passed, r.Meta.Failed, r.Meta.Skipped, r.Meta.Errored = 0, 0, 0, 0
	for _, res := range r.Results {
		switch res.Status {
		case StatusPassed:
			r.Meta.Passed++
		case StatusFailed:
			r.Meta.Failed++
		case StatusSkipped:
			r.Meta.Skipped++
		case StatusErrored:
			r.Meta.Errored++
		}
	}
	r.Meta.Diagnostics = len(r.Diagnostics)
	r.Meta.Duration = duration.String()
	r.Meta.DurationSeconds = duration.Seconds()
	r.Meta.Timestamp = time.Now().Format(time.RFC3339)
}
