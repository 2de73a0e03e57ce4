package harvest

import (
	"sort"
	"time"
)

// WorkItem pairs a source URL with its position in the input batch.
// Results are collected in completion order and re-sorted by Index
// when the run is sealed.
type WorkItem struct {
	Index int
	URL   string
}

// ItemState tracks a work item through the pipeline.
type ItemState string

// Work item states. Pending through Validating are transient;
// the last three are terminal.
const (
	StatePending      ItemState = "pending"
	StateFetching     ItemState = "fetching"
	StateExtracting   ItemState = "extracting"
	StateValidating   ItemState = "validating"
	StateSucceeded    ItemState = "succeeded"
	StateFailed       ItemState = "failed"
	StateInaccessible ItemState = "inaccessible"
)

// Terminal reports whether the state ends an item's lifecycle.
func (s ItemState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateInaccessible
}

// Progress reports a work item state transition.
type Progress struct {
	Item      WorkItem
	State     ItemState
	Completed int
	Total     int
	Err       error
}

// ProgressFunc is called as items move through the pipeline.
// Workers invoke it concurrently; implementations must be safe for
// concurrent use.
type ProgressFunc func(Progress)

// Outcome is the terminal result of one work item.
type Outcome struct {
	Index      int            `json:"index"`
	Source     string         `json:"source"`
	State      ItemState      `json:"state"`
	Success    bool           `json:"success"`
	Data       map[string]any `json:"data"`
	Errors     []string       `json:"errors"`
	Warnings   []string       `json:"warnings"`
	Confidence float64        `json:"confidence"`
	Missing    []string       `json:"missing,omitempty"`
	Escalated  bool           `json:"escalated,omitempty"`
	CostUSD    float64        `json:"cost_usd,omitempty"`
	ElapsedMS  int64          `json:"elapsed_ms,omitempty"`
}

// CostSummary reports run-level spend against the escalate-everything
// baseline.
type CostSummary struct {
	Actual         float64 `json:"actual"`
	Baseline       float64 `json:"baseline"`
	SavingsPct     float64 `json:"savings_pct"`
	TokenTotal     int64   `json:"token_total"`
	InputTokens    int64   `json:"input_tokens"`
	OutputTokens   int64   `json:"output_tokens"`
	Calls          int64   `json:"calls"`
	Budget         float64 `json:"budget,omitempty"`
	BudgetExceeded bool    `json:"budget_exceeded,omitempty"`
}

// Stats aggregates completeness across a run.
type Stats struct {
	Documents       int            `json:"documents"`
	Succeeded       int            `json:"succeeded"`
	Failed          int            `json:"failed"`
	Inaccessible    int            `json:"inaccessible"`
	Duplicates      int            `json:"duplicates"`
	EscalatedDocs   int            `json:"escalated_documents"`
	FieldsBySource  map[Source]int `json:"fields_by_source"`
	AvgConfidence   float64        `json:"avg_confidence"`
	AvgCompleteness float64        `json:"avg_completeness"`
}

// Run is the aggregated result of processing one batch.
// Seal fixes result order; a sealed run is read-only.
type Run struct {
	ID         string      `json:"run_id"`
	SchemaHash string      `json:"schema_hash"`
	Results    []Outcome   `json:"results"`
	Cost       CostSummary `json:"cost_summary"`
	Stats      Stats       `json:"completeness_stats"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`

	sealed bool
}

// Append records an outcome in completion order.
// Appending to a sealed run is a programming error and is ignored.
func (r *Run) Append(o Outcome) {
	if r.sealed {
		return
	}
	r.Results = append(r.Results, o)
}

// Seal sorts results back into input order and freezes the run.
// Seal is idempotent.
func (r *Run) Seal() {
	if r.sealed {
		return
	}
	sort.Slice(r.Results, func(i, j int) bool {
		return r.Results[i].Index < r.Results[j].Index
	})
	r.sealed = true
}

// Sealed reports whether the run has been sealed.
func (r *Run) Sealed() bool {
	return r.sealed
}

// Degraded reports whether the run hit a condition a caller should
// treat as partial failure: any inaccessible document or an exhausted
// escalation budget.
func (r *Run) Degraded() bool {
	return r.Stats.Inaccessible > 0 || r.Cost.BudgetExceeded
}
