// Package cost tracks model spend for a run against an
// escalate-everything baseline: what the same batch would have cost if
// every document had been sent to the model with the full schema.
package cost

import (
	"strings"
	"sync"

	"github.com/fwojciec/harvest"
)

// Pricing is the price per million tokens for one model.
type Pricing struct {
	InputPer1M      float64
	OutputPer1M     float64
	CacheWritePer1M float64
	CacheReadPer1M  float64
}

// pricingTable holds standard API prices keyed by model ID prefix.
// Dated model IDs (claude-3-5-haiku-20241022) match their prefix.
var pricingTable = map[string]Pricing{
	"claude-3-5-haiku":  {InputPer1M: 0.80, OutputPer1M: 4.00, CacheWritePer1M: 1.00, CacheReadPer1M: 0.08},
	"claude-3-5-sonnet": {InputPer1M: 3.00, OutputPer1M: 15.00, CacheWritePer1M: 3.75, CacheReadPer1M: 0.30},
	"claude-sonnet-4":   {InputPer1M: 3.00, OutputPer1M: 15.00, CacheWritePer1M: 3.75, CacheReadPer1M: 0.30},
	"claude-opus-4":     {InputPer1M: 15.00, OutputPer1M: 75.00, CacheWritePer1M: 18.75, CacheReadPer1M: 1.50},
	"gemini-2.5-flash":  {InputPer1M: 0.30, OutputPer1M: 2.50},
	"gemini-2.5-pro":    {InputPer1M: 1.25, OutputPer1M: 10.00},
	"gemini-2.0-flash":  {InputPer1M: 0.10, OutputPer1M: 0.40},
}

// DefaultPricing is used for unrecognized models: sonnet-class rates, so
// unknown models are never under-counted cheaply.
var DefaultPricing = Pricing{InputPer1M: 3.00, OutputPer1M: 15.00, CacheWritePer1M: 3.75, CacheReadPer1M: 0.30}

// Token estimation for budget checks and baseline accrual.
// Content length divides by four (the usual bytes-per-token heuristic);
// the rest covers prompt scaffolding and per-field output.
const (
	bytesPerToken        = 4
	promptOverheadTokens = 300
	fieldPromptTokens    = 25
	fieldOutputTokens    = 60
	outputOverheadTokens = 50
)

// PricingFor returns the price table entry for a model ID.
func PricingFor(model string) Pricing {
	if p, ok := pricingTable[model]; ok {
		return p
	}
	for prefix, p := range pricingTable {
		if strings.HasPrefix(model, prefix) {
			return p
		}
	}
	return DefaultPricing
}

// Calculate computes the dollar cost of token usage at the given prices.
func Calculate(p Pricing, usage harvest.TokenUsage) float64 {
	cost := float64(usage.InputTokens) / 1_000_000 * p.InputPer1M
	cost += float64(usage.OutputTokens) / 1_000_000 * p.OutputPer1M
	cost += float64(usage.CacheCreationInputTokens) / 1_000_000 * p.CacheWritePer1M
	cost += float64(usage.CacheReadInputTokens) / 1_000_000 * p.CacheReadPer1M
	return cost
}

// Tracker accumulates spend for one run. Totals only grow; methods are
// safe for concurrent use by workers.
type Tracker struct {
	mu            sync.Mutex
	model         string
	baselineModel string
	budget        float64
	actual        float64
	baseline      float64
	usage         harvest.TokenUsage
	calls         int64
	exceeded      bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithBudget sets the run cost ceiling in dollars. Zero means unlimited.
func WithBudget(usd float64) Option {
	return func(t *Tracker) {
		t.budget = usd
	}
}

// WithBaselineModel prices the escalate-everything baseline at a
// different model than the one escalations actually use.
func WithBaselineModel(model string) Option {
	return func(t *Tracker) {
		t.baselineModel = model
	}
}

// New creates a Tracker for a run escalating to the given model.
func New(model string, opts ...Option) *Tracker {
	t := &Tracker{model: model, baselineModel: model}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Estimate predicts the cost of escalating content with the given field
// count, at the escalation model's prices.
func (t *Tracker) Estimate(contentLen, fields int) float64 {
	return Calculate(PricingFor(t.model), estimateUsage(contentLen, fields))
}

func estimateUsage(contentLen, fields int) harvest.TokenUsage {
	return harvest.TokenUsage{
		InputTokens:  int64(contentLen/bytesPerToken + promptOverheadTokens + fields*fieldPromptTokens),
		OutputTokens: int64(fields*fieldOutputTokens + outputOverheadTokens),
	}
}

// RecordExtraction notes a document fully resolved by cheap strategies.
// It costs nothing, but the baseline accrues what escalating the whole
// schema for this document would have cost.
func (t *Tracker) RecordExtraction(contentLen, schemaFields int) {
	est := Calculate(PricingFor(t.baselineModel), estimateUsage(contentLen, schemaFields))

	t.mu.Lock()
	defer t.mu.Unlock()
	t.baseline += est
}

// RecordEscalation adds the cost of a model call and accrues the same
// call to the baseline, with output scaled from the requested field
// count up to the full schema. Returns the dollar cost of the call.
func (t *Tracker) RecordEscalation(model string, usage harvest.TokenUsage, requestedFields, schemaFields int) float64 {
	if model == "" {
		model = t.model
	}
	actual := Calculate(PricingFor(model), usage)

	baselineUsage := usage
	if requestedFields > 0 && schemaFields > requestedFields {
		baselineUsage.OutputTokens = usage.OutputTokens * int64(schemaFields) / int64(requestedFields)
	}
	baseline := Calculate(PricingFor(t.baselineModel), baselineUsage)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.actual += actual
	t.baseline += baseline
	t.usage = t.usage.Add(usage)
	t.calls++

	return actual
}

// Allow reports whether an escalation with the given estimated cost fits
// the budget. The first refusal latches the exceeded flag for the run.
func (t *Tracker) Allow(estimate float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.budget <= 0 {
		return true
	}
	if t.actual+estimate > t.budget {
		t.exceeded = true
		return false
	}
	return true
}

// Exceeded reports whether any escalation has been refused for budget.
func (t *Tracker) Exceeded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.exceeded
}

// Actual returns the spend so far.
func (t *Tracker) Actual() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.actual
}

// Summary reports run totals. Savings compare actual spend against the
// escalate-everything baseline.
func (t *Tracker) Summary() harvest.CostSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := harvest.CostSummary{
		Actual:         t.actual,
		Baseline:       t.baseline,
		TokenTotal:     t.usage.Total(),
		InputTokens:    t.usage.InputTokens,
		OutputTokens:   t.usage.OutputTokens,
		Calls:          t.calls,
		Budget:         t.budget,
		BudgetExceeded: t.exceeded,
	}
	if t.baseline > 0 {
		s.SavingsPct = (t.baseline - t.actual) / t.baseline * 100
	}
	return s
}
