// Package run orchestrates batch extraction. It fans URLs over a worker
// pool, fetches each document through a tiered fetch chain, extracts and
// validates fields, and aggregates outcomes, completeness stats, and
// cost into a sealed Run.
package run

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/cost"
	"github.com/fwojciec/harvest/extract"
	"github.com/fwojciec/harvest/validate"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Defaults applied when Runner fields are left zero.
const (
	DefaultConcurrency = 8
	DefaultItemTimeout = 45 * time.Second
)

// Runner processes a batch of URLs against one schema.
type Runner struct {
	// Fetcher retrieves documents, usually a Chain.
	Fetcher harvest.Fetcher

	// Engine extracts schema fields from fetched documents.
	Engine *extract.Engine

	// Validator checks extracted fields. Nil means validate.New().
	Validator *validate.Validator

	// Tracker supplies the run's cost summary. Usually the same tracker
	// the Engine records into.
	Tracker *cost.Tracker

	// Concurrency bounds parallel items.
	Concurrency int

	// ItemTimeout bounds one item's fetch-extract-validate pipeline.
	ItemTimeout time.Duration

	// Progress, when set, receives state transitions. Workers call it
	// concurrently.
	Progress harvest.ProgressFunc
}

// itemResult pairs an outcome with the extraction detail the stats
// aggregation needs.
type itemResult struct {
	outcome harvest.Outcome
	fields  map[string]harvest.ExtractedField
	err     error
}

// Run processes urls and returns a sealed Run. Duplicate URLs are
// dispatched once. Setup problems (nil schema, invalid schema) return an
// EINVALID error. On cancellation the partial run is sealed and returned
// along with the context's error; in-flight items are discarded.
func (r *Runner) Run(ctx context.Context, urls []string, schema *harvest.Schema) (*harvest.Run, error) {
	if schema == nil {
		return nil, harvest.Errorf(harvest.EINVALID, "schema required")
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if r.Fetcher == nil {
		return nil, harvest.Errorf(harvest.EINVALID, "fetcher required")
	}
	if r.Engine == nil {
		return nil, harvest.Errorf(harvest.EINVALID, "engine required")
	}

	validator := r.Validator
	if validator == nil {
		validator = validate.New()
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	items, duplicates := dedupe(urls)
	total := len(items)

	run := &harvest.Run{
		ID:         uuid.New().String(),
		SchemaHash: SchemaHash(schema),
		StartedAt:  time.Now().UTC(),
	}

	resultCh := make(chan itemResult, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, item := range items {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				res, err := r.processItem(gctx, item, schema, validator, total)
				if err != nil {
					return err
				}
				resultCh <- res
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	stats := harvest.Stats{FieldsBySource: make(map[harvest.Source]int)}
	stats.Duplicates = duplicates

	var completed int
	var confidenceSum, completenessSum float64
	var extracted int

	for res := range resultCh {
		completed++
		r.notify(harvest.Progress{
			Item:      harvest.WorkItem{Index: res.outcome.Index, URL: res.outcome.Source},
			State:     res.outcome.State,
			Completed: completed,
			Total:     total,
			Err:       res.err,
		})
		run.Append(res.outcome)

		stats.Documents++
		switch res.outcome.State {
		case harvest.StateSucceeded:
			stats.Succeeded++
		case harvest.StateFailed:
			stats.Failed++
		case harvest.StateInaccessible:
			stats.Inaccessible++
		}
		if res.outcome.Escalated {
			stats.EscalatedDocs++
		}
		if res.fields != nil {
			extracted++
			confidenceSum += res.outcome.Confidence
			if n := len(schema.Fields); n > 0 {
				completenessSum += float64(len(res.outcome.Data)) / float64(n)
			}
			for name, f := range res.fields {
				if _, ok := res.outcome.Data[name]; ok {
					stats.FieldsBySource[f.Source]++
				}
			}
		}
	}

	if extracted > 0 {
		stats.AvgConfidence = confidenceSum / float64(extracted)
		stats.AvgCompleteness = completenessSum / float64(extracted)
	}

	run.Stats = stats
	if r.Tracker != nil {
		run.Cost = r.Tracker.Summary()
	}
	run.FinishedAt = time.Now().UTC()
	run.Seal()

	if err := ctx.Err(); err != nil {
		return run, err
	}
	return run, nil
}

// processItem runs one work item through fetch, extract, and validate.
// A non-nil error means the parent context was canceled and the partial
// result must be discarded.
func (r *Runner) processItem(ctx context.Context, item harvest.WorkItem, schema *harvest.Schema, validator *validate.Validator, total int) (itemResult, error) {
	start := time.Now()

	timeout := r.ItemTimeout
	if timeout <= 0 {
		timeout = DefaultItemTimeout
	}
	ictx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r.notify(harvest.Progress{Item: item, State: harvest.StateFetching, Total: total})

	doc, err := r.Fetcher.Fetch(ictx, item.URL)
	if err != nil {
		if ctx.Err() != nil {
			return itemResult{}, ctx.Err()
		}
		return itemResult{
			outcome: failedOutcome(item, harvest.StateInaccessible, err, start),
			err:     err,
		}, nil
	}
	doc.ContentHash = ContentHash(doc.HTML)

	r.notify(harvest.Progress{Item: item, State: harvest.StateExtracting, Total: total})

	extraction, err := r.Engine.Process(ictx, doc, schema)
	if err != nil {
		if ctx.Err() != nil {
			return itemResult{}, ctx.Err()
		}
		err = harvest.Errorf(harvest.ETIMEOUT, "extraction timed out for %s", item.URL)
		return itemResult{
			outcome: failedOutcome(item, harvest.StateFailed, err, start),
			err:     err,
		}, nil
	}

	r.notify(harvest.Progress{Item: item, State: harvest.StateValidating, Total: total})

	validation := validator.Validate(extraction, schema)

	state := harvest.StateSucceeded
	if !validation.Valid() {
		state = harvest.StateFailed
	}

	return itemResult{
		outcome: harvest.Outcome{
			Index:      item.Index,
			Source:     item.URL,
			State:      state,
			Success:    validation.Valid(),
			Data:       validation.Data,
			Errors:     validation.Errors,
			Warnings:   validation.Warnings,
			Confidence: validation.Confidence,
			Missing:    extraction.Missing(schema),
			Escalated:  extraction.Escalated,
			CostUSD:    extraction.CostUSD,
			ElapsedMS:  time.Since(start).Milliseconds(),
		},
		fields: extraction.Fields,
	}, nil
}

func (r *Runner) notify(p harvest.Progress) {
	if r.Progress != nil {
		r.Progress(p)
	}
}

// failedOutcome builds the terminal outcome for an item that never
// reached validation.
func failedOutcome(item harvest.WorkItem, state harvest.ItemState, err error, start time.Time) harvest.Outcome {
	return harvest.Outcome{
		Index:     item.Index,
		Source:    item.URL,
		State:     state,
		Errors:    []string{errorText(err)},
		ElapsedMS: time.Since(start).Milliseconds(),
	}
}

// errorText renders an error for an outcome's error list.
func errorText(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	return harvest.ErrorMessage(err)
}

// dedupe keeps the first occurrence of each URL, preserving the original
// batch index for result ordering.
func dedupe(urls []string) ([]harvest.WorkItem, int) {
	seen := make(map[string]struct{}, len(urls))
	items := make([]harvest.WorkItem, 0, len(urls))
	duplicates := 0
	for i, u := range urls {
		if _, ok := seen[u]; ok {
			duplicates++
			continue
		}
		seen[u] = struct{}{}
		items = append(items, harvest.WorkItem{Index: i, URL: u})
	}
	return items, duplicates
}
