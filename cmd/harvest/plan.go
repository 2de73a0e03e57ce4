package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/anthropic"
	"github.com/fwojciec/harvest/cost"
)

// Run executes the plan command: a cost estimate that touches nothing
// on the network.
func (c *PlanCmd) Run(deps *Dependencies) error {
	schema, err := loadSchema(c.Schema)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	if c.CheapRate < 0 || c.CheapRate > 1 {
		err := harvest.Errorf(harvest.EINVALID, "cheap-rate must be between 0 and 1")
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	urls := append([]string(nil), c.URLs...)
	if c.URLsFile != "" {
		fromFile, err := readURLsFile(c.URLsFile)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
			return err
		}
		urls = append(urls, fromFile...)
	}

	docs := uniqueCount(urls)
	if docs == 0 {
		err := harvest.Errorf(harvest.EINVALID, "no URLs to estimate; pass URLs or --urls-file")
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	model := c.Model
	if model == "" {
		model = os.Getenv("HARVEST_MODEL")
	}
	if model == "" {
		model = anthropic.DefaultModel
	}

	perDoc := cost.New(model).Estimate(c.ContentLen, len(schema.Fields))
	worst := perDoc * float64(docs)
	expected := worst * (1 - c.CheapRate)

	fmt.Fprintf(deps.Stdout, "Model:     %s\n", model)
	fmt.Fprintf(deps.Stdout, "Schema:    %d fields (%d required)\n", len(schema.Fields), len(schema.Required()))
	fmt.Fprintf(deps.Stdout, "Documents: %d\n", docs)
	fmt.Fprintln(deps.Stdout)
	fmt.Fprintf(deps.Stdout, "Per-document escalation:      $%.6f\n", perDoc)
	fmt.Fprintf(deps.Stdout, "Worst case (all escalate):    $%.4f\n", worst)
	fmt.Fprintf(deps.Stdout, "Expected (%.0f%% cheap hits):    $%.4f\n", c.CheapRate*100, expected)
	return nil
}

// uniqueCount counts distinct URLs, matching the exact dedup the run
// command applies before dispatch.
func uniqueCount(urls []string) int {
	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		seen[u] = true
	}
	return len(seen)
}
