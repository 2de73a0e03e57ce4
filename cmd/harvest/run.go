package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/harvest"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	schema, err := loadSchema(c.Schema)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	urls, err := c.gatherURLs(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}
	if len(urls) == 0 {
		err := harvest.Errorf(harvest.EINVALID, "no URLs to process; pass URLs, --urls-file, or --sitemap")
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	result, runErr := deps.Runner.Run(deps.Ctx, urls, schema)
	if result == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(runErr))
		return runErr
	}

	if err := c.writeResult(deps, result); err != nil {
		return err
	}
	summarize(deps.Stderr, result)

	if runErr != nil {
		// Canceled mid-run. The sealed partial result above still counts.
		return runErr
	}
	if result.Cost.BudgetExceeded {
		return harvest.Errorf(harvest.EBUDGET, "escalation budget exhausted after $%.4f", result.Cost.Actual)
	}
	if result.Stats.Inaccessible > 0 {
		return harvest.Errorf(harvest.EFETCH, "%d of %d documents inaccessible", result.Stats.Inaccessible, result.Stats.Documents)
	}
	return nil
}

// gatherURLs merges positional URLs, the --urls-file, and sitemap
// discovery, in that order.
func (c *RunCmd) gatherURLs(deps *Dependencies) ([]string, error) {
	urls := append([]string(nil), c.URLs...)

	if c.URLsFile != "" {
		fromFile, err := readURLsFile(c.URLsFile)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}

	if c.Sitemap != "" {
		filter, err := compileFilter(c.Filter)
		if err != nil {
			return nil, err
		}
		discovered, err := deps.Source.Discover(deps.Ctx, c.Sitemap, filter)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(deps.Stderr, "Discovered %d URLs from %s\n", len(discovered), c.Sitemap)
		urls = append(urls, discovered...)
	}

	return urls, nil
}

// writeResult emits the run JSON to stdout, or to --out when set.
func (c *RunCmd) writeResult(deps *Dependencies, result *harvest.Run) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}
	out = append(out, '\n')

	if c.Out == "" {
		_, err := deps.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(c.Out, out, 0644); err != nil {
		fmt.Fprintf(deps.Stderr, "error: writing %s: %v\n", c.Out, err)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Wrote %s\n", c.Out)
	return nil
}

// summarize prints the human-readable closing lines. They go to stderr
// so stdout carries nothing but the run JSON.
func summarize(w io.Writer, result *harvest.Run) {
	s := result.Stats
	fmt.Fprintf(w, "Processed %d documents: %d succeeded, %d failed, %d inaccessible",
		s.Documents, s.Succeeded, s.Failed, s.Inaccessible)
	if s.Duplicates > 0 {
		fmt.Fprintf(w, " (%d duplicates skipped)", s.Duplicates)
	}
	fmt.Fprintln(w)

	cs := result.Cost
	switch {
	case cs.Calls > 0:
		fmt.Fprintf(w, "Escalated %d documents for $%.4f (baseline $%.4f, saved %.1f%%)\n",
			s.EscalatedDocs, cs.Actual, cs.Baseline, cs.SavingsPct)
	case cs.Baseline > 0:
		fmt.Fprintf(w, "No escalations; escalate-everything baseline was $%.4f\n", cs.Baseline)
	}
	if cs.BudgetExceeded {
		fmt.Fprintf(w, "Budget of $%.4f exhausted; some documents skipped escalation\n", cs.Budget)
	}
}

// readURLsFile loads one URL per line. Blank lines and #-comments are
// skipped.
func readURLsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "reading URLs file: %v", err)
	}
	var urls []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, nil
}
