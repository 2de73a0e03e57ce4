package main

import (
	"fmt"
	"regexp"

	"github.com/fwojciec/harvest"
)

// Run executes the preview command.
func (c *PreviewCmd) Run(deps *Dependencies) error {
	filter, err := compileFilter(c.Filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	urls, err := deps.Source.Discover(deps.Ctx, c.Sitemap, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	if len(urls) == 0 {
		// Stdout stays pipeable into the run command.
		fmt.Fprintln(deps.Stderr, "No URLs discovered.")
		return nil
	}
	for _, u := range urls {
		fmt.Fprintln(deps.Stdout, u)
	}
	return nil
}

// compileFilter validates filter patterns before any network work.
func compileFilter(patterns []string) (*harvest.URLFilter, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	filter := &harvest.URLFilter{}
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, harvest.Errorf(harvest.EINVALID, "invalid filter pattern %q: %v", pattern, err)
		}
		filter.Include = append(filter.Include, re)
	}
	return filter, nil
}
