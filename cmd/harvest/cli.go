package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/run"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Source harvest.URLSource
	Runner *run.Runner
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Run     RunCmd     `cmd:"" help:"Extract schema fields from a batch of URLs"`
	Plan    PlanCmd    `cmd:"" help:"Estimate escalation cost without fetching anything"`
	Preview PreviewCmd `cmd:"" help:"Print URLs discovered from a site's sitemap"`
	Check   CheckCmd   `cmd:"" help:"Validate a schema file and print its fields"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Schema      string        `arg:"" help:"Schema JSON file"`
	URLs        []string      `arg:"" optional:"" help:"Document URLs"`
	URLsFile    string        `name:"urls-file" help:"File with one URL per line"`
	Sitemap     string        `help:"Discover URLs from this site's sitemap"`
	Filter      []string      `short:"F" help:"Filter discovered URLs by regex (repeatable)"`
	Concurrency int           `short:"c" default:"8" help:"Concurrent document limit"`
	Threshold   float64       `default:"0.6" help:"Confidence below which a document escalates"`
	Budget      float64       `help:"Escalation spend ceiling in USD (0 = unlimited)"`
	Model       string        `help:"Escalation model ID"`
	Backend     string        `default:"anthropic" enum:"anthropic,gemini,none" help:"Escalation backend"`
	Render      bool          `help:"Add a browser tier for blocked or script-rendered pages"`
	Timeout     time.Duration `default:"45s" help:"Per-document pipeline timeout"`
	RPS         float64       `name:"rps" default:"1" help:"Per-domain requests per second (0 = unlimited)"`
	Out         string        `short:"o" help:"Write the run JSON to a file instead of stdout"`
	Verbose     bool          `short:"v" help:"Log fetches and escalations to stderr"`
}

// PlanCmd is the "plan" subcommand.
type PlanCmd struct {
	Schema     string   `arg:"" help:"Schema JSON file"`
	URLs       []string `arg:"" optional:"" help:"Document URLs"`
	URLsFile   string   `name:"urls-file" help:"File with one URL per line"`
	Model      string   `help:"Escalation model ID"`
	CheapRate  float64  `name:"cheap-rate" default:"0.7" help:"Assumed share of documents resolved without the model"`
	ContentLen int      `name:"content-len" default:"8000" help:"Assumed prepared content size per document, in bytes"`
}

// PreviewCmd is the "preview" subcommand.
type PreviewCmd struct {
	Sitemap string   `required:"" help:"Site URL whose sitemap to read"`
	Filter  []string `short:"F" help:"Filter URLs by regex (repeatable)"`
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct {
	Schema string `arg:"" help:"Schema JSON file"`
}
