package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/anthropic"
	"github.com/fwojciec/harvest/cost"
	"github.com/fwojciec/harvest/extract"
	"github.com/fwojciec/harvest/gemini"
	"github.com/fwojciec/harvest/goquery"
	harvesthttp "github.com/fwojciec/harvest/http"
	"github.com/fwojciec/harvest/htmltomarkdown"
	"github.com/fwojciec/harvest/pattern"
	"github.com/fwojciec/harvest/rod"
	"github.com/fwojciec/harvest/run"
	harvestslog "github.com/fwojciec/harvest/slog"
	"github.com/fwojciec/harvest/trafilatura"
	"github.com/fwojciec/harvest/validate"
	"google.golang.org/genai"
)

func main() {
	// Interrupting a batch mid-run still produces the partial result:
	// dispatch stops, in-flight items are discarded, and the sealed run
	// is written before the process exits.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitCode(err))
	}
}

// ExitCode maps a Run error to the process exit status: 0 for nil, 2 for
// invalid input or configuration, 1 for everything else (inaccessible
// documents, exhausted budgets, interrupted runs).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if harvest.ErrorCode(err) == harvest.EINVALID {
		return 2
	}
	return 1
}

// Main represents the program.
type Main struct {
	// Source discovers URLs for --sitemap flags. A nil Source uses
	// sitemap discovery over plain HTTP. Set before calling Run().
	Source harvest.URLSource
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("harvest"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return harvest.Errorf(harvest.EINVALID, "no command specified. Run 'harvest --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags.
	// Usage mistakes are the fatal class: they map to exit code 2.
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return harvest.Errorf(harvest.EINVALID, "%v", err)
	}

	deps.Source = m.Source
	if deps.Source == nil {
		deps.Source = harvesthttp.NewSitemap(nil)
	}

	// Wire the extraction stack only for the command that runs it
	if cmd == "run" {
		logger := runLogger(stderr, cli.Run.Verbose)
		deps.Source = harvestslog.NewLoggingURLSource(deps.Source, logger)

		model, modelID, err := newModel(ctx, &cli.Run, stderr)
		if err != nil {
			return err
		}
		if model != nil {
			model = harvestslog.NewLoggingModel(model, logger)
		}

		tracker := cost.New(modelID, cost.WithBudget(cli.Run.Budget))

		tiers := []harvest.Fetcher{
			harvestslog.NewLoggingFetcher(harvesthttp.NewFetcher(), logger),
		}
		if cli.Run.Render {
			tiers = append(tiers, harvestslog.NewLoggingFetcher(rod.NewFetcher(), logger))
		}
		chain := &run.Chain{
			Tiers:   tiers,
			Limiter: run.NewDomainLimiter(cli.Run.RPS),
			Delays:  run.DefaultRetryDelays(),
		}
		defer chain.Close()

		deps.Runner = &run.Runner{
			Fetcher: chain,
			Engine: &extract.Engine{
				Extractors: []harvest.Extractor{goquery.New(), pattern.New()},
				Model:      model,
				Distiller:  trafilatura.NewDistiller(),
				Converter:  htmltomarkdown.NewConverter(),
				Tracker:    tracker,
				Threshold:  cli.Run.Threshold,
			},
			Validator:   validate.New(),
			Tracker:     tracker,
			Concurrency: cli.Run.Concurrency,
			ItemTimeout: cli.Run.Timeout,
			Progress:    skipReporter(stderr),
		}
	}

	return kongCtx.Run(deps)
}

// newModel builds the escalation backend for a run. A "none" backend
// returns a nil model: cheap strategies only. The returned model ID
// prices the cost tracker even when no model runs.
func newModel(ctx context.Context, cmd *RunCmd, stderr io.Writer) (harvest.Model, string, error) {
	id := cmd.Model
	if id == "" {
		id = os.Getenv("HARVEST_MODEL")
	}

	switch cmd.Backend {
	case "anthropic":
		if id == "" {
			id = anthropic.DefaultModel
		}
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			fmt.Fprintln(stderr, "ANTHROPIC_API_KEY environment variable not set. Get an API key at https://console.anthropic.com/settings/keys")
			return nil, "", harvest.Errorf(harvest.EINVALID, "ANTHROPIC_API_KEY not set")
		}
		return anthropic.NewClient(key, anthropic.WithModel(id)), id, nil

	case "gemini":
		if id == "" {
			id = gemini.DefaultModel
		}
		key := os.Getenv("GEMINI_API_KEY")
		if key == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return nil, "", harvest.Errorf(harvest.EINVALID, "GEMINI_API_KEY not set")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, "", fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		return gemini.NewModel(client, gemini.WithModel(id)), id, nil
	}

	// Backend "none": the tracker still needs a model ID to price the
	// escalate-everything baseline.
	if id == "" {
		id = anthropic.DefaultModel
	}
	return nil, id, nil
}

// runLogger returns the logger behind the fetch and escalation
// decorators. Logs go to stderr so stdout stays parseable.
func runLogger(stderr io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(stderr, nil))
}

// skipReporter prints items that ended in a fetch failure or timeout.
// Workers report concurrently, so writes are serialized.
func skipReporter(w io.Writer) harvest.ProgressFunc {
	var mu sync.Mutex
	return func(p harvest.Progress) {
		if !p.State.Terminal() || p.Err == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "  skip %s: %s\n", p.Item.URL, harvest.ErrorMessage(p.Err))
	}
}
