package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/go-scripts/gmaps/internal/config"
	"github.com/go-scripts/gmaps/internal/extract"
	"github.com/go-scripts/gmaps/internal/logging"
	"github.com/go-scripts/gmaps/internal/progress"
	"github.com/go-scripts/gmaps/internal/report"
	"github.com/go-scripts/gmaps/internal/runner"
	"github.com/go-scripts/gmaps/internal/sheet"
	"github.com/go-scripts/gmaps/internal/surface"
	"github.com/go-scripts/gmaps/internal/writer"
)

var version = "dev"

// CLI flags structure
type CLIFlags struct {
	ConfigFile  string           `help:"Path to configuration file" default:"config.yaml" short:"c" name:"config"`
	Input       string           `help:"Spreadsheet listing the categories to search" short:"i" type:"path"`
	JSONOut     string           `help:"Path of the JSON output" name:"json-out" type:"path"`
	XLSXOut     string           `help:"Path of the xlsx output" name:"xlsx-out" type:"path"`
	MaxAttempts int              `help:"Attempts per category before it is abandoned" short:"m"`
	Headless    bool             `help:"Run Chrome without a window"`
	Debug       bool             `help:"Enable debug logging" default:"false"`
	Version     kong.VersionFlag `help:"Print version and exit"`
}

// apply layers the flags that were set over cfg.
func (f CLIFlags) apply(cfg *config.Config) {
	if f.Input != "" {
		cfg.Input.Path = f.Input
	}
	if f.JSONOut != "" {
		cfg.Output.JSON = f.JSONOut
	}
	if f.XLSXOut != "" {
		cfg.Output.XLSX = f.XLSXOut
	}
	if f.MaxAttempts != 0 {
		cfg.Base.MaxAttempts = f.MaxAttempts
	}
	if f.Headless {
		cfg.Browser.Headless = true
	}
}

func main() {
	var flags CLIFlags
	kong.Parse(&flags,
		kong.Name("gmaps"),
		kong.Description("Collect the top Google Maps listings of every category in a spreadsheet."),
		kong.Vars{"version": version},
	)

	if err := run(flags); err != nil {
		log.Error("run failed", "err", err)
		os.Exit(1)
	}
}

func run(flags CLIFlags) error {
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		return err
	}
	flags.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closer, err := logging.Setup(os.Stderr, cfg.Logging.Dir, cfg.Logging.Level, flags.Debug)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger = logger.With("run", uuid.NewString()[:8])

	queries, err := sheet.ReadQueries(sheet.Options{
		Path:           cfg.Input.Path,
		Sheet:          cfg.Input.Sheet,
		HeaderRow:      cfg.Input.HeaderRow,
		CategoryColumn: cfg.Input.CategoryColumn,
		CountColumn:    cfg.Input.CountColumn,
	})
	if err != nil {
		return fmt.Errorf("read queries: %w", err)
	}
	logger.Info("starting run", "queries", len(queries), "input", cfg.Input.Path, "max_attempts", cfg.Base.MaxAttempts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := progress.New(os.Stdout)
	defer tracker.Stop()

	r := runner.New(
		runner.Configuration{
			MaxAttempts:  cfg.Base.MaxAttempts,
			BaseURL:      cfg.Base.MapsURL,
			RestartPause: cfg.Base.RestartPause,
			Browser:      cfg.Browser,
		},
		surface.NewChrome(ctx, logger.WithPrefix("chrome")),
		extract.NewExtractor(cfg.Selectors, cfg.Timing, extract.WithLogger(logger.WithPrefix("extract"))),
		runner.WithObserver(tracker),
		runner.WithLogger(logger),
	)

	acc, rep, err := r.Run(queries)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("interrupted: %w", err)
		}
		return err
	}

	w := writer.New(cfg.Output.Sheet)
	if cfg.Output.JSON != "" {
		if err := w.WriteJSON(cfg.Output.JSON, acc); err != nil {
			return fmt.Errorf("write %s: %w", cfg.Output.JSON, err)
		}
		logger.Info("results written", "path", cfg.Output.JSON, "categories", acc.Len())
	}
	if cfg.Output.XLSX != "" {
		if err := w.WriteXLSX(cfg.Output.XLSX, acc); err != nil {
			return fmt.Errorf("write %s: %w", cfg.Output.XLSX, err)
		}
		logger.Info("results written", "path", cfg.Output.XLSX, "categories", acc.Len())
	}

	report.Render(os.Stdout, rep)
	return nil
}
