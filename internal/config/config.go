package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/go-scripts/gmaps/internal/extract"
	"github.com/go-scripts/gmaps/internal/surface"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "config.yaml"

// Placeholders replaced by the working directory in every string value.
var placeholders = []string{"{base_dir}", "|Diretorio_atual|"}

// Config is the full configuration of a run.
type Config struct {
	Base      Base              `yaml:"base"`
	Input     Input             `yaml:"input"`
	Output    Output            `yaml:"output"`
	Logging   Logging           `yaml:"logging"`
	Browser   surface.Config    `yaml:"browser"`
	Timing    extract.Timing    `yaml:"timing"`
	Selectors extract.Selectors `yaml:"selectors"`
}

type Base struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	MapsURL      string        `yaml:"maps_url"`
	RestartPause time.Duration `yaml:"restart_pause"`
}

// Input describes the sheet listing the categories to search.
type Input struct {
	Path           string `yaml:"path"`
	Sheet          string `yaml:"sheet"`
	HeaderRow      int    `yaml:"header_row"`
	CategoryColumn string `yaml:"category_column"`
	CountColumn    string `yaml:"count_column"`
}

type Output struct {
	JSON  string `yaml:"json"`
	XLSX  string `yaml:"xlsx"`
	Sheet string `yaml:"sheet"`
}

type Logging struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

// Default returns the built-in configuration every file is layered on.
func Default() Config {
	return Config{
		Base: Base{
			MaxAttempts:  3,
			MapsURL:      "https://www.google.com/maps",
			RestartPause: 5 * time.Second,
		},
		Input: Input{
			Path:           "queries.xlsx",
			HeaderRow:      1,
			CategoryColumn: "Category",
			CountColumn:    "Count",
		},
		Output: Output{
			JSON:  "results/results.json",
			XLSX:  "results/results.xlsx",
			Sheet: "Listings",
		},
		Logging: Logging{
			Dir:   "logs",
			Level: "info",
		},
		Browser:   surface.DefaultConfig(),
		Timing:    extract.DefaultTiming(),
		Selectors: extract.DefaultSelectors(),
	}
}

// Load reads the YAML file at path over the defaults. A missing file at the
// default path is not an error; any other missing file is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultPath {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return cfg, fmt.Errorf("resolve working directory: %w", err)
	}
	if err := Parse(data, wd, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data into cfg after substituting the path placeholders with
// baseDir. Keys absent from data keep their value in cfg.
func Parse(data []byte, baseDir string, cfg *Config) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Kind == 0 {
		return nil
	}
	expand(&doc, baseDir)
	return doc.Decode(cfg)
}

func expand(n *yaml.Node, baseDir string) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		for _, p := range placeholders {
			n.Value = strings.ReplaceAll(n.Value, p, baseDir)
		}
	}
	for _, c := range n.Content {
		expand(c, baseDir)
	}
}

// Validate reports the first setting that would make a run misbehave.
func (c Config) Validate() error {
	switch {
	case c.Base.MaxAttempts < 1:
		return fmt.Errorf("base.max_attempts must be at least 1, got %d", c.Base.MaxAttempts)
	case strings.TrimSpace(c.Base.MapsURL) == "":
		return errors.New("base.maps_url is required")
	case strings.TrimSpace(c.Input.Path) == "":
		return errors.New("input.path is required")
	case c.Input.HeaderRow < 1:
		return fmt.Errorf("input.header_row must be at least 1, got %d", c.Input.HeaderRow)
	case strings.TrimSpace(c.Input.CategoryColumn) == "" || strings.TrimSpace(c.Input.CountColumn) == "":
		return errors.New("input.category_column and input.count_column are required")
	case c.Output.JSON == "" && c.Output.XLSX == "":
		return errors.New("at least one of output.json and output.xlsx is required")
	case strings.Count(c.Selectors.ResultCard, "%d") != 1:
		return fmt.Errorf("selectors.result_card must contain exactly one %%d, got %q", c.Selectors.ResultCard)
	case c.Selectors.FirstCardPosition < 1:
		return fmt.Errorf("selectors.first_card_position must be at least 1, got %d", c.Selectors.FirstCardPosition)
	case c.Timing.LoadPoll.MaxAttempts < 1:
		return fmt.Errorf("timing.load_poll.max_attempts must be at least 1, got %d", c.Timing.LoadPoll.MaxAttempts)
	case c.Timing.Window.MaxAttempts < 1:
		return fmt.Errorf("timing.window.max_attempts must be at least 1, got %d", c.Timing.Window.MaxAttempts)
	}
	return nil
}
