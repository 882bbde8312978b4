package extract

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/gmaps/internal/retry"
	"github.com/go-scripts/gmaps/internal/surface"
	"github.com/go-scripts/gmaps/internal/types"
)

// Extractor runs one query against a surface: it submits the search, waits
// for the result list and reads the requested number of listings.
type Extractor struct {
	sel      Selectors
	timing   Timing
	sleep    retry.Sleeper
	logger   *log.Logger
	detector *LoadDetector
	window   *Window
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSleeper replaces time.Sleep for every pause of the session.
func WithSleeper(sleep retry.Sleeper) Option {
	return func(e *Extractor) { e.sleep = sleep }
}

// WithLogger sets the logger; log.Default() is used otherwise.
func WithLogger(logger *log.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

func NewExtractor(sel Selectors, timing Timing, opts ...Option) *Extractor {
	e := &Extractor{sel: sel, timing: timing, sleep: time.Sleep, logger: log.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if e.sleep == nil {
		e.sleep = time.Sleep
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	e.detector = NewLoadDetector(timing.LoadPoll, e.sleep, e.logger)
	e.window = NewWindow(sel, timing, e.sleep, e.logger)
	return e
}

// Run extracts q.RequestedCount listings. It returns either exactly that many
// records or an error; a failure on any ordinal discards the records already
// read.
func (e *Extractor) Run(s surface.Surface, q types.Query) (types.ResultSet, error) {
	if q.RequestedCount < 0 {
		return nil, fmt.Errorf("query %q: negative result count %d", q.Category, q.RequestedCount)
	}
	if q.RequestedCount == 0 {
		return types.ResultSet{}, nil
	}

	logger := e.logger.With("category", q.Category)
	logger.Info("collecting listings", "requested", q.RequestedCount)

	if !s.AwaitIdle(e.timing.PageIdleTimeout) {
		logger.Warn("page not idle, searching anyway", "timeout", e.timing.PageIdleTimeout)
	}
	if err := s.TypeText(e.sel.SearchInput, q.Category, true); err != nil {
		return nil, fmt.Errorf("submit search %q: %w", q.Category, err)
	}
	if e.timing.SearchSettle > 0 {
		e.sleep(e.timing.SearchSettle)
	}

	detection, err := e.detector.Confirm(s)
	if err != nil {
		return nil, fmt.Errorf("wait for search %q: %w", q.Category, err)
	}
	if detection.State == TimedOut {
		return nil, &SearchTimeoutError{Category: q.Category, Polls: detection.Polls, Location: detection.Location}
	}

	records := make(types.ResultSet, 0, min(q.RequestedCount, 64))
	for ordinal := range q.RequestedCount {
		record, err := e.window.OpenAndExtract(s, ordinal, SurfacePosition(e.sel.FirstCardPosition, ordinal))
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	logger.Info("listings collected", "count", len(records))
	return records, nil
}
