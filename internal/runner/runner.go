package runner

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/gmaps/internal/extract"
	"github.com/go-scripts/gmaps/internal/retry"
	"github.com/go-scripts/gmaps/internal/surface"
	"github.com/go-scripts/gmaps/internal/types"
)

// Launcher creates surfaces and replaces broken ones.
type Launcher interface {
	Launch(cfg surface.Config) (surface.Surface, error)
	Relaunch(old surface.Surface) (surface.Surface, error)
}

// Session extracts the result set of one query.
type Session interface {
	Run(s surface.Surface, q types.Query) (types.ResultSet, error)
}

// Configuration holds the run controller settings.
type Configuration struct {
	MaxAttempts  int
	BaseURL      string
	RestartPause time.Duration
	Browser      surface.Config
}

// Runner drives every query of a run through a session, restarting the
// surface between failed attempts. It owns the surface for the whole run.
type Runner struct {
	config   Configuration
	launcher Launcher
	session  Session
	observer Observer
	logger   *log.Logger
	sleep    retry.Sleeper

	surface surface.Surface
	dirty   bool
}

// Option configures a Runner.
type Option func(*Runner)

func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

func WithSleeper(sleep retry.Sleeper) Option {
	return func(r *Runner) { r.sleep = sleep }
}

// New creates a Runner.
func New(config Configuration, launcher Launcher, session Session, opts ...Option) *Runner {
	r := &Runner{
		config:   config,
		launcher: launcher,
		session:  session,
		observer: nopObserver{},
		logger:   log.Default(),
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.observer == nil {
		r.observer = nopObserver{}
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	if r.sleep == nil {
		r.sleep = time.Sleep
	}
	return r
}

// Run processes queries in order and returns the result sets of the queries
// that succeeded. A query that exhausts its attempts is left out and the run
// moves on. The returned error is reserved for failures that leave the run
// without a usable surface; no results are returned with it.
func (r *Runner) Run(queries []types.Query) (*types.Accumulator, *Report, error) {
	s, err := r.launcher.Launch(r.config.Browser)
	if err != nil {
		return nil, nil, fmt.Errorf("launch surface: %w", err)
	}
	r.surface = s
	r.dirty = false
	defer r.closeSurface()

	if err := r.surface.Navigate(r.config.BaseURL); err != nil {
		r.logger.Error("opening base location", "url", r.config.BaseURL, "err", err)
		r.dirty = true
	}

	acc := types.NewAccumulator()
	report := &Report{}
	for i, q := range queries {
		r.observer.QueryStarted(i, len(queries), q)
		outcome, results, err := r.runQuery(q)
		if err != nil {
			return nil, nil, err
		}
		if outcome.Err == nil {
			acc.Put(q.Category, results)
		}
		report.Outcomes = append(report.Outcomes, outcome)
		r.observer.QueryFinished(outcome)
	}

	r.logger.Info("run finished",
		"queries", len(queries), "succeeded", report.Succeeded(), "abandoned", report.Abandoned())
	return acc, report, nil
}

func (r *Runner) runQuery(q types.Query) (Outcome, types.ResultSet, error) {
	logger := r.logger.With("category", q.Category)
	outcome := Outcome{Category: q.Category, Requested: q.RequestedCount}

	var (
		results types.ResultSet
		lastErr error
	)
	policy := retry.Policy{MaxAttempts: r.config.MaxAttempts}
	attempts, err := policy.Poll(r.sleep, func(attempt int) (bool, error) {
		if r.dirty {
			if err := r.restart(); err != nil {
				return false, err
			}
		}
		if r.dirty {
			lastErr = errRestartNavigation
			logger.Error("collecting listings failed",
				"attempt", attempt, "max", r.config.MaxAttempts, "kind", Classify(lastErr), "err", lastErr)
			r.observer.AttemptFailed(q, attempt, lastErr)
			return false, nil
		}

		rs, err := r.session.Run(r.surface, q)
		if err != nil {
			lastErr = err
			r.dirty = true
			logger.Error("collecting listings failed",
				"attempt", attempt, "max", r.config.MaxAttempts, "kind", Classify(err), "err", err)
			r.observer.AttemptFailed(q, attempt, err)
			return false, nil
		}
		results = rs
		return true, nil
	})
	outcome.Attempts = attempts

	switch {
	case err == nil:
		outcome.Collected = len(results)
		logger.Info("listings stored", "count", len(results), "attempts", attempts)
		return outcome, results, nil
	case errors.Is(err, retry.ErrExhausted):
		outcome.Err = lastErr
		outcome.Kind = Classify(lastErr)
		logger.Error("giving up on category", "attempts", attempts, "kind", outcome.Kind)
		return outcome, nil, nil
	default:
		return outcome, nil, err
	}
}

var errRestartNavigation = errors.New("restarted surface did not reach the base location")

// restart replaces the surface with a fresh one and reopens the base
// location. Only a failed relaunch is returned; a failed navigation leaves
// the surface dirty for the next attempt.
func (r *Runner) restart() error {
	r.logger.Info("restarting browser")
	next, err := r.launcher.Relaunch(r.surface)
	if err != nil {
		if !errors.Is(err, surface.ErrLaunchNotConfigured) {
			r.surface = nil
		}
		return fmt.Errorf("restart surface: %w", err)
	}
	r.surface = next
	r.dirty = false

	if err := r.surface.Navigate(r.config.BaseURL); err != nil {
		r.logger.Error("opening base location after restart", "url", r.config.BaseURL, "err", err)
		r.dirty = true
		return nil
	}
	if r.config.RestartPause > 0 {
		r.sleep(r.config.RestartPause)
	}
	return nil
}

func (r *Runner) closeSurface() {
	if r.surface == nil {
		return
	}
	if err := r.surface.Close(); err != nil {
		r.logger.Warn("closing browser", "err", err)
	}
	r.surface = nil
}

// Failure kinds reported by Classify.
const (
	KindSearchTimeout       = "search_timeout"
	KindWindowTimeout       = "window_timeout"
	KindLaunchNotConfigured = "launch_not_configured"
	KindSurface             = "surface"
)

// Classify names the failure kind of err.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, extract.ErrSearchTimeout):
		return KindSearchTimeout
	case errors.Is(err, extract.ErrWindowTimeout):
		return KindWindowTimeout
	case errors.Is(err, surface.ErrLaunchNotConfigured):
		return KindLaunchNotConfigured
	default:
		return KindSurface
	}
}
