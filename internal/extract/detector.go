package extract

import (
	"errors"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/gmaps/internal/retry"
	"github.com/go-scripts/gmaps/internal/surface"
)

const (
	detailMarker    = "/data="
	resultConfirmed = "!3m1!4b1"
)

// SearchApplied reports whether location has the shape the map surface
// switches to once a search has been applied. The check is structural only:
// it says nothing about whether the results are relevant or even present.
func SearchApplied(location string) bool {
	return strings.Contains(location, detailMarker) && strings.Contains(location, resultConfirmed)
}

// LoadState is the outcome of waiting for a search to apply.
type LoadState int

const (
	Loaded LoadState = iota
	TimedOut
)

func (s LoadState) String() string {
	if s == Loaded {
		return "loaded"
	}
	return "timed out"
}

// Detection describes a finished LoadDetector run.
type Detection struct {
	State    LoadState
	Polls    int
	Location string
}

// LoadDetector polls the surface location until the search is applied.
type LoadDetector struct {
	policy retry.Policy
	sleep  retry.Sleeper
	logger *log.Logger
}

func NewLoadDetector(policy retry.Policy, sleep retry.Sleeper, logger *log.Logger) *LoadDetector {
	return &LoadDetector{policy: policy, sleep: sleep, logger: logger}
}

// Confirm polls the current location. A TimedOut detection is not an error;
// errors are reserved for failures reading the location.
func (d *LoadDetector) Confirm(s surface.Surface) (Detection, error) {
	var location string
	polls, err := d.policy.Poll(d.sleep, func(attempt int) (bool, error) {
		loc, err := s.CurrentLocation()
		if err != nil {
			return false, err
		}
		location = loc
		if SearchApplied(loc) {
			return true, nil
		}
		d.logger.Debug("search not applied yet", "attempt", attempt, "location", loc)
		return false, nil
	})

	switch {
	case err == nil:
		d.logger.Info("search results loaded", "polls", polls)
		return Detection{State: Loaded, Polls: polls, Location: location}, nil
	case errors.Is(err, retry.ErrExhausted):
		return Detection{State: TimedOut, Polls: polls, Location: location}, nil
	default:
		return Detection{State: TimedOut, Polls: polls, Location: location}, err
	}
}
