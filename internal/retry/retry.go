package retry

import (
	"errors"
	"time"
)

// ErrExhausted is returned by Poll when every attempt ran without success.
var ErrExhausted = errors.New("attempts exhausted")

// Sleeper pauses the caller. time.Sleep is used when nil.
type Sleeper func(time.Duration)

// Policy bounds a polling or retry loop.
type Policy struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Interval    time.Duration `yaml:"interval"`
}

// Poll calls check until it reports done, returns an error, or the policy
// runs out of attempts. Attempts are numbered from 1. Interval is slept
// between attempts, never after the last one.
func (p Policy) Poll(sleep Sleeper, check func(attempt int) (bool, error)) (int, error) {
	if sleep == nil {
		sleep = time.Sleep
	}
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		done, err := check(attempt)
		if err != nil {
			return attempt, err
		}
		if done {
			return attempt, nil
		}
		if attempt < p.MaxAttempts && p.Interval > 0 {
			sleep(p.Interval)
		}
	}
	if p.MaxAttempts < 0 {
		return 0, ErrExhausted
	}
	return p.MaxAttempts, ErrExhausted
}
