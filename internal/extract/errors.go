package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrSearchTimeout means the location never showed an applied search.
	ErrSearchTimeout = errors.New("search timeout")
	// ErrWindowTimeout means the detail panel never matched the clicked card.
	ErrWindowTimeout = errors.New("window timeout")
)

// SearchTimeoutError reports a search whose result list never loaded.
type SearchTimeoutError struct {
	Category string
	Polls    int
	Location string
}

func (e *SearchTimeoutError) Error() string {
	return fmt.Sprintf("search %q not applied after %d polls (last location %q)", e.Category, e.Polls, e.Location)
}

func (e *SearchTimeoutError) Unwrap() error { return ErrSearchTimeout }

// WindowTimeoutError reports a result card whose detail panel never opened.
type WindowTimeoutError struct {
	Ordinal  int
	Position int
	Attempts int
}

func (e *WindowTimeoutError) Error() string {
	return fmt.Sprintf("detail panel for result %d (slot %d) not opened after %d attempts", e.Ordinal+1, e.Position, e.Attempts)
}

func (e *WindowTimeoutError) Unwrap() error { return ErrWindowTimeout }
