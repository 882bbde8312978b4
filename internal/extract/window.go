package extract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/gmaps/internal/retry"
	"github.com/go-scripts/gmaps/internal/surface"
	"github.com/go-scripts/gmaps/internal/types"
)

// SurfacePosition maps an ordinal to its structural slot in the result list.
// Every listing card takes two slots.
func SurfacePosition(base, ordinal int) int {
	return base + 2*ordinal
}

// PanelMatchesCard reports whether the detail panel shows the listing of the
// clicked card. Right after a click the panel may still show the previous
// listing while the card summary is already current; such a panel's name is
// not part of the summary.
func PanelMatchesCard(detailName, summary string) bool {
	return strings.TrimSpace(detailName) != "" && strings.Contains(summary, detailName)
}

// Window opens result cards and reads their detail panel.
type Window struct {
	sel    Selectors
	timing Timing
	sleep  retry.Sleeper
	logger *log.Logger
}

func NewWindow(sel Selectors, timing Timing, sleep retry.Sleeper, logger *log.Logger) *Window {
	return &Window{sel: sel, timing: timing, sleep: sleep, logger: logger}
}

// OpenAndExtract clicks the card at position until its detail panel is
// verified, reads the listing fields and closes the panel again.
func (w *Window) OpenAndExtract(s surface.Surface, ordinal, position int) (types.ListingRecord, error) {
	card := w.sel.Card(position)
	logger := w.logger.With("result", ordinal+1, "slot", position)

	var name string
	attempts, err := w.timing.Window.Poll(w.pause, func(attempt int) (bool, error) {
		logger.Debug("opening listing", "attempt", attempt)
		if err := s.ScrollIntoView(card, w.timing.ElementTimeout); err != nil {
			return false, err
		}
		if err := s.FindAndClick(card, w.timing.ElementTimeout); err != nil {
			return false, err
		}
		summary := s.ReadText(card)
		name = s.ReadText(w.sel.DetailName)
		if PanelMatchesCard(name, summary) {
			return true, nil
		}
		logger.Warn("detail panel does not match card",
			"attempt", attempt, "max", w.timing.Window.MaxAttempts, "panel", name)
		return false, nil
	})
	if errors.Is(err, retry.ErrExhausted) {
		return types.ListingRecord{}, &WindowTimeoutError{Ordinal: ordinal, Position: position, Attempts: attempts}
	}
	if err != nil {
		return types.ListingRecord{}, fmt.Errorf("open result %d: %w", ordinal+1, err)
	}

	logger.Info("detail panel opened", "name", name)
	w.pause(w.timing.FieldSettle)

	record := types.ListingRecord{
		Name:        name,
		Type:        s.ReadText(w.sel.DetailType),
		Rating:      s.ReadText(w.sel.DetailRating),
		ReviewCount: s.ReadText(w.sel.DetailReviewCount),
		Address:     s.ReadText(w.sel.DetailAddress),
	}
	logger.Debug("listing extracted",
		"type", record.Type, "rating", record.Rating,
		"reviews", record.ReviewCount, "address", record.Address)

	if err := s.FindAndClick(w.sel.ClosePanel, w.timing.ElementTimeout); err != nil {
		return types.ListingRecord{}, fmt.Errorf("close result %d: %w", ordinal+1, err)
	}
	w.pause(w.timing.CloseSettle)
	return record, nil
}

func (w *Window) pause(d time.Duration) {
	if d <= 0 {
		return
	}
	if w.sleep == nil {
		time.Sleep(d)
		return
	}
	w.sleep(d)
}
