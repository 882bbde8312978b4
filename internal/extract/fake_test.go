package extract

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

const appliedLocation = "https://www.google.com/maps/search/restaurante/@-23.55,-46.63,13z/data=!3m1!4b1"

// fakeCard is one listing of the scripted result list.
type fakeCard struct {
	summary string
	name    string
	kind    string
	rating  string
	reviews string
	address string
	// lag is the number of clicks that leave the previous panel on screen.
	lag int
}

// fakeSurface scripts a map-search page: a location sequence, result cards
// keyed by selector and a detail panel that follows clicks.
type fakeSurface struct {
	sel       Selectors
	idle      bool
	locations []string
	locErr    error
	typeErr   error
	clickErr  map[string]error
	cards     map[string]*fakeCard
	panel     *fakeCard

	calls    int
	locReads int
	typed    []string
	clicks   []string
	scrolls  []string
}

func newFakeSurface(sel Selectors) *fakeSurface {
	return &fakeSurface{
		sel:       sel,
		idle:      true,
		locations: []string{appliedLocation},
		clickErr:  map[string]error{},
		cards:     map[string]*fakeCard{},
	}
}

func (f *fakeSurface) addCard(position int, c fakeCard) {
	f.cards[f.sel.Card(position)] = &c
}

func (f *fakeSurface) Navigate(string) error {
	f.calls++
	return nil
}

func (f *fakeSurface) AwaitIdle(time.Duration) bool {
	f.calls++
	return f.idle
}

func (f *fakeSurface) CurrentLocation() (string, error) {
	f.calls++
	f.locReads++
	if f.locErr != nil {
		return "", f.locErr
	}
	if len(f.locations) == 0 {
		return "", nil
	}
	return f.locations[min(f.locReads, len(f.locations))-1], nil
}

func (f *fakeSurface) FindAndClick(selector string, _ time.Duration) error {
	f.calls++
	f.clicks = append(f.clicks, selector)
	if err := f.clickErr[selector]; err != nil {
		return err
	}
	if selector == f.sel.ClosePanel {
		f.panel = nil
		return nil
	}
	if c, ok := f.cards[selector]; ok {
		if c.lag > 0 {
			c.lag--
			return nil
		}
		f.panel = c
	}
	return nil
}

func (f *fakeSurface) ScrollIntoView(selector string, _ time.Duration) error {
	f.calls++
	f.scrolls = append(f.scrolls, selector)
	return nil
}

func (f *fakeSurface) TypeText(_ string, text string, _ bool) error {
	f.calls++
	f.typed = append(f.typed, text)
	return f.typeErr
}

func (f *fakeSurface) ReadText(selector string) string {
	f.calls++
	if c, ok := f.cards[selector]; ok {
		return c.summary
	}
	if f.panel == nil {
		return ""
	}
	switch selector {
	case f.sel.DetailName:
		return f.panel.name
	case f.sel.DetailType:
		return f.panel.kind
	case f.sel.DetailRating:
		return f.panel.rating
	case f.sel.DetailReviewCount:
		return f.panel.reviews
	case f.sel.DetailAddress:
		return f.panel.address
	}
	return ""
}

func (f *fakeSurface) Close() error { return nil }

func (f *fakeSurface) cardClicks() []string {
	var out []string
	for _, c := range f.clicks {
		if _, ok := f.cards[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

type sleepRecorder struct {
	calls []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) {
	s.calls = append(s.calls, d)
}

func testSelectors() Selectors {
	return Selectors{
		SearchInput:       "search",
		ResultCard:        "card[%d]",
		FirstCardPosition: 3,
		DetailName:        "name",
		DetailType:        "type",
		DetailRating:      "rating",
		DetailReviewCount: "reviews",
		DetailAddress:     "address",
		ClosePanel:        "close",
	}
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}
