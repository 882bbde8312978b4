package extract

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/gmaps/internal/types"
)

func TestSurfacePosition(t *testing.T) {
	var got []int
	for i := 0; i <= 4; i++ {
		got = append(got, SurfacePosition(3, i))
	}
	assert.Equal(t, []int{3, 5, 7, 9, 11}, got)
}

func TestPanelMatchesCard(t *testing.T) {
	tests := []struct {
		name    string
		detail  string
		summary string
		want    bool
	}{
		{"empty detail name", "", "Café A · 4.5★", false},
		{"blank detail name", "   ", "Café A · 4.5★", false},
		{"matching card", "Café A", "Café A · 4.5★", true},
		{"previous listing", "Café B", "Café A · 4.5★", false},
		{"empty summary", "Café A", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PanelMatchesCard(tt.detail, tt.summary))
		})
	}
}

func cafe() fakeCard {
	return fakeCard{
		summary: "Café A\n4,5(1.234)\nCafeteria · Rua Augusta, 100",
		name:    "Café A",
		kind:    "Cafeteria",
		rating:  "4,5",
		reviews: "(1.234)",
		address: "Rua Augusta, 100 - Consolação, São Paulo - SP",
	}
}

func newTestWindow(sl *sleepRecorder) *Window {
	return NewWindow(testSelectors(), DefaultTiming(), sl.sleep, testLogger())
}

func TestWindowVerifiedFirstTry(t *testing.T) {
	s := newFakeSurface(testSelectors())
	s.addCard(5, cafe())
	var sl sleepRecorder

	got, err := newTestWindow(&sl).OpenAndExtract(s, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, types.ListingRecord{
		Name:        "Café A",
		Type:        "Cafeteria",
		Rating:      "4,5",
		ReviewCount: "(1.234)",
		Address:     "Rua Augusta, 100 - Consolação, São Paulo - SP",
	}, got)
	assert.Equal(t, []string{"card[5]", "close"}, s.clicks)
	assert.Equal(t, []string{"card[5]"}, s.scrolls)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, sl.calls, "field settle and close settle")
	assert.Nil(t, s.panel, "panel closed before returning")
}

func TestWindowRetriesStalePanel(t *testing.T) {
	s := newFakeSurface(testSelectors())
	c := cafe()
	c.lag = 2
	s.addCard(3, c)
	s.panel = &fakeCard{name: "Café B"}
	var sl sleepRecorder

	got, err := newTestWindow(&sl).OpenAndExtract(s, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, "Café A", got.Name)
	assert.Equal(t, []string{"card[3]", "card[3]", "card[3]", "close"}, s.clicks)
	assert.Len(t, sl.calls, 4, "two retry pauses plus field and close settle")
}

func TestWindowTimeout(t *testing.T) {
	s := newFakeSurface(testSelectors())
	c := cafe()
	c.lag = 10
	s.addCard(7, c)
	var sl sleepRecorder

	_, err := newTestWindow(&sl).OpenAndExtract(s, 2, 7)
	require.ErrorIs(t, err, ErrWindowTimeout)

	var wt *WindowTimeoutError
	require.True(t, errors.As(err, &wt))
	assert.Equal(t, 2, wt.Ordinal)
	assert.Equal(t, 7, wt.Position)
	assert.Equal(t, 3, wt.Attempts)
	assert.Equal(t, []string{"card[7]", "card[7]", "card[7]"}, s.clicks, "panel never closed")
}

func TestWindowMissingFieldsAreEmpty(t *testing.T) {
	s := newFakeSurface(testSelectors())
	s.addCard(3, fakeCard{summary: "Bar do Zé · Bar", name: "Bar do Zé"})
	var sl sleepRecorder

	got, err := newTestWindow(&sl).OpenAndExtract(s, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, types.ListingRecord{Name: "Bar do Zé"}, got)
}

func TestWindowClickFailure(t *testing.T) {
	s := newFakeSurface(testSelectors())
	s.addCard(3, cafe())
	s.clickErr["card[3]"] = errors.New("context deadline exceeded")
	var sl sleepRecorder

	_, err := newTestWindow(&sl).OpenAndExtract(s, 0, 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrWindowTimeout)
	assert.Len(t, s.clicks, 1)
}

func TestWindowCloseFailure(t *testing.T) {
	s := newFakeSurface(testSelectors())
	s.addCard(3, cafe())
	s.clickErr["close"] = errors.New("node not visible")
	var sl sleepRecorder

	_, err := newTestWindow(&sl).OpenAndExtract(s, 0, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close result 1")
}
