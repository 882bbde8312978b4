package extract

import (
	"fmt"
	"time"

	"github.com/go-scripts/gmaps/internal/retry"
)

// Selectors locates the parts of the map-search page the extractor reads.
// All values are XPath expressions. ResultCard is a format string taking the
// structural slot index of a card.
type Selectors struct {
	SearchInput       string `yaml:"search_input"`
	ResultCard        string `yaml:"result_card"`
	FirstCardPosition int    `yaml:"first_card_position"`
	DetailName        string `yaml:"detail_name"`
	DetailType        string `yaml:"detail_type"`
	DetailRating      string `yaml:"detail_rating"`
	DetailReviewCount string `yaml:"detail_review_count"`
	DetailAddress     string `yaml:"detail_address"`
	ClosePanel        string `yaml:"close_panel"`
}

// Card returns the selector of the result card at position.
func (s Selectors) Card(position int) string {
	return fmt.Sprintf(s.ResultCard, position)
}

const detailRoot = "//*[@id='QA0Szd']/div/div/div[1]/div[3]/div/div[1]/div/div/div[2]/div[2]/div/div[1]/div[2]/div/div"

// DefaultSelectors returns the selectors of the Google Maps layout.
func DefaultSelectors() Selectors {
	return Selectors{
		SearchInput:       "//input[contains(@class ,'searchboxinput')]",
		ResultCard:        "/html/body/div[1]/div[2]/div[9]/div[8]/div/div/div[1]/div[2]/div/div[1]/div/div/div[1]/div[1]/div[%d]",
		FirstCardPosition: 3,
		DetailName:        "//h1[contains(@class ,'DUwDvf lfPIob')]",
		DetailType:        detailRoot + "[2]/span/span/button",
		DetailRating:      detailRoot + "[1]/div[2]/span[1]/span[1]",
		DetailReviewCount: detailRoot + "[1]/div[2]/span[2]/span/span",
		DetailAddress:     "//*[contains(@data-item-id ,'address')]/div/div[2]/div[1]",
		ClosePanel:        "//*[@id='QA0Szd']/div/div/div[1]/div[3]/div/div[1]/div/div/div[1]/div/div/div[3]/span/button",
	}
}

// Timing holds every pause and bounded loop of an extraction session.
type Timing struct {
	PageIdleTimeout time.Duration `yaml:"page_idle_timeout"`
	ElementTimeout  time.Duration `yaml:"element_timeout"`
	SearchSettle    time.Duration `yaml:"search_settle"`
	LoadPoll        retry.Policy  `yaml:"load_poll"`
	Window          retry.Policy  `yaml:"window"`
	FieldSettle     time.Duration `yaml:"field_settle"`
	CloseSettle     time.Duration `yaml:"close_settle"`
}

// DefaultTiming returns the pauses tuned for the live site.
func DefaultTiming() Timing {
	return Timing{
		PageIdleTimeout: 60 * time.Second,
		ElementTimeout:  30 * time.Second,
		SearchSettle:    3 * time.Second,
		LoadPoll:        retry.Policy{MaxAttempts: 5, Interval: 500 * time.Millisecond},
		Window:          retry.Policy{MaxAttempts: 3, Interval: time.Second},
		FieldSettle:     time.Second,
		CloseSettle:     time.Second,
	}
}
