package usage

import "time"

// Reading is one validated snapshot of the printer's usage counters.
type Reading struct {
	Timestamp               time.Time `json:"timestamp"`
	PagesPrinted            int       `json:"pages_printed"`
	SubscriptionImpressions int       `json:"subscription_impressions"`
	ColourInkLevel          int       `json:"colour_ink_level"`
	BlackInkLevel           int       `json:"black_ink_level"`
}

// Field names used in diagnostics and JSON output.
const (
	FieldPagesPrinted            = "pages_printed"
	FieldSubscriptionImpressions = "subscription_impressions"
	FieldColourInkLevel          = "colour_ink_level"
	FieldBlackInkLevel           = "black_ink_level"
)
