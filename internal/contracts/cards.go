package contracts

import "time"

// PrimaryCard is the selected, rendered signal for one instrument
type PrimaryCard struct {
	Symbol    string         `json:"symbol"`
	Category  SignalCategory `json:"category"`
	Title     string         `json:"title"`
	Summary   string         `json:"summary"`
	KeyMetric string         `json:"key_metric"`
	Tone      Tone           `json:"tone"`
	Severity  int            `json:"severity"`

	// Optional confidence caveat (wide dispersion / low conviction / cold start)
	ConfidenceCaveat string `json:"confidence_caveat,omitempty"`

	// EarningsContext marks that an earnings recap reference applies
	EarningsContext bool `json:"earnings_context"`

	CreatedAt time.Time `json:"created_at"`
}

// ThemedItem is one member of a themed cluster
type ThemedItem struct {
	Symbol    string `json:"symbol"`
	KeyMetric string `json:"key_metric"`
	Severity  int    `json:"severity"`
}

// ThemedCard clusters >= 2 instruments sharing a themed signal category.
// Constructed only at feed-assembly time; never persisted.
type ThemedCard struct {
	Category    SignalCategory `json:"category"`
	Theme       string         `json:"theme"`
	Items       []ThemedItem   `json:"items"` // severity descending
	Tone        Tone           `json:"tone"`  // from the highest-severity member
	MaxSeverity int            `json:"max_severity"`
}

// FeedItem is a tagged union: exactly one of Primary or Themed is set
type FeedItem struct {
	Primary *PrimaryCard `json:"primary,omitempty"`
	Themed  *ThemedCard  `json:"themed,omitempty"`
}

// EffectiveSeverity is the sort key for feed ordering
func (f FeedItem) EffectiveSeverity() int {
	if f.Themed != nil {
		return f.Themed.MaxSeverity
	}
	if f.Primary != nil {
		return f.Primary.Severity
	}
	return 0
}

// Feed is the final clustered, sorted, truncated output of a watch-list run
type Feed struct {
	Date      time.Time  `json:"date"`
	Items     []FeedItem `json:"items"`
	AllStable bool       `json:"all_stable"`
}
