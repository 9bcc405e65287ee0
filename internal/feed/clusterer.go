package feed

import (
	"sort"
	"time"

	"github.com/wonny/rerate/internal/contracts"
	"github.com/wonny/rerate/pkg/logger"
)

// DefaultFeedSize caps the daily feed length
const DefaultFeedSize = 5

// themes maps clusterable categories to their display themes. Categories
// absent from this map never cluster and always surface as individual cards.
var themes = map[contracts.SignalCategory]string{
	contracts.CategoryEstimateShift:   "Estimate Shock Day",
	contracts.CategoryForcedRepricing: "Broad Repricing",
	contracts.CategoryRiskChange:      "Risk Flags Clustering",
	contracts.CategoryVolatilityEvent: "Volatility Storm",
}

// Clusterer assembles the daily feed from the day's primary cards
type Clusterer struct {
	logger   *logger.Logger
	feedSize int
}

// NewClusterer creates a feed clusterer. feedSize <= 0 falls back to the default.
func NewClusterer(log *logger.Logger, feedSize int) *Clusterer {
	if feedSize <= 0 {
		feedSize = DefaultFeedSize
	}
	return &Clusterer{logger: log, feedSize: feedSize}
}

// Assemble groups same-category themed cards, sorts by effective severity
// descending, and truncates to the feed size. An empty card set yields an
// all-stable feed.
func (c *Clusterer) Assemble(date time.Time, cards []*contracts.PrimaryCard) contracts.Feed {
	feed := contracts.Feed{Date: date}

	if len(cards) == 0 {
		feed.AllStable = true
		return feed
	}

	byCategory := make(map[contracts.SignalCategory][]*contracts.PrimaryCard)
	for _, card := range cards {
		byCategory[card.Category] = append(byCategory[card.Category], card)
	}

	var items []contracts.FeedItem
	for category, group := range byCategory {
		theme, clusterable := themes[category]
		if clusterable && len(group) >= 2 {
			items = append(items, contracts.FeedItem{Themed: c.buildThemed(category, theme, group)})
			continue
		}
		for _, card := range group {
			items = append(items, contracts.FeedItem{Primary: card})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].EffectiveSeverity() > items[j].EffectiveSeverity()
	})

	if len(items) > c.feedSize {
		c.logger.WithFields(map[string]interface{}{
			"total":     len(items),
			"feed_size": c.feedSize,
		}).Debug("Truncating daily feed")
		items = items[:c.feedSize]
	}

	feed.Items = items
	return feed
}

// buildThemed collapses a category group into one themed card. Tone comes
// from the highest-severity member.
func (c *Clusterer) buildThemed(category contracts.SignalCategory, theme string, group []*contracts.PrimaryCard) *contracts.ThemedCard {
	sorted := make([]*contracts.PrimaryCard, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity > sorted[j].Severity
	})

	items := make([]contracts.ThemedItem, 0, len(sorted))
	for _, card := range sorted {
		items = append(items, contracts.ThemedItem{
			Symbol:    card.Symbol,
			KeyMetric: card.KeyMetric,
			Severity:  card.Severity,
		})
	}

	return &contracts.ThemedCard{
		Category:    category,
		Theme:       theme,
		Items:       items,
		Tone:        sorted[0].Tone,
		MaxSeverity: sorted[0].Severity,
	}
}
