package finviz

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/wonny/rerate/internal/contracts"
	"github.com/wonny/rerate/pkg/config"
	"github.com/wonny/rerate/pkg/httputil"
	"github.com/wonny/rerate/pkg/logger"
	"github.com/wonny/rerate/pkg/redis"
)

// Positioning deltas need two observations. The scraper keeps the previous
// reading in redis and reports a delta once a prior reading from an earlier
// day exists; until then the source is flagged unavailable.
const (
	priorReadingTTL  = 21 * 24 * time.Hour
	scrapesPerMinute = 30
	requestTimeout   = 15 * time.Second
	browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
	shortFloatLabel  = "Short Float"
	instOwnLabel     = "Inst Own"
)

// Scraper implements the positioning provider by parsing the Finviz quote
// snapshot table
type Scraper struct {
	http    *httputil.Client
	cache   *redis.Cache
	logger  *logger.Logger
	limiter *rate.Limiter

	baseURL string
	enabled bool
}

// reading is one stored observation of the snapshot table
type reading struct {
	Date          string  `json:"date"`
	ShortFloatPct float64 `json:"short_float_pct"`
	InstOwnPct    float64 `json:"inst_own_pct"`
}

// NewScraper creates a Finviz scraper
func NewScraper(cfg *config.Config, log *logger.Logger, redisClient *redis.Client) *Scraper {
	httpClient := httputil.NewWithTimeout(log.Named("finviz"), requestTimeout)
	if redisClient != nil && redisClient.Enabled() {
		httpClient = httpClient.WithRateLimiter(redis.NewRateLimiter(redisClient, "rerate"), redis.FinvizRateLimit)
	}

	return &Scraper{
		http:    httpClient,
		cache:   redis.NewCache(redisClient, "finviz"),
		logger:  log.Named("finviz"),
		limiter: rate.NewLimiter(rate.Limit(float64(scrapesPerMinute)/60.0), 2),
		baseURL: cfg.Finviz.BaseURL,
		enabled: cfg.Finviz.Enabled,
	}
}

// FetchPositioning scrapes today's short-float and institutional-ownership
// readings and diffs them against the stored prior observation.
func (s *Scraper) FetchPositioning(ctx context.Context, symbol string) (*contracts.PositioningData, error) {
	if !s.enabled {
		return &contracts.PositioningData{
			ShortDataUnavailable:     true,
			OwnershipDataUnavailable: true,
		}, nil
	}

	current, err := s.scrape(ctx, symbol)
	if err != nil {
		return nil, err
	}

	data := &contracts.PositioningData{}
	today := time.Now().Format("2006-01-02")

	var prior reading
	key := fmt.Sprintf("positioning:%s", symbol)
	found, err := s.cache.Get(ctx, key, &prior)
	if err != nil {
		s.logger.WithError(err).WithField("symbol", symbol).Warn("Prior positioning read failed")
	}

	if found && prior.Date < today {
		shortDelta := current.ShortFloatPct - prior.ShortFloatPct
		ownDelta := current.InstOwnPct - prior.InstOwnPct
		data.ShortInterestDeltaPct = &shortDelta
		data.InstOwnershipDeltaPct = &ownDelta
	} else {
		// First observation: nothing to diff against yet
		data.ShortDataUnavailable = !found
		data.OwnershipDataUnavailable = !found
	}

	// Same-day re-runs must not collapse the baseline, so only roll the
	// stored reading forward across days
	if !found || prior.Date < today {
		current.Date = today
		if err := s.cache.Set(ctx, key, current, priorReadingTTL); err != nil {
			s.logger.WithError(err).WithField("symbol", symbol).Warn("Positioning baseline write failed")
		}
	}

	return data, nil
}

// scrape fetches the quote page and parses the snapshot table
func (s *Scraper) scrape(ctx context.Context, symbol string) (*reading, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("finviz rate limit: %w", err)
	}

	pageURL := fmt.Sprintf("%s/quote.ashx?t=%s", s.baseURL, symbol)
	resp, err := s.http.GetWithHeaders(ctx, pageURL, map[string]string{
		"User-Agent": browserUserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("finviz fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("finviz fetch %s: status %d", symbol, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("finviz parse %s: %w", symbol, err)
	}

	r := &reading{}
	foundShort, foundOwn := false, false

	// The snapshot table alternates label and value cells
	doc.Find("table.snapshot-table2 td").Each(func(i int, cell *goquery.Selection) {
		label := strings.TrimSpace(cell.Text())
		if label != shortFloatLabel && label != instOwnLabel {
			return
		}
		value, ok := parsePercent(cell.Next().Text())
		if !ok {
			return
		}
		switch label {
		case shortFloatLabel:
			r.ShortFloatPct = value
			foundShort = true
		case instOwnLabel:
			r.InstOwnPct = value
			foundOwn = true
		}
	})

	if !foundShort && !foundOwn {
		return nil, fmt.Errorf("finviz snapshot table missing for %s", symbol)
	}

	return r, nil
}

// parsePercent turns "3.45%" into 3.45; "-" means not reported
func parsePercent(text string) (float64, bool) {
	cleaned := strings.TrimSuffix(strings.TrimSpace(text), "%")
	if cleaned == "" || cleaned == "-" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
