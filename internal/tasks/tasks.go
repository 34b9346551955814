package tasks

import (
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/mysubs/internal/models"
	"github.com/desertthunder/mysubs/internal/services"
	"github.com/desertthunder/mysubs/internal/shared"
)

const (
	defaultWorkers   = 5
	maxWorkers       = 10
	defaultRateLimit = 5.0
)

// CrawlOpts contains configuration for full-library crawls.
type CrawlOpts struct {
	NumWorkers int     // Concurrent channel lookups (default: 5, max: 10)
	RateLimit  float64 // Requests per second shared by all workers (default: 5)
	MaxPages   int     // Stop after this many pages, 0 for no limit
}

// EnrichFailure records a channel that could not be enriched.
type EnrichFailure struct {
	ItemID string
	Title  string
	Err    error
}

// EnrichResult summarizes an [Crawler.Enrich] run.
type EnrichResult struct {
	Total    int
	Enriched int
	Failures []EnrichFailure
}

// Crawler walks the signed-in user's subscriptions and optionally fetches channel details.
type Crawler struct {
	client  services.SubscriptionsClient
	opts    CrawlOpts
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewCrawler creates a Crawler. Zero option values fall back to defaults.
func NewCrawler(client services.SubscriptionsClient, opts CrawlOpts, logger *log.Logger) *Crawler {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Crawler{
		client:  client,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		logger:  shared.WithLogger(logger, "component", "tasks"),
	}
}

// Opts returns the effective options after defaults were applied.
func (c *Crawler) Opts() CrawlOpts {
	return c.opts
}

func (c *Crawler) ready() error {
	if c == nil || c.client == nil {
		return fmt.Errorf("%w: subscriptions client not initialized", shared.ErrNotAuthenticated)
	}
	return nil
}

// sendProgress sends a progress update through the channel without blocking.
func (c *Crawler) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (r *EnrichResult) String() string {
	return fmt.Sprintf("%d/%d channels enriched, %d failed", r.Enriched, r.Total, len(r.Failures))
}

func titleOf(item models.SubscriptionItem) string {
	if item.Title != "" {
		return item.Title
	}
	return item.TargetID()
}
