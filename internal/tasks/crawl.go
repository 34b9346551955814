package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/mysubs/internal/models"
	"github.com/desertthunder/mysubs/internal/shared"
)

type enrichJob struct {
	index int
	id    string
	title string
}

type enrichOutcome struct {
	job     enrichJob
	channel *models.SubscriptionItem
	err     error
}

// FetchAll walks every subscriptions page, following each page's cursor, and returns the merged list.
//
// On failure the pages fetched so far are returned alongside the error. When MaxPages stops the walk
// early the returned page keeps its cursor so the caller can resume.
func (c *Crawler) FetchAll(ctx context.Context, prog chan<- ProgressUpdate) (*models.SubscriptionPage, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	all := &models.SubscriptionPage{}
	seen := map[string]bool{}
	cursor := ""

	for step := 1; c.opts.MaxPages <= 0 || step <= c.opts.MaxPages; step++ {
		total := pageEstimate(all)
		c.sendProgress(prog, fetchingPageUpdate(step, total))

		if err := c.limiter.Wait(ctx); err != nil {
			return all, shared.Transport(err)
		}

		page, err := c.client.ListSubscriptions(ctx, cursor)
		if err != nil {
			return all, fmt.Errorf("page %d: %w", step, err)
		}

		all.Append(page)
		c.logger.Debug("fetched subscriptions page", "page", step, "items", len(page.Items))
		c.sendProgress(prog, fetchedPageUpdate(step, total, page, len(all.Items)))

		if !page.HasMore() {
			break
		}
		if seen[page.NextPageCursor] {
			return all, fmt.Errorf("%w: page cursor repeated after page %d", shared.ErrDecode, step)
		}
		seen[page.NextPageCursor] = true
		cursor = page.NextPageCursor
	}
	return all, nil
}

// Enrich fetches channel details for every item with a pool of rate limited workers and fills in
// Statistics in place. Missing descriptions and thumbnails are taken from the channel as well.
//
// Individual failures are collected in the result. An authentication failure or a cancelled context
// stops the run and is returned as the error.
func (c *Crawler) Enrich(ctx context.Context, prog chan<- ProgressUpdate, items []models.SubscriptionItem) (*EnrichResult, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	result := &EnrichResult{Total: len(items)}
	if len(items) == 0 {
		return result, nil
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	jobs := make(chan enrichJob, len(items))
	results := make(chan enrichOutcome, len(items))

	var wg sync.WaitGroup
	for i := 0; i < c.opts.NumWorkers; i++ {
		wg.Add(1)
		go c.enrichWorker(ctx, cancel, &wg, jobs, results)
	}

	c.sendProgress(prog, enrichStartUpdate(len(items)))
	for i, item := range items {
		jobs <- enrichJob{index: i, id: item.TargetID(), title: titleOf(item)}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.err != nil {
			result.Failures = append(result.Failures, EnrichFailure{
				ItemID: res.job.id,
				Title:  res.job.title,
				Err:    res.err,
			})
			c.sendProgress(prog, enrichFailedUpdate(completed, len(items), res.job.title, res.err))
			continue
		}

		item := &items[res.job.index]
		merge(item, res.channel)
		result.Enriched++
		c.sendProgress(prog, enrichedUpdate(completed, len(items), item))
	}

	if err := context.Cause(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// Crawl runs [Crawler.FetchAll] and, when details is set, [Crawler.Enrich] on the result.
func (c *Crawler) Crawl(ctx context.Context, prog chan<- ProgressUpdate, details bool) (*models.SubscriptionPage, *EnrichResult, error) {
	page, err := c.FetchAll(ctx, prog)
	if err != nil {
		return page, nil, err
	}

	var enriched *EnrichResult
	if details {
		enriched, err = c.Enrich(ctx, prog, page.Items)
		if err != nil {
			return page, enriched, err
		}
		if len(enriched.Failures) > 0 {
			c.logger.Warn("some channels could not be enriched", "failed", len(enriched.Failures), "total", enriched.Total)
		}
	}

	c.sendProgress(prog, doneUpdate(len(page.Items)))
	return page, enriched, nil
}

// enrichWorker is a worker goroutine that looks up channels from the jobs channel.
func (c *Crawler) enrichWorker(
	ctx context.Context,
	cancel context.CancelCauseFunc,
	wg *sync.WaitGroup,
	jobs <-chan enrichJob,
	results chan<- enrichOutcome,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return
		}

		ch, err := c.client.Channel(ctx, job.id)
		if fatal(err) {
			cancel(err)
		}
		results <- enrichOutcome{job: job, channel: ch, err: err}
	}
}

// fatal reports errors that would fail the same way for every remaining channel.
func fatal(err error) bool {
	return errors.Is(err, shared.ErrMissingRefreshToken) || errors.Is(err, shared.ErrNotAuthenticated)
}

func merge(item *models.SubscriptionItem, ch *models.SubscriptionItem) {
	if ch == nil {
		return
	}
	item.Statistics = ch.Statistics
	if item.Description == "" {
		item.Description = ch.Description
	}
	if len(item.Thumbnails) == 0 {
		item.Thumbnails = ch.Thumbnails
	}
	if item.ChannelID == "" {
		item.ChannelID = ch.ID
	}
}

// pageEstimate is the expected page count from the provider's page info, 0 when unknown.
func pageEstimate(p *models.SubscriptionPage) int {
	if p.TotalResults <= 0 || p.ResultsPerPage <= 0 {
		return 0
	}
	return (p.TotalResults + p.ResultsPerPage - 1) / p.ResultsPerPage
}
