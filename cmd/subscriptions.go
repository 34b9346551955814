package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/mysubs/internal/formatter"
	"github.com/desertthunder/mysubs/internal/models"
	"github.com/desertthunder/mysubs/internal/shared"
	"github.com/desertthunder/mysubs/internal/tasks"
)

// SubscriptionsList prints one page of subscriptions and the cursor for the next.
func (r *Runner) SubscriptionsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.session(ctx); err != nil {
		return err
	}

	page, err := r.youtube.ListSubscriptions(ctx, cmd.String("page"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}

	r.writePlainHeader(fmt.Sprintf("Subscriptions (%d of %d)", len(page.Items), page.TotalResults))
	r.writeItems(page.Items)
	if page.HasMore() {
		r.writePlainln("Next page: mysubs subscriptions list --page %s", page.NextPageCursor)
	}
	return nil
}

// SubscriptionsAll fetches every page, optionally enriching each item with channel statistics.
func (r *Runner) SubscriptionsAll(ctx context.Context, cmd *cli.Command) error {
	maxPages := cmd.Int("max-pages")
	if maxPages < 0 {
		return fmt.Errorf("%w: --max-pages must not be negative", shared.ErrInvalidArgument)
	}

	page, result, err := r.crawl(ctx, cmd.Bool("details"), maxPages)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}

	r.writePlainHeader(fmt.Sprintf("Subscriptions (%d)", len(page.Items)))
	r.writeItems(page.Items)
	if result != nil {
		r.writePlainln("%s", result)
		r.writeFailures(result)
	}
	return nil
}

// SubscriptionsExport crawls every page and writes the list in the requested format.
func (r *Runner) SubscriptionsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	page, result, err := r.crawl(ctx, cmd.Bool("details"), 0)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(page, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("export written", "path", path, "format", format, "items", len(page.Items))
	r.writePlain("✓ Exported %d subscriptions to %s\n", len(page.Items), path)
	if result != nil {
		r.writeFailures(result)
	}
	return nil
}

// Channel prints a channel's details and statistics.
func (r *Runner) Channel(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: channel id", shared.ErrMissingArgument)
	}
	if err := r.session(ctx); err != nil {
		return err
	}

	ch, err := r.youtube.Channel(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(ch, true)
	}

	r.writePlainHeader(ch.Title)
	if desc := strings.TrimSpace(ch.Description); desc != "" {
		r.writePlain("%s\n\n", desc)
	}
	if thumb, ok := models.PickThumbnail(*ch, "high", "medium", "default"); ok {
		r.writePlain("Thumbnail:   %s\n", thumb.URL)
	}
	if s := ch.Statistics; s != nil {
		if s.HiddenSubscriberCount {
			r.writePlain("Subscribers: hidden\n")
		} else {
			r.writePlain("Subscribers: %d\n", s.SubscriberCount)
		}
		r.writePlain("Videos:      %d\n", s.VideoCount)
		r.writePlain("Views:       %d\n", s.ViewCount)
	}
	return nil
}

// Account prints the signed-in user's channel name and picture.
func (r *Runner) Account(ctx context.Context, cmd *cli.Command) error {
	if err := r.session(ctx); err != nil {
		return err
	}

	account, err := r.youtube.Account(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(account, true)
	}
	r.writePlain("Name:    %s\n", account.Name)
	r.writePlain("Picture: %s\n", account.PictureURL)
	return nil
}

// crawl runs the full-library crawl, reporting progress through the logger so stdout stays clean.
func (r *Runner) crawl(ctx context.Context, details bool, maxPages int) (*models.SubscriptionPage, *tasks.EnrichResult, error) {
	if err := r.session(ctx); err != nil {
		return nil, nil, err
	}

	crawler := r.crawler()
	if maxPages > 0 {
		opts := crawler.Opts()
		opts.MaxPages = maxPages
		crawler = tasks.NewCrawler(r.youtube, opts, r.logger)
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()

	page, result, err := crawler.Crawl(ctx, progressCh, details)
	close(progressCh)
	<-done

	return page, result, err
}

func (r *Runner) writeItems(items []models.SubscriptionItem) {
	for i, item := range items {
		line := fmt.Sprintf("%3d. %s", i+1, item.Title)
		if s := item.Statistics; s != nil {
			line += fmt.Sprintf("  (%d videos)", s.VideoCount)
		}
		r.writePlain("%s\n     %s\n", line, item.TargetID())
	}
}

func (r *Runner) writeFailures(result *tasks.EnrichResult) {
	for _, f := range result.Failures {
		r.writePlain("  ✗ %s: %v\n", f.Title, f.Err)
	}
}
