package poller

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nguyentantai21042004/channel-digest/internal/dedup"
	"github.com/nguyentantai21042004/channel-digest/internal/logger"
	"github.com/nguyentantai21042004/channel-digest/internal/models"
)

// PollOnce visits every channel once. Failures listing a channel or updating
// its baseline are logged and the cycle moves on. Handlers for changed
// channels run inline, or on a bounded errgroup when parallelism > 1; either
// way PollOnce returns only after all of them finished.
func (p *implPoller) PollOnce(ctx context.Context, channels []models.ChannelRef, onNewItem NewItemFunc) CycleStats {
	var stats CycleStats

	var g *errgroup.Group
	if p.parallelism > 1 {
		g = &errgroup.Group{}
		g.SetLimit(p.parallelism)
	}

	for _, ch := range channels {
		// stop taking new channels once cancelled
		if ctx.Err() != nil {
			break
		}
		stats.Checked++
		chCtx := logger.WithFields(ctx, "channel", ch.Name, "channel_id", ch.ID)

		item, err := p.source.LatestItem(chCtx, ch.ID)
		if err != nil {
			stats.SourceErrors++
			p.metrics.SourceError()
			p.logger.Warn(chCtx, "Failed to list latest item of %s: %v", ch.Name, err)
			continue
		}
		if item == nil {
			stats.Empty++
			p.logger.Debug(chCtx, "Channel %s has no items", ch.Name)
			continue
		}

		outcome, err := p.store.CheckAndUpdate(chCtx, ch.ID, item.ID)
		if err != nil {
			stats.StoreErrors++
			p.logger.Error(chCtx, "Failed to update baseline of %s: %v", ch.Name, err)
			continue
		}
		p.metrics.Observed(outcome.String())

		switch outcome {
		case dedup.FirstSeen:
			stats.FirstSeen++
			p.logger.Info(chCtx, "Baseline for %s set to %s", ch.Name, item.ID)
		case dedup.Unchanged:
			stats.Unchanged++
		case dedup.Changed:
			stats.Changed++
			itemCtx := logger.WithFields(chCtx, "item_id", item.ID)
			p.logger.Info(itemCtx, "New item on %s: %s", ch.Name, item.Title)

			ch, it := ch, *item
			if g == nil {
				p.dispatch(itemCtx, ch, it, onNewItem)
				continue
			}
			g.Go(func() error {
				p.dispatch(itemCtx, ch, it, onNewItem)
				return nil
			})
		}
	}

	if g != nil {
		_ = g.Wait()
	}

	p.metrics.CycleCompleted(stats.Checked)
	return stats
}

// dispatch runs the handler and keeps a panic from ending the cycle
func (p *implPoller) dispatch(ctx context.Context, ch models.ChannelRef, item models.Item, onNewItem NewItemFunc) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error(ctx, "Handler for %s item %s panicked: %v", ch.Name, item.ID, rec)
		}
	}()
	onNewItem(ctx, ch, item)
}

// RunForever polls until ctx is cancelled. The interval is waited after each
// cycle returns, so a slow cycle pushes the next one back.
func (p *implPoller) RunForever(ctx context.Context, channels ChannelLister, interval time.Duration, onNewItem NewItemFunc) error {
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", interval)
	}

	p.logger.Info(ctx, "Polling every %s", interval)
	for cycle := 1; ; cycle++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		stats := p.PollOnce(ctx, channels.Channels(), onNewItem)
		p.logger.Debug(ctx, "Cycle %d done in %s: checked=%d changed=%d source_errors=%d",
			cycle, time.Since(start).Round(time.Millisecond), stats.Checked, stats.Changed, stats.SourceErrors)

		if err := p.sleeper.Sleep(ctx, interval); err != nil {
			p.logger.Info(ctx, "Polling stopped after %d cycles", cycle)
			return err
		}
	}
}
