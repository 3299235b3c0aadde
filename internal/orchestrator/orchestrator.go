package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/channel-digest/internal/logger"
	"github.com/nguyentantai21042004/channel-digest/internal/models"
	"github.com/nguyentantai21042004/channel-digest/internal/youtube"
)

func (o *implOrchestrator) Bootstrap(ctx context.Context, names []string) ([]models.ChannelRef, error) {
	var channels []models.ChannelRef
	seen := make(map[string]bool)

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		ref, err := o.deps.Directory.Resolve(ctx, name)
		if err != nil {
			if errors.Is(err, youtube.ErrUnauthorized) {
				return nil, fmt.Errorf("resolve channel %q: %w", name, err)
			}
			o.logger.Warn(ctx, "Dropping channel %q: %v", name, err)
			continue
		}
		if seen[ref.ID] {
			o.logger.Warn(ctx, "Channel %q resolves to already monitored %s, skipping", name, ref.ID)
			continue
		}
		seen[ref.ID] = true

		o.logger.Info(ctx, "Resolved channel %q to %s", name, ref.ID)
		channels = append(channels, ref)
	}

	return channels, nil
}

func (o *implOrchestrator) SubscribeAll(ctx context.Context, channels []models.ChannelRef) {
	if o.deps.Subscriber == nil {
		return
	}
	for _, ch := range channels {
		if ctx.Err() != nil {
			return
		}
		chCtx := logger.WithFields(ctx, "channel", ch.Name, "channel_id", ch.ID)
		if err := o.deps.Subscriber.Subscribe(chCtx, ch); err != nil {
			o.logger.Warn(chCtx, "Failed to subscribe to %s: %v", ch.Name, err)
			continue
		}
		o.logger.Info(chCtx, "Subscribed to %s", ch.Name)
	}
}

func (o *implOrchestrator) SeedAndNotifyInitial(ctx context.Context, channels []models.ChannelRef, recipient string) {
	for _, ch := range channels {
		if ctx.Err() != nil {
			return
		}
		chCtx := logger.WithFields(ctx, "channel", ch.Name, "channel_id", ch.ID)

		item, err := o.deps.Source.LatestItem(chCtx, ch.ID)
		if err != nil {
			o.logger.Warn(chCtx, "Failed to list latest item of %s, baseline deferred to first poll: %v", ch.Name, err)
			continue
		}
		if item == nil {
			o.logger.Info(chCtx, "Channel %s has no items yet", ch.Name)
			continue
		}

		if err := o.deps.Store.Seed(chCtx, ch.ID, item.ID); err != nil {
			o.logger.Error(chCtx, "Failed to seed baseline of %s: %v", ch.Name, err)
			continue
		}
		o.logger.Info(chCtx, "Seeded %s with %s", ch.Name, item.ID)

		// the item current at startup is announced once as the initial state
		if o.notifyInitial {
			o.HandleItem(logger.WithFields(chCtx, "item_id", item.ID), recipient, ch, *item)
		}
	}
}

func (o *implOrchestrator) StartMonitoring(ctx context.Context, channels []models.ChannelRef, recipient string, interval time.Duration) error {
	o.setRecipient(recipient)
	for _, ch := range channels {
		o.set.add(ch)
	}

	o.logger.Info(ctx, "Monitoring %d channels", len(o.set.Channels()))
	return o.deps.Poller.RunForever(ctx, o.set, interval, func(ctx context.Context, ch models.ChannelRef, item models.Item) {
		o.HandleItem(ctx, o.currentRecipient(), ch, item)
	})
}

func (o *implOrchestrator) Run(ctx context.Context, names []string, recipient string) error {
	channels, err := o.Bootstrap(ctx, names)
	if ctx.Err() != nil {
		o.logger.Info(ctx, "Stopped during bootstrap")
		return nil
	}
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		return ErrNoChannels
	}

	if o.deps.Subscriber != nil {
		o.SubscribeAll(ctx, channels)
	}

	o.SeedAndNotifyInitial(ctx, channels, recipient)

	err = o.StartMonitoring(ctx, channels, recipient, o.interval)
	if errors.Is(err, context.Canceled) {
		o.logger.Info(ctx, "Monitoring stopped")
		return nil
	}
	return err
}

func (o *implOrchestrator) AddChannels(ctx context.Context, names []string) []models.ChannelRef {
	var added []models.ChannelRef
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || o.set.hasName(name) {
			continue
		}

		ref, err := o.deps.Directory.Resolve(ctx, name)
		if err != nil {
			o.logger.Warn(ctx, "Dropping added channel %q: %v", name, err)
			continue
		}
		if !o.set.add(ref) {
			continue
		}

		o.logger.Info(ctx, "Added channel %q (%s), baseline set on next poll", name, ref.ID)
		added = append(added, ref)
	}
	return added
}

func (o *implOrchestrator) HandleItem(ctx context.Context, recipient string, ch models.ChannelRef, item models.Item) {
	result := o.deps.Runner.Run(ctx, item.URL)

	msg := o.composer.Compose(recipient, ch, item, result)

	if o.attachReport {
		path, err := o.deps.Report(item, result, o.reportDir)
		if err != nil {
			o.logger.Warn(ctx, "Failed to write report for %s: %v", item.ID, err)
		} else {
			msg.Attachments = append(msg.Attachments, path)
		}
	}

	if err := o.deps.Sender.Notify(ctx, msg); err != nil {
		o.metrics.Notified(false)
		o.logger.Error(ctx, "Notification for %s on %s not delivered: %v", item.ID, ch.Name, err)
		return
	}
	o.metrics.Notified(true)
	o.logger.Info(ctx, "Notified %s about %s", recipient, item.URL)
}

func (o *implOrchestrator) setRecipient(r string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recipient = r
}

func (o *implOrchestrator) currentRecipient() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.recipient
}
