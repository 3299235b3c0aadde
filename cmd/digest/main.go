package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/channel-digest/internal/config"
	"github.com/nguyentantai21042004/channel-digest/internal/dedup"
	"github.com/nguyentantai21042004/channel-digest/internal/logger"
	"github.com/nguyentantai21042004/channel-digest/internal/metrics"
	"github.com/nguyentantai21042004/channel-digest/internal/notifier"
	"github.com/nguyentantai21042004/channel-digest/internal/orchestrator"
	"github.com/nguyentantai21042004/channel-digest/internal/processor"
	"github.com/nguyentantai21042004/channel-digest/internal/summarizer"
	"github.com/nguyentantai21042004/channel-digest/internal/watcher"
	"github.com/nguyentantai21042004/channel-digest/internal/youtube"
	"github.com/nguyentantai21042004/channel-digest/pkg/executor"
)

type options struct {
	configPath string
	channels   string
	recipient  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "digest",
		Short: "Watch channels and mail a transcript digest for every new video",
		Long: `digest resolves the given channel names, records their current latest
video, then polls them on an interval. Every newly published video is
downloaded, transcribed and summarized, and a notification is sent.

Example usage:
  digest --channels "Go Talks,Fireship" --recipient me@example.com
  digest --config config.yaml            # channels and recipient from config`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "config file")
	root.PersistentFlags().StringVar(&opts.channels, "channels", "", "comma separated channel names (overrides config)")
	root.Flags().StringVar(&opts.recipient, "recipient", "", "notification recipient (overrides notify.recipient)")

	root.AddCommand(newResolveCmd(opts))
	return root
}

// newResolveCmd prints the channel id each name resolves to
func newResolveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [names...]",
		Short: "Resolve channel names to ids without monitoring",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log := logger.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

			names := args
			if len(names) == 0 {
				if names, err = channelNames(cfg, opts); err != nil {
					return err
				}
			}

			yt := youtube.New(cfg.YouTube, log)
			orch := orchestrator.New(cfg, orchestrator.Deps{
				Directory: yt.Directory(),
				Source:    yt.Source(),
				Store:     dedup.NewMemory(),
			}, log, nil)

			channels, err := orch.Bootstrap(cmd.Context(), names)
			if err != nil {
				return err
			}
			for _, ch := range channels {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", ch.ID, ch.Name)
			}
			return nil
		},
	}
}

func runMonitor(ctx context.Context, opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	log.Info(ctx, "========================================")
	log.Info(ctx, "Channel Digest")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "Max Concurrent Processing: %d", cfg.Performance.MaxConcurrent)

	names, err := channelNames(cfg, opts)
	if err != nil {
		return err
	}
	recipient := opts.recipient
	if recipient == "" {
		recipient = cfg.Notify.Recipient
	}
	if recipient == "" {
		return errors.New("no notification recipient: set --recipient or notify.recipient")
	}

	if err := ensureDirectories(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, reg); err != nil {
				log.Error(ctx, "Metrics server error: %v", err)
			}
		}()
		log.Info(ctx, "Metrics: http://%s/metrics", cfg.Metrics.Addr)
	}

	store, err := dedup.New(cfg.Dedup)
	if err != nil {
		return fmt.Errorf("open dedup store: %w", err)
	}
	defer store.Close()

	sender, err := notifier.New(cfg, log)
	if err != nil {
		return err
	}

	yt := youtube.New(cfg.YouTube, log)
	runner := processor.NewDefault(cfg, executor.New(), summarizer.New(cfg.Gemini, log), log, m)

	deps := orchestrator.Deps{
		Directory: yt.Directory(),
		Source:    yt.Source(),
		Store:     store,
		Runner:    runner,
		Sender:    sender,
	}
	if cfg.YouTube.Subscribe {
		deps.Subscriber = yt
	}
	orch := orchestrator.New(cfg, deps, log, m)

	if cfg.Channels.Watch && cfg.Channels.File != "" {
		w, err := watcher.New(cfg.Channels.File, func(ctx context.Context, names []string) error {
			orch.AddChannels(ctx, names)
			return nil
		}, log)
		if err != nil {
			return err
		}
		watchCtx, cancelWatch := context.WithCancel(ctx)
		watchDone := make(chan struct{})
		go func() {
			defer close(watchDone)
			if err := w.Start(watchCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error(ctx, "Watcher error: %v", err)
			}
		}()
		// the watcher goroutine exits before its fsnotify channels are closed
		defer func() {
			cancelWatch()
			<-watchDone
			w.Stop()
		}()
	}

	log.Info(ctx, "Channels: %d requested, dedup backend: %s, notify via %s", len(names), cfg.Dedup.Backend, cfg.Notify.Channel)
	log.Info(ctx, "Press Ctrl+C to stop")

	if err := orch.Run(ctx, names, recipient); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}

	log.Info(ctx, "Channel Digest stopped")
	return nil
}

// channelNames picks --channels over channels.file over channels.names
func channelNames(cfg *config.Config, opts *options) ([]string, error) {
	if opts.channels != "" {
		return config.SplitNames(opts.channels), nil
	}
	if cfg.Channels.File != "" {
		names, err := config.ReadChannelFile(cfg.Channels.File)
		if err != nil {
			return nil, err
		}
		return names, nil
	}
	if len(cfg.Channels.Names) > 0 {
		return cfg.Channels.Names, nil
	}
	return nil, errors.New("no channels: set --channels, channels.file or channels.names")
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Temp,
		cfg.Paths.Output,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
