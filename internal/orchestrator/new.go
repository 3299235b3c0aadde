package orchestrator

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/channel-digest/internal/config"
	"github.com/nguyentantai21042004/channel-digest/internal/dedup"
	"github.com/nguyentantai21042004/channel-digest/internal/logger"
	"github.com/nguyentantai21042004/channel-digest/internal/metrics"
	"github.com/nguyentantai21042004/channel-digest/internal/notifier"
	"github.com/nguyentantai21042004/channel-digest/internal/poller"
	"github.com/nguyentantai21042004/channel-digest/internal/summarizer"
)

// Deps are the collaborators an Orchestrator drives. Poller and Report are
// optional and default to a poller over Source and Store and to the docx
// report writer. A nil Subscriber skips subscribing.
type Deps struct {
	Directory  Directory
	Source     poller.Source
	Store      dedup.Store
	Runner     Runner
	Sender     notifier.Sender
	Poller     poller.Poller
	Report     ReportFunc
	Subscriber Subscriber
}

type implOrchestrator struct {
	deps          Deps
	composer      *notifier.Composer
	logger        logger.Logger
	metrics       *metrics.Metrics
	notifyInitial bool
	attachReport  bool
	reportDir     string
	interval      time.Duration

	set *channelSet

	mu        sync.RWMutex
	recipient string
}

// New creates an Orchestrator
func New(cfg *config.Config, deps Deps, log logger.Logger, m *metrics.Metrics) Orchestrator {
	if deps.Poller == nil {
		deps.Poller = poller.New(deps.Source, deps.Store, log, m,
			poller.WithParallelism(cfg.Performance.MaxConcurrent))
	}
	if deps.Report == nil {
		deps.Report = summarizer.WriteReport
	}
	return &implOrchestrator{
		deps:          deps,
		composer:      notifier.NewComposer(cfg.Notify.ExcerptChars),
		logger:        log,
		metrics:       m,
		notifyInitial: cfg.NotifyInitial(),
		attachReport:  cfg.Notify.AttachReport,
		reportDir:     cfg.Paths.Output,
		interval:      cfg.Poll.Interval,
		set:           newChannelSet(),
	}
}
