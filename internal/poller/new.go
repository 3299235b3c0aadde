package poller

import (
	"github.com/nguyentantai21042004/channel-digest/internal/dedup"
	"github.com/nguyentantai21042004/channel-digest/internal/logger"
	"github.com/nguyentantai21042004/channel-digest/internal/metrics"
)

type implPoller struct {
	source      Source
	store       dedup.Store
	logger      logger.Logger
	metrics     *metrics.Metrics
	sleeper     Sleeper
	parallelism int
}

// Option customises a Poller
type Option func(*implPoller)

// WithSleeper replaces the timer used between cycles
func WithSleeper(s Sleeper) Option {
	return func(p *implPoller) {
		if s != nil {
			p.sleeper = s
		}
	}
}

// WithParallelism lets up to n new-item handlers of one cycle run at once.
// Dedup checks stay sequential regardless.
func WithParallelism(n int) Option {
	return func(p *implPoller) {
		if n > 0 {
			p.parallelism = n
		}
	}
}

// New creates a Poller over source and store
func New(source Source, store dedup.Store, log logger.Logger, m *metrics.Metrics, opts ...Option) Poller {
	p := &implPoller{
		source:      source,
		store:       store,
		logger:      log,
		metrics:     m,
		sleeper:     timerSleeper{},
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}
