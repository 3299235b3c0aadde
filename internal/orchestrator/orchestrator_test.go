package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/channel-digest/internal/config"
	"github.com/nguyentantai21042004/channel-digest/internal/dedup"
	"github.com/nguyentantai21042004/channel-digest/internal/logger"
	"github.com/nguyentantai21042004/channel-digest/internal/metrics"
	"github.com/nguyentantai21042004/channel-digest/internal/models"
	"github.com/nguyentantai21042004/channel-digest/internal/notifier"
	"github.com/nguyentantai21042004/channel-digest/internal/poller"
	"github.com/nguyentantai21042004/channel-digest/internal/processor"
	"github.com/nguyentantai21042004/channel-digest/internal/youtube"
)

type fakeDirectory struct {
	known map[string]string
	err   error
	calls int
}

func (d *fakeDirectory) Resolve(_ context.Context, name string) (models.ChannelRef, error) {
	d.calls++
	if d.err != nil {
		return models.ChannelRef{}, d.err
	}
	id, ok := d.known[name]
	if !ok {
		return models.ChannelRef{}, fmt.Errorf("%w: %q", youtube.ErrChannelNotFound, name)
	}
	return models.ChannelRef{Name: name, ID: id}, nil
}

// sequenceSource serves ids per channel in order, repeating the last one
type sequenceSource struct {
	mu    sync.Mutex
	seq   map[string][]string
	calls map[string]int
}

func (s *sequenceSource) LatestItem(_ context.Context, channelID string) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, ok := s.seq[channelID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown channel", youtube.ErrSource)
	}
	n := s.calls[channelID]
	s.calls[channelID]++
	if n >= len(ids) {
		n = len(ids) - 1
	}
	id := ids[n]
	return &models.Item{ID: id, Title: "Video " + id, URL: "https://www.youtube.com/watch?v=" + id}, nil
}

type fakeRunner struct {
	mu   sync.Mutex
	urls []string
}

func (r *fakeRunner) Run(_ context.Context, itemURL string) models.PipelineResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, itemURL)
	transcript, summary := "transcript of "+itemURL, "summary"
	return models.PipelineResult{Transcript: &transcript, Summary: &summary}
}

type fakeSender struct {
	mu   sync.Mutex
	msgs []notifier.Message
	err  error
}

func (s *fakeSender) Notify(_ context.Context, msg notifier.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return s.err
}

type fakeSubscriber struct {
	mu   sync.Mutex
	ids  []string
	fail map[string]bool
}

func (s *fakeSubscriber) Subscribe(_ context.Context, ch models.ChannelRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, ch.ID)
	if s.fail[ch.ID] {
		return errors.New("subscriptionForbidden")
	}
	return nil
}

type cancelAfterSleeper struct {
	n      int
	calls  int
	cancel context.CancelFunc
}

func (c *cancelAfterSleeper) Sleep(ctx context.Context, _ time.Duration) error {
	c.calls++
	if c.calls >= c.n {
		c.cancel()
	}
	return ctx.Err()
}

type harness struct {
	cfg     *config.Config
	dir     *fakeDirectory
	source  *sequenceSource
	store   *dedup.MemoryStore
	runner  Runner
	sender  *fakeSender
	metrics *metrics.Metrics
	logs    *bytes.Buffer
	log     logger.Logger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logs := &bytes.Buffer{}
	return &harness{
		cfg: &config.Config{
			Poll:        config.PollConfig{Interval: time.Minute},
			Notify:      config.NotifyConfig{ExcerptChars: 200},
			Paths:       config.PathsConfig{Output: t.TempDir(), Temp: filepath.Join(t.TempDir(), "temp")},
			Performance: config.PerformanceConfig{MaxConcurrent: 1},
		},
		dir:     &fakeDirectory{known: map[string]string{"Channel A": "A"}},
		source:  &sequenceSource{seq: map[string][]string{}, calls: map[string]int{}},
		store:   dedup.NewMemory(),
		runner:  &fakeRunner{},
		sender:  &fakeSender{},
		metrics: metrics.New(prometheus.NewRegistry()),
		logs:    logs,
		log:     logger.NewWithFormat("info", "text", logs),
	}
}

func (h *harness) build(sleeper poller.Sleeper) Orchestrator {
	p := poller.New(h.source, h.store, h.log, h.metrics, poller.WithSleeper(sleeper))
	return New(h.cfg, Deps{
		Directory: h.dir,
		Source:    h.source,
		Store:     h.store,
		Runner:    h.runner,
		Sender:    h.sender,
		Poller:    p,
	}, h.log, h.metrics)
}

func TestBootstrap(t *testing.T) {
	t.Run("should keep resolved names and warn about the rest", func(t *testing.T) {
		h := newHarness(t)
		o := h.build(nil)

		channels, err := o.Bootstrap(context.Background(), []string{"Channel A", "No Such Channel"})
		require.NoError(t, err)
		assert.Equal(t, []models.ChannelRef{{Name: "Channel A", ID: "A"}}, channels)
		assert.Contains(t, h.logs.String(), "level=WARN")
		assert.Contains(t, h.logs.String(), "No Such Channel")
	})

	t.Run("should drop duplicates and blanks", func(t *testing.T) {
		h := newHarness(t)
		h.dir.known["Alias"] = "A"
		channels, err := h.build(nil).Bootstrap(context.Background(), []string{"Channel A", " ", "Alias"})
		require.NoError(t, err)
		assert.Len(t, channels, 1)
	})

	t.Run("should fail on rejected credentials", func(t *testing.T) {
		h := newHarness(t)
		h.dir.err = fmt.Errorf("%w: status 403", youtube.ErrUnauthorized)
		_, err := h.build(nil).Bootstrap(context.Background(), []string{"Channel A"})
		assert.ErrorIs(t, err, youtube.ErrUnauthorized)
	})

	t.Run("should drop a blocked channel page without a key", func(t *testing.T) {
		const goodID = "UCabcdefghijklmnopqrstuv"
		mux := http.NewServeMux()
		mux.HandleFunc("/@good", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `<html><head><meta itemprop="identifier" content="%s"></head></html>`, goodID)
		})
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		h := newHarness(t)
		yt := youtube.New(config.YouTubeConfig{SiteBaseURL: srv.URL, Timeout: 5 * time.Second, RequestsPerS: 1000}, h.log)
		o := New(h.cfg, Deps{
			Directory: yt.Directory(),
			Source:    h.source,
			Store:     h.store,
			Runner:    h.runner,
			Sender:    h.sender,
		}, h.log, h.metrics)

		channels, err := o.Bootstrap(context.Background(), []string{"good", "blocked"})
		require.NoError(t, err)
		assert.Equal(t, []models.ChannelRef{{Name: "good", ID: goodID}}, channels)
		assert.Contains(t, h.logs.String(), "blocked")
	})
}

func TestRun_EndToEnd(t *testing.T) {
	tests := []struct {
		name          string
		notifyInitial bool
		wantURLs      []string
	}{
		{
			name:          "initial notification then one per change",
			notifyInitial: true,
			wantURLs:      []string{"https://www.youtube.com/watch?v=v1", "https://www.youtube.com/watch?v=v2"},
		},
		{
			name:          "only changes when initial notification is off",
			notifyInitial: false,
			wantURLs:      []string{"https://www.youtube.com/watch?v=v2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.cfg.Notify.Initial = &tt.notifyInitial
			// seed, then polls: v1 unchanged, v2 changed, v2 unchanged
			h.source.seq["A"] = []string{"v1", "v1", "v2", "v2"}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			o := h.build(&cancelAfterSleeper{n: 3, cancel: cancel})

			err := o.Run(ctx, []string{"Channel A", "Unknown"}, "me@example.com")
			require.NoError(t, err)

			var got []string
			for _, m := range h.sender.msgs {
				assert.Equal(t, "me@example.com", m.Recipient)
				assert.Equal(t, "New Video Notification", m.Subject)
				got = append(got, m.Body)
			}
			require.Len(t, got, len(tt.wantURLs))
			for i, url := range tt.wantURLs {
				assert.Contains(t, got[i], "URL: "+url)
			}
			assert.Contains(t, got[len(got)-1], "Title: Video v2")
			assert.Equal(t, tt.wantURLs, h.runner.(*fakeRunner).urls)

			latest, _ := h.store.Latest("A")
			assert.Equal(t, "v2", latest)
		})
	}
}

func TestRun_NoChannels(t *testing.T) {
	h := newHarness(t)
	err := h.build(nil).Run(context.Background(), []string{"Unknown"}, "r")
	assert.ErrorIs(t, err, ErrNoChannels)
	assert.Empty(t, h.sender.msgs)
}

func TestRun_CancelledDuringBootstrap(t *testing.T) {
	h := newHarness(t)
	h.dir.err = context.Canceled

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.build(nil).Run(ctx, []string{"Channel A"}, "r")
	assert.NoError(t, err)
	assert.Empty(t, h.sender.msgs)
}

func TestRun_SubscribesBeforeMonitoring(t *testing.T) {
	h := newHarness(t)
	h.dir.known["Channel B"] = "B"
	h.source.seq["A"] = []string{"a1"}
	h.source.seq["B"] = []string{"b1"}
	sub := &fakeSubscriber{fail: map[string]bool{"A": true}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o := New(h.cfg, Deps{
		Directory:  h.dir,
		Source:     h.source,
		Store:      h.store,
		Runner:     h.runner,
		Sender:     h.sender,
		Subscriber: sub,
		Poller:     poller.New(h.source, h.store, h.log, h.metrics, poller.WithSleeper(&cancelAfterSleeper{n: 1, cancel: cancel})),
	}, h.log, h.metrics)

	require.NoError(t, o.Run(ctx, []string{"Channel A", "Channel B"}, "r"))
	assert.Equal(t, []string{"A", "B"}, sub.ids)
	assert.Contains(t, h.logs.String(), "Failed to subscribe to Channel A")
	assert.Contains(t, h.logs.String(), "Subscribed to Channel B")

	latest, ok := h.store.Latest("A")
	assert.True(t, ok, "a failed subscription must not stop monitoring")
	assert.Equal(t, "a1", latest)
}

func TestSeedAndNotifyInitial_SourceError(t *testing.T) {
	h := newHarness(t)
	h.source.seq["B"] = []string{"b1"}

	h.build(nil).SeedAndNotifyInitial(context.Background(), []models.ChannelRef{{Name: "gone", ID: "X"}, {Name: "b", ID: "B"}}, "r")

	_, ok := h.store.Latest("X")
	assert.False(t, ok, "no baseline without an observation")
	latest, ok := h.store.Latest("B")
	assert.True(t, ok)
	assert.Equal(t, "b1", latest)
	assert.Len(t, h.sender.msgs, 1)
}

func TestHandleItem_DeliveryFailure(t *testing.T) {
	h := newHarness(t)
	h.sender.err = fmt.Errorf("%w: smtp down", notifier.ErrDelivery)
	o := h.build(nil)

	assert.NotPanics(t, func() {
		o.HandleItem(context.Background(), "r", models.ChannelRef{Name: "a", ID: "A"}, models.Item{ID: "v9", URL: "u"})
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Notifications.WithLabelValues("failed")))
	assert.Contains(t, h.logs.String(), "not delivered")
}

func TestHandleItem_AttachesReport(t *testing.T) {
	h := newHarness(t)
	h.cfg.Notify.AttachReport = true
	o := h.build(nil)

	o.HandleItem(context.Background(), "r", models.ChannelRef{Name: "a", ID: "A"}, models.Item{ID: "v9", Title: "Nine", URL: "u"})

	require.Len(t, h.sender.msgs, 1)
	require.Len(t, h.sender.msgs[0].Attachments, 1)
	assert.FileExists(t, h.sender.msgs[0].Attachments[0])
	assert.Equal(t, h.cfg.Paths.Output, filepath.Dir(h.sender.msgs[0].Attachments[0]))
}

type failingFetcher struct{}

func (failingFetcher) Fetch(context.Context, string, string) (string, error) {
	return "", errors.New("video unavailable")
}

func TestStageFailureStillNotifiesAndKeepsBaseline(t *testing.T) {
	h := newHarness(t)
	h.runner = processor.New(h.cfg, processor.Deps{Fetcher: failingFetcher{}}, h.log, h.metrics)
	h.source.seq["A"] = []string{"v2"}
	h.source.seq["B"] = []string{"b2"}
	require.NoError(t, h.store.Seed(context.Background(), "A", "v1"))
	require.NoError(t, h.store.Seed(context.Background(), "B", "b1"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o := h.build(&cancelAfterSleeper{n: 1, cancel: cancel})

	err := o.StartMonitoring(ctx, []models.ChannelRef{{Name: "a", ID: "A"}, {Name: "b", ID: "B"}}, "r", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)

	require.Len(t, h.sender.msgs, 2, "both channels are handled despite failing pipelines")
	assert.Contains(t, h.sender.msgs[0].Body, "No transcript or summary")
	latest, _ := h.store.Latest("A")
	assert.Equal(t, "v2", latest)

	entries, err := os.ReadDir(h.cfg.Paths.Temp)
	if err == nil {
		assert.Empty(t, entries)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.StageFailures.WithLabelValues("fetch")))
}

func TestAddChannels(t *testing.T) {
	h := newHarness(t)
	h.dir.known["Channel B"] = "B"
	o := h.build(nil)
	impl := o.(*implOrchestrator)
	impl.set.add(models.ChannelRef{Name: "Channel A", ID: "A"})

	added := o.AddChannels(context.Background(), []string{"Channel A", "channel a", "Channel B", "Missing"})
	assert.Equal(t, []models.ChannelRef{{Name: "Channel B", ID: "B"}}, added)
	assert.Len(t, impl.set.Channels(), 2)

	// already known names are not resolved again
	calls := h.dir.calls
	o.AddChannels(context.Background(), []string{"Channel B"})
	assert.Equal(t, calls, h.dir.calls)

	_, seeded := h.store.Latest("B")
	assert.False(t, seeded, "added channels get their baseline from the first poll")
}
