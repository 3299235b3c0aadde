package processor

import (
	"github.com/nguyentantai21042004/channel-digest/internal/config"
	"github.com/nguyentantai21042004/channel-digest/internal/logger"
	"github.com/nguyentantai21042004/channel-digest/internal/metrics"
	"github.com/nguyentantai21042004/channel-digest/pkg/executor"
)

// Deps are the stage implementations a Runner drives.
type Deps struct {
	Fetcher     MediaFetcher
	Extractor   AudioExtractor
	Transcriber Transcriber
	Summarizer  Summarizer
}

type implProcessor struct {
	deps      Deps
	logger    logger.Logger
	metrics   *metrics.Metrics
	tempRoot  string
	translate bool
	hint      string
	sem       *semaphore
}

// New creates a Runner from explicit stage implementations
func New(cfg *config.Config, deps Deps, log logger.Logger, m *metrics.Metrics) Runner {
	return &implProcessor{
		deps:      deps,
		logger:    log,
		metrics:   m,
		tempRoot:  cfg.Paths.Temp,
		translate: cfg.TranslateTranscripts(),
		hint:      cfg.Whisper.Prompt,
		sem:       newSemaphore(cfg.Performance.MaxConcurrent),
	}
}

// NewDefault wires the yt-dlp, ffmpeg and whisper.cpp stages around summ
func NewDefault(cfg *config.Config, exec executor.Executor, summ Summarizer, log logger.Logger, m *metrics.Metrics) Runner {
	return New(cfg, Deps{
		Fetcher:     NewYTDLPFetcher(cfg.YTDLP, exec),
		Extractor:   NewFFmpegExtractor(cfg.FFmpeg, exec),
		Transcriber: NewWhisperTranscriber(cfg.Whisper, exec),
		Summarizer:  summ,
	}, log, m)
}
