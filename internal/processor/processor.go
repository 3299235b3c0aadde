package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/channel-digest/internal/logger"
	"github.com/nguyentantai21042004/channel-digest/internal/models"
)

// Run executes the pipeline and logs any stage failure
func (p *implProcessor) Run(ctx context.Context, itemURL string) models.PipelineResult {
	result, err := p.RunDetailed(ctx, itemURL)
	if err != nil {
		var se *StageError
		if errors.As(err, &se) {
			ctx = logger.WithFields(ctx, "stage", string(se.Stage))
		}
		p.logger.Error(ctx, "Pipeline for %s degraded: %v", itemURL, err)
	}
	return result
}

// RunDetailed orchestrates the pipeline for one item.
//
// Fetch, extract and transcribe failures abort with an empty result since no
// transcript exists. A summarize failure keeps the transcript. The run
// directory is removed on every path out of this function.
func (p *implProcessor) RunDetailed(ctx context.Context, itemURL string) (result models.PipelineResult, err error) {
	if err := p.sem.acquire(ctx); err != nil {
		return models.PipelineResult{}, stageErr(StageFetch, fmt.Errorf("wait for pipeline slot: %w", err))
	}
	defer p.sem.release()

	startTime := time.Now()
	runID, dir, err := p.newRunDir()
	if err != nil {
		p.metrics.StageFailed(string(StageFetch))
		return models.PipelineResult{}, stageErr(StageFetch, err)
	}
	ctx = logger.WithFields(ctx, "run_id", runID)
	defer p.cleanupRunDir(ctx, dir)

	stage := StageFetch
	defer func() {
		if rec := recover(); rec != nil {
			if stage != StageSummarize {
				result = models.PipelineResult{}
			}
			err = stageErr(stage, fmt.Errorf("panic: %v", rec))
		}
		var se *StageError
		if errors.As(err, &se) {
			p.metrics.StageFailed(string(se.Stage))
		}
		p.metrics.PipelineFinished(resultLabel(result), time.Since(startTime).Seconds())
	}()

	p.logger.Info(ctx, "Starting pipeline: %s", itemURL)

	// Step 1: Fetch media
	mediaPath, err := p.deps.Fetcher.Fetch(ctx, itemURL, dir)
	if err != nil {
		return models.PipelineResult{}, stageErr(StageFetch, err)
	}
	defer p.cleanupTempFile(ctx, dir, mediaPath)

	// Step 2: Extract audio
	stage = StageExtract
	audioPath, err := p.deps.Extractor.Extract(ctx, mediaPath)
	if err != nil {
		return models.PipelineResult{}, stageErr(StageExtract, err)
	}
	defer p.cleanupTempFile(ctx, dir, audioPath)

	// Step 3: Transcribe
	stage = StageTranscribe
	transcript, err := p.deps.Transcriber.Transcribe(ctx, audioPath, TranscribeOptions{
		Translate: p.translate,
		Hint:      p.hint,
	})
	if err != nil {
		return models.PipelineResult{}, stageErr(StageTranscribe, err)
	}
	if transcript == "" {
		return models.PipelineResult{}, stageErr(StageTranscribe, errors.New("empty transcript"))
	}
	result.Transcript = &transcript

	// Step 4: Summarize
	stage = StageSummarize
	if p.deps.Summarizer == nil {
		return result, stageErr(StageSummarize, errors.New("no summarizer configured"))
	}
	summary, err := p.deps.Summarizer.Summarize(ctx, transcript)
	if err != nil {
		return result, stageErr(StageSummarize, err)
	}
	result.Summary = &summary

	p.logger.Info(ctx, "Pipeline completed in %s: %s", time.Since(startTime).Round(time.Millisecond), itemURL)
	return result, nil
}

func resultLabel(r models.PipelineResult) string {
	switch {
	case r.HasSummary():
		return "full"
	case r.HasTranscript():
		return "partial"
	default:
		return "empty"
	}
}
