package processor

import (
	"context"

	"github.com/nguyentantai21042004/channel-digest/internal/models"
)

// Runner executes the fetch -> extract -> transcribe -> summarize pipeline
// for a single item.
type Runner interface {
	// Run never fails: stage errors are logged and reflected as nil fields
	// in the result.
	Run(ctx context.Context, itemURL string) models.PipelineResult
	// RunDetailed also returns the stage error that ended the run, if any.
	RunDetailed(ctx context.Context, itemURL string) (models.PipelineResult, error)
}

// MediaFetcher downloads the media behind itemURL into dir and returns its path.
type MediaFetcher interface {
	Fetch(ctx context.Context, itemURL, dir string) (string, error)
}

// AudioExtractor derives an audio-only file from a media file.
type AudioExtractor interface {
	Extract(ctx context.Context, mediaPath string) (string, error)
}

// TranscribeOptions tunes a transcription run.
type TranscribeOptions struct {
	Translate bool
	Hint      string
}

// Transcriber turns an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, opts TranscribeOptions) (string, error)
}

// Summarizer condenses a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}
