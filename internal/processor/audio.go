package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/channel-digest/internal/config"
	"github.com/nguyentantai21042004/channel-digest/pkg/executor"
)

type ffmpegExtractor struct {
	cfg      config.FFmpegConfig
	executor executor.Executor
}

// NewFFmpegExtractor extracts audio with ffmpeg
func NewFFmpegExtractor(cfg config.FFmpegConfig, exec executor.Executor) AudioExtractor {
	return &ffmpegExtractor{cfg: cfg, executor: exec}
}

// Extract converts the media file to a mono PCM WAV next to it.
// 16kHz mono is what whisper expects.
func (e *ffmpegExtractor) Extract(ctx context.Context, mediaPath string) (string, error) {
	audioPath := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath)) + "_audio.wav"

	args := []string{
		"-i", mediaPath,
		"-vn",
		"-ar", strconv.Itoa(e.cfg.SampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		audioPath,
	}

	if _, err := e.executor.Execute(ctx, e.cfg.BinaryPath, args...); err != nil {
		return "", fmt.Errorf("ffmpeg extract audio: %w", err)
	}

	return audioPath, nil
}
