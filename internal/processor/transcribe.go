package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/channel-digest/internal/config"
	"github.com/nguyentantai21042004/channel-digest/pkg/executor"
)

type whisperTranscriber struct {
	cfg      config.WhisperConfig
	executor executor.Executor
}

// NewWhisperTranscriber transcribes with a whisper.cpp binary
func NewWhisperTranscriber(cfg config.WhisperConfig, exec executor.Executor) Transcriber {
	return &whisperTranscriber{cfg: cfg, executor: exec}
}

// Transcribe writes a plain-text transcript next to the audio file and returns its content.
func (w *whisperTranscriber) Transcribe(ctx context.Context, audioPath string, opts TranscribeOptions) (string, error) {
	// whisper appends .txt to the prefix
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))

	// -otxt: plain text output
	// -l: source language ("auto" lets whisper detect it)
	// -tr: translate to English
	// --prompt: initial prompt biasing the decoder
	args := []string{
		"-m", w.cfg.ModelPath,
		"-f", audioPath,
		"-otxt",
		"-l", w.cfg.Language,
		"-t", strconv.Itoa(w.cfg.Threads),
		"--output-file", outputPrefix,
	}
	if opts.Translate {
		args = append(args, "-tr")
	}
	if opts.Hint != "" {
		args = append(args, "--prompt", opts.Hint)
	}

	if _, err := w.executor.Execute(ctx, w.cfg.BinaryPath, args...); err != nil {
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}

	txtPath := outputPrefix + ".txt"
	data, err := os.ReadFile(txtPath)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}
