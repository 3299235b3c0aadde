package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/channel-digest/internal/config"
	"github.com/nguyentantai21042004/channel-digest/pkg/executor"
)

type ytdlpFetcher struct {
	cfg      config.YTDLPConfig
	executor executor.Executor
}

// NewYTDLPFetcher downloads media with yt-dlp
func NewYTDLPFetcher(cfg config.YTDLPConfig, exec executor.Executor) MediaFetcher {
	return &ytdlpFetcher{cfg: cfg, executor: exec}
}

// Fetch downloads itemURL into dir and returns the final file path.
func (f *ytdlpFetcher) Fetch(ctx context.Context, itemURL, dir string) (string, error) {
	// --print after_move:filepath reports the post-processing path on stdout
	args := []string{
		"--no-playlist",
		"--no-progress",
		"--no-simulate",
		"-f", f.cfg.Format,
		"-o", filepath.Join(dir, "media.%(ext)s"),
		"--print", "after_move:filepath",
		itemURL,
	}

	out, err := f.executor.Execute(ctx, f.cfg.BinaryPath, args...)
	if err != nil {
		return "", fmt.Errorf("yt-dlp download: %w", err)
	}

	if path := lastLine(out); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	matches, err := filepath.Glob(filepath.Join(dir, "media.*"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("yt-dlp produced no media file in %s", dir)
	}
	return matches[0], nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
