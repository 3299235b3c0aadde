package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// newRunDir creates the scratch directory owned by a single pipeline run.
// Every artifact the run produces lives under it.
func (p *implProcessor) newRunDir() (string, string, error) {
	runID := uuid.NewString()
	if err := os.MkdirAll(p.tempRoot, 0o755); err != nil {
		return "", "", fmt.Errorf("create temp root: %w", err)
	}
	dir, err := os.MkdirTemp(p.tempRoot, "run-"+runID[:8]+"-*")
	if err != nil {
		return "", "", fmt.Errorf("create run dir: %w", err)
	}
	return runID, dir, nil
}

// cleanupRunDir removes the run directory and everything in it, logs warning if fails
func (p *implProcessor) cleanupRunDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.logger.Warn(ctx, "Failed to cleanup run dir %s: %v", dir, err)
		return
	}
	p.logger.Debug(ctx, "Cleaned up run dir: %s", dir)
}

// cleanupTempFile removes an artifact a stage left outside the run dir
func (p *implProcessor) cleanupTempFile(ctx context.Context, dir, filePath string) {
	if filePath == "" || within(dir, filePath) {
		return
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		p.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", filePath, err)
	}
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
