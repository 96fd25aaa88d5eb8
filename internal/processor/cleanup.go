package processor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// moveToArchived moves the processed video into the archived folder. An
// existing file of the same name is never overwritten.
func (p *implProcessor) moveToArchived(ctx context.Context, videoPath string) (string, error) {
	if err := os.MkdirAll(p.cfg.Paths.Archived, 0755); err != nil {
		return "", fmt.Errorf("create archived dir: %w", err)
	}

	filename := filepath.Base(videoPath)
	destPath := filepath.Join(p.cfg.Paths.Archived, filename)
	if _, err := os.Stat(destPath); err == nil {
		ext := filepath.Ext(filename)
		stamp := time.Now().Format("20060102-150405")
		destPath = filepath.Join(p.cfg.Paths.Archived, strings.TrimSuffix(filename, ext)+"-"+stamp+ext)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat archived file: %w", err)
	}

	p.logger.Info(ctx, "Moving to archived folder: %s -> %s", videoPath, destPath)

	if err := os.Rename(videoPath, destPath); err != nil {
		return "", fmt.Errorf("move to archived: %w", err)
	}
	return destPath, nil
}
