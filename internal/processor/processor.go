package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/caption-extract/internal/caption"
	"github.com/nguyentantai21042004/caption-extract/internal/corrector"
	"github.com/nguyentantai21042004/caption-extract/internal/extractor"
	"github.com/nguyentantai21042004/caption-extract/internal/ledger"
)

// Process runs the full watch-mode job for videoPath.
func (p *implProcessor) Process(ctx context.Context, videoPath string) error {
	if err := os.MkdirAll(p.cfg.Paths.Output, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if run, ok := p.alreadyExtracted(ctx, videoPath); ok {
		p.logger.Info(ctx, "Skipping %s: extracted at %s (%s)", videoPath, run.FinishedAt.Format(time.RFC3339), run.Output)
		if _, err := p.moveToArchived(ctx, videoPath); err != nil {
			p.logger.Warn(ctx, "Failed to move original to archived folder: %v", err)
		}
		return nil
	}
	_, err := p.Run(ctx, Job{Video: videoPath, Output: p.cfg.Paths.Output, Correct: true, Docx: true, Archive: true})
	return err
}

// alreadyExtracted reports the ledger's last successful run for videoPath
// when it finished after the file was last modified.
func (p *implProcessor) alreadyExtracted(ctx context.Context, videoPath string) (ledger.Run, bool) {
	if p.recorder == nil {
		return ledger.Run{}, false
	}
	info, err := os.Stat(videoPath)
	if err != nil {
		return ledger.Run{}, false
	}
	run, ok, err := p.recorder.LastSuccess(ctx, videoPath)
	if err != nil {
		p.logger.Warn(ctx, "Run history lookup failed: %v", err)
		return ledger.Run{}, false
	}
	if !ok || run.FinishedAt.Before(info.ModTime()) {
		return ledger.Run{}, false
	}
	return run, true
}

// Run extracts captions, writes the corrected transcript next to them and
// optionally archives the source. Every run is recorded.
func (p *implProcessor) Run(ctx context.Context, job Job) (report Report, err error) {
	startTime := time.Now()

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting video processing: %s", job.Video)
	p.logger.Info(ctx, "========================================")

	defer func() {
		p.record(ctx, job, report, startTime, err)
	}()

	// Step 1: Extract captions through the tiers
	report.Extraction, err = p.extractor.Extract(ctx, job.Video, job.Output)
	if err != nil {
		return report, fmt.Errorf("extract: %w", err)
	}
	job.Output = report.Extraction.Output
	if !report.Extraction.OK() {
		return report, fmt.Errorf("%w: %s", ErrAllTiersFailed, job.Video)
	}

	// Step 2: Correct into a transcript
	if job.Correct {
		if err := p.writeTranscript(ctx, job, &report); err != nil {
			return report, err
		}
	}

	// Step 3: Move original video to archived folder
	if job.Archive {
		archived, err := p.moveToArchived(ctx, job.Video)
		if err != nil {
			p.logger.Warn(ctx, "Failed to move original to archived folder: %v", err)
		}
		report.Archived = archived
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing completed successfully! (%s)", report.Extraction.Provenance)
	p.logger.Info(ctx, "Output subtitle: %s", job.Output)
	if report.Transcript != "" {
		p.logger.Info(ctx, "Transcript: %s", report.Transcript)
	}
	p.logger.Info(ctx, "Processing time: %s", time.Since(startTime).Round(time.Millisecond))
	p.logger.Info(ctx, "========================================")
	return report, nil
}

func (p *implProcessor) writeTranscript(ctx context.Context, job Job, report *Report) error {
	t, err := p.corrector.Correct(ctx, report.Extraction.Track)
	if err != nil {
		return fmt.Errorf("correct: %w", err)
	}
	t.Title = strings.TrimSuffix(filepath.Base(job.Output), filepath.Ext(job.Output))
	t.Source = job.Video

	base := strings.TrimSuffix(job.Output, filepath.Ext(job.Output))
	mdPath := base + ".md"
	if err := caption.WriteAtomic(mdPath, corrector.Markdown(t)); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	report.Transcript = mdPath

	if job.Docx {
		docxPath := base + ".docx"
		if err := corrector.WriteDocx(t, docxPath); err != nil {
			p.logger.Warn(ctx, "Failed to write %s: %v", docxPath, err)
		} else {
			report.Docx = docxPath
		}
	}
	return nil
}

func (p *implProcessor) record(ctx context.Context, job Job, report Report, start time.Time, runErr error) {
	if p.recorder == nil {
		return
	}
	res := report.Extraction
	run := ledger.Run{
		ID:         res.RunID,
		Video:      job.Video,
		Output:     job.Output,
		Transcript: report.Transcript,
		Provenance: string(res.Provenance),
		Attempts:   FormatAttempts(res.Attempts),
		Entries:    res.Track.Len(),
		StartedAt:  start,
		FinishedAt: time.Now(),
	}
	if res.OK() {
		run.Quality = res.Quality.String()
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if run.ID == "" {
		run.ID = fmt.Sprintf("%s-%d", filepath.Base(job.Video), start.UnixNano())
	}
	if run.Provenance == "" {
		run.Provenance = string(caption.ProvenanceFailed)
	}

	// The run context may already be canceled; the record should still land.
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.recorder.Record(recCtx, run); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Warn(ctx, "Failed to record run: %v", err)
	}
}

// FormatAttempts renders attempts as "tier:reason" pairs.
func FormatAttempts(attempts []extractor.Attempt) string {
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		status := string(a.Outcome.Reason)
		if a.Outcome.OK {
			status = "ok"
		}
		parts = append(parts, string(a.Tier)+":"+status)
	}
	return strings.Join(parts, ",")
}
