package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/caption-extract/internal/caption"
	"github.com/nguyentantai21042004/caption-extract/internal/processor"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var noCorrect bool
	var docx bool

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "pipeline <video> [output]",
		Short: "Extract subtitles from a video: embedded stream, burned-in OCR, then speech",
		Long: `Extract a time-coded transcript from a local video.

Tiers are tried in order: the embedded subtitle stream, OCR of burned-in
subtitles, then speech transcription. The first tier that succeeds writes
the SRT output. Unless --no-correct is given, a corrected transcript is
written next to it as Markdown.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.newPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer p.Close()

			job := processor.Job{
				Video:   args[0],
				Correct: !noCorrect,
				Docx:    docx,
			}
			if len(args) > 1 {
				job.Output = args[1]
			}

			report, err := p.processor().Run(cmd.Context(), job)
			if errors.Is(err, processor.ErrAllTiersFailed) {
				fmt.Fprintln(cmd.OutOrStdout(), caption.ProvenanceFailed)
				return err
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.Extraction.Provenance)
			fmt.Fprintf(out, "subtitles: %s\n", report.Extraction.Output)
			if report.Transcript != "" {
				fmt.Fprintf(out, "transcript: %s\n", report.Transcript)
			}
			if report.Docx != "" {
				fmt.Fprintf(out, "document: %s\n", report.Docx)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (default config.yaml when present)")
	rootCmd.Flags().BoolVar(&noCorrect, "no-correct", false, "Write subtitles only, skip the corrected transcript")
	rootCmd.Flags().BoolVar(&docx, "docx", false, "Also export the transcript as .docx")

	rootCmd.AddCommand(newCorrectCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}
