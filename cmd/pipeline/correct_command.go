package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/caption-extract/internal/caption"
	"github.com/nguyentantai21042004/caption-extract/internal/corrector"
)

func newCorrectCommand(ctx *commandContext) *cobra.Command {
	var srtOut bool
	var docx bool
	var provenance string

	cmd := &cobra.Command{
		Use:   "correct <subtitles.srt> <output>",
		Short: "Correct an existing SRT into a transcript, or into a corrected SRT with --srt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]
			corr, err := ctx.newCorrector()
			if err != nil {
				return err
			}

			if srtOut {
				changed, err := corr.CorrectSRT(cmd.Context(), in, out)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "corrected %d entries: %s\n", changed, out)
				return nil
			}

			entries, err := caption.ReadFile(in)
			if err != nil {
				if !errors.Is(err, caption.ErrMalformed) {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			t, err := corr.Correct(cmd.Context(), caption.NewTrack(caption.Provenance(provenance), entries))
			if err != nil {
				return fmt.Errorf("correct %s: %w", in, err)
			}
			t.Title = strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
			t.Source = in

			if err := caption.WriteAtomic(out, corrector.Markdown(t)); err != nil {
				return fmt.Errorf("write transcript: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "transcript: %s\n", out)

			if docx {
				docxPath := strings.TrimSuffix(out, filepath.Ext(out)) + ".docx"
				if err := corrector.WriteDocx(t, docxPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "document: %s\n", docxPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&srtOut, "srt", false, "Write a corrected SRT instead of a transcript")
	cmd.Flags().BoolVar(&docx, "docx", false, "Also export the transcript as .docx")
	cmd.Flags().StringVar(&provenance, "provenance", string(caption.ProvenanceTranscribed), "Provenance recorded in the transcript header")
	return cmd
}
