package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ryan5453/lyricscribe/internal/wer"
)

func newScoreCmd(_ *appState) *cobra.Command {
	var chars bool

	cmd := &cobra.Command{
		Use:   "score <reference-file> <hypothesis-file>",
		Short: "Score a transcript against reference lyrics",
		Long: "Computes the word error rate between a reference lyrics file and\n" +
			"a hypothesis transcript, using the same normalization as the\n" +
			"benchmark runner.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reference, err := readTextFile(args[0])
			if err != nil {
				return err
			}
			hypothesis, err := readTextFile(args[1])
			if err != nil {
				return err
			}

			score, err := wer.Word(reference, hypothesis)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wer: %.4f\n", score)

			if chars {
				cer, err := wer.Character(reference, hypothesis)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cer: %.4f\n", cer)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&chars, "chars", false, "Also print the character error rate")
	return cmd
}

func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
