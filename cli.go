package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"presentcoachdev/coaching"

	"github.com/spf13/cobra"
)

var ErrEmptyTranscript = errors.New("transcript is empty")

// analyzeTranscriptCmd prints the offline transcript analysis for a file, or
// stdin when the argument is "-".
func analyzeTranscriptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze-transcript <file>",
		Short: "Print the offline speech analysis of a transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeTranscript(cmd.InOrStdin(), cmd.OutOrStdout(), args[0], coaching.NewClockGenerator())
		},
	}
}

func runAnalyzeTranscript(stdin io.Reader, out io.Writer, path string, gen *coaching.Generator) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return ErrEmptyTranscript
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(gen.TranscriptAnalysis(string(data)))
}
