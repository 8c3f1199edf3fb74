package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/crediscope/internal/analyses"
	"github.com/JaimeStill/crediscope/internal/claims"
)

var analyzeFlags struct {
	kind     string
	language string
	refresh  bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [content]",
	Short: "Analyze a text claim or URL",
	Long: `Analyze a claim and print the scored result as JSON.

Usage:
  crediscope analyze "5G towers spread viruses"
  crediscope analyze --kind url https://example.com/story
  echo "claim text" | crediscope analyze -

The cache status of the result is written to stderr.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeFlags.kind, "kind", "k", string(claims.KindText), "Input kind: text or url")
	f.StringVarP(&analyzeFlags.language, "language", "l", "", "Requester language (BCP 47) for the localized summary")
	f.BoolVar(&analyzeFlags.refresh, "refresh", false, "Bypass the cached result")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	content, err := readContent(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	resp, err := s.analyses.Analyze(cmd.Context(), analyses.AnalyzeCommand{
		Request: claims.Request{
			Kind:     claims.Kind(analyzeFlags.kind),
			Content:  content,
			Language: analyzeFlags.language,
		},
		Refresh: analyzeFlags.refresh,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "cache: %s\n", resp.Cache)
	return writeResult(cmd.OutOrStdout(), resp)
}

// readContent takes the positional argument, or stdin when it is "-" or absent.
func readContent(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}

	data, err := io.ReadAll(io.LimitReader(stdin, claims.MaxContentLength*4+1))
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("content is required\n\nUsage: crediscope analyze <content>\n       echo <content> | crediscope analyze -")
	}
	return content, nil
}
