package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/crediscope/internal/analyses"
)

var imageFlags struct {
	language string
	refresh  bool
}

var imageCmd = &cobra.Command{
	Use:   "image <path>",
	Short: "Extract text from a screenshot and analyze it",
	Args:  cobra.ExactArgs(1),
	RunE:  runImage,
}

func init() {
	f := imageCmd.Flags()
	f.StringVarP(&imageFlags.language, "language", "l", "", "Requester language (BCP 47) for the localized summary")
	f.BoolVar(&imageFlags.refresh, "refresh", false, "Bypass the cached result")
}

func runImage(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if limit := s.cfg.API.MaxUploadSizeBytes(); int64(len(data)) > limit {
		return fmt.Errorf("%w: %d bytes exceeds %d", analyses.ErrImageTooLarge, len(data), limit)
	}

	resp, err := s.analyses.AnalyzeImage(cmd.Context(), analyses.ImageCommand{
		Data:     data,
		Language: imageFlags.language,
		Refresh:  imageFlags.refresh,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "cache: %s\n", resp.Cache)
	return writeResult(cmd.OutOrStdout(), resp)
}
