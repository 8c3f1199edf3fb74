package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/crediscope/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	quiet      bool
}

var rootCmd = &cobra.Command{
	Use:   "crediscope",
	Short: "Verify claims, URLs, and screenshots from the command line",
	Long: "Crediscope runs the claim verification engine locally: it gathers evidence\n" +
		"from the configured providers, synthesizes an assessment, and prints the\n" +
		"scored result as JSON.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", config.BaseConfigFile, "Path to the base config file")
	pf.BoolVarP(&rootFlags.quiet, "quiet", "q", false, "Suppress log output")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(fingerprintCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
