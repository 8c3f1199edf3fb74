package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/crediscope/internal/claims"
)

var fingerprintFlags struct {
	kind string
}

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint [content]",
	Short: "Print the cache fingerprint of a claim without analyzing it",
	Long: `Normalize a claim and print its fingerprint and canonical form.
Inputs with the same fingerprint share one cached result.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFingerprint,
}

func init() {
	fingerprintCmd.Flags().StringVarP(&fingerprintFlags.kind, "kind", "k", string(claims.KindText), "Input kind: text, url, or image_text")
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	content, err := readContent(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	n := claims.NewNormalizer(nil, 0, slog.New(slog.DiscardHandler))
	in, err := n.Normalize(cmd.Context(), claims.Request{
		Kind:    claims.Kind(fingerprintFlags.kind),
		Content: content,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, claims.FingerprintOf(in))
	fmt.Fprintf(out, "canonical: %q\n", claims.Canonical(in.Kind, in.Content))
	fmt.Fprintf(out, "domain: %s\n", in.Domain)
	return nil
}
