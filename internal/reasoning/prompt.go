package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/evidence"
	"github.com/JaimeStill/crediscope/internal/prompts"
	"github.com/JaimeStill/crediscope/internal/providers"
	"github.com/JaimeStill/crediscope/pkg/formatting"
)

const maxContextRunes = 2000

// ComposePrompt joins the stage instructions and the immutable output spec.
func ComposePrompt(ctx context.Context, ps prompts.Source, stage prompts.Stage) (string, error) {
	instructions, err := ps.Instructions(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := ps.Spec(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)
	return sb.String(), nil
}

type briefThreat struct {
	Detected bool   `json:"detected"`
	Type     string `json:"type,omitempty"`
}

type brief struct {
	Claim       string                   `json:"claim"`
	Kind        claims.Kind              `json:"kind"`
	Domain      claims.DomainClass       `json:"domain_class"`
	Language    string                   `json:"language,omitempty"`
	PageContext string                   `json:"page_context,omitempty"`
	Evidence    []providers.EvidenceItem `json:"evidence"`
	Toxicity    *float64                 `json:"toxicity_score,omitempty"`
	URLThreat   *briefThreat             `json:"url_threat,omitempty"`
	Unavailable []providers.Name         `json:"unavailable_sources,omitempty"`
}

// Brief renders the claim and its evidence as the user message.
func Brief(in claims.Input, col evidence.Collection) (string, error) {
	b := brief{
		Claim:       in.Content,
		Kind:        in.Kind,
		Domain:      in.Domain,
		Language:    in.Language,
		PageContext: formatting.Truncate(in.Context, maxContextRunes),
		Evidence:    col.Evidence,
		Toxicity:    col.Toxicity(),
	}

	if t := col.Threat(); t != nil {
		b.URLThreat = &briefThreat{Detected: t.Detected, Type: t.Type}
	}

	for _, o := range col.Outcomes {
		if o.Failed() {
			b.Unavailable = append(b.Unavailable, o.Provider)
		}
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize brief: %w", err)
	}
	return "Claim and evidence:\n\n" + string(data), nil
}
