// Package report assembles the user-facing analysis result: verdict, evidence,
// perspectives, the verification checklist, and the audit trail.
package report

import (
	"time"

	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/providers"
	"github.com/JaimeStill/crediscope/internal/reasoning"
	"github.com/JaimeStill/crediscope/internal/scoring"
)

// Verdict is the label, confidence, and explanation shown to the reader.
type Verdict struct {
	Label      claims.Label  `json:"label"`
	Confidence int           `json:"confidence"`
	Basis      scoring.Basis `json:"basis"`
	Summary    string        `json:"summary"`
}

// ChecklistItem is one verification step. Checklist order is meaningful.
type ChecklistItem struct {
	Point       string `json:"point"`
	Explanation string `json:"explanation"`
}

// Localized carries the summary translated into the input language.
type Localized struct {
	Language string `json:"language"`
	Summary  string `json:"summary"`
}

// Result is the immutable outcome of one analysis.
type Result struct {
	Fingerprint   claims.Fingerprint        `json:"fingerprint"`
	Input         claims.Input              `json:"input"`
	Verdict       Verdict                   `json:"verdict"`
	QuickAnalysis string                    `json:"quick_analysis,omitempty"`
	ClaimType     string                    `json:"claim_type,omitempty"`
	Evidence      []providers.EvidenceItem  `json:"evidence"`
	Lenses        map[reasoning.Lens]string `json:"lenses,omitempty"`
	Checklist     []ChecklistItem           `json:"checklist"`
	Audit         Audit                     `json:"audit"`
	Localized     *Localized                `json:"localized,omitempty"`
}

// Parts is everything Assemble combines.
type Parts struct {
	Fingerprint claims.Fingerprint
	Input       claims.Input
	Outcomes    []providers.Outcome
	Evidence    []providers.EvidenceItem
	Synthesis   reasoning.Synthesis
	Verdict     scoring.Verdict
	Auxiliary   []providers.Outcome
	Cache       string
	Started     time.Time
	Finished    time.Time
}

// Assemble builds the Result. It does not alter the aggregated verdict.
func Assemble(p Parts) Result {
	summary, quick := p.Synthesis.Summary, p.Synthesis.QuickAnalysis
	if p.Synthesis.Status != reasoning.StatusOK || summary == "" {
		summary = fallbackSummary(p.Verdict, p.Evidence)
	}
	if quick == "" {
		quick = fallbackQuick(p.Verdict.Label)
	}

	var lenses map[reasoning.Lens]string
	if p.Synthesis.Status == reasoning.StatusOK && len(p.Synthesis.Lenses) > 0 {
		lenses = p.Synthesis.Lenses
	}

	evidence := p.Evidence
	if evidence == nil {
		evidence = []providers.EvidenceItem{}
	}

	return Result{
		Fingerprint: p.Fingerprint,
		Input:       p.Input,
		Verdict: Verdict{
			Label:      p.Verdict.Label,
			Confidence: p.Verdict.Confidence,
			Basis:      p.Verdict.Basis,
			Summary:    summary,
		},
		QuickAnalysis: quick,
		ClaimType:     p.Synthesis.ClaimType,
		Evidence:      evidence,
		Lenses:        lenses,
		Checklist:     Checklist(p.Input, p.Outcomes, p.Evidence, p.Synthesis),
		Audit:         NewAudit(p),
	}
}

func fallbackSummary(v scoring.Verdict, evidence []providers.EvidenceItem) string {
	switch v.Basis {
	case scoring.BasisURLThreat:
		return "This link was flagged as malicious or deceptive by a URL safety screen. Do not open it or share it."
	case scoring.BasisUnparseable:
		return "The automated analysis could not be read, so this claim has not been verified."
	case scoring.BasisConflict:
		return "Published fact-checks and the automated analysis disagree about this claim. Treat it with caution."
	}

	switch v.Label {
	case claims.LikelyFalse:
		return "Published fact-checks rate this claim as false or misleading."
	case claims.LikelyTrue:
		return "Published fact-checks support this claim."
	case claims.Misleading:
		return "Published fact-checks give this claim mixed ratings. Parts of it may be true while the overall message misleads."
	}

	if len(evidence) == 0 {
		return "No published fact-checks were found for this claim and it could not be verified."
	}
	return "The available evidence is not enough to verify this claim."
}

func fallbackQuick(label claims.Label) string {
	switch label {
	case claims.LikelyFalse:
		return "Do not share this without checking an official source first."
	case claims.LikelyTrue:
		return "Reliable sources support this, but check the date and context before sharing."
	case claims.Misleading:
		return "Read beyond the headline. Key context appears to be missing."
	default:
		return "Treat this as unconfirmed until a trusted source reports it."
	}
}
