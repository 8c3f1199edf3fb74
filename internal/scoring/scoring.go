// Package scoring turns collected evidence and the reasoning synthesis into a
// final label and a 0-100 confidence. Aggregation is a pure function of its
// inputs and the Policy.
package scoring

import (
	"math"

	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/evidence"
	"github.com/JaimeStill/crediscope/internal/providers"
	"github.com/JaimeStill/crediscope/internal/reasoning"
)

// Basis names the rule that decided the label.
type Basis string

const (
	BasisURLThreat    Basis = "url_threat"
	BasisUnparseable  Basis = "unparseable_synthesis"
	BasisFactChecks   Basis = "fact_checks"
	BasisConflict     Basis = "conflicting_signals"
	BasisSynthesis    Basis = "synthesis"
	BasisInsufficient Basis = "insufficient_evidence"
)

// Verdict is the aggregated judgement.
type Verdict struct {
	Label      claims.Label `json:"label"`
	Confidence int          `json:"confidence"`
	Basis      Basis        `json:"basis"`
	Degraded   bool         `json:"degraded"`
}

// Inputs carries everything the aggregator reads.
type Inputs struct {
	Collection evidence.Collection
	Synthesis  reasoning.Synthesis
}

// consensus summarizes the rated fact-check items.
type consensus struct {
	label       claims.Label
	agreeing    int
	ratio       float64
	reliability float64
}

// Aggregate applies p to in.
//
// A detected URL threat forces LIKELY_FALSE at or above ThreatFloor, and an
// unparseable synthesis forces UNVERIFIED. Otherwise fact-check consensus
// decides the label, with a disagreeing draft from the synthesis turning it
// MISLEADING; without rated fact-checks the draft stands alone. UNVERIFIED
// confidence never exceeds UnverifiedCeiling.
func Aggregate(p Policy, in Inputs) Verdict {
	col, syn := in.Collection, in.Synthesis

	fc, rated := factChecks(p, col.Evidence)
	draft := claims.Label("")
	if syn.Status == reasoning.StatusOK {
		draft = syn.DraftLabel
	}

	label, basis := decide(fc, rated, draft)

	threat := col.Threat()
	threatened := threat != nil && threat.Detected
	if threatened {
		label, basis = claims.LikelyFalse, BasisURLThreat
	} else if syn.Status == reasoning.StatusUnparseable {
		label, basis = claims.Unverified, BasisUnparseable
	}

	score := blend(p, fc, rated, label, syn) * 100

	if rated && label == fc.label {
		extra := min(fc.agreeing-1, p.MaxCorroboration)
		score += float64(max(extra, 0)) * p.CorroborationBonus
	}

	if tox := col.Toxicity(); tox != nil && *tox >= p.ToxicityThreshold {
		switch label {
		case claims.LikelyFalse, claims.Misleading:
			score += p.ToxicityAdjustment
		case claims.LikelyTrue:
			score -= p.ToxicityAdjustment
		}
	}

	score -= p.DegradationPenalty * unavailableFraction(col.Outcomes)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		score = 0
	}
	score = clamp(score, 0, 100)

	if threatened {
		score = max(score, p.ThreatFloor)
	}
	if label == claims.Unverified {
		score = min(score, p.UnverifiedCeiling)
	}

	return Verdict{
		Label:      label,
		Confidence: int(math.Round(score)),
		Basis:      basis,
		Degraded:   degraded(col.Outcomes, syn),
	}
}

func decide(fc consensus, rated bool, draft claims.Label) (claims.Label, Basis) {
	if !rated {
		if draft != "" {
			return draft, BasisSynthesis
		}
		return claims.Unverified, BasisInsufficient
	}

	switch {
	case fc.label == claims.LikelyFalse && draft == claims.LikelyTrue,
		fc.label == claims.LikelyTrue && draft == claims.LikelyFalse:
		return claims.Misleading, BasisConflict
	default:
		return fc.label, BasisFactChecks
	}
}

// blend is the weighted mean of the available signals, each measured as
// support for label, with the prior always present. A synthesis that agrees
// with the fact-check label never pulls the score below the evidence-only
// mean.
func blend(p Policy, fc consensus, rated bool, label claims.Label, syn reasoning.Synthesis) float64 {
	sum := p.PriorWeight * p.Prior
	weight := p.PriorWeight

	if rated {
		support := fc.reliability * fc.ratio
		if fc.label != label {
			support /= 2
		}
		sum += p.EvidenceWeight * support
		weight += p.EvidenceWeight
	}

	evidenceOnly := sum / weight

	if syn.Status != reasoning.StatusOK || syn.DraftLabel == "" {
		return evidenceOnly
	}

	c := 0.5
	if syn.Confidence != nil {
		c = *syn.Confidence
	}
	if syn.DraftLabel != label {
		c = 1 - c
	}
	sum += p.SynthesisWeight * c
	weight += p.SynthesisWeight
	blended := sum / weight

	if rated && fc.label == label && syn.DraftLabel == label {
		return max(evidenceOnly, blended)
	}
	return blended
}

// factChecks finds the dominant rating among rated fact-check items.
// Ratings split below the consensus threshold read as mixed.
func factChecks(p Policy, items []providers.EvidenceItem) (consensus, bool) {
	counts := map[providers.Rating]int{}
	reliability := map[providers.Rating]float64{}
	total := 0

	for _, item := range items {
		if item.Category != providers.CategoryFactCheck {
			continue
		}
		switch item.Rating {
		case providers.RatingFalse, providers.RatingTrue, providers.RatingMixed:
			counts[item.Rating]++
			reliability[item.Rating] += item.Reliability
			total++
		}
	}

	if total == 0 {
		return consensus{}, false
	}

	dominant := providers.RatingMixed
	for _, r := range []providers.Rating{providers.RatingFalse, providers.RatingTrue, providers.RatingMixed} {
		if counts[r] > counts[dominant] {
			dominant = r
		}
	}

	ratio := float64(counts[dominant]) / float64(total)
	mean := reliability[dominant] / float64(counts[dominant])

	if ratio < p.ConsensusThreshold {
		return consensus{
			label:       claims.Misleading,
			agreeing:    1,
			ratio:       ratio,
			reliability: mean,
		}, true
	}

	return consensus{
		label:       ratingLabel(dominant),
		agreeing:    counts[dominant],
		ratio:       ratio,
		reliability: mean,
	}, true
}

func ratingLabel(r providers.Rating) claims.Label {
	switch r {
	case providers.RatingFalse:
		return claims.LikelyFalse
	case providers.RatingTrue:
		return claims.LikelyTrue
	default:
		return claims.Misleading
	}
}

// unavailableFraction is the share of applicable providers that failed.
func unavailableFraction(outcomes []providers.Outcome) float64 {
	applicable, failed := 0, 0
	for _, o := range outcomes {
		if o.Reason == providers.ReasonNotApplicable {
			continue
		}
		applicable++
		if o.Failed() {
			failed++
		}
	}
	if applicable == 0 {
		return 0
	}
	return float64(failed) / float64(applicable)
}

func degraded(outcomes []providers.Outcome, syn reasoning.Synthesis) bool {
	if syn.Status != reasoning.StatusOK {
		return true
	}
	for _, o := range outcomes {
		if o.Failed() {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
