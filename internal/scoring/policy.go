package scoring

import (
	"errors"
	"fmt"
)

// Policy holds the aggregation weights and thresholds. Confidence adjustments
// are in percentage points; weights and thresholds are fractions.
//
// SynthesisWeight blends the model's self-confidence into the score. When the
// synthesis agrees with the fact-check label, the blend is floored at the
// evidence-only score, so agreement never lowers confidence.
type Policy struct {
	EvidenceWeight     float64 `toml:"evidence_weight"`
	SynthesisWeight    float64 `toml:"synthesis_weight"`
	PriorWeight        float64 `toml:"prior_weight"`
	Prior              float64 `toml:"prior"`
	ConsensusThreshold float64 `toml:"consensus_threshold"`
	CorroborationBonus float64 `toml:"corroboration_bonus"`
	MaxCorroboration   int     `toml:"max_corroboration"`
	ToxicityThreshold  float64 `toml:"toxicity_threshold"`
	ToxicityAdjustment float64 `toml:"toxicity_adjustment"`
	DegradationPenalty float64 `toml:"degradation_penalty"`
	ThreatFloor        float64 `toml:"threat_floor"`
	UnverifiedCeiling  float64 `toml:"unverified_ceiling"`
}

// DefaultPolicy returns the policy used when no overrides are configured.
func DefaultPolicy() Policy {
	var p Policy
	p.loadDefaults()
	return p
}

// Finalize applies defaults and validation.
func (p *Policy) Finalize() error {
	p.loadDefaults()
	return p.validate()
}

// Merge overwrites non-zero fields from overlay.
func (p *Policy) Merge(overlay *Policy) {
	if overlay.EvidenceWeight != 0 {
		p.EvidenceWeight = overlay.EvidenceWeight
	}
	if overlay.SynthesisWeight != 0 {
		p.SynthesisWeight = overlay.SynthesisWeight
	}
	if overlay.PriorWeight != 0 {
		p.PriorWeight = overlay.PriorWeight
	}
	if overlay.Prior != 0 {
		p.Prior = overlay.Prior
	}
	if overlay.ConsensusThreshold != 0 {
		p.ConsensusThreshold = overlay.ConsensusThreshold
	}
	if overlay.CorroborationBonus != 0 {
		p.CorroborationBonus = overlay.CorroborationBonus
	}
	if overlay.MaxCorroboration != 0 {
		p.MaxCorroboration = overlay.MaxCorroboration
	}
	if overlay.ToxicityThreshold != 0 {
		p.ToxicityThreshold = overlay.ToxicityThreshold
	}
	if overlay.ToxicityAdjustment != 0 {
		p.ToxicityAdjustment = overlay.ToxicityAdjustment
	}
	if overlay.DegradationPenalty != 0 {
		p.DegradationPenalty = overlay.DegradationPenalty
	}
	if overlay.ThreatFloor != 0 {
		p.ThreatFloor = overlay.ThreatFloor
	}
	if overlay.UnverifiedCeiling != 0 {
		p.UnverifiedCeiling = overlay.UnverifiedCeiling
	}
}

func (p *Policy) loadDefaults() {
	if p.EvidenceWeight == 0 {
		p.EvidenceWeight = 0.70
	}
	if p.SynthesisWeight == 0 {
		p.SynthesisWeight = 0.20
	}
	if p.PriorWeight == 0 {
		p.PriorWeight = 0.10
	}
	if p.Prior == 0 {
		p.Prior = 0.35
	}
	if p.ConsensusThreshold == 0 {
		p.ConsensusThreshold = 0.60
	}
	if p.CorroborationBonus == 0 {
		p.CorroborationBonus = 2
	}
	if p.MaxCorroboration == 0 {
		p.MaxCorroboration = 3
	}
	if p.ToxicityThreshold == 0 {
		p.ToxicityThreshold = 0.70
	}
	if p.ToxicityAdjustment == 0 {
		p.ToxicityAdjustment = 5
	}
	if p.DegradationPenalty == 0 {
		p.DegradationPenalty = 25
	}
	if p.ThreatFloor == 0 {
		p.ThreatFloor = 90
	}
	if p.UnverifiedCeiling == 0 {
		p.UnverifiedCeiling = 40
	}
}

func (p *Policy) validate() error {
	var errs []error
	for name, w := range map[string]float64{
		"evidence_weight":  p.EvidenceWeight,
		"synthesis_weight": p.SynthesisWeight,
		"prior_weight":     p.PriorWeight,
	} {
		if w < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", name, w))
		}
	}
	if p.PriorWeight <= 0 {
		errs = append(errs, errors.New("prior_weight must be positive"))
	}
	for name, v := range map[string]float64{
		"prior":               p.Prior,
		"consensus_threshold": p.ConsensusThreshold,
		"toxicity_threshold":  p.ToxicityThreshold,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %v", name, v))
		}
	}
	if p.ThreatFloor < 0 || p.ThreatFloor > 100 {
		errs = append(errs, fmt.Errorf("threat_floor must be between 0 and 100, got %v", p.ThreatFloor))
	}
	if p.UnverifiedCeiling < 0 || p.UnverifiedCeiling > 100 {
		errs = append(errs, fmt.Errorf("unverified_ceiling must be between 0 and 100, got %v", p.UnverifiedCeiling))
	}
	return errors.Join(errs...)
}
