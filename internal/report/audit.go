package report

import (
	"time"

	"github.com/JaimeStill/crediscope/internal/providers"
	"github.com/JaimeStill/crediscope/internal/reasoning"
)

// ProviderStatus is the audit entry for one provider call.
type ProviderStatus struct {
	Status    providers.Status `json:"status"`
	Reason    providers.Reason `json:"reason,omitempty"`
	LatencyMs int64            `json:"latency_ms"`
}

// SynthesisStatus is the audit entry for the reasoning pass.
type SynthesisStatus struct {
	Status    reasoning.Status `json:"status"`
	Reason    providers.Reason `json:"reason,omitempty"`
	LatencyMs int64            `json:"latency_ms"`
}

// Audit records how a result was produced. Cache holds how the stored entry
// came to be; the per-request cache outcome is reported out of band.
type Audit struct {
	Providers    map[providers.Name]ProviderStatus `json:"providers"`
	Synthesis    SynthesisStatus                   `json:"synthesis"`
	Cache        string                            `json:"cache"`
	Degraded     bool                              `json:"degraded"`
	AnalyzedAt   time.Time                         `json:"analyzed_at"`
	ProcessingMs int64                             `json:"processing_ms"`
}

// NewAudit records every collector and auxiliary provider outcome.
func NewAudit(p Parts) Audit {
	statuses := make(map[providers.Name]ProviderStatus, len(p.Outcomes)+len(p.Auxiliary))
	for _, outcomes := range [][]providers.Outcome{p.Outcomes, p.Auxiliary} {
		for _, o := range outcomes {
			statuses[o.Provider] = ProviderStatus{
				Status:    o.Status,
				Reason:    o.Reason,
				LatencyMs: o.Latency.Milliseconds(),
			}
		}
	}

	return Audit{
		Providers: statuses,
		Synthesis: SynthesisStatus{
			Status:    p.Synthesis.Status,
			Reason:    p.Synthesis.Reason,
			LatencyMs: p.Synthesis.Latency.Milliseconds(),
		},
		Cache:        p.Cache,
		Degraded:     p.Verdict.Degraded,
		AnalyzedAt:   p.Finished.UTC().Round(time.Millisecond),
		ProcessingMs: p.Finished.Sub(p.Started).Milliseconds(),
	}
}
