// Package reasoning asks a language model to explain the gathered evidence
// from several perspectives and parses its reply defensively. A failed or
// malformed reply degrades the analysis; it never fails it.
package reasoning

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/providers"
	"github.com/JaimeStill/crediscope/pkg/formatting"
)

// Status is the outcome of a synthesis attempt.
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnparseable Status = "unparseable"
	StatusUnavailable Status = "unavailable"
)

// Lens is an analytical perspective on a claim.
type Lens string

const (
	Political     Lens = "political"
	Financial     Lens = "financial"
	Psychological Lens = "psychological"
	Scientific    Lens = "scientific"
	Technical     Lens = "technical"
	Geopolitical  Lens = "geopolitical"
)

// Lenses returns every perspective in presentation order.
func Lenses() []Lens {
	return []Lens{Political, Financial, Psychological, Scientific, Technical, Geopolitical}
}

// flat reply keys some models emit instead of a nested lenses object.
var flatLenses = map[string]Lens{
	"political_implications": Political,
	"financial_impact":       Financial,
	"psychological_analysis": Psychological,
	"scientific_assessment":  Scientific,
	"technical_patterns":     Technical,
	"historical_context":     Geopolitical,
	"geopolitical_context":   Geopolitical,
}

// Synthesis is the parsed reasoning reply. Only StatusOK carries content.
type Synthesis struct {
	Status        Status           `json:"status"`
	Reason        providers.Reason `json:"reason,omitempty"`
	DraftLabel    claims.Label     `json:"draft_label,omitempty"`
	Confidence    *float64         `json:"confidence,omitempty"`
	Summary       string           `json:"summary,omitempty"`
	QuickAnalysis string           `json:"quick_analysis,omitempty"`
	ClaimType     string           `json:"claim_type,omitempty"`
	Lenses        map[Lens]string  `json:"lenses,omitempty"`
	Latency       time.Duration    `json:"-"`
}

// Unavailable reports a synthesis that never produced a reply.
func Unavailable(reason providers.Reason) Synthesis {
	return Synthesis{Status: StatusUnavailable, Reason: reason}
}

// Parse extracts a Synthesis from raw model text. The reply may be wrapped in
// a code fence or prose, may use flat lens keys, and may express confidence as
// a percentage. Unknown fields are ignored and malformed fields dropped; a
// reply with no recognizable field is StatusUnparseable.
func Parse(content string) Synthesis {
	raw, err := formatting.Parse[map[string]json.RawMessage](content)
	if err != nil {
		return Synthesis{Status: StatusUnparseable}
	}

	s := Synthesis{Status: StatusOK, Lenses: map[Lens]string{}}
	recognized := false

	for _, key := range []string{"verdict", "label"} {
		if v, ok := stringField(raw, key); ok {
			if label, ok := claims.ParseLabel(v); ok {
				s.DraftLabel = label
				recognized = true
				break
			}
		}
	}

	if c, ok := numberField(raw, "confidence"); ok {
		c = normalizeConfidence(c)
		s.Confidence = &c
	}

	if v, ok := stringField(raw, "summary"); ok {
		s.Summary = v
		recognized = true
	}
	if v, ok := stringField(raw, "quick_analysis"); ok {
		s.QuickAnalysis = v
		recognized = true
	}
	if v, ok := stringField(raw, "claim_type"); ok {
		s.ClaimType = v
	}

	if nested, ok := raw["lenses"]; ok {
		var lenses map[string]json.RawMessage
		if json.Unmarshal(nested, &lenses) == nil {
			for _, lens := range Lenses() {
				if v, ok := stringField(lenses, string(lens)); ok {
					s.Lenses[lens] = v
				}
			}
		}
	}

	for key, lens := range flatLenses {
		if _, set := s.Lenses[lens]; set {
			continue
		}
		if v, ok := stringField(raw, key); ok {
			s.Lenses[lens] = v
		}
	}

	if len(s.Lenses) > 0 {
		recognized = true
	}

	if !recognized {
		return Synthesis{Status: StatusUnparseable}
	}
	return s
}

func stringField(raw map[string]json.RawMessage, key string) (string, bool) {
	data, ok := raw[key]
	if !ok {
		return "", false
	}

	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		var lines []string
		if err := json.Unmarshal(data, &lines); err != nil {
			return "", false
		}
		v = strings.Join(lines, "\n")
	}

	v = strings.TrimSpace(v)
	return v, v != ""
}

func numberField(raw map[string]json.RawMessage, key string) (float64, bool) {
	data, ok := raw[key]
	if !ok {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// normalizeConfidence maps a percentage onto [0,1] and clamps the result.
func normalizeConfidence(c float64) float64 {
	if c > 1 && c <= 100 {
		c /= 100
	}
	return min(max(c, 0), 1)
}
