package reasoning_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/reasoning"
)

func ptr[T any](v T) *T { return &v }

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    reasoning.Synthesis
	}{
		{
			name:    "direct json",
			content: `{"verdict":"LIKELY_FALSE","confidence":0.9,"summary":"No link exists.","lenses":{"scientific":"Radio waves cannot carry viruses."}}`,
			want: reasoning.Synthesis{
				Status:     reasoning.StatusOK,
				DraftLabel: claims.LikelyFalse,
				Confidence: ptr(0.9),
				Summary:    "No link exists.",
				Lenses:     map[reasoning.Lens]string{reasoning.Scientific: "Radio waves cannot carry viruses."},
			},
		},
		{
			name:    "fenced with percent confidence",
			content: "```json\n{\"verdict\":\"likely true\",\"confidence\":85,\"summary\":\"Confirmed by the agency.\"}\n```",
			want: reasoning.Synthesis{
				Status:     reasoning.StatusOK,
				DraftLabel: claims.LikelyTrue,
				Confidence: ptr(0.85),
				Summary:    "Confirmed by the agency.",
				Lenses:     map[reasoning.Lens]string{},
			},
		},
		{
			name:    "prose wrapped with flat lens keys",
			content: `Here you go: {"summary":"Old photo.","historical_context":"Circulated in 2019.","political_implications":"Targets voters."} Hope that helps.`,
			want: reasoning.Synthesis{
				Status:  reasoning.StatusOK,
				Summary: "Old photo.",
				Lenses: map[reasoning.Lens]string{
					reasoning.Geopolitical: "Circulated in 2019.",
					reasoning.Political:    "Targets voters.",
				},
			},
		},
		{
			name:    "string confidence and list analysis",
			content: `{"verdict":"MISLEADING","confidence":"70%","quick_analysis":["Partly true.","Missing context."]}`,
			want: reasoning.Synthesis{
				Status:        reasoning.StatusOK,
				DraftLabel:    claims.Misleading,
				Confidence:    ptr(0.7),
				QuickAnalysis: "Partly true.\nMissing context.",
				Lenses:        map[reasoning.Lens]string{},
			},
		},
		{
			name:    "non-finite confidence is dropped",
			content: `{"verdict":"LIKELY_FALSE","confidence":"NaN","summary":"x"}`,
			want: reasoning.Synthesis{
				Status:     reasoning.StatusOK,
				DraftLabel: claims.LikelyFalse,
				Summary:    "x",
				Lenses:     map[reasoning.Lens]string{},
			},
		},
		{
			name:    "infinite confidence is dropped",
			content: `{"verdict":"LIKELY_TRUE","confidence":"-Inf"}`,
			want: reasoning.Synthesis{
				Status:     reasoning.StatusOK,
				DraftLabel: claims.LikelyTrue,
				Lenses:     map[reasoning.Lens]string{},
			},
		},
		{
			name:    "out of range confidence clamps",
			content: `{"verdict":"UNVERIFIED","confidence":250}`,
			want: reasoning.Synthesis{
				Status:     reasoning.StatusOK,
				DraftLabel: claims.Unverified,
				Confidence: ptr(1.0),
				Lenses:     map[reasoning.Lens]string{},
			},
		},
		{
			name:    "unknown verdict is ignored",
			content: `{"verdict":"PANTS_ON_FIRE","summary":"Fabricated."}`,
			want: reasoning.Synthesis{
				Status:  reasoning.StatusOK,
				Summary: "Fabricated.",
				Lenses:  map[reasoning.Lens]string{},
			},
		},
		{
			name:    "plain prose",
			content: "I could not determine whether this claim is accurate.",
			want:    reasoning.Synthesis{Status: reasoning.StatusUnparseable},
		},
		{
			name:    "json without recognized fields",
			content: `{"answer":"false","confidence":0.4}`,
			want:    reasoning.Synthesis{Status: reasoning.StatusUnparseable},
		},
		{
			name:    "empty",
			content: "",
			want:    reasoning.Synthesis{Status: reasoning.StatusUnparseable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reasoning.Parse(tt.content)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
