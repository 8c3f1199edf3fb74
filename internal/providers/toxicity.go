package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/JaimeStill/crediscope/internal/claims"
)

const (
	defaultPerspectiveEndpoint = "https://commentanalyzer.googleapis.com"
	analyzePath                = "/v1alpha1/comments:analyze"

	// ManipulationThreshold is the toxicity score above which language is
	// flagged as likely manipulative.
	ManipulationThreshold = 0.7

	toxicityReliability = 0.75
)

// Toxicity scores content with the Perspective comment analyzer.
type Toxicity struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

type analyzeRequest struct {
	Comment             analyzeComment            `json:"comment"`
	Languages           []string                  `json:"languages,omitempty"`
	RequestedAttributes map[string]map[string]any `json:"requestedAttributes"`
}

type analyzeComment struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	AttributeScores map[string]struct {
		SummaryScore struct {
			Value float64 `json:"value"`
		} `json:"summaryScore"`
	} `json:"attributeScores"`
}

// NewToxicity creates the toxicity adapter. client may be nil.
func NewToxicity(cfg Config, client *http.Client) *Toxicity {
	if client == nil {
		client = http.DefaultClient
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultPerspectiveEndpoint
	}
	return &Toxicity{
		client:   client,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   cfg.APIKey,
	}
}

func (t *Toxicity) Name() Name { return ToxicityScoring }

// Applies excludes bare URLs, which carry no language to score.
func (t *Toxicity) Applies(in claims.Input) bool {
	return AppliesToLanguage(in)
}

func (t *Toxicity) Call(ctx context.Context, in claims.Input) (Signal, error) {
	body := analyzeRequest{
		Comment:             analyzeComment{Text: in.LookupText()},
		RequestedAttributes: map[string]map[string]any{"TOXICITY": {}},
	}
	if in.Language != "" {
		body.Languages = []string{in.Language}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Signal{}, err
	}

	u := t.endpoint + analyzePath + "?key=" + url.QueryEscape(t.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return Signal{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return Signal{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Signal{}, statusError(resp.StatusCode, string(msg))
	}

	var result analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Signal{}, fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}

	attr, ok := result.AttributeScores["TOXICITY"]
	if !ok {
		return Signal{}, fmt.Errorf("%w: response missing TOXICITY score", ErrTransport)
	}

	score := clamp01(attr.SummaryScore.Value)
	return Signal{
		Score:    &score,
		Evidence: []EvidenceItem{toxicityEvidence(score)},
	}, nil
}

func toxicityEvidence(score float64) EvidenceItem {
	text := fmt.Sprintf("Toxicity score %.2f", score)
	if score > ManipulationThreshold {
		text += "; language shows manipulation patterns"
	}
	return EvidenceItem{
		Source:      "Perspective API",
		Snippet:     text,
		Reliability: toxicityReliability,
		Category:    CategoryToxicity,
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
