package providers

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/factchecktools/v1alpha1"

	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/pkg/formatting"
)

const maxQueryRunes = 500

var priorityPublishers = []string{
	"reuters", "ap news", "associated press", "snopes", "factcheck.org",
	"politifact", "afp fact check", "the hindu", "indian express",
}

// FactCheck looks up published fact-checks through the Google Fact Check Tools API.
type FactCheck struct {
	svc      *factchecktools.Service
	maxItems int
}

// NewFactCheck creates the fact-check adapter. maxItems caps the number of
// distinct publishers returned as evidence.
func NewFactCheck(ctx context.Context, cfg Config, maxItems int) (*FactCheck, error) {
	svc, err := factchecktools.NewService(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create fact check client: %w", err)
	}
	if maxItems <= 0 {
		maxItems = 5
	}
	return &FactCheck{svc: svc, maxItems: maxItems}, nil
}

func (f *FactCheck) Name() Name { return FactCheckLookup }

func (f *FactCheck) Applies(in claims.Input) bool { return true }

func (f *FactCheck) Call(ctx context.Context, in claims.Input) (Signal, error) {
	call := f.svc.Claims.Search().
		Query(formatting.Truncate(in.LookupText(), maxQueryRunes)).
		PageSize(10).
		Context(ctx)

	if in.Language != "" {
		call = call.LanguageCode(in.Language)
	}

	resp, err := call.Do()
	if err != nil {
		return Signal{}, apiError(err)
	}

	return Signal{Evidence: f.evidence(resp.Claims)}, nil
}

func (f *FactCheck) evidence(found []*factchecktools.GoogleFactcheckingFactchecktoolsV1alpha1Claim) []EvidenceItem {
	items := make([]EvidenceItem, 0, f.maxItems)
	seen := make(map[string]struct{})

	for _, c := range found {
		for _, review := range c.ClaimReview {
			if len(items) == f.maxItems {
				return items
			}

			publisher := publisherName(review.Publisher)
			key := strings.ToLower(publisher)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			items = append(items, EvidenceItem{
				Source:      publisher,
				Snippet:     snippet(review.TextualRating, review.Title, c.Text),
				Reliability: PublisherReliability(publisher),
				URL:         review.Url,
				Category:    CategoryFactCheck,
				Rating:      NormalizeRating(review.TextualRating),
			})
		}
	}

	return items
}

// PublisherReliability scores a fact-check publisher in [0,1].
func PublisherReliability(publisher string) float64 {
	p := strings.ToLower(publisher)
	for _, known := range priorityPublishers {
		if strings.Contains(p, known) {
			return 0.95
		}
	}
	switch {
	case strings.Contains(p, "bbc"), strings.Contains(p, "cnn"):
		return 0.90
	case strings.Contains(p, "university"), strings.Contains(p, "journal"), strings.Contains(p, "research"):
		return 0.92
	default:
		return 0.80
	}
}

// NormalizeRating maps a publisher's free-text rating onto a Rating.
// Mixed wording is checked first so "partly false" is not read as false.
func NormalizeRating(textual string) Rating {
	t := strings.ToLower(textual)
	switch {
	case containsAny(t, "mixed", "partly", "partially", "half"):
		return RatingMixed
	case containsAny(t, "false", "incorrect", "misleading", "fake", "wrong", "untrue", "not true", "pants on fire", "hoax"):
		return RatingFalse
	case containsAny(t, "true", "correct", "accurate", "verified"):
		return RatingTrue
	default:
		return RatingUnrated
	}
}

func publisherName(p *factchecktools.GoogleFactcheckingFactchecktoolsV1alpha1Publisher) string {
	if p == nil {
		return "Unknown publisher"
	}
	if p.Name != "" {
		return p.Name
	}
	if p.Site != "" {
		return p.Site
	}
	return "Unknown publisher"
}

func snippet(rating, title, claim string) string {
	body := title
	if body == "" {
		body = claim
	}
	body = formatting.Truncate(strings.TrimSpace(body), 280)
	if rating == "" {
		return body
	}
	if body == "" {
		return "Rated: " + rating
	}
	return fmt.Sprintf("Rated %q: %s", rating, body)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
