package providers

import (
	"context"
	"fmt"

	"google.golang.org/api/safebrowsing/v4"

	"github.com/JaimeStill/crediscope/internal/claims"
)

var threatTypes = []string{
	"MALWARE",
	"SOCIAL_ENGINEERING",
	"UNWANTED_SOFTWARE",
	"POTENTIALLY_HARMFUL_APPLICATION",
}

// URLScreen checks links against the Google Safe Browsing threat lists.
type URLScreen struct {
	svc     *safebrowsing.Service
	version string
}

// NewURLScreen creates the URL safety adapter. version identifies this
// client to the Safe Browsing service.
func NewURLScreen(ctx context.Context, cfg Config, version string) (*URLScreen, error) {
	svc, err := safebrowsing.NewService(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create safe browsing client: %w", err)
	}
	return &URLScreen{svc: svc, version: version}, nil
}

func (u *URLScreen) Name() Name { return URLSafety }

func (u *URLScreen) Applies(in claims.Input) bool { return AppliesToURLs(in) }

func (u *URLScreen) Call(ctx context.Context, in claims.Input) (Signal, error) {
	req := &safebrowsing.GoogleSecuritySafebrowsingV4FindThreatMatchesRequest{
		Client: &safebrowsing.GoogleSecuritySafebrowsingV4ClientInfo{
			ClientId:      "crediscope",
			ClientVersion: u.version,
		},
		ThreatInfo: &safebrowsing.GoogleSecuritySafebrowsingV4ThreatInfo{
			ThreatTypes:      threatTypes,
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries: []*safebrowsing.GoogleSecuritySafebrowsingV4ThreatEntry{
				{Url: in.Content},
			},
		},
	}

	resp, err := u.svc.ThreatMatches.Find(req).Context(ctx).Do()
	if err != nil {
		return Signal{}, apiError(err)
	}

	threat := &Threat{}
	if len(resp.Matches) > 0 {
		threat.Detected = true
		threat.Type = resp.Matches[0].ThreatType
	}

	return Signal{
		Threat:   threat,
		Evidence: []EvidenceItem{threatEvidence(*threat)},
	}, nil
}

func threatEvidence(t Threat) EvidenceItem {
	if t.Detected {
		return EvidenceItem{
			Source:      "Google Safe Browsing",
			Snippet:     fmt.Sprintf("Link flagged as %s", t.Type),
			Reliability: 0.95,
			Category:    CategoryURLSafety,
		}
	}
	return EvidenceItem{
		Source:      "Google Safe Browsing",
		Snippet:     "No known threats for this link",
		Reliability: 0.90,
		Category:    CategoryURLSafety,
	}
}
