package providers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/providers"
)

func TestURLScreenCall(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantThreat providers.Threat
	}{
		{
			name:       "threat",
			body:       `{"matches":[{"threatType":"SOCIAL_ENGINEERING","platformType":"ANY_PLATFORM","threatEntryType":"URL","threat":{"url":"http://phish.example/"}}]}`,
			wantThreat: providers.Threat{Detected: true, Type: "SOCIAL_ENGINEERING"},
		},
		{
			name:       "clean",
			body:       `{}`,
			wantThreat: providers.Threat{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeGoogleAPI(t, http.StatusOK, tt.body)

			screen, err := providers.NewURLScreen(context.Background(), providers.Config{APIKey: "k", Endpoint: srv.URL + "/"}, "test")
			if err != nil {
				t.Fatalf("NewURLScreen error: %v", err)
			}

			in := claims.Input{Kind: claims.KindURL, Content: "http://phish.example/", Domain: claims.General}
			out := providers.Invoke(context.Background(), screen, in, 2*time.Second, discard())
			if !out.Available() {
				t.Fatalf("Status = %s (%s): %v", out.Status, out.Reason, out.Err)
			}
			if out.Signal.Threat == nil || *out.Signal.Threat != tt.wantThreat {
				t.Errorf("Threat = %+v, want %+v", out.Signal.Threat, tt.wantThreat)
			}
			if len(out.Signal.Evidence) != 1 || out.Signal.Evidence[0].Category != providers.CategoryURLSafety {
				t.Errorf("Evidence = %+v, want one url_safety item", out.Signal.Evidence)
			}
		})
	}
}

func TestURLScreenNotApplicableToText(t *testing.T) {
	screen, err := providers.NewURLScreen(context.Background(), providers.Config{APIKey: "k"}, "test")
	if err != nil {
		t.Fatalf("NewURLScreen error: %v", err)
	}

	out := providers.Invoke(context.Background(), screen, textInput, time.Second, discard())
	if out.Reason != providers.ReasonNotApplicable {
		t.Errorf("Reason = %s, want not_applicable", out.Reason)
	}
}
