package providers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/providers"
)

func TestToxicityCall(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1alpha1/comments:analyze" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "secret" {
			t.Errorf("key = %q, want secret", r.URL.Query().Get("key"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, `{"attributeScores":{"TOXICITY":{"summaryScore":{"value":0.83,"type":"PROBABILITY"}}}}`)
	}))
	defer srv.Close()

	tox := providers.NewToxicity(providers.Config{APIKey: "secret", Endpoint: srv.URL}, srv.Client())

	in := claims.Input{Kind: claims.KindText, Content: "They are LYING to you", Language: "en", Domain: claims.General}
	out := providers.Invoke(context.Background(), tox, in, time.Second, discard())
	if !out.Available() {
		t.Fatalf("Status = %s (%s): %v", out.Status, out.Reason, out.Err)
	}

	if out.Signal.Score == nil || *out.Signal.Score != 0.83 {
		t.Errorf("Score = %v, want 0.83", out.Signal.Score)
	}
	if len(out.Signal.Evidence) != 1 || out.Signal.Evidence[0].Category != providers.CategoryToxicity {
		t.Fatalf("Evidence = %+v, want one toxicity item", out.Signal.Evidence)
	}
	if want := "Toxicity score 0.83; language shows manipulation patterns"; out.Signal.Evidence[0].Snippet != want {
		t.Errorf("Snippet = %q, want %q", out.Signal.Evidence[0].Snippet, want)
	}

	comment, _ := got["comment"].(map[string]any)
	if comment["text"] != in.Content {
		t.Errorf("request text = %v, want %q", comment["text"], in.Content)
	}
}

func TestToxicityStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   providers.Reason
	}{
		{"quota", http.StatusTooManyRequests, providers.ReasonQuotaExceeded},
		{"bad request", http.StatusBadRequest, providers.ReasonTransportError},
		{"server error", http.StatusInternalServerError, providers.ReasonTransportError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			tox := providers.NewToxicity(providers.Config{APIKey: "k", Endpoint: srv.URL}, srv.Client())
			out := providers.Invoke(context.Background(), tox, textInput, time.Second, discard())
			if out.Reason != tt.want {
				t.Errorf("Reason = %s, want %s", out.Reason, tt.want)
			}
		})
	}
}

func TestToxicityApplies(t *testing.T) {
	tox := providers.NewToxicity(providers.Config{APIKey: "k"}, nil)

	tests := []struct {
		name string
		in   claims.Input
		want bool
	}{
		{"text", claims.Input{Kind: claims.KindText, Content: "x"}, true},
		{"image text", claims.Input{Kind: claims.KindImageText, Content: "x"}, true},
		{"bare url", claims.Input{Kind: claims.KindURL, Content: "https://a.example"}, false},
		{"resolved url", claims.Input{Kind: claims.KindURL, Content: "https://a.example", Context: "Title"}, true},
	}

	for _, tt := range tests {
		if got := tox.Applies(tt.in); got != tt.want {
			t.Errorf("Applies(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
