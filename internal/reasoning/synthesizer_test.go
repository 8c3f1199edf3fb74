package reasoning_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/evidence"
	"github.com/JaimeStill/crediscope/internal/prompts"
	"github.com/JaimeStill/crediscope/internal/providers"
	"github.com/JaimeStill/crediscope/internal/reasoning"
)

type completerFunc func(ctx context.Context, system, user string) (string, error)

func (f completerFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

type overrideSource struct {
	instructions string
}

func (o overrideSource) Instructions(context.Context, prompts.Stage) (string, error) {
	return o.instructions, nil
}

func (o overrideSource) Spec(_ context.Context, stage prompts.Stage) (string, error) {
	return prompts.Spec(stage)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleInput() claims.Input {
	return claims.Input{
		Kind:     claims.KindText,
		Content:  "5G towers spread COVID-19",
		Language: "en",
		Domain:   claims.Medical,
	}
}

func sampleCollection() evidence.Collection {
	return evidence.Collection{
		Evidence: []providers.EvidenceItem{{
			Source:      "Reuters",
			Snippet:     `Rated "False": 5G does not spread COVID-19`,
			Reliability: 0.9,
			Category:    providers.CategoryFactCheck,
			Rating:      providers.RatingFalse,
		}},
		Outcomes: []providers.Outcome{
			providers.NewAvailable(providers.FactCheckLookup, providers.Signal{}),
			providers.NewUnavailable(providers.ToxicityScoring, providers.ReasonTimeout, context.DeadlineExceeded),
		},
	}
}

func TestSynthesize(t *testing.T) {
	quota := errors.Join(providers.ErrQuotaExceeded, errors.New("429"))

	tests := []struct {
		name       string
		completer  reasoning.Completer
		wantStatus reasoning.Status
		wantReason providers.Reason
	}{
		{
			name: "parsed reply",
			completer: completerFunc(func(context.Context, string, string) (string, error) {
				return `{"verdict":"LIKELY_FALSE","confidence":0.92,"summary":"Debunked."}`, nil
			}),
			wantStatus: reasoning.StatusOK,
		},
		{
			name: "malformed reply",
			completer: completerFunc(func(context.Context, string, string) (string, error) {
				return "As an AI I cannot verify this.", nil
			}),
			wantStatus: reasoning.StatusUnparseable,
		},
		{
			name: "quota exhausted",
			completer: completerFunc(func(context.Context, string, string) (string, error) {
				return "", quota
			}),
			wantStatus: reasoning.StatusUnavailable,
			wantReason: providers.ReasonQuotaExceeded,
		},
		{
			name: "transport failure",
			completer: completerFunc(func(context.Context, string, string) (string, error) {
				return "", errors.New("connection reset")
			}),
			wantStatus: reasoning.StatusUnavailable,
			wantReason: providers.ReasonTransportError,
		},
		{
			name:       "not configured",
			completer:  nil,
			wantStatus: reasoning.StatusUnavailable,
			wantReason: providers.ReasonTransportError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := reasoning.New(tt.completer, prompts.Defaults(), time.Second, discard())
			got := s.Synthesize(context.Background(), sampleInput(), sampleCollection())

			if got.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", got.Status, tt.wantStatus)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestSynthesizeTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	stuck := completerFunc(func(context.Context, string, string) (string, error) {
		<-block
		return "", nil
	})

	s := reasoning.New(stuck, prompts.Defaults(), 50*time.Millisecond, discard())

	start := time.Now()
	got := s.Synthesize(context.Background(), sampleInput(), sampleCollection())
	elapsed := time.Since(start)

	if got.Status != reasoning.StatusUnavailable || got.Reason != providers.ReasonTimeout {
		t.Errorf("Synthesize = %q/%q, want unavailable/timeout", got.Status, got.Reason)
	}
	if elapsed > time.Second {
		t.Errorf("elapsed = %v, want bounded by timeout", elapsed)
	}
}

func TestSynthesizePromptComposition(t *testing.T) {
	var gotSystem, gotUser string
	capture := completerFunc(func(_ context.Context, system, user string) (string, error) {
		gotSystem, gotUser = system, user
		return `{"summary":"ok"}`, nil
	})

	src := overrideSource{instructions: "Custom analyst persona."}
	s := reasoning.New(capture, src, time.Second, discard())
	s.Synthesize(context.Background(), sampleInput(), sampleCollection())

	if !strings.HasPrefix(gotSystem, "Custom analyst persona.\n\n") {
		t.Errorf("system prompt does not start with override: %q", gotSystem)
	}
	if !strings.Contains(gotSystem, `"verdict"`) {
		t.Error("system prompt missing output spec")
	}
	for _, want := range []string{"5G towers spread COVID-19", "Reuters", `"unavailable_sources"`, "toxicity"} {
		if !strings.Contains(gotUser, want) {
			t.Errorf("user message missing %q", want)
		}
	}
}

func TestOpenAIComplete(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		want      string
		wantQuota bool
		wantErr   bool
	}{
		{
			name:   "first choice",
			status: http.StatusOK,
			body:   `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"summary\":\"ok\"}"},"finish_reason":"stop"}]}`,
			want:   `{"summary":"ok"}`,
		},
		{
			name:    "no choices",
			status:  http.StatusOK,
			body:    `{"id":"c2","object":"chat.completion","choices":[]}`,
			wantErr: true,
		},
		{
			name:      "rate limited",
			status:    http.StatusTooManyRequests,
			body:      `{"error":{"message":"Resource exhausted","type":"rate_limit_error","code":"429"}}`,
			wantErr:   true,
			wantQuota: true,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `{"error":{"message":"internal","type":"server_error"}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
					t.Errorf("path = %s, want chat completions", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			cfg := &reasoning.Config{BaseURL: srv.URL + "/v1", APIKey: "test", Model: "gemini-2.0-flash", MaxTokens: 256}
			c := reasoning.NewOpenAI(cfg, srv.Client())

			got, err := c.Complete(context.Background(), "system", "user")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Complete error = %v, wantErr %v", err, tt.wantErr)
			}
			if errors.Is(err, providers.ErrQuotaExceeded) != tt.wantQuota {
				t.Errorf("quota = %v, want %v (err %v)", !tt.wantQuota, tt.wantQuota, err)
			}
			if got != tt.want {
				t.Errorf("Complete = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_REASONING_MODEL", "gemini-2.5-pro")
	t.Setenv("TEST_REASONING_TIMEOUT", "7s")

	cfg := &reasoning.Config{}
	err := cfg.Finalize(&reasoning.Env{
		Model:   "TEST_REASONING_MODEL",
		Timeout: "TEST_REASONING_TIMEOUT",
	})
	if err != nil {
		t.Fatalf("Finalize error: %v", err)
	}

	if cfg.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q, want gemini-2.5-pro", cfg.Model)
	}
	if cfg.TimeoutDuration() != 7*time.Second {
		t.Errorf("Timeout = %v, want 7s", cfg.TimeoutDuration())
	}
	if cfg.Enabled() {
		t.Error("Enabled() = true without api key")
	}

	bad := &reasoning.Config{Timeout: "soon"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("Finalize accepted invalid timeout")
	}
}
