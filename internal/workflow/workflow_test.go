package workflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/crediscope/internal/cache"
	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/evidence"
	"github.com/JaimeStill/crediscope/internal/prompts"
	"github.com/JaimeStill/crediscope/internal/providers"
	"github.com/JaimeStill/crediscope/internal/reasoning"
	"github.com/JaimeStill/crediscope/internal/report"
	"github.com/JaimeStill/crediscope/internal/scoring"
	"github.com/JaimeStill/crediscope/internal/workflow"
)

const (
	callTimeout = 50 * time.Millisecond
	deadline    = 100 * time.Millisecond
	synthesis   = 100 * time.Millisecond
)

type fakeAdapter struct {
	name    providers.Name
	applies func(claims.Input) bool
	signal  providers.Signal
	err     error
	hang    bool
	calls   atomic.Int32
}

func (f *fakeAdapter) Name() providers.Name { return f.name }

func (f *fakeAdapter) Applies(in claims.Input) bool {
	if f.applies == nil {
		return true
	}
	return f.applies(in)
}

func (f *fakeAdapter) Call(ctx context.Context, _ claims.Input) (providers.Signal, error) {
	f.calls.Add(1)
	if f.hang {
		<-ctx.Done()
		time.Sleep(time.Second)
		return providers.Signal{}, ctx.Err()
	}
	return f.signal, f.err
}

type completerFunc func(ctx context.Context, system, user string) (string, error)

func (f completerFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

type translatorFunc func(ctx context.Context, text, target string) providers.Outcome

func (f translatorFunc) Translate(ctx context.Context, text, target string) providers.Outcome {
	return f(ctx, text, target)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

func reuters() providers.Signal {
	return providers.Signal{Evidence: []providers.EvidenceItem{{
		Source:      "Reuters",
		Snippet:     `Rated "False": COVID-19 vaccines do not contain microchips`,
		Reliability: 0.9,
		URL:         "https://www.reuters.com/article/factcheck-vaccine-microchip",
		Category:    providers.CategoryFactCheck,
		Rating:      providers.RatingFalse,
	}}}
}

type fixture struct {
	factCheck *fakeAdapter
	toxicity  *fakeAdapter
	urlSafety *fakeAdapter
	completer reasoning.Completer
	translate workflow.Translator
	store     cache.Store
}

func newFixture() *fixture {
	return &fixture{
		factCheck: &fakeAdapter{name: providers.FactCheckLookup, signal: reuters()},
		toxicity:  &fakeAdapter{name: providers.ToxicityScoring, signal: providers.Signal{Score: ptr(0.1)}},
		urlSafety: &fakeAdapter{
			name:    providers.URLSafety,
			applies: func(in claims.Input) bool { return in.Kind == claims.KindURL },
			signal:  providers.Signal{Threat: &providers.Threat{}},
		},
		store: cache.NewMemory(time.Hour, 0),
	}
}

func (f *fixture) engine() *workflow.Engine {
	sources := []evidence.Source{
		{Adapter: f.factCheck, Timeout: callTimeout},
		{Adapter: f.toxicity, Timeout: callTimeout},
		{Adapter: f.urlSafety, Timeout: callTimeout},
	}

	return workflow.New(&workflow.Runtime{
		Collector:   evidence.New(sources, deadline, discard()),
		Synthesizer: reasoning.New(f.completer, prompts.Defaults(), synthesis, discard()),
		Translator:  f.translate,
		Cache:       cache.New[report.Result](f.store, discard()),
		Policy:      scoring.DefaultPolicy(),
		Logger:      discard(),
	})
}

func vaccineClaim() claims.Input {
	return claims.Input{
		Kind:     claims.KindText,
		Content:  "COVID-19 vaccines contain 5G microchips",
		Language: "en",
		Domain:   claims.Medical,
	}
}

func medicalItem(items []report.ChecklistItem) bool {
	for _, item := range items {
		if item.Point == "Find the official health guidance" {
			return true
		}
	}
	return false
}

func TestAnalyzeFactCheckedClaim(t *testing.T) {
	f := newFixture()

	result, status, err := f.engine().Analyze(context.Background(), vaccineClaim(), workflow.Options{})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if status != cache.StatusMiss {
		t.Errorf("status = %s, want miss", status)
	}
	if result.Verdict.Label != claims.LikelyFalse {
		t.Errorf("Label = %s, want LIKELY_FALSE", result.Verdict.Label)
	}
	if result.Verdict.Confidence < 80 {
		t.Errorf("Confidence = %d, want >= 80", result.Verdict.Confidence)
	}
	if len(result.Evidence) != 1 || result.Evidence[0].Source != "Reuters" {
		t.Errorf("Evidence = %+v, want the Reuters fact-check", result.Evidence)
	}
	if !medicalItem(result.Checklist) {
		t.Error("checklist has no medical item")
	}
	if result.Audit.Providers[providers.URLSafety].Reason != providers.ReasonNotApplicable {
		t.Errorf("url_safety audit = %+v, want not applicable", result.Audit.Providers[providers.URLSafety])
	}
	if !result.Audit.Degraded {
		t.Error("Degraded = false with synthesis unavailable")
	}
	if result.Audit.Cache != string(cache.StatusMiss) {
		t.Errorf("Audit.Cache = %s, want miss", result.Audit.Cache)
	}
}

func TestAnalyzeFactCheckedClaimAgreeingSynthesis(t *testing.T) {
	replies := map[string]string{
		"without confidence": `{"verdict":"LIKELY_FALSE","summary":"Vaccines carry no electronics."}`,
		"with confidence":    `{"verdict":"LIKELY_FALSE","confidence":0.6,"summary":"Vaccines carry no electronics."}`,
	}

	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			f.completer = completerFunc(func(context.Context, string, string) (string, error) {
				return reply, nil
			})

			result, _, err := f.engine().Analyze(context.Background(), vaccineClaim(), workflow.Options{})
			if err != nil {
				t.Fatalf("Analyze error: %v", err)
			}

			if result.Verdict.Label != claims.LikelyFalse {
				t.Errorf("Label = %s, want LIKELY_FALSE", result.Verdict.Label)
			}
			if result.Verdict.Confidence < 80 {
				t.Errorf("Confidence = %d, want >= 80", result.Verdict.Confidence)
			}
			if result.Audit.Degraded {
				t.Error("Degraded = true with every provider available")
			}
		})
	}
}

func TestAnalyzeSynthesisOnly(t *testing.T) {
	f := newFixture()
	f.factCheck.hang = true
	f.toxicity.hang = true
	f.completer = completerFunc(func(context.Context, string, string) (string, error) {
		return `{"verdict":"LIKELY_FALSE","confidence":0.8,"summary":"No vaccine contains electronics.","lenses":{"scientific":"Microchips cannot pass through a needle."}}`, nil
	})

	result, _, err := f.engine().Analyze(context.Background(), vaccineClaim(), workflow.Options{})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if result.Verdict.Label != claims.LikelyFalse || result.Verdict.Basis != scoring.BasisSynthesis {
		t.Errorf("Verdict = %+v, want synthesis-derived LIKELY_FALSE", result.Verdict)
	}
	if len(result.Evidence) != 0 {
		t.Errorf("Evidence = %+v, want empty", result.Evidence)
	}
	if !result.Audit.Degraded {
		t.Error("Degraded = false with every provider timed out")
	}
	if result.Lenses[reasoning.Scientific] == "" {
		t.Error("scientific lens missing")
	}
	if got := result.Audit.Providers[providers.FactCheckLookup]; got.Reason != providers.ReasonTimeout {
		t.Errorf("fact_check audit = %+v, want timeout", got)
	}
}

func TestAnalyzeFullDegradation(t *testing.T) {
	f := newFixture()
	f.factCheck.err = errors.Join(providers.ErrQuotaExceeded, errors.New("429"))
	f.toxicity.err = errors.New("connection refused")
	f.completer = completerFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("503 service unavailable")
	})

	result, _, err := f.engine().Analyze(context.Background(), vaccineClaim(), workflow.Options{})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if result.Verdict.Label != claims.Unverified {
		t.Errorf("Label = %s, want UNVERIFIED", result.Verdict.Label)
	}
	if result.Verdict.Confidence > 40 {
		t.Errorf("Confidence = %d, want <= 40", result.Verdict.Confidence)
	}
	if !result.Audit.Degraded {
		t.Error("Degraded = false")
	}
	if got := result.Audit.Providers[providers.FactCheckLookup].Reason; got != providers.ReasonQuotaExceeded {
		t.Errorf("fact_check reason = %s, want quota_exceeded", got)
	}
}

func TestAnalyzeUnparseableSynthesis(t *testing.T) {
	f := newFixture()
	f.completer = completerFunc(func(context.Context, string, string) (string, error) {
		return "I'm sorry, I can't help with that.", nil
	})

	result, _, err := f.engine().Analyze(context.Background(), vaccineClaim(), workflow.Options{})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if result.Verdict.Label != claims.Unverified || result.Verdict.Confidence > 40 {
		t.Errorf("Verdict = %+v, want UNVERIFIED <= 40", result.Verdict)
	}
	if result.Audit.Synthesis.Status != reasoning.StatusUnparseable {
		t.Errorf("Synthesis status = %s, want unparseable", result.Audit.Synthesis.Status)
	}
	if result.Verdict.Summary == "" {
		t.Error("Summary is empty")
	}
}

func TestAnalyzeURLThreat(t *testing.T) {
	f := newFixture()
	f.factCheck.signal = providers.Signal{Evidence: []providers.EvidenceItem{{
		Source: "PolitiFact", Reliability: 0.9, Category: providers.CategoryFactCheck, Rating: providers.RatingTrue,
	}}}
	f.urlSafety.signal = providers.Signal{Threat: &providers.Threat{Detected: true, Type: "MALWARE"}}
	f.completer = completerFunc(func(context.Context, string, string) (string, error) {
		return `{"verdict":"LIKELY_TRUE","confidence":0.99,"summary":"Looks fine."}`, nil
	})

	in := claims.Input{Kind: claims.KindURL, Content: "http://free-vaccine-prize.example/claim", Domain: claims.General}
	result, _, err := f.engine().Analyze(context.Background(), in, workflow.Options{})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if result.Verdict.Label != claims.LikelyFalse || result.Verdict.Confidence < 90 {
		t.Errorf("Verdict = %+v, want LIKELY_FALSE >= 90", result.Verdict)
	}
	if result.Checklist[0].Point != "Do not open this link" {
		t.Errorf("Checklist[0] = %q, want threat warning", result.Checklist[0].Point)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	f := newFixture()
	e := f.engine()
	ctx := context.Background()

	first, _, err := e.Analyze(ctx, vaccineClaim(), workflow.Options{})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	reformatted := vaccineClaim()
	reformatted.Content = "  covid-19 VACCINES   contain 5G microchips "
	second, status, err := e.Analyze(ctx, reformatted, workflow.Options{})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if status != cache.StatusHit {
		t.Errorf("status = %s, want hit", status)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("cached result differs:\nfirst:  %s\nsecond: %s", a, b)
	}
	if n := f.factCheck.calls.Load(); n != 1 {
		t.Errorf("fact check calls = %d, want 1", n)
	}
}

func TestAnalyzeSingleFlight(t *testing.T) {
	f := newFixture()
	release := make(chan struct{})
	f.completer = completerFunc(func(context.Context, string, string) (string, error) {
		<-release
		return `{"verdict":"LIKELY_FALSE","confidence":0.9,"summary":"Debunked."}`, nil
	})
	e := f.engine()

	const n = 10
	var wg sync.WaitGroup
	labels := make([]claims.Label, n)

	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, _, err := e.Analyze(context.Background(), vaccineClaim(), workflow.Options{})
			if err != nil {
				t.Errorf("Analyze error: %v", err)
				return
			}
			labels[i] = result.Verdict.Label
		}(i)
	}

	time.Sleep(30 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls := f.factCheck.calls.Load(); calls != 1 {
		t.Errorf("fact check calls = %d, want 1", calls)
	}
	for i, l := range labels {
		if l != labels[0] {
			t.Errorf("labels[%d] = %s, want %s", i, l, labels[0])
		}
	}
}

func TestAnalyzeForceRefresh(t *testing.T) {
	f := newFixture()
	e := f.engine()
	ctx := context.Background()

	e.Analyze(ctx, vaccineClaim(), workflow.Options{})
	result, status, err := e.Analyze(ctx, vaccineClaim(), workflow.Options{ForceRefresh: true})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if status != cache.StatusRefresh || result.Audit.Cache != string(cache.StatusRefresh) {
		t.Errorf("status = %s (audit %s), want refresh", status, result.Audit.Cache)
	}
	if n := f.factCheck.calls.Load(); n != 2 {
		t.Errorf("fact check calls = %d, want 2", n)
	}
}

func TestAnalyzeTimeBound(t *testing.T) {
	f := newFixture()
	f.factCheck.hang = true
	f.toxicity.hang = true
	f.urlSafety.hang = true
	block := make(chan struct{})
	defer close(block)
	f.completer = completerFunc(func(context.Context, string, string) (string, error) {
		<-block
		return "", nil
	})

	e := f.engine()
	in := claims.Input{Kind: claims.KindURL, Content: "https://example.com/news", Domain: claims.General}

	start := time.Now()
	result, _, err := e.Analyze(context.Background(), in, workflow.Options{})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if limit := e.Budget() + 150*time.Millisecond; elapsed > limit {
		t.Errorf("elapsed = %v, want <= %v", elapsed, limit)
	}
	if result.Verdict.Label != claims.Unverified {
		t.Errorf("Label = %s, want UNVERIFIED", result.Verdict.Label)
	}
}

func TestAnalyzeRejectsInput(t *testing.T) {
	e := newFixture().engine()

	tests := []struct {
		name string
		in   claims.Input
	}{
		{"empty content", claims.Input{Kind: claims.KindText, Content: "   "}},
		{"unknown kind", claims.Input{Kind: "audio", Content: "hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := e.Analyze(context.Background(), tt.in, workflow.Options{})
			if !errors.Is(err, claims.ErrInputRejected) {
				t.Errorf("Analyze error = %v, want ErrInputRejected", err)
			}
		})
	}
}

func TestAnalyzeLocalization(t *testing.T) {
	hindi := claims.Input{
		Kind:     claims.KindText,
		Content:  "कोविड वैक्सीन में 5G माइक्रोचिप है",
		Language: "hi",
		Domain:   claims.Medical,
	}

	t.Run("translated", func(t *testing.T) {
		f := newFixture()
		f.translate = translatorFunc(func(_ context.Context, text, target string) providers.Outcome {
			if target != "hi" {
				t.Errorf("target = %q, want hi", target)
			}
			return providers.NewAvailable(providers.Translation, providers.Signal{Text: "अनुवादित सारांश"})
		})

		result, _, err := f.engine().Analyze(context.Background(), hindi, workflow.Options{})
		if err != nil {
			t.Fatalf("Analyze error: %v", err)
		}
		if result.Localized == nil || result.Localized.Summary != "अनुवादित सारांश" {
			t.Errorf("Localized = %+v", result.Localized)
		}
	})

	t.Run("translation failure is skipped", func(t *testing.T) {
		f := newFixture()
		f.translate = translatorFunc(func(context.Context, string, string) providers.Outcome {
			return providers.NewUnavailable(providers.Translation, providers.ReasonTransportError, errors.New("down"))
		})

		result, _, err := f.engine().Analyze(context.Background(), hindi, workflow.Options{})
		if err != nil {
			t.Fatalf("Analyze error: %v", err)
		}
		if result.Localized != nil {
			t.Errorf("Localized = %+v, want nil", result.Localized)
		}
		if got := result.Audit.Providers[providers.Translation].Status; got != providers.StatusUnavailable {
			t.Errorf("translation audit = %s, want unavailable", got)
		}
	})

	t.Run("english input bypasses the translator", func(t *testing.T) {
		f := newFixture()
		var calls atomic.Int32
		f.translate = translatorFunc(func(context.Context, string, string) providers.Outcome {
			calls.Add(1)
			return providers.NewAvailable(providers.Translation, providers.Signal{Text: "unused"})
		})

		result, _, err := f.engine().Analyze(context.Background(), vaccineClaim(), workflow.Options{})
		if err != nil {
			t.Fatalf("Analyze error: %v", err)
		}
		if calls.Load() != 0 {
			t.Errorf("translator calls = %d, want 0", calls.Load())
		}
		if result.Localized != nil {
			t.Errorf("Localized = %+v, want nil", result.Localized)
		}
		if got := result.Audit.Providers[providers.Translation].Reason; got != providers.ReasonNotApplicable {
			t.Errorf("translation audit reason = %s, want not applicable", got)
		}
	})

	t.Run("no translator configured", func(t *testing.T) {
		f := newFixture()

		result, _, err := f.engine().Analyze(context.Background(), hindi, workflow.Options{})
		if err != nil {
			t.Fatalf("Analyze error: %v", err)
		}
		if result.Localized != nil {
			t.Errorf("Localized = %+v, want nil", result.Localized)
		}
		if got := result.Audit.Providers[providers.Translation].Reason; got != providers.ReasonNotApplicable {
			t.Errorf("translation audit reason = %s, want not applicable", got)
		}
	})
}

func TestAnalyzeRecordsExtraction(t *testing.T) {
	f := newFixture()
	ocr := providers.NewAvailable(providers.OpticalExtraction, providers.Signal{Text: "Forward this to everyone", Confidence: 0.93})
	ocr.Latency = 400 * time.Millisecond

	in := claims.Input{Kind: claims.KindImageText, Content: "Forward this to everyone", Domain: claims.General}
	result, _, err := f.engine().Analyze(context.Background(), in, workflow.Options{Extraction: &ocr})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	got := result.Audit.Providers[providers.OpticalExtraction]
	if got.Status != providers.StatusAvailable || got.LatencyMs != 400 {
		t.Errorf("optical_extraction audit = %+v", got)
	}
}
