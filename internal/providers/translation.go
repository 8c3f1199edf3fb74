package providers

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"google.golang.org/api/translate/v2"
)

// Translator localizes result text with the Cloud Translation API.
// It is best-effort: callers skip localization on any Unavailable outcome.
type Translator struct {
	svc     *translate.Service
	timeout time.Duration
	logger  *slog.Logger
}

// NewTranslator creates the translation adapter.
func NewTranslator(ctx context.Context, cfg Config, logger *slog.Logger) (*Translator, error) {
	svc, err := translate.NewService(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create translation client: %w", err)
	}
	return &Translator{
		svc:     svc,
		timeout: cfg.TimeoutDuration(),
		logger:  logger.With("provider", Translation),
	}, nil
}

// Translate renders text in the target language. The Signal's Text holds the translation.
func (t *Translator) Translate(ctx context.Context, text, target string) Outcome {
	return call(ctx, Translation, t.timeout, t.logger, func(ctx context.Context) (Signal, error) {
		resp, err := t.svc.Translations.List([]string{text}, target).
			Format("text").
			Context(ctx).
			Do()
		if err != nil {
			return Signal{}, apiError(err)
		}
		if len(resp.Translations) == 0 {
			return Signal{}, fmt.Errorf("%w: empty translation response", ErrTransport)
		}
		return Signal{Text: html.UnescapeString(resp.Translations[0].TranslatedText)}, nil
	})
}
