package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/vision/v1"
)

// Extractor reads text out of images with Cloud Vision text detection.
// It runs upstream of normalization but shares the provider contract.
type Extractor struct {
	svc     *vision.Service
	timeout time.Duration
	logger  *slog.Logger
}

// NewExtractor creates the optical extraction adapter.
func NewExtractor(ctx context.Context, cfg Config, logger *slog.Logger) (*Extractor, error) {
	svc, err := vision.NewService(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create vision client: %w", err)
	}
	return &Extractor{
		svc:     svc,
		timeout: cfg.TimeoutDuration(),
		logger:  logger.With("provider", OpticalExtraction),
	}, nil
}

// Extract returns an outcome whose Signal carries the detected text and the
// mean page confidence. An image with no text is Available with empty Text.
func (e *Extractor) Extract(ctx context.Context, image []byte) Outcome {
	return call(ctx, OpticalExtraction, e.timeout, e.logger, func(ctx context.Context) (Signal, error) {
		return e.annotate(ctx, image)
	})
}

func (e *Extractor) annotate(ctx context.Context, image []byte) (Signal, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []*vision.Feature{{Type: "TEXT_DETECTION"}},
		}},
	}

	resp, err := e.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return Signal{}, apiError(err)
	}
	if len(resp.Responses) == 0 {
		return Signal{}, nil
	}

	r := resp.Responses[0]
	if r.Error != nil && r.Error.Code != 0 {
		return Signal{}, fmt.Errorf("%w: vision: %s", ErrTransport, r.Error.Message)
	}

	sig := Signal{}
	switch {
	case r.FullTextAnnotation != nil:
		sig.Text = r.FullTextAnnotation.Text
		sig.Confidence = meanConfidence(r.FullTextAnnotation.Pages)
	case len(r.TextAnnotations) > 0:
		sig.Text = r.TextAnnotations[0].Description
	}
	sig.Text = strings.TrimSpace(sig.Text)

	return sig, nil
}

func meanConfidence(pages []*vision.Page) float64 {
	if len(pages) == 0 {
		return 0
	}
	var sum float64
	for _, p := range pages {
		sum += p.Confidence
	}
	return sum / float64(len(pages))
}
