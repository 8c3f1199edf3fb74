package claims

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// MaxContentLength bounds the size of analyzable content, in characters
// (runes) after normalization.
const MaxContentLength = 10000

// Request is raw content as received from a caller.
type Request struct {
	Kind     Kind   `json:"kind" validate:"required,oneof=text url image_text"`
	Content  string `json:"content" validate:"required,max=10000"`
	Language string `json:"language,omitempty" validate:"omitempty,bcp47_language_tag"`
}

// PageResolver fetches human-readable text for a URL.
type PageResolver interface {
	Resolve(ctx context.Context, rawURL string) (string, error)
}

// Normalizer validates raw requests and produces immutable Inputs.
type Normalizer struct {
	validate       *validator.Validate
	resolver       PageResolver
	resolveTimeout time.Duration
	logger         *slog.Logger
}

// NewNormalizer creates a Normalizer. resolver may be nil, in which case
// URL inputs carry no page context.
func NewNormalizer(resolver PageResolver, resolveTimeout time.Duration, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		resolver:       resolver,
		resolveTimeout: resolveTimeout,
		logger:         logger.With("system", "normalizer"),
	}
}

// Normalize validates req and returns the normalized Input.
// Every failure wraps ErrInputRejected.
func (n *Normalizer) Normalize(ctx context.Context, req Request) (Input, error) {
	req.Content = canonicalContent(req.Content)

	if err := n.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return Input{}, fmt.Errorf("%w: %s", ErrInputRejected, describe(verrs))
		}
		return Input{}, fmt.Errorf("%w: %v", ErrInputRejected, err)
	}

	in := Input{
		Kind:     req.Kind,
		Content:  req.Content,
		Language: baseLanguage(req.Language),
	}

	if in.Kind == KindURL {
		u, err := url.Parse(in.Content)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Input{}, fmt.Errorf("%w: content is not an http(s) url", ErrInputRejected)
		}
		in.Context = n.resolve(ctx, in.Content)
		in.Domain = Classify(u.Host + " " + u.Path)
	} else {
		in.Domain = Classify(in.Content)
	}

	return in, nil
}

// Clip normalizes content the way Normalize does and truncates it to
// MaxContentLength characters.
func Clip(content string) string {
	content = canonicalContent(content)
	runes := []rune(content)
	if len(runes) <= MaxContentLength {
		return content
	}
	return strings.TrimSpace(string(runes[:MaxContentLength]))
}

func canonicalContent(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

func (n *Normalizer) resolve(ctx context.Context, rawURL string) string {
	if n.resolver == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, n.resolveTimeout)
	defer cancel()

	text, err := n.resolver.Resolve(ctx, rawURL)
	if err != nil {
		n.logger.Debug("page resolution skipped", "url", rawURL, "error", err)
		return ""
	}
	return strings.Join(strings.Fields(text), " ")
}

func baseLanguage(tag string) string {
	if tag == "" {
		return "en"
	}
	t, err := language.Parse(tag)
	if err != nil {
		return "en"
	}
	base, _ := t.Base()
	return base.String()
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, strings.ToLower(fe.Field())+" is required")
		case "max":
			parts = append(parts, fmt.Sprintf("%s exceeds %s characters", strings.ToLower(fe.Field()), fe.Param()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of %s", strings.ToLower(fe.Field()), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field())))
		}
	}
	return strings.Join(parts, "; ")
}
