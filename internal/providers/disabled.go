package providers

import (
	"context"

	"github.com/JaimeStill/crediscope/internal/claims"
)

type disabled struct {
	name    Name
	applies func(claims.Input) bool
}

// Disabled stands in for a provider that has no credentials. It applies
// wherever the real provider would and always fails with ErrNotConfigured,
// so analyses report the source as unavailable. A nil applies matches every input.
func Disabled(name Name, applies func(claims.Input) bool) Adapter {
	return &disabled{name: name, applies: applies}
}

func (d *disabled) Name() Name { return d.name }

func (d *disabled) Applies(in claims.Input) bool {
	return d.applies == nil || d.applies(in)
}

func (d *disabled) Call(context.Context, claims.Input) (Signal, error) {
	return Signal{}, ErrNotConfigured
}

// AppliesToURLs matches URL inputs, the scope of URL screening.
func AppliesToURLs(in claims.Input) bool {
	return in.Kind == claims.KindURL
}

// AppliesToLanguage matches inputs with text to score.
func AppliesToLanguage(in claims.Input) bool {
	return in.Kind != claims.KindURL || in.Context != ""
}
