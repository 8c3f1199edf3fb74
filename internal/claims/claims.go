// Package claims defines the normalized input the verification engine operates on:
// content kinds, domain classes, the Input value, its Fingerprint, and the
// Normalizer that produces Inputs from raw requests.
package claims

// Kind identifies where the analyzed content came from.
type Kind string

const (
	KindText      Kind = "text"
	KindURL       Kind = "url"
	KindImageText Kind = "image_text"
)

// DomainClass is the subject area a claim is classified into.
// It selects the checklist template and the institutions named in gap items.
type DomainClass string

const (
	Medical    DomainClass = "medical"
	Political  DomainClass = "political"
	Technology DomainClass = "technology"
	General    DomainClass = "general"
)

// Input is a normalized piece of user content. It is immutable once produced
// by the Normalizer; Context carries best-effort page text for URL inputs and
// is not part of the identity of the claim.
type Input struct {
	Kind     Kind        `json:"kind"`
	Content  string      `json:"content"`
	Language string      `json:"detected_language,omitempty"`
	Domain   DomainClass `json:"domain_class"`
	Context  string      `json:"context,omitempty"`
}

// LookupText returns the text providers should search and score.
// URL inputs use the resolved page context when available.
func (in Input) LookupText() string {
	if in.Kind == KindURL && in.Context != "" {
		return in.Context
	}
	return in.Content
}

// English reports whether the input language is English or unknown.
func (in Input) English() bool {
	return in.Language == "" || in.Language == "en"
}
