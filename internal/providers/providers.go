// Package providers implements the external verification signal sources and the
// uniform contract they share: a call bounded by its own timeout that always
// yields an Outcome, never an error.
package providers

import (
	"context"
	"time"

	"github.com/JaimeStill/crediscope/internal/claims"
)

// Name identifies a provider in audit records and metrics.
type Name string

const (
	FactCheckLookup   Name = "fact_check"
	ToxicityScoring   Name = "toxicity"
	URLSafety         Name = "url_safety"
	OpticalExtraction Name = "optical_extraction"
	Translation       Name = "translation"
)

// Category groups evidence items by the kind of signal that produced them.
type Category string

const (
	CategoryFactCheck Category = "fact_check"
	CategoryToxicity  Category = "toxicity"
	CategoryURLSafety Category = "url_safety"
)

// Rank orders categories when evidence from several providers is merged.
func (c Category) Rank() int {
	switch c {
	case CategoryFactCheck:
		return 0
	case CategoryToxicity:
		return 1
	case CategoryURLSafety:
		return 2
	default:
		return 3
	}
}

// Rating is a fact-check verdict normalized from a publisher's textual rating.
type Rating string

const (
	RatingFalse   Rating = "false"
	RatingTrue    Rating = "true"
	RatingMixed   Rating = "mixed"
	RatingUnrated Rating = "unrated"
)

// EvidenceItem is one piece of supporting evidence attached to a result.
type EvidenceItem struct {
	Source      string   `json:"source"`
	Snippet     string   `json:"snippet"`
	Reliability float64  `json:"reliability"`
	URL         string   `json:"url,omitempty"`
	Category    Category `json:"category"`
	Rating      Rating   `json:"rating,omitempty"`
}

// Threat is a URL screening verdict.
type Threat struct {
	Detected bool   `json:"detected"`
	Type     string `json:"type,omitempty"`
}

// Signal is the payload of an available provider. Fields not produced by a
// provider are left zero.
type Signal struct {
	Evidence   []EvidenceItem
	Score      *float64
	Threat     *Threat
	Text       string
	Confidence float64
}

// Adapter is a verification signal source invoked by the evidence collector.
// Call may return an error; Invoke converts it into an Unavailable outcome.
type Adapter interface {
	Name() Name
	Applies(in claims.Input) bool
	Call(ctx context.Context, in claims.Input) (Signal, error)
}

// Status is whether a provider produced a signal.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
)

// Reason explains an Unavailable outcome.
type Reason string

const (
	ReasonTimeout        Reason = "timeout"
	ReasonQuotaExceeded  Reason = "quota_exceeded"
	ReasonTransportError Reason = "transport_error"
	ReasonNotApplicable  Reason = "not_applicable"
)

// Outcome is the tagged result of one provider invocation:
// Available with a Signal, or Unavailable with a Reason.
type Outcome struct {
	Provider Name
	Status   Status
	Reason   Reason
	Signal   Signal
	Latency  time.Duration
	Err      error
}

// Available reports whether the outcome carries a signal.
func (o Outcome) Available() bool {
	return o.Status == StatusAvailable
}

// Failed reports whether an applicable provider did not produce a signal.
func (o Outcome) Failed() bool {
	return o.Status == StatusUnavailable && o.Reason != ReasonNotApplicable
}

// NewAvailable wraps a signal.
func NewAvailable(name Name, sig Signal) Outcome {
	return Outcome{Provider: name, Status: StatusAvailable, Signal: sig}
}

// NewUnavailable records why a provider produced nothing.
func NewUnavailable(name Name, reason Reason, err error) Outcome {
	return Outcome{Provider: name, Status: StatusUnavailable, Reason: reason, Err: err}
}

// NotApplicable marks a provider that was skipped for an input.
func NotApplicable(name Name) Outcome {
	return NewUnavailable(name, ReasonNotApplicable, nil)
}
