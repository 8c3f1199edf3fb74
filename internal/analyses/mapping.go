package analyses

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/pkg/query"
	"github.com/JaimeStill/crediscope/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "analyses", "a").
	Project("id", "ID").
	Project("fingerprint", "Fingerprint").
	Project("kind", "Kind").
	Project("domain", "Domain").
	Project("label", "Label").
	Project("confidence", "Confidence").
	Project("degraded", "Degraded").
	Project("cache_status", "CacheStatus").
	Project("content", "Content").
	Project("analyzed_at", "AnalyzedAt")

var defaultSort = query.SortField{
	Field:      "AnalyzedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for history queries.
// Nil and empty fields are ignored.
type Filters struct {
	Labels        []claims.Label      `json:"labels,omitempty"`
	Kind          *claims.Kind        `json:"kind,omitempty"`
	Domain        *claims.DomainClass `json:"domain_class,omitempty"`
	Degraded      *bool               `json:"degraded,omitempty"`
	MinConfidence *int                `json:"min_confidence,omitempty"`
	Since         *time.Time          `json:"since,omitempty"`
	Until         *time.Time          `json:"until,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	labels := make([]any, len(f.Labels))
	for i, l := range f.Labels {
		labels[i] = l
	}

	return b.
		WhereIn("Label", labels).
		WhereEquals("Kind", f.Kind).
		WhereEquals("Domain", f.Domain).
		WhereEquals("Degraded", f.Degraded).
		WhereCompare("Confidence", query.AtLeast, f.MinConfidence).
		WhereCompare("AnalyzedAt", query.AtLeast, f.Since).
		WhereCompare("AnalyzedAt", query.Before, f.Until)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// label accepts a comma-separated list; since and until are RFC 3339.
// Unrecognized values are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	for _, raw := range strings.Split(values.Get("label"), ",") {
		if l, ok := claims.ParseLabel(raw); ok && !slices.Contains(f.Labels, l) {
			f.Labels = append(f.Labels, l)
		}
	}

	switch k := claims.Kind(values.Get("kind")); k {
	case claims.KindText, claims.KindURL, claims.KindImageText:
		f.Kind = &k
	}

	switch d := claims.DomainClass(values.Get("domain_class")); d {
	case claims.Medical, claims.Political, claims.Technology, claims.General:
		f.Domain = &d
	}

	if d, err := strconv.ParseBool(values.Get("degraded")); err == nil {
		f.Degraded = &d
	}

	if c, err := strconv.Atoi(values.Get("min_confidence")); err == nil && c >= 0 && c <= 100 {
		f.MinConfidence = &c
	}

	f.Since = parseTime(values.Get("since"))
	f.Until = parseTime(values.Get("until"))

	return f
}

func parseTime(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func scanAnalysis(s repository.Scanner) (Analysis, error) {
	var a Analysis
	err := s.Scan(
		&a.ID,
		&a.Fingerprint,
		&a.Kind,
		&a.Domain,
		&a.Label,
		&a.Confidence,
		&a.Degraded,
		&a.CacheStatus,
		&a.Content,
		&a.AnalyzedAt,
	)
	return a, err
}
