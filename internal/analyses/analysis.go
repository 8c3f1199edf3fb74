// Package analyses is the request-facing domain for claim verification. It
// normalizes raw content, runs it through the workflow engine, and keeps a
// best-effort history of computed results in PostgreSQL.
package analyses

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/crediscope/internal/cache"
	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/report"
)

// Analysis is one history record. It mirrors the analyses table without the
// stored result document.
type Analysis struct {
	ID          uuid.UUID          `json:"id"`
	Fingerprint string             `json:"fingerprint"`
	Kind        claims.Kind        `json:"kind"`
	Domain      claims.DomainClass `json:"domain_class"`
	Label       claims.Label       `json:"label"`
	Confidence  int                `json:"confidence"`
	Degraded    bool               `json:"degraded"`
	CacheStatus string             `json:"cache_status"`
	Content     string             `json:"content"`
	AnalyzedAt  time.Time          `json:"analyzed_at"`
}

// AnalyzeCommand is a text or URL analysis request.
type AnalyzeCommand struct {
	claims.Request
	Refresh bool `json:"refresh,omitempty"`
}

// ImageCommand is an image analysis request. Data is the raw image; in JSON
// bodies it is base64 encoded.
type ImageCommand struct {
	Data     []byte `json:"image"`
	Language string `json:"language,omitempty"`
	Refresh  bool   `json:"refresh,omitempty"`
}

// Response pairs a result with how the cache served it.
type Response struct {
	Result *report.Result
	Cache  cache.Status
}
