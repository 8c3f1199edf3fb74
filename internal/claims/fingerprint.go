package claims

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const fieldSeparator = "\x1f"

// Fingerprint is the deterministic identity of a normalized claim.
// It keys the result cache and identifies stored analyses.
type Fingerprint string

// String returns the hex form of the fingerprint.
func (f Fingerprint) String() string {
	return string(f)
}

// Short returns the first twelve characters, for logs.
func (f Fingerprint) Short() string {
	if len(f) < 12 {
		return string(f)
	}
	return string(f[:12])
}

// FingerprintOf hashes (kind, canonical content, domain class).
// Language and resolved page context do not contribute.
func FingerprintOf(in Input) Fingerprint {
	h := sha256.New()
	h.Write([]byte(in.Kind))
	h.Write([]byte(fieldSeparator))
	h.Write([]byte(Canonical(in.Kind, in.Content)))
	h.Write([]byte(fieldSeparator))
	h.Write([]byte(in.Domain))
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// Canonical folds content into the form used for identity:
// NFKC, collapsed whitespace, and case folding. URLs keep their
// case-sensitive path and only fold scheme and host.
func Canonical(kind Kind, content string) string {
	content = collapse(norm.NFKC.String(content))
	if kind == KindURL {
		if u, ok := canonicalURL(content); ok {
			return u
		}
	}
	return cases.Fold().String(content)
}

func canonicalURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if u.Path == "/" {
		u.Path = ""
	}
	return u.String(), true
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
