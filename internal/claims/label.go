package claims

import "strings"

// Label is the categorical verdict on a claim.
type Label string

const (
	LikelyFalse Label = "LIKELY_FALSE"
	LikelyTrue  Label = "LIKELY_TRUE"
	Misleading  Label = "MISLEADING"
	Unverified  Label = "UNVERIFIED"
)

// ParseLabel reads a label written loosely by a model or a user:
// case, spaces, and hyphens are ignored, and bare TRUE/FALSE are accepted.
func ParseLabel(s string) (Label, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.NewReplacer(" ", "_", "-", "_").Replace(v)

	switch v {
	case "LIKELY_FALSE", "FALSE":
		return LikelyFalse, true
	case "LIKELY_TRUE", "TRUE":
		return LikelyTrue, true
	case "MISLEADING", "MIXED":
		return Misleading, true
	case "UNVERIFIED", "UNKNOWN":
		return Unverified, true
	default:
		return "", false
	}
}
