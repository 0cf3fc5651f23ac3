package mode

import "strings"

// Mode is the retrieval strategy.
type Mode string

// Search mode constants.
const (
	// Keyword performs lexical matching against the text field.
	Keyword Mode = "keyword"
	// Vector performs nearest-neighbor search over passage embeddings.
	Vector Mode = "vector"
	// Hybrid unions the keyword and vector shapes.
	Hybrid Mode = "hybrid"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Keyword || m == Vector || m == Hybrid
}

// Normalize maps a caller-supplied mode string to a Mode. Matching is
// case-insensitive; "neural" is accepted as an alias for Vector. Any
// unrecognized value falls back to Vector rather than erroring.
func Normalize(s string) Mode {
	switch strings.ToLower(s) {
	case "keyword":
		return Keyword
	case "hybrid":
		return Hybrid
	case "vector", "neural":
		return Vector
	default:
		return Vector
	}
}
