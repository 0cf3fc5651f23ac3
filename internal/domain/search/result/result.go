package result

import "strings"

// Result is one search hit mapped back to its logical document. Multiple
// segments of one document keep their own hits; callers aggregate by UUID.
type Result struct {
	UUID    string  `json:"uuid"`
	Name    string  `json:"name"`
	Text    string  `json:"text"`
	NodeRef string  `json:"nodeRef"`
	Score   float64 `json:"score"`
}

// StripSegmentSuffix removes a trailing _<segmentIndex> from an index
// document id so multiple segments of one document collapse to one
// logical identity. Ids without a numeric suffix pass through unchanged.
func StripSegmentSuffix(id string) string {
	i := strings.LastIndex(id, "_")
	if i == -1 || i == len(id)-1 {
		return id
	}
	for _, c := range id[i+1:] {
		if c < '0' || c > '9' {
			return id
		}
	}
	return id[:i]
}
