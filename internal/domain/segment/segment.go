// Package segment splits document text into bounded-length indexable
// units and carries each unit's provenance to the index.
package segment

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/kailas-cloud/mirrordex/internal/domain/acl"
)

// DefaultMaxChars bounds a segment to the window of the NLP model used
// for passage embedding.
const DefaultMaxChars = 512

// Segment is one bounded-length slice of a document's text. A document
// with N segments has N independent index entries sharing DBID,
// ContentID and Readers.
type Segment struct {
	DocumentID string
	Index      int
	DBID       int64
	ContentID  string
	Name       string
	Text       string
	NodeRef    string
	ACL        []acl.Entry
	Readers    []string
}

// ID returns the index key for this segment: documentId_segmentIndex.
func (s Segment) ID() string {
	return fmt.Sprintf("%s_%d", s.DocumentID, s.Index)
}

var unicodeEscape = regexp.MustCompile(`\\u[0-9a-fA-F]{4}`)

// Split divides text into segments of at most maxChars characters,
// breaking on whitespace. Literal \n and \r escape sequences, \uXXXX
// escapes and non-ASCII runes are normalized to spaces before
// tokenizing. A single token longer than maxChars is emitted as its
// own oversized segment: the limit is advisory, not a hard cap. Empty
// input yields an empty list; no produced segment is ever empty.
func Split(text string, maxChars int) []string {
	text = strings.ReplaceAll(text, `\n`, " ")
	text = strings.ReplaceAll(text, `\r`, " ")
	text = unicodeEscape.ReplaceAllString(text, " ")
	text = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return ' '
		}
		return r
	}, text)

	var segments []string
	var current strings.Builder

	for _, token := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+len(token)+1 > maxChars {
			segments = append(segments, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(token)
		current.WriteByte(' ')
	}

	if current.Len() > 0 {
		segments = append(segments, strings.TrimSpace(current.String()))
	}

	return segments
}
