// Package change models the repository's ordered change feed.
package change

import (
	"fmt"

	"github.com/kailas-cloud/mirrordex/internal/domain"
)

// Status classifies a change record.
type Status string

// Change record statuses. The feed encodes created and updated nodes
// identically; deletion is the only distinct state.
const (
	Updated Status = "u"
	Deleted Status = "d"
)

// ParseStatus maps a feed status code to a Status.
// Unrecognized codes abort the enclosing batch (protocol mismatch).
func ParseStatus(code string) (Status, error) {
	switch code {
	case "u":
		return Updated, nil
	case "d":
		return Deleted, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownStatus, code)
	}
}

// Record is one entry in the change feed: a single modified repository
// object, ordered by SequenceID. Immutable once read.
type Record struct {
	SequenceID int64
	Status     Status
	NodeID     int64
	NodeRef    string
}

// Feed is one bounded page of the change feed.
type Feed struct {
	Records            []Record
	MaxKnownSequenceID int64
}

// Span returns the minimum and maximum sequence ids covered by records.
// ok is false when records is empty.
func Span(records []Record) (minSeq, maxSeq int64, ok bool) {
	if len(records) == 0 {
		return 0, 0, false
	}
	minSeq, maxSeq = records[0].SequenceID, records[0].SequenceID
	for _, r := range records[1:] {
		if r.SequenceID < minSeq {
			minSeq = r.SequenceID
		}
		if r.SequenceID > maxSeq {
			maxSeq = r.SequenceID
		}
	}
	return minSeq, maxSeq, true
}
