// Package acl holds access-control types shared between the resolver,
// the indexer, and the query layer.
package acl

import "sort"

// DefaultEveryoneGroup is the universal sentinel authority meaning
// "every caller".
const DefaultEveryoneGroup = "GROUP_EVERYONE"

// Entry is one (authority, permission) pair extracted from a repository
// access-control entry. An upstream entry granting multiple permissions
// expands into one Entry per permission.
type Entry struct {
	Authority  string `json:"authority"`
	Permission string `json:"permission"`
}

// readGranting is the fixed set of permissions that grant read access.
// Matching is case-sensitive and exact.
var readGranting = map[string]struct{}{
	"Read":         {},
	"Consumer":     {},
	"Contributor":  {},
	"Collaborator": {},
	"Coordinator":  {},
}

// IsReadPermission reports whether permission grants read access.
func IsReadPermission(permission string) bool {
	_, ok := readGranting[permission]
	return ok
}

// ReaderSet is the set of authority identifiers permitted to see a
// document in search results.
type ReaderSet struct {
	members map[string]struct{}
}

// NewReaderSet creates a reader set with the given initial members.
func NewReaderSet(authorities ...string) ReaderSet {
	rs := ReaderSet{members: make(map[string]struct{}, len(authorities))}
	for _, a := range authorities {
		rs.Add(a)
	}
	return rs
}

// Add inserts an authority. Empty authorities are ignored.
func (rs ReaderSet) Add(authority string) {
	if authority == "" {
		return
	}
	rs.members[authority] = struct{}{}
}

// Contains reports membership.
func (rs ReaderSet) Contains(authority string) bool {
	_, ok := rs.members[authority]
	return ok
}

// Len returns the number of distinct authorities.
func (rs ReaderSet) Len() int { return len(rs.members) }

// Values returns the authorities in sorted order for deterministic
// index documents and query bodies.
func (rs ReaderSet) Values() []string {
	out := make([]string, 0, len(rs.members))
	for a := range rs.members {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
