package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrTransientUpstream signals a network or timeout failure against the
	// repository or the index. Retried by waiting for the next scheduled
	// tick, never within the same tick.
	ErrTransientUpstream = errors.New("transient upstream failure")
	// ErrMalformedReference signals an unparsable node or document reference.
	// Aborts the enclosing batch without advancing the cursor.
	ErrMalformedReference = errors.New("malformed node reference")
	// ErrUnknownStatus signals a change record with an unrecognized status code.
	ErrUnknownStatus = errors.New("unknown change status")
	// ErrPermissionResolution signals a failed ACL fetch for a single node.
	// The node fails closed to the sentinel-only reader set.
	ErrPermissionResolution = errors.New("permission resolution failed")
	// ErrIndexWrite signals a failed segment upsert or delete. The node is
	// retried on the next tick via the contentId comparison.
	ErrIndexWrite = errors.New("index write failed")
)
