// Package acl converts repository permission listings into normalized
// reader sets and per-entry ACL records for index-time filtering.
package acl

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mirrordex/internal/domain"
	domacl "github.com/kailas-cloud/mirrordex/internal/domain/acl"
)

// client is the consumer interface for public REST API calls (ISP).
type client interface {
	PublicGet(ctx context.Context, endpoint string) ([]byte, error)
}

// Resolver resolves node permissions and caller authorities.
type Resolver struct {
	client        client
	everyoneRead  bool
	everyoneGroup string
	logger        *zap.Logger
}

// Config holds resolver policy settings.
type Config struct {
	// EveryoneRead adds the universal sentinel to every document's
	// reader set even without an explicit grant.
	EveryoneRead bool
	// EveryoneGroup is the universal sentinel authority name.
	EveryoneGroup string
	Logger        *zap.Logger
}

// New creates a permission resolver.
func New(c client, cfg Config) *Resolver {
	group := cfg.EveryoneGroup
	if group == "" {
		group = domacl.DefaultEveryoneGroup
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		client:        c,
		everyoneRead:  cfg.EveryoneRead,
		everyoneGroup: group,
		logger:        logger,
	}
}

// EveryoneGroup returns the configured universal sentinel name.
func (r *Resolver) EveryoneGroup() string { return r.everyoneGroup }

type permissionsResponse struct {
	Entry struct {
		Entries []struct {
			AuthorityID      string   `json:"authorityId"`
			AllowPermissions bool     `json:"allowPermissions"`
			Permissions      []string `json:"permissions"`
		} `json:"entries"`
		Owner    string `json:"owner"`
		Inherits bool   `json:"inherits"`
	} `json:"entry"`
}

// Resolve fetches the permission listing for nodeID and derives the ACL
// entries and reader set. It fails closed: on any fetch or parse error
// the returned ACL is empty and the reader set contains only the
// universal sentinel, alongside a wrapped ErrPermissionResolution.
func (r *Resolver) Resolve(ctx context.Context, nodeID string) ([]domacl.Entry, domacl.ReaderSet, error) {
	data, err := r.client.PublicGet(ctx, fmt.Sprintf("nodes/%s/permissions", nodeID))
	if err != nil {
		return nil, r.sentinelOnly(), fmt.Errorf("%w: node %s: %w", domain.ErrPermissionResolution, nodeID, err)
	}

	var resp permissionsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, r.sentinelOnly(), fmt.Errorf("%w: node %s: parse: %w", domain.ErrPermissionResolution, nodeID, err)
	}

	var entries []domacl.Entry
	readers := domacl.NewReaderSet()

	if resp.Entry.Owner != "" {
		readers.Add(resp.Entry.Owner)
	}

	for _, e := range resp.Entry.Entries {
		if !e.AllowPermissions {
			continue
		}
		for _, p := range e.Permissions {
			entries = append(entries, domacl.Entry{Authority: e.AuthorityID, Permission: p})
			if domacl.IsReadPermission(p) {
				readers.Add(e.AuthorityID)
			}
		}
	}

	if r.everyoneRead {
		readers.Add(r.everyoneGroup)
	}

	return entries, readers, nil
}

type groupsResponse struct {
	List struct {
		Entries []struct {
			Entry struct {
				ID string `json:"id"`
			} `json:"entry"`
		} `json:"entries"`
	} `json:"list"`
}

// CallerReaders resolves the authorities a caller searches as: the
// caller's own identity, the groups it belongs to, and the universal
// sentinel. On error it fails closed to the caller's identity only.
func (r *Resolver) CallerReaders(ctx context.Context, username string) domacl.ReaderSet {
	readers := domacl.NewReaderSet(username)

	data, err := r.client.PublicGet(ctx, fmt.Sprintf("people/%s/groups", username))
	if err != nil {
		r.logger.Warn("group resolution failed, restricting to caller identity",
			zap.String("username", username),
			zap.Error(err),
		)
		return readers
	}

	var resp groupsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		r.logger.Warn("group listing unparsable, restricting to caller identity",
			zap.String("username", username),
			zap.Error(err),
		)
		return readers
	}

	for _, e := range resp.List.Entries {
		readers.Add(e.Entry.ID)
	}
	readers.Add(r.everyoneGroup)
	return readers
}

func (r *Resolver) sentinelOnly() domacl.ReaderSet {
	return domacl.NewReaderSet(r.everyoneGroup)
}
