// Package node models one version of one repository object at fetch time.
// Nodes are transient: fetched fresh per processing pass, never cached
// beyond one batch.
package node

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/mirrordex/internal/domain"
)

// Repository content-model property names (QName form).
const (
	PropName            = "{http://www.alfresco.org/model/content/1.0}name"
	PropStoreIdentifier = "{http://www.alfresco.org/model/system/1.0}store-identifier"
	PropContent         = "{http://www.alfresco.org/model/content/1.0}content"
)

// SpacesStore is the primary content store. Nodes in archive or version
// stores are never indexed.
const SpacesStore = "SpacesStore"

// Node is one repository object version with its metadata properties.
type Node struct {
	ID         int64
	NodeRef    string
	Type       string
	Properties map[string]any
}

// UUID extracts the document id from the node reference
// (workspace://SpacesStore/<uuid>).
func (n Node) UUID() (string, error) {
	return ExtractUUID(n.NodeRef)
}

// Name returns the cm:name property, or "Unnamed" when absent.
func (n Node) Name() string {
	if v, ok := n.Properties[PropName].(string); ok && v != "" {
		return v
	}
	return "Unnamed"
}

// StoreIdentifier returns the sys:store-identifier property.
func (n Node) StoreIdentifier() string {
	v, _ := n.Properties[PropStoreIdentifier].(string)
	return v
}

// InPrimaryStore reports whether the node lives in the primary content store.
func (n Node) InPrimaryStore() bool {
	return n.StoreIdentifier() == SpacesStore
}

// ContentID returns the content identifier of the node's current content
// property, or "" when the node carries no content. The property value is
// either a nested object with a contentId field or a bare scalar.
func (n Node) ContentID() string {
	switch v := n.Properties[PropContent].(type) {
	case map[string]any:
		return scalarString(v["contentId"])
	case nil:
		return ""
	default:
		return scalarString(v)
	}
}

// ExtractUUID returns the trailing id component of a node reference.
func ExtractUUID(nodeRef string) (string, error) {
	i := strings.LastIndex(nodeRef, "/")
	if i == -1 || i == len(nodeRef)-1 {
		return "", fmt.Errorf("%w: %q", domain.ErrMalformedReference, nodeRef)
	}
	return nodeRef[i+1:], nil
}

func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		// JSON numbers decode as float64; content ids are integral.
		return fmt.Sprintf("%.0f", s)
	default:
		return fmt.Sprintf("%v", s)
	}
}
