// Package content reads the repository's change feed, node metadata,
// and raw text through the tracking API.
package content

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/mirrordex/internal/domain/change"
	"github.com/kailas-cloud/mirrordex/internal/domain/node"
)

// client is the consumer interface for tracking API calls (ISP).
type client interface {
	TrackingGet(ctx context.Context, endpoint string) ([]byte, error)
	TrackingPost(ctx context.Context, endpoint string, body []byte) ([]byte, error)
}

// Repo implements the change feed and content fetch contracts.
type Repo struct {
	client client
}

// New creates a content repository.
func New(c client) *Repo {
	return &Repo{client: c}
}

// Changes returns one bounded page of change records at or after
// minSequenceID. An empty page means the mirror is fully caught up.
func (r *Repo) Changes(ctx context.Context, minSequenceID int64, maxResults int) (change.Feed, error) {
	endpoint := fmt.Sprintf("transactions?minTxnId=%d&maxResults=%d", minSequenceID, maxResults)
	data, err := r.client.TrackingGet(ctx, endpoint)
	if err != nil {
		return change.Feed{}, fmt.Errorf("fetch transactions: %w", err)
	}

	var txns transactionsResponse
	if err := json.Unmarshal(data, &txns); err != nil {
		return change.Feed{}, fmt.Errorf("parse transactions: %w", err)
	}

	feed := change.Feed{MaxKnownSequenceID: txns.MaxTxnID}
	if len(txns.Transactions) == 0 {
		return feed, nil
	}

	fromTxn := txns.Transactions[0].ID
	toTxn := fromTxn
	for _, t := range txns.Transactions[1:] {
		if t.ID < fromTxn {
			fromTxn = t.ID
		}
		if t.ID > toTxn {
			toTxn = t.ID
		}
	}

	body, err := json.Marshal(nodesRequest{FromTxnID: fromTxn, ToTxnID: toTxn})
	if err != nil {
		return change.Feed{}, fmt.Errorf("marshal nodes request: %w", err)
	}
	data, err = r.client.TrackingPost(ctx, "nodes", body)
	if err != nil {
		return change.Feed{}, fmt.Errorf("fetch changed nodes: %w", err)
	}

	var nodes nodesResponse
	if err := json.Unmarshal(data, &nodes); err != nil {
		return change.Feed{}, fmt.Errorf("parse changed nodes: %w", err)
	}

	feed.Records = make([]change.Record, 0, len(nodes.Nodes))
	for _, n := range nodes.Nodes {
		status, err := change.ParseStatus(n.Status)
		if err != nil {
			return change.Feed{}, fmt.Errorf("record for node %d: %w", n.ID, err)
		}
		feed.Records = append(feed.Records, change.Record{
			SequenceID: n.TxnID,
			Status:     status,
			NodeID:     n.ID,
			NodeRef:    n.NodeRef,
		})
	}

	return feed, nil
}

// Metadata fetches full node metadata for the batch in one call.
func (r *Repo) Metadata(ctx context.Context, nodeIDs []int64) ([]node.Node, error) {
	body, err := json.Marshal(metadataRequest{NodeIDs: nodeIDs})
	if err != nil {
		return nil, fmt.Errorf("marshal metadata request: %w", err)
	}

	data, err := r.client.TrackingPost(ctx, "metadata", body)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}

	var resp metadataResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}

	nodes := make([]node.Node, 0, len(resp.Nodes))
	for _, n := range resp.Nodes {
		nodes = append(nodes, node.Node{
			ID:         n.ID,
			NodeRef:    n.NodeRef,
			Type:       n.Type,
			Properties: n.Properties,
		})
	}
	return nodes, nil
}

// Text fetches the raw text content of a node.
func (r *Repo) Text(ctx context.Context, nodeID int64) (string, error) {
	data, err := r.client.TrackingGet(ctx, fmt.Sprintf("textContent?nodeId=%d", nodeID))
	if err != nil {
		return "", fmt.Errorf("fetch text for node %d: %w", nodeID, err)
	}
	return string(data), nil
}
