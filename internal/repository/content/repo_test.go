package content

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kailas-cloud/mirrordex/internal/domain"
	"github.com/kailas-cloud/mirrordex/internal/domain/change"
)

// mockClient implements the consumer interface for tests.
type mockClient struct {
	getFn  func(ctx context.Context, endpoint string) ([]byte, error)
	postFn func(ctx context.Context, endpoint string, body []byte) ([]byte, error)
}

func (m *mockClient) TrackingGet(ctx context.Context, endpoint string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, endpoint)
	}
	return []byte(`{}`), nil
}

func (m *mockClient) TrackingPost(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	if m.postFn != nil {
		return m.postFn(ctx, endpoint, body)
	}
	return []byte(`{}`), nil
}

func TestChanges_Empty(t *testing.T) {
	c := &mockClient{
		getFn: func(_ context.Context, endpoint string) ([]byte, error) {
			if endpoint != "transactions?minTxnId=6&maxResults=100" {
				t.Errorf("endpoint = %q", endpoint)
			}
			return []byte(`{"transactions":[],"maxTxnId":5}`), nil
		},
	}

	feed, err := New(c).Changes(context.Background(), 6, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feed.Records) != 0 {
		t.Errorf("Records = %v, want empty", feed.Records)
	}
	if feed.MaxKnownSequenceID != 5 {
		t.Errorf("MaxKnownSequenceID = %d, want 5", feed.MaxKnownSequenceID)
	}
}

func TestChanges_SpansTransactionsAndParsesRecords(t *testing.T) {
	c := &mockClient{
		getFn: func(_ context.Context, _ string) ([]byte, error) {
			return []byte(`{"transactions":[{"id":7},{"id":3},{"id":5}],"maxTxnId":7}`), nil
		},
		postFn: func(_ context.Context, endpoint string, body []byte) ([]byte, error) {
			if endpoint != "nodes" {
				t.Errorf("endpoint = %q", endpoint)
			}
			var req nodesRequest
			if err := json.Unmarshal(body, &req); err != nil {
				t.Fatalf("bad request body: %v", err)
			}
			if req.FromTxnID != 3 || req.ToTxnID != 7 {
				t.Errorf("span = (%d, %d), want (3, 7)", req.FromTxnID, req.ToTxnID)
			}
			return []byte(`{"nodes":[
				{"id":101,"nodeRef":"workspace://SpacesStore/abc","txnId":3,"status":"u"},
				{"id":102,"nodeRef":"workspace://SpacesStore/def","txnId":7,"status":"d"}
			]}`), nil
		},
	}

	feed, err := New(c).Changes(context.Background(), 3, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feed.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(feed.Records))
	}
	if feed.Records[0].Status != change.Updated || feed.Records[1].Status != change.Deleted {
		t.Errorf("statuses = %q, %q", feed.Records[0].Status, feed.Records[1].Status)
	}
	if feed.Records[1].NodeRef != "workspace://SpacesStore/def" {
		t.Errorf("NodeRef = %q", feed.Records[1].NodeRef)
	}
}

func TestChanges_UnknownStatusAbortsFeed(t *testing.T) {
	c := &mockClient{
		getFn: func(_ context.Context, _ string) ([]byte, error) {
			return []byte(`{"transactions":[{"id":4}],"maxTxnId":4}`), nil
		},
		postFn: func(_ context.Context, _ string, _ []byte) ([]byte, error) {
			return []byte(`{"nodes":[{"id":1,"nodeRef":"x://y/z","txnId":4,"status":"?"}]}`), nil
		},
	}

	_, err := New(c).Changes(context.Background(), 4, 10)
	if !errors.Is(err, domain.ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestMetadata(t *testing.T) {
	c := &mockClient{
		postFn: func(_ context.Context, endpoint string, body []byte) ([]byte, error) {
			if endpoint != "metadata" {
				t.Errorf("endpoint = %q", endpoint)
			}
			var req metadataRequest
			if err := json.Unmarshal(body, &req); err != nil {
				t.Fatalf("bad request body: %v", err)
			}
			if len(req.NodeIDs) != 2 || req.NodeIDs[0] != 101 {
				t.Errorf("NodeIDs = %v", req.NodeIDs)
			}
			return []byte(`{"nodes":[{
				"id":101,
				"nodeRef":"workspace://SpacesStore/abc",
				"type":"cm:content",
				"properties":{
					"{http://www.alfresco.org/model/content/1.0}name":"a.txt",
					"{http://www.alfresco.org/model/system/1.0}store-identifier":"SpacesStore"
				}
			}]}`), nil
		},
	}

	nodes, err := New(c).Metadata(context.Background(), []int64{101, 102})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	if nodes[0].Type != "cm:content" || nodes[0].Name() != "a.txt" {
		t.Errorf("node = %+v", nodes[0])
	}
	if !nodes[0].InPrimaryStore() {
		t.Error("InPrimaryStore() = false, want true")
	}
}

func TestText(t *testing.T) {
	c := &mockClient{
		getFn: func(_ context.Context, endpoint string) ([]byte, error) {
			if endpoint != "textContent?nodeId=101" {
				t.Errorf("endpoint = %q", endpoint)
			}
			return []byte("hello world"), nil
		},
	}

	text, err := New(c).Text(context.Background(), 101)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello world" {
		t.Errorf("Text() = %q", text)
	}
}

func TestText_PropagatesError(t *testing.T) {
	c := &mockClient{
		getFn: func(_ context.Context, _ string) ([]byte, error) {
			return nil, domain.ErrTransientUpstream
		},
	}

	_, err := New(c).Text(context.Background(), 101)
	if !errors.Is(err, domain.ErrTransientUpstream) {
		t.Fatalf("expected ErrTransientUpstream, got %v", err)
	}
}
