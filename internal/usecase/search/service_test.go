package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	domacl "github.com/kailas-cloud/mirrordex/internal/domain/acl"
)

type mockExecutor struct {
	executeFn func(ctx context.Context, method, endpoint string, body []byte) ([]byte, error)
}

func (m *mockExecutor) Execute(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	return m.executeFn(ctx, method, endpoint, body)
}

type mockReaders struct {
	callerFn func(ctx context.Context, username string) domacl.ReaderSet
}

func (m *mockReaders) CallerReaders(ctx context.Context, username string) domacl.ReaderSet {
	return m.callerFn(ctx, username)
}

const engineResponse = `{
	"hits": {
		"hits": [
			{"_score": 1.8, "_source": {"id": "11b001ec-9f87-4b35-b6e9-85f2dd661f0b_0", "name": "Report.pdf", "text": "first segment", "nodeRef": "workspace://SpacesStore/11b001ec-9f87-4b35-b6e9-85f2dd661f0b"}},
			{"_score": 1.2, "_source": {"id": "11b001ec-9f87-4b35-b6e9-85f2dd661f0b_3", "name": "Report.pdf", "text": "later segment", "nodeRef": "workspace://SpacesStore/11b001ec-9f87-4b35-b6e9-85f2dd661f0b"}}
		]
	}
}`

func TestSearchStripsSegmentSuffix(t *testing.T) {
	var gotEndpoint string
	exec := &mockExecutor{
		executeFn: func(_ context.Context, method, endpoint string, _ []byte) ([]byte, error) {
			if method != "POST" {
				t.Fatalf("method = %s, want POST", method)
			}
			gotEndpoint = endpoint
			return []byte(engineResponse), nil
		},
	}

	g := New(exec, &mockReaders{}, NewBuilder(nil), Config{IndexName: "alfresco", MaxResults: 100})
	results, err := g.Search(context.Background(), "keyword", "report", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotEndpoint != "/alfresco/_search" {
		t.Fatalf("endpoint = %q, want /alfresco/_search", gotEndpoint)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for _, r := range results {
		if r.UUID != "11b001ec-9f87-4b35-b6e9-85f2dd661f0b" {
			t.Errorf("uuid = %q, segment suffix not stripped", r.UUID)
		}
	}
	if results[0].Score != 1.8 || results[1].Score != 1.2 {
		t.Fatalf("scores = %v %v", results[0].Score, results[1].Score)
	}
	if results[0].Text != "first segment" {
		t.Fatalf("text = %q", results[0].Text)
	}
}

func TestSecureSearchFiltersByCallerReaders(t *testing.T) {
	var gotBody string
	exec := &mockExecutor{
		executeFn: func(_ context.Context, _, _ string, body []byte) ([]byte, error) {
			gotBody = string(body)
			return []byte(`{"hits":{"hits":[]}}`), nil
		},
	}
	readers := &mockReaders{
		callerFn: func(_ context.Context, username string) domacl.ReaderSet {
			if username != "jdoe" {
				t.Fatalf("CallerReaders username = %q", username)
			}
			return domacl.NewReaderSet("jdoe", "GROUP_finance", "GROUP_EVERYONE")
		},
	}

	g := New(exec, readers, NewBuilder(nil), Config{IndexName: "alfresco", MaxResults: 100})
	if _, err := g.SecureSearch(context.Background(), "jdoe", "keyword", "report", 10); err != nil {
		t.Fatalf("SecureSearch: %v", err)
	}

	want := `"filter":[{"terms":{"readers":["GROUP_EVERYONE","GROUP_finance","jdoe"]}}]`
	if !strings.Contains(gotBody, want) {
		t.Fatalf("body %s missing reader filter %s", gotBody, want)
	}
	if !strings.Contains(gotBody, `"must":[{"match":`) {
		t.Fatalf("body %s missing must-wrapped match clause", gotBody)
	}
}

func TestSecureSearchFailsClosedWhenResolutionEmpty(t *testing.T) {
	var gotBody string
	exec := &mockExecutor{
		executeFn: func(_ context.Context, _, _ string, body []byte) ([]byte, error) {
			gotBody = string(body)
			return []byte(`{"hits":{"hits":[]}}`), nil
		},
	}
	readers := &mockReaders{
		callerFn: func(_ context.Context, _ string) domacl.ReaderSet {
			return domacl.NewReaderSet()
		},
	}

	g := New(exec, readers, NewBuilder(nil), Config{IndexName: "alfresco", MaxResults: 100})
	if _, err := g.SecureSearch(context.Background(), "jdoe", "keyword", "report", 10); err != nil {
		t.Fatalf("SecureSearch: %v", err)
	}

	if !strings.Contains(gotBody, `{"terms":{"readers":["jdoe"]}}`) {
		t.Fatalf("body %s must restrict to the caller identity", gotBody)
	}
}

func TestUnknownModeFallsBackToVector(t *testing.T) {
	var gotBody string
	exec := &mockExecutor{
		executeFn: func(_ context.Context, _, _ string, body []byte) ([]byte, error) {
			gotBody = string(body)
			return []byte(`{"hits":{"hits":[]}}`), nil
		},
	}

	g := New(exec, &mockReaders{}, NewBuilder(nil), Config{IndexName: "alfresco", MaxResults: 100})
	if _, err := g.Search(context.Background(), "misspelled", "report", 10); err != nil {
		t.Fatalf("Search: %v", err)
	}

	if !strings.Contains(gotBody, `"neural":{"passage_embedding":`) {
		t.Fatalf("body %s is not vector-shaped", gotBody)
	}
	if strings.Contains(gotBody, `"match"`) {
		t.Fatalf("body %s must not contain a keyword clause", gotBody)
	}
}

func TestSearchClampsLimit(t *testing.T) {
	var gotBody string
	exec := &mockExecutor{
		executeFn: func(_ context.Context, _, _ string, body []byte) ([]byte, error) {
			gotBody = string(body)
			return []byte(`{"hits":{"hits":[]}}`), nil
		},
	}

	g := New(exec, &mockReaders{}, NewBuilder(nil), Config{IndexName: "alfresco", MaxResults: 25})
	if _, err := g.Search(context.Background(), "keyword", "report", 9000); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !strings.Contains(gotBody, `"size":25`) {
		t.Fatalf("body %s must clamp size to 25", gotBody)
	}

	if _, err := g.Search(context.Background(), "keyword", "report", 0); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !strings.Contains(gotBody, `"size":25`) {
		t.Fatalf("body %s must default size to 25", gotBody)
	}
}

func TestSearchEngineErrorPropagates(t *testing.T) {
	exec := &mockExecutor{
		executeFn: func(_ context.Context, _, _ string, _ []byte) ([]byte, error) {
			return nil, errors.New("engine unreachable")
		},
	}

	g := New(exec, &mockReaders{}, NewBuilder(nil), Config{IndexName: "alfresco"})
	if _, err := g.Search(context.Background(), "keyword", "report", 10); err == nil {
		t.Fatal("Search must propagate engine errors")
	}
}
