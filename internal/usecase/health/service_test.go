package health

import (
	"context"
	"errors"
	"testing"
)

type mockCursor struct {
	pingFn func(ctx context.Context) error
}

func (m *mockCursor) Ping(ctx context.Context) error { return m.pingFn(ctx) }

type mockIndex struct {
	healthFn func(ctx context.Context) (bool, error)
}

func (m *mockIndex) HealthCheck(ctx context.Context) (bool, error) { return m.healthFn(ctx) }

type mockEmbedding struct {
	healthFn func(ctx context.Context) error
}

func (m *mockEmbedding) HealthCheck(ctx context.Context) error { return m.healthFn(ctx) }

func TestCheckAllHealthy(t *testing.T) {
	svc := New(
		&mockCursor{pingFn: func(context.Context) error { return nil }},
		&mockIndex{healthFn: func(context.Context) (bool, error) { return true, nil }},
		&mockEmbedding{healthFn: func(context.Context) error { return nil }},
	)

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Fatalf("status = %s, want %s", report.Status, Healthy)
	}
	for _, name := range []string{"cursor", "index", "embedding"} {
		if report.Checks[name] != CheckOK {
			t.Errorf("check %s = %s, want %s", name, report.Checks[name], CheckOK)
		}
	}
}

func TestCheckCursorFailureDegrades(t *testing.T) {
	svc := New(
		&mockCursor{pingFn: func(context.Context) error { return errors.New("connection refused") }},
		&mockIndex{healthFn: func(context.Context) (bool, error) { return true, nil }},
		nil,
	)

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Fatalf("status = %s, want %s", report.Status, Degraded)
	}
	if report.Checks["cursor"] != CheckError {
		t.Fatalf("cursor check = %s, want %s", report.Checks["cursor"], CheckError)
	}
}

func TestCheckRedIndexDegrades(t *testing.T) {
	svc := New(
		&mockCursor{pingFn: func(context.Context) error { return nil }},
		&mockIndex{healthFn: func(context.Context) (bool, error) { return false, nil }},
		nil,
	)

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Fatalf("status = %s, want %s", report.Status, Degraded)
	}
	if report.Checks["index"] != CheckError {
		t.Fatalf("index check = %s, want %s", report.Checks["index"], CheckError)
	}
}

func TestCheckWithoutEmbedder(t *testing.T) {
	svc := New(
		&mockCursor{pingFn: func(context.Context) error { return nil }},
		&mockIndex{healthFn: func(context.Context) (bool, error) { return true, nil }},
		nil,
	)

	report := svc.Check(context.Background())
	if _, ok := report.Checks["embedding"]; ok {
		t.Fatal("embedding check must be absent when no embedder is configured")
	}
	if report.Status != Healthy {
		t.Fatalf("status = %s, want %s", report.Status, Healthy)
	}
}
