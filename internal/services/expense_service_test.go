package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/storage/memory"
)

var errDisk = errors.New("disk I/O error")

// failingStore fails every operation.
type failingStore struct{ closed bool }

func (f *failingStore) EnsureSchema(context.Context) error { return errDisk }
func (f *failingStore) Insert(context.Context, core.NewExpense) (core.ExpenseID, error) {
	return 0, errDisk
}
func (f *failingStore) Delete(context.Context, core.ExpenseID) error { return errDisk }
func (f *failingStore) ListAll(context.Context) ([]core.Expense, error) {
	return nil, errDisk
}
func (f *failingStore) Close() error { f.closed = true; return nil }

type recordingPublisher struct {
	events []*amqp.ExpenseEvent
	err    error
}

func (p *recordingPublisher) PublishExpenseEvent(_ context.Context, ev *amqp.ExpenseEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func bufferLogger(buf *bytes.Buffer) *applog.Logger {
	return applog.New(applog.Config{Output: buf, Component: applog.ComponentApp})
}

func TestAddListDelete(t *testing.T) {
	svc := NewExpenseService(memory.New())
	ctx := context.Background()

	if err := svc.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	items, err := svc.List(ctx)
	if err != nil || items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil list, got %v err=%v", items, err)
	}

	id, err := svc.Add(ctx, core.NewExpense{Description: "Rent", Amount: 1200, Date: "2024-02-01"})
	if err != nil || id == 0 {
		t.Fatalf("add: id=%d err=%v", id, err)
	}
	items, _ = svc.List(ctx)
	if len(items) != 1 || items[0].ID != id {
		t.Fatalf("unexpected items: %+v", items)
	}

	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	items, _ = svc.List(ctx)
	if len(items) != 0 {
		t.Fatalf("expected empty list after delete: %+v", items)
	}
}

func TestSwallowPolicyLogsAndHidesErrors(t *testing.T) {
	var buf bytes.Buffer
	svc := NewExpenseService(&failingStore{}, WithLogger(bufferLogger(&buf)))
	ctx := context.Background()

	if svc.Policy() != SwallowErrors {
		t.Fatalf("default policy = %q", svc.Policy())
	}
	if err := svc.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema should swallow: %v", err)
	}
	id, err := svc.Add(ctx, core.NewExpense{Description: "x", Amount: 1, Date: "d"})
	if err != nil || id != 0 {
		t.Fatalf("add should swallow: id=%d err=%v", id, err)
	}
	if err := svc.Delete(ctx, 1); err != nil {
		t.Fatalf("delete should swallow: %v", err)
	}
	items, err := svc.List(ctx)
	if err != nil || items == nil || len(items) != 0 {
		t.Fatalf("list should return empty: %v err=%v", items, err)
	}

	out := buf.String()
	if got := strings.Count(out, "Storage operation failed"); got != 4 {
		t.Fatalf("expected 4 logged failures, got %d: %s", got, out)
	}
	for _, part := range []string{"disk I/O error", "component=storage", "operation=insert"} {
		if !strings.Contains(out, part) {
			t.Errorf("log missing %q", part)
		}
	}
}

func TestSurfacePolicyReturnsErrors(t *testing.T) {
	var buf bytes.Buffer
	svc := NewExpenseService(&failingStore{}, WithErrorPolicy(SurfaceErrors), WithLogger(bufferLogger(&buf)))
	ctx := context.Background()

	if err := svc.EnsureSchema(ctx); !errors.Is(err, errDisk) {
		t.Fatalf("expected wrapped disk error, got %v", err)
	}
	if _, err := svc.Add(ctx, core.NewExpense{}); !errors.Is(err, errDisk) {
		t.Fatalf("expected wrapped disk error, got %v", err)
	}
	if err := svc.Delete(ctx, 1); !errors.Is(err, errDisk) {
		t.Fatalf("expected wrapped disk error, got %v", err)
	}
	items, err := svc.List(ctx)
	if !errors.Is(err, errDisk) || len(items) != 0 {
		t.Fatalf("expected empty list and error, got %v %v", items, err)
	}
	if !strings.Contains(buf.String(), "Storage operation failed") {
		t.Fatal("surfaced errors must still be logged")
	}
}

func TestInvalidPolicyKeepsDefault(t *testing.T) {
	svc := NewExpenseService(memory.New(), WithErrorPolicy("shout"))
	if svc.Policy() != SwallowErrors {
		t.Fatalf("policy = %q", svc.Policy())
	}
}

func TestNilStore(t *testing.T) {
	svc := NewExpenseService(nil, WithErrorPolicy(SurfaceErrors), WithLogger(bufferLogger(&bytes.Buffer{})))
	if _, err := svc.List(context.Background()); err == nil {
		t.Fatal("expected error for nil store")
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close with nil store: %v", err)
	}
}

func TestPublishesEvents(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewExpenseService(memory.New(), WithPublisher(pub))
	ctx := context.Background()

	id, _ := svc.Add(ctx, core.NewExpense{Description: "Coffee", Amount: 4.5, Date: "2024-01-15"})
	_ = svc.Delete(ctx, id)

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.events))
	}
	if pub.events[0].Type != amqp.EventExpenseCreated || pub.events[0].ID != id {
		t.Errorf("unexpected first event: %+v", pub.events[0])
	}
	if pub.events[1].Type != amqp.EventExpenseDeleted || pub.events[1].ID != id {
		t.Errorf("unexpected second event: %+v", pub.events[1])
	}
}

func TestPublishFailureDoesNotAffectStorage(t *testing.T) {
	var buf bytes.Buffer
	pub := &recordingPublisher{err: errors.New("channel closed")}
	svc := NewExpenseService(memory.New(), WithPublisher(pub), WithErrorPolicy(SurfaceErrors), WithLogger(bufferLogger(&buf)))
	ctx := context.Background()

	id, err := svc.Add(ctx, core.NewExpense{Description: "a", Amount: 1, Date: "d"})
	if err != nil || id == 0 {
		t.Fatalf("add should succeed despite publish failure: id=%d err=%v", id, err)
	}
	if !strings.Contains(buf.String(), "Failed to publish expense event") {
		t.Fatalf("publish failure not logged: %s", buf.String())
	}
}

func TestNoEventOnFailedInsert(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewExpenseService(&failingStore{}, WithPublisher(pub), WithLogger(bufferLogger(&bytes.Buffer{})))
	_, _ = svc.Add(context.Background(), core.NewExpense{Description: "a", Amount: 1, Date: "d"})
	if len(pub.events) != 0 {
		t.Fatalf("expected no events, got %d", len(pub.events))
	}
}

func TestClose(t *testing.T) {
	store := &failingStore{}
	svc := NewExpenseService(store)
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !store.closed {
		t.Fatal("store not closed")
	}
}
