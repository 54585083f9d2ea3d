package amqp

import (
	"strings"
	"testing"
	"time"
)

func TestNewExpenseEvent(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	ev := NewExpenseEvent(EventExpenseCreated, 7)
	if ev.Type != EventExpenseCreated || ev.ID != 7 {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Timestamp.Before(before) {
		t.Fatalf("timestamp not set: %v", ev.Timestamp)
	}
}

func TestExpenseEventJSON(t *testing.T) {
	ev := NewExpenseEvent(EventExpenseDeleted, 3)
	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, part := range []string{`"type":"expense.deleted"`, `"id":3`, `"timestamp"`} {
		if !strings.Contains(string(data), part) {
			t.Errorf("json missing %s: %s", part, data)
		}
	}

	decoded, err := ExpenseEventFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type != ev.Type || decoded.ID != ev.ID || !decoded.Timestamp.Equal(ev.Timestamp) {
		t.Fatalf("decoded %+v, want %+v", decoded, ev)
	}

	if _, err := ExpenseEventFromJSON([]byte("{")); err == nil {
		t.Fatal("expected error for malformed json")
	}
}
