package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		BodyHTML([]byte("<p>test</p>")).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "<p>test</p>" {
		t.Errorf("Body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger should not be set without triggers")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerExpenseCreated(5).
		TriggerFormReset().
		TriggerErrorNotification("Test message").
		Write(w)

	var events map[string]json.RawMessage
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &events); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	for _, name := range []string{"expense:created", "form:reset", "show-notification"} {
		if _, ok := events[name]; !ok {
			t.Errorf("HX-Trigger missing %q", name)
		}
	}
	if string(events["expense:created"]) != `{"id":5}` {
		t.Errorf("expense:created = %s", events["expense:created"])
	}
	if !strings.Contains(string(events["show-notification"]), `"type":"error"`) {
		t.Errorf("show-notification = %s", events["show-notification"])
	}
}

func TestHTMXResponseBuilder_ExpenseDeleted(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().TriggerExpenseDeleted(9).Write(w)
	if !strings.Contains(w.Header().Get("HX-Trigger"), `"expense:deleted":{"id":9}`) {
		t.Fatalf("HX-Trigger = %s", w.Header().Get("HX-Trigger"))
	}
}

func TestErrorResponses(t *testing.T) {
	cases := []struct {
		builder *HTMXResponseBuilder
		code    int
	}{
		{BadRequestError("bad <input>"), http.StatusBadRequest},
		{InternalServerError("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		tc.builder.Write(w)
		if w.Code != tc.code {
			t.Errorf("status = %d, want %d", w.Code, tc.code)
		}
		if !strings.Contains(w.Body.String(), `class="error"`) {
			t.Errorf("body = %q", w.Body.String())
		}
	}

	w := httptest.NewRecorder()
	BadRequestError("bad <input>").Write(w)
	if strings.Contains(w.Body.String(), "<input>") {
		t.Error("message must be escaped")
	}
}

func TestMethodNotAllowedError(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowedError("POST").Write(w)
	if w.Code != http.StatusMethodNotAllowed || w.Header().Get("Allow") != "POST" {
		t.Fatalf("status=%d allow=%q", w.Code, w.Header().Get("Allow"))
	}
}
