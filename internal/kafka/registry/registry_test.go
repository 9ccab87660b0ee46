package registry_test

import (
	"encoding/json"
	"slices"
	"testing"

	"vn.io.arda/reminder/internal/domain"
	"vn.io.arda/reminder/internal/kafka/registry"
)

func makeJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

func TestRegisterAndDispatch(t *testing.T) {
	called := false
	registry.Register("test-topic", "TEST_EVENT", func(data []byte) *domain.Event {
		called = true
		return &domain.Event{Owner: "test"}
	})

	result := registry.Dispatch("test-topic", makeJSON(map[string]string{
		"eventType": "TEST_EVENT",
	}))

	if !called {
		t.Fatal("handler was not called")
	}
	if result == nil || result.Owner != "test" {
		t.Fatal("unexpected result")
	}
	if !slices.Contains(registry.Topics(), "test-topic") {
		t.Fatal("expected test-topic to be listed")
	}
}

func TestDispatch_UnknownEvent_ReturnsNil(t *testing.T) {
	result := registry.Dispatch("test-topic", makeJSON(map[string]string{
		"eventType": "UNKNOWN_EVENT_XYZ",
	}))
	if result != nil {
		t.Fatal("expected nil for unknown event")
	}
}

func TestDispatch_InvalidJSON_ReturnsNil(t *testing.T) {
	result := registry.Dispatch("test-topic", []byte("not json"))
	if result != nil {
		t.Fatal("expected nil for invalid JSON")
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	registry.Register("dupe-topic", "DUPE_EVENT", func(_ []byte) *domain.Event { return nil })
	registry.Register("dupe-topic", "DUPE_EVENT", func(_ []byte) *domain.Event { return nil })
}
