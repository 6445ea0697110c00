package diag

import (
	"strconv"
	"testing"
)

func TestRingKeepsOrder(t *testing.T) {
	r := NewRing(4)
	for i := 0; i < 3; i++ {
		r.Add(Event{Type: strconv.Itoa(i)})
	}
	events := r.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, e := range events {
		if e.Type != strconv.Itoa(i) {
			t.Fatalf("expected event %d at index %d, got %s", i, i, e.Type)
		}
	}
}

func TestRingWrapsAround(t *testing.T) {
	r := NewRing(3)
	for i := 0; i < 7; i++ {
		r.Add(Event{Type: strconv.Itoa(i)})
	}
	events := r.Events()
	if len(events) != 3 {
		t.Fatalf("expected capacity-bounded 3 events, got %d", len(events))
	}
	want := []string{"4", "5", "6"}
	for i, e := range events {
		if e.Type != want[i] {
			t.Fatalf("expected %s at index %d, got %s", want[i], i, e.Type)
		}
	}
}

func TestRingStampsTime(t *testing.T) {
	r := NewRing(1)
	r.Add(Event{Type: "login"})
	if r.Events()[0].Time.IsZero() {
		t.Fatal("expected Add to stamp a zero time")
	}
}
