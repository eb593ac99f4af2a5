package encoding

import "testing"

func TestSelectPrefersEarliestInPreferenceOrder(t *testing.T) {
	registry := NewRegistry(0)
	enc := Select([]int32{15, 5, 2}, registry)
	if enc.Number() != 15 {
		t.Fatalf("selected %d, want TRLE (15), the client's first listed encoding", enc.Number())
	}
}

func TestSelectFallsBackToRaw(t *testing.T) {
	registry := NewRegistry(0)
	enc := Select([]int32{9999}, registry)
	if enc.Number() != 0 {
		t.Fatalf("selected %d, want Raw (0)", enc.Number())
	}
}

func TestSelectEmptyListFallsBackToRaw(t *testing.T) {
	registry := NewRegistry(0)
	enc := Select(nil, registry)
	if enc.Number() != 0 {
		t.Fatalf("selected %d, want Raw (0)", enc.Number())
	}
}
