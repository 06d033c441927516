package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetSetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if _, found, err := s.Get("missing"); err != nil || found {
		t.Fatalf("Get(missing) = found=%v err=%v, want absent", found, err)
	}

	if err := s.Set("k", "v1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, found, err := s.Get("k")
	if err != nil || !found || got != "v1" {
		t.Fatalf("Get(k) = %q found=%v err=%v, want v1", got, found, err)
	}

	// Overwrite
	if err := s.Set("k", "v2"); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}
	got, _, _ = s.Get("k")
	if got != "v2" {
		t.Errorf("Get after overwrite = %q, want v2", got)
	}

	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found, _ := s.Get("k"); found {
		t.Error("key still present after Delete")
	}
}

func TestGetJSONCorruptedValueClearsKey(t *testing.T) {
	s := newTestStore(t)

	if err := s.Set("progress", "{not json"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var out map[string]int
	found, err := s.GetJSON("progress", &out)
	if err != nil {
		t.Fatalf("GetJSON returned error for corrupted value: %v", err)
	}
	if found {
		t.Error("GetJSON reported corrupted value as found")
	}

	// The corrupted key must be gone so the next write starts clean.
	if _, stillThere, _ := s.Get("progress"); stillThere {
		t.Error("corrupted key was not cleared")
	}
}

func TestSetJSONGetJSON(t *testing.T) {
	s := newTestStore(t)

	type record struct {
		Level int      `json:"level"`
		Tags  []string `json:"tags"`
	}
	want := record{Level: 7, Tags: []string{"a", "b"}}

	if err := s.SetJSON("rec", want); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}
	var got record
	found, err := s.GetJSON("rec", &got)
	if err != nil || !found {
		t.Fatalf("GetJSON = found=%v err=%v", found, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUserKey(t *testing.T) {
	got := UserKey(KeyLevelBase, "asha")
	want := "mathcourtCurrentLevel_v1_asha"
	if got != want {
		t.Errorf("UserKey = %q, want %q", got, want)
	}
}

func TestLearningVectors(t *testing.T) {
	s := newTestStore(t)

	v := LearningVector{
		Username:  "asha",
		Level:     3,
		Text:      `Key Concept from "The Tilted Graph": slope measures rise over run.`,
		Embedding: []float64{0.1, 0.2, 0.3},
	}
	if err := s.SaveLearningVector(v); err != nil {
		t.Fatalf("SaveLearningVector failed: %v", err)
	}

	// Same (user, level, text) replaces rather than duplicates.
	v.Embedding = []float64{0.4, 0.5, 0.6}
	if err := s.SaveLearningVector(v); err != nil {
		t.Fatalf("SaveLearningVector replace failed: %v", err)
	}

	got, err := s.LearningVectors("asha")
	if err != nil {
		t.Fatalf("LearningVectors failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("LearningVectors returned %d rows, want 1", len(got))
	}
	if diff := cmp.Diff(v, got[0]); diff != "" {
		t.Errorf("vector mismatch (-want +got):\n%s", diff)
	}

	other, err := s.LearningVectors("someone-else")
	if err != nil {
		t.Fatalf("LearningVectors(other) failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("LearningVectors for other user returned %d rows, want 0", len(other))
	}
}
