package progress

import (
	"context"
	"strings"
	"testing"

	"mathcourt/internal/game"
	"mathcourt/internal/store"
)

// fakeEngine maps known texts to fixed vectors.
type fakeEngine struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (f *fakeEngine) Dimensions() int { return 3 }
func (f *fakeEngine) Close() error    { return nil }

func seedLearnings(t *testing.T, s *store.Store, tr *Tracker) []game.LearningEntry {
	t.Helper()
	cases := []*game.CaseData{
		{
			Title:       "The Tilted Graph",
			KeyConcepts: []string{"Reading bar charts"},
		},
		{
			Title:       "The Polynomial Perplexity",
			KeyConcepts: []string{"Factor theorem"},
		},
	}
	for _, c := range cases {
		if _, err := tr.RecordCaseOutcome(c, true, false); err != nil {
			t.Fatal(err)
		}
	}
	learnings, err := tr.Learnings()
	if err != nil {
		t.Fatal(err)
	}
	return learnings
}

func TestSubstringFallback(t *testing.T) {
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	tr := NewTracker(s, "asha")
	seedLearnings(t, s, tr)

	// nil engine: no API key configured
	search := NewSearch(s, nil)
	matches, err := search.Query(context.Background(), "asha", tr, "polynomial", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || !strings.Contains(matches[0].Entry.Text, "Polynomial") {
		t.Errorf("substring query = %+v, want single polynomial hit", matches)
	}

	// Empty query lists everything.
	all, err := search.Query(context.Background(), "asha", tr, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("empty query returned %d matches, want 2", len(all))
	}
}

func TestSemanticRanking(t *testing.T) {
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	tr := NewTracker(s, "asha")
	learnings := seedLearnings(t, s, tr)

	engine := &fakeEngine{vectors: map[string][]float32{
		learnings[0].Text: {1, 0, 0},
		learnings[1].Text: {0, 1, 0},
		"charts please":   {0.9, 0.1, 0},
	}}
	search := NewSearch(s, engine)
	search.IndexLearnings(context.Background(), "asha", learnings)

	matches, err := search.Query(context.Background(), "asha", tr, "charts please", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("semantic query returned %d matches, want 2", len(matches))
	}
	if !strings.Contains(matches[0].Entry.Text, "Tilted Graph") {
		t.Errorf("top match = %q, want the chart learning", matches[0].Entry.Text)
	}
	if matches[0].Score <= matches[1].Score {
		t.Errorf("scores not descending: %v then %v", matches[0].Score, matches[1].Score)
	}
}

func TestSemanticFallsBackWhenEngineFails(t *testing.T) {
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	tr := NewTracker(s, "asha")
	seedLearnings(t, s, tr)

	search := NewSearch(s, &fakeEngine{err: context.DeadlineExceeded})
	matches, err := search.Query(context.Background(), "asha", tr, "factor", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Errorf("fallback query returned %d matches, want 1", len(matches))
	}
}
