package progress

import (
	"strings"
	"testing"

	"mathcourt/internal/game"
	"mathcourt/internal/store"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewTracker(s, "asha")
}

func wonCase() *game.CaseData {
	return &game.CaseData{
		ID:          "CASE_DYNAMIC_1",
		Title:       "The Tilted Graph",
		KeyConcepts: []string{"Reading bar charts", "Percentages"},
		Evidence: []game.Evidence{
			{ID: "EVIDENCE_A_1", IsFlawed: true, FlawDescription: "The bars were scaled inconsistently."},
		},
	}
}

func TestLevelDefaultsToOne(t *testing.T) {
	tr := newTestTracker(t)
	level, err := tr.Level()
	if err != nil || level != 1 {
		t.Fatalf("Level() = %d, %v; want 1", level, err)
	}
}

func TestLevelResetOnCorruption(t *testing.T) {
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	tr := NewTracker(s, "asha")

	s.Set(store.UserKey(store.KeyLevelBase, "asha"), "banana")
	level, err := tr.Level()
	if err != nil || level != 1 {
		t.Fatalf("Level() with corrupted value = %d, %v; want 1", level, err)
	}
	if _, found, _ := s.Get(store.UserKey(store.KeyLevelBase, "asha")); found {
		t.Error("corrupted level key was not cleared")
	}
}

func TestRecordWinCollectsLearningsAndLevelsUp(t *testing.T) {
	tr := newTestTracker(t)

	added, err := tr.RecordCaseOutcome(wonCase(), true, false)
	if err != nil {
		t.Fatalf("RecordCaseOutcome failed: %v", err)
	}
	// Two key concepts plus the flaw description.
	if len(added) != 3 {
		t.Fatalf("added %d learnings, want 3", len(added))
	}
	if !strings.HasPrefix(added[0].Text, `Key Concept from "The Tilted Graph":`) {
		t.Errorf("learning text = %q", added[0].Text)
	}
	if !strings.HasPrefix(added[2].Text, `Understood from "The Tilted Graph":`) {
		t.Errorf("flaw learning text = %q", added[2].Text)
	}
	if added[0].Level != 1 {
		t.Errorf("learning recorded at level %d, want the level the case was played at", added[0].Level)
	}

	level, _ := tr.Level()
	if level != 2 {
		t.Errorf("level after win = %d, want 2", level)
	}
}

func TestRecordWinDeduplicatesLearnings(t *testing.T) {
	tr := newTestTracker(t)

	if _, err := tr.RecordCaseOutcome(wonCase(), true, false); err != nil {
		t.Fatal(err)
	}
	// Same case again at level 2: texts repeat but the level differs, so
	// they are recorded again.
	added, err := tr.RecordCaseOutcome(wonCase(), true, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 3 {
		t.Errorf("second win at new level added %d learnings, want 3", len(added))
	}

	// Replay at the same level adds nothing.
	tr.SetLevel(2)
	added, err = tr.RecordCaseOutcome(wonCase(), true, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 0 {
		t.Errorf("replay at same level added %d learnings, want 0", len(added))
	}
}

func TestRecordTimeUpWinRecordsNoLearnings(t *testing.T) {
	tr := newTestTracker(t)

	added, err := tr.RecordCaseOutcome(wonCase(), true, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 0 {
		t.Errorf("time-up outcome added %d learnings, want 0", len(added))
	}
	// A win still levels up even on time-up.
	level, _ := tr.Level()
	if level != 2 {
		t.Errorf("level = %d, want 2", level)
	}
}

func TestRecordLossChangesNothing(t *testing.T) {
	tr := newTestTracker(t)

	added, err := tr.RecordCaseOutcome(wonCase(), false, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 0 {
		t.Errorf("loss added %d learnings", len(added))
	}
	level, _ := tr.Level()
	if level != 1 {
		t.Errorf("level after loss = %d, want 1", level)
	}
}

func TestTutorialGating(t *testing.T) {
	tr := newTestTracker(t)

	show, err := tr.ShouldShowTutorial(game.TutorialBriefingIntro)
	if err != nil || !show {
		t.Fatalf("fresh level-1 user should see briefing tutorial (show=%t err=%v)", show, err)
	}

	if err := tr.MarkTutorialStepComplete(game.TutorialBriefingIntro); err != nil {
		t.Fatal(err)
	}
	if show, _ := tr.ShouldShowTutorial(game.TutorialBriefingIntro); show {
		t.Error("completed step still shown")
	}

	// Past level 1, regular hints disappear even if never completed.
	tr.SetLevel(3)
	if show, _ := tr.ShouldShowTutorial(game.TutorialDialogueBox); show {
		t.Error("level-3 player shown level-1 tutorial")
	}
}

func TestSkipAllTutorials(t *testing.T) {
	tr := newTestTracker(t)

	if err := tr.SkipAllTutorials(); err != nil {
		t.Fatal(err)
	}
	for _, step := range game.AllTutorialSteps() {
		if show, _ := tr.ShouldShowTutorial(step); show {
			t.Errorf("step %s shown after skip-all", step)
		}
	}
}

func TestLearningsTutorialFiresAtLevelTwo(t *testing.T) {
	tr := newTestTracker(t)

	// Level 1, no learnings: not yet.
	if show, _ := tr.ShouldShowTutorial(game.TutorialHeaderMyLearnings); show {
		t.Error("learnings tutorial shown at level 1")
	}

	// Win a case at level 1, reaching level 2 with level-1 learnings.
	if _, err := tr.RecordCaseOutcome(wonCase(), true, false); err != nil {
		t.Fatal(err)
	}
	show, err := tr.ShouldShowTutorial(game.TutorialHeaderMyLearnings)
	if err != nil || !show {
		t.Errorf("learnings tutorial not shown at level 2 (show=%t err=%v)", show, err)
	}

	// Gone once dismissed.
	tr.MarkTutorialStepComplete(game.TutorialHeaderMyLearnings)
	if show, _ := tr.ShouldShowTutorial(game.TutorialHeaderMyLearnings); show {
		t.Error("learnings tutorial shown after dismissal")
	}
}

func TestNextTopicRoundRobin(t *testing.T) {
	tr := newTestTracker(t)
	topics := game.Topics(game.TierClass8)

	for i := 0; i < len(topics)+2; i++ {
		got, err := tr.NextTopic(game.TierClass8)
		if err != nil {
			t.Fatalf("NextTopic call %d failed: %v", i, err)
		}
		want := topics[i%len(topics)]
		if got != want {
			t.Fatalf("NextTopic call %d = %q, want %q", i, got, want)
		}
	}
}

func TestNextTopicInvalidCursorResets(t *testing.T) {
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	tr := NewTracker(s, "asha")

	key := store.UserKey(store.KeyClass9TopicIndexBase, "asha")
	s.Set(key, "9999")

	got, err := tr.NextTopic(game.TierClass9)
	if err != nil {
		t.Fatal(err)
	}
	if got != game.Topics(game.TierClass9)[0] {
		t.Errorf("NextTopic after invalid cursor = %q, want first topic", got)
	}
}

func TestTopicCursorsPerUser(t *testing.T) {
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	a := NewTracker(s, "asha")
	b := NewTracker(s, "brin")
	topics := game.Topics(game.TierClass10)

	a.NextTopic(game.TierClass10)
	a.NextTopic(game.TierClass10)
	got, err := b.NextTopic(game.TierClass10)
	if err != nil {
		t.Fatal(err)
	}
	if got != topics[0] {
		t.Errorf("second user's first topic = %q, want %q", got, topics[0])
	}
}
