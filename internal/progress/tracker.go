// Package progress tracks everything a player keeps between cases: level,
// collected learnings, tutorial completion, and the per-tier topic cursor
// that round-robins through the curriculum.
package progress

import (
	"fmt"
	"strconv"
	"time"

	"mathcourt/internal/game"
	"mathcourt/internal/logging"
	"mathcourt/internal/store"
)

// Tracker is the per-user progress view over the store.
type Tracker struct {
	store    *store.Store
	username string
}

// NewTracker returns a tracker for one user.
func NewTracker(s *store.Store, username string) *Tracker {
	return &Tracker{store: s, username: username}
}

func (t *Tracker) key(base string) string {
	return store.UserKey(base, t.username)
}

// Level returns the player's current level, starting at 1.
func (t *Tracker) Level() (int, error) {
	raw, found, err := t.store.Get(t.key(store.KeyLevelBase))
	if err != nil {
		return 0, err
	}
	if !found {
		return 1, nil
	}
	level, err := strconv.Atoi(raw)
	if err != nil || level < 1 {
		logging.Get(logging.CategoryStore).Warn("Invalid stored level %q for %s; resetting to 1", raw, t.username)
		if delErr := t.store.Delete(t.key(store.KeyLevelBase)); delErr != nil {
			return 0, delErr
		}
		return 1, nil
	}
	return level, nil
}

// SetLevel stores the player's level.
func (t *Tracker) SetLevel(level int) error {
	return t.store.Set(t.key(store.KeyLevelBase), strconv.Itoa(level))
}

// Learnings returns all recorded learnings in insertion order.
func (t *Tracker) Learnings() ([]game.LearningEntry, error) {
	var learnings []game.LearningEntry
	if _, err := t.store.GetJSON(t.key(store.KeyLearningsBase), &learnings); err != nil {
		return nil, err
	}
	return learnings, nil
}

// RecordCaseOutcome applies a finished case to the player's progress:
// learnings are collected only for a win with time to spare, and a win of
// any kind advances the level. Returns the learnings that were new.
func (t *Tracker) RecordCaseOutcome(c *game.CaseData, won, timeUp bool) ([]game.LearningEntry, error) {
	level, err := t.Level()
	if err != nil {
		return nil, err
	}

	var added []game.LearningEntry
	if won && !timeUp {
		texts := make([]string, 0, len(c.KeyConcepts)+1)
		for _, concept := range c.KeyConcepts {
			texts = append(texts, fmt.Sprintf("Key Concept from %q: %s.", c.Title, concept))
		}
		if fe := c.FlawedEvidence(); fe != nil && fe.FlawDescription != "" {
			texts = append(texts, fmt.Sprintf("Understood from %q: %s", c.Title, fe.FlawDescription))
		}

		learnings, err := t.Learnings()
		if err != nil {
			return nil, err
		}
		for _, text := range texts {
			if hasLearning(learnings, level, text) {
				continue
			}
			entry := game.LearningEntry{Level: level, Text: text, Timestamp: time.Now()}
			learnings = append(learnings, entry)
			added = append(added, entry)
		}
		if len(added) > 0 {
			if err := t.store.SetJSON(t.key(store.KeyLearningsBase), learnings); err != nil {
				return nil, err
			}
		}
	}

	if won {
		if err := t.SetLevel(level + 1); err != nil {
			return nil, err
		}
		logging.Trial("Player %s advanced to level %d (%d new learnings)", t.username, level+1, len(added))
	}
	return added, nil
}

func hasLearning(learnings []game.LearningEntry, level int, text string) bool {
	for _, l := range learnings {
		if l.Level == level && l.Text == text {
			return true
		}
	}
	return false
}

// completedSteps loads the tutorial completion set.
func (t *Tracker) completedSteps() (map[game.TutorialStep]bool, error) {
	var steps []game.TutorialStep
	if _, err := t.store.GetJSON(t.key(store.KeyTutorialStepsBase), &steps); err != nil {
		return nil, err
	}
	set := make(map[game.TutorialStep]bool, len(steps))
	for _, s := range steps {
		set[s] = true
	}
	return set, nil
}

// MarkTutorialStepComplete records a dismissed tutorial hint.
func (t *Tracker) MarkTutorialStepComplete(step game.TutorialStep) error {
	set, err := t.completedSteps()
	if err != nil {
		return err
	}
	if set[step] {
		return nil
	}
	steps := make([]game.TutorialStep, 0, len(set)+1)
	for _, s := range game.AllTutorialSteps() {
		if set[s] || s == step {
			steps = append(steps, s)
		}
	}
	return t.store.SetJSON(t.key(store.KeyTutorialStepsBase), steps)
}

// SkipAllTutorials marks every step complete and remembers the skip.
func (t *Tracker) SkipAllTutorials() error {
	if err := t.store.SetJSON(t.key(store.KeyTutorialStepsBase), game.AllTutorialSteps()); err != nil {
		return err
	}
	return t.store.Set(t.key(store.KeyTutorialsSkippedBase), "true")
}

// AllTutorialsSkipped reports whether the player opted out of tutorials.
func (t *Tracker) AllTutorialsSkipped() (bool, error) {
	raw, found, err := t.store.Get(t.key(store.KeyTutorialsSkippedBase))
	if err != nil {
		return false, err
	}
	return found && raw == "true", nil
}

// ShouldShowTutorial reports whether an onboarding hint is due. Hints only
// appear during the first level; the learnings hint is the exception and
// fires at level 2, once something is actually in the collection.
func (t *Tracker) ShouldShowTutorial(step game.TutorialStep) (bool, error) {
	skipped, err := t.AllTutorialsSkipped()
	if err != nil || skipped {
		return false, err
	}
	set, err := t.completedSteps()
	if err != nil || set[step] {
		return false, err
	}
	level, err := t.Level()
	if err != nil {
		return false, err
	}

	if step == game.TutorialHeaderMyLearnings {
		if level != 2 {
			return false, nil
		}
		learnings, err := t.Learnings()
		if err != nil {
			return false, err
		}
		for _, l := range learnings {
			if l.Level == 1 {
				return true, nil
			}
		}
		return false, nil
	}

	return level == 1, nil
}

// topicIndexKeyBase maps a tier to its cursor key.
func topicIndexKeyBase(tier game.Tier) string {
	switch tier {
	case game.TierClass8:
		return store.KeyClass8TopicIndexBase
	case game.TierClass9:
		return store.KeyClass9TopicIndexBase
	default:
		return store.KeyClass10TopicIndexBase
	}
}

// NextTopic returns the tier's current topic and advances the cursor,
// wrapping at the end of the list. A corrupted or out-of-range cursor is
// cleared and treated as the start of the list.
func (t *Tracker) NextTopic(tier game.Tier) (string, error) {
	topics := game.Topics(tier)
	key := t.key(topicIndexKeyBase(tier))

	idx := 0
	raw, found, err := t.store.Get(key)
	if err != nil {
		return "", err
	}
	if found {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed >= len(topics) {
			logging.Get(logging.CategoryCase).Warn("Invalid topic index %q for %s; resetting to 0", raw, key)
			if delErr := t.store.Delete(key); delErr != nil {
				return "", delErr
			}
		} else {
			idx = parsed
		}
	}

	next := (idx + 1) % len(topics)
	if err := t.store.Set(key, strconv.Itoa(next)); err != nil {
		return "", err
	}
	return topics[idx], nil
}
