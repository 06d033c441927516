package game

import (
	"testing"
)

func TestTierForLevel(t *testing.T) {
	c := DefaultCurriculum()

	tests := []struct {
		level int
		want  Tier
	}{
		{1, TierClass8},
		{10, TierClass8},
		{11, TierClass9},
		{20, TierClass9},
		{21, TierClass10},
		{100, TierClass10},
	}

	for _, tt := range tests {
		if got := c.TierForLevel(tt.level); got != tt.want {
			t.Errorf("TierForLevel(%d) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestDurationMinutesMonotonicAndClamped(t *testing.T) {
	c := DefaultCurriculum()

	prev := c.DurationMinutes(1)
	if prev != 5.0 {
		t.Errorf("DurationMinutes(1) = %v, want 5.0", prev)
	}

	for level := 2; level <= 60; level++ {
		d := c.DurationMinutes(level)
		if d > prev {
			t.Errorf("duration increased at level %d: %v > %v", level, d, prev)
		}
		if d < c.MinDurationMinutes {
			t.Errorf("duration below minimum at level %d: %v", level, d)
		}
		prev = d
	}

	// 5 - 14*0.25 = 1.5; every later level stays clamped there
	if got := c.DurationMinutes(15); got != 1.5 {
		t.Errorf("DurationMinutes(15) = %v, want 1.5", got)
	}
	if got := c.DurationMinutes(40); got != 1.5 {
		t.Errorf("DurationMinutes(40) = %v, want 1.5", got)
	}
}

func TestDifficulty(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{1, 1},
		{4, 1},
		{5, 2},
		{8, 2},
		{17, 5},
		{20, 5},
		{99, 5},
	}

	for _, tt := range tests {
		if got := Difficulty(tt.level); got != tt.want {
			t.Errorf("Difficulty(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestTopicsNonEmptyPerTier(t *testing.T) {
	for _, tier := range []Tier{TierClass8, TierClass9, TierClass10} {
		topics := Topics(tier)
		if len(topics) == 0 {
			t.Errorf("Topics(%v) is empty", tier)
		}
		seen := make(map[string]bool)
		for _, topic := range topics {
			if seen[topic] {
				t.Errorf("Topics(%v) has duplicate %q", tier, topic)
			}
			seen[topic] = true
		}
	}
}

func TestFlawedEvidence(t *testing.T) {
	c := CaseData{Evidence: []Evidence{
		{ID: "EVIDENCE_A_1", IsFlawed: false},
		{ID: "EVIDENCE_B_1", IsFlawed: true, FlawDescription: "angle sum is 190, must be 180"},
	}}
	fe := c.FlawedEvidence()
	if fe == nil || fe.ID != "EVIDENCE_B_1" {
		t.Fatalf("FlawedEvidence() = %+v, want EVIDENCE_B_1", fe)
	}

	empty := CaseData{}
	if empty.FlawedEvidence() != nil {
		t.Error("FlawedEvidence() on empty case should be nil")
	}
}
