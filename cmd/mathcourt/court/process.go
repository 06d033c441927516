package court

import (
	"context"
	"time"

	"mathcourt/internal/progress"
	"mathcourt/internal/trial"
	"mathcourt/internal/verdict"

	tea "github.com/charmbracelet/bubbletea"
)

// Commands in this file run off the update loop. Every closure captures the
// values it needs up front; none of them may touch the model afterwards.

// generateCaseCmd asks the model for a fresh case at the player's level.
func (m Model) generateCaseCmd() tea.Cmd {
	gen := m.generator
	tracker := m.tracker
	return func() tea.Msg {
		level, err := tracker.Level()
		if err != nil {
			return caseReadyMsg{err: err}
		}
		c, err := gen.Generate(context.Background(), level)
		return caseReadyMsg{level: level, c: c, err: err}
	}
}

// prosecutorCmd requests the prosecutor's next argument.
func (m Model) prosecutorCmd(turnDescription string) tea.Cmd {
	director := m.director
	caseID := m.session.Case.ID
	lastDialogue := m.session.TranscriptText()
	return func() tea.Msg {
		text := director.ProsecutorStatement(context.Background(), turnDescription, lastDialogue)
		return prosecutorSpokeMsg{caseID: caseID, text: text}
	}
}

// coCounselCmd requests a hint from the co-counsel. playerQuery is empty
// when the player asked for general help.
func (m Model) coCounselCmd(situation, playerQuery string) tea.Cmd {
	director := m.director
	caseID := m.session.Case.ID
	recentDialogue := m.session.TranscriptText()
	return func() tea.Msg {
		text := director.CoCounselAdvice(context.Background(), situation, recentDialogue, playerQuery)
		return coCounselSpokeMsg{caseID: caseID, text: text}
	}
}

// judgeCmd submits a player argument or objection for a ruling.
func (m Model) judgeCmd(argument string, kind verdict.TurnKind) tea.Cmd {
	director := m.director
	caseID := m.session.Case.ID
	level := m.session.Level
	situation := m.session.TranscriptText()
	return func() tea.Msg {
		ruling := director.JudgeRuling(context.Background(), argument, situation, level)
		return judgeRuledMsg{caseID: caseID, argument: argument, ruling: ruling, kind: kind}
	}
}

// recordOutcomeCmd persists the finished trial: learnings, level, vectors.
func (m Model) recordOutcomeCmd() tea.Cmd {
	tracker := m.tracker
	search := m.search
	user := m.user
	c := m.session.Case
	won := m.session.PlayerWon
	timeUp := m.session.Reason == trial.ReasonTimeUp
	return func() tea.Msg {
		added, err := tracker.RecordCaseOutcome(c, won, timeUp)
		if err != nil {
			return outcomeRecordedMsg{caseID: c.ID, err: err}
		}
		if len(added) > 0 {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			search.IndexLearnings(ctx, user, added)
		}
		return outcomeRecordedMsg{caseID: c.ID, added: added}
	}
}

// learningsCmd is unused by the trial loop itself but keeps the modal
// responsive: the learnings list is loaded fresh every time it opens.
func loadLearnings(tracker *progress.Tracker) []string {
	learnings, err := tracker.Learnings()
	if err != nil {
		return []string{"(learnings unavailable)"}
	}
	lines := make([]string, 0, len(learnings))
	for _, l := range learnings {
		lines = append(lines, l.Text)
	}
	return lines
}

// narrationCmd schedules the next queued dialogue line.
func (m Model) narrationCmd() tea.Cmd {
	caseID := m.session.Case.ID
	return tea.Tick(m.narrationDelay(), func(time.Time) tea.Msg {
		return narrationTickMsg{caseID: caseID}
	})
}

// clockTickCmd schedules the next one-second countdown tick.
func (m Model) clockTickCmd() tea.Cmd {
	caseID := m.session.Case.ID
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return clockTickMsg{caseID: caseID}
	})
}
