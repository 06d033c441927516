// Package trial holds the state of one courtroom trial: the phase machine,
// the transcript, the countdown clock, and the pure transition rules that
// turn a classified Judge ruling into the next phase.
package trial

import (
	"fmt"
	"strings"
	"time"

	"mathcourt/internal/game"
	"mathcourt/internal/logging"
	"mathcourt/internal/verdict"
)

// Phase is the current stage of a trial.
type Phase int

const (
	PhaseBriefing Phase = iota
	PhaseTrialIntro
	PhaseProsecutorArgument
	PhaseCoCounselAdvice
	PhasePlayerAction
	PhaseObjectionInput
	PhaseVerdict
)

// String returns the phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseBriefing:
		return "briefing"
	case PhaseTrialIntro:
		return "trial_intro"
	case PhaseProsecutorArgument:
		return "prosecutor_argument"
	case PhaseCoCounselAdvice:
		return "co_counsel_advice"
	case PhasePlayerAction:
		return "player_action"
	case PhaseObjectionInput:
		return "objection_input"
	case PhaseVerdict:
		return "verdict"
	default:
		return "unknown"
	}
}

// ConcludeReason distinguishes a ruled verdict from the clock running out.
type ConcludeReason string

const (
	ReasonNormal ConcludeReason = "normal"
	ReasonTimeUp ConcludeReason = "timeup"
)

// Lines spoken by the framework itself rather than the model.
const (
	timeUpNarration = "Oh no! Time's up!"
	timeUpVerdict   = "The Judge says time ran out! Better luck next time!"

	objectionWinNarration       = "Incredible! Your sharp objection has won the case!"
	objectionSustainedNarration = "Your objection was noted and makes a good point! It's your turn to act again."
	objectionOverruledNarration = "The Judge didn't find your objection strong enough to change the course. The Prosecutor continues."

	proofIrrelevantNarration   = "The Judge found your argument irrelevant to the case! The Silly Prosecutor gets another chance to speak. Try to make your next argument directly answer the accusation about the math!"
	proofFlawedNarration       = "The Judge found issues with your mathematical reasoning. The Silly Prosecutor will respond. Try to address the mathematical error or explain your point more clearly!"
	proofUnconvincingNarration = "The Judge seems unconvinced by your argument or needs more clarity. The Silly Prosecutor gets to speak. Try to refine your mathematical explanation or present a stronger point!"
)

// Session is the live state of one trial. Not safe for concurrent use; the
// UI event loop owns it.
type Session struct {
	Case  *game.CaseData
	Level int

	Phase      Phase
	Transcript []game.DialogueEntry
	TimeLeft   int // seconds

	Concluded    bool
	Reason       ConcludeReason
	FinalVerdict string
	PlayerWon    bool
}

// NewSession starts a trial at the case briefing.
func NewSession(c *game.CaseData, level int) *Session {
	s := &Session{
		Case:     c,
		Level:    level,
		Phase:    PhaseBriefing,
		TimeLeft: int(c.CaseDurationMinutes * 60),
	}
	logging.Trial("Session started: case=%s level=%d time=%ds", c.ID, level, s.TimeLeft)
	return s
}

// AddDialogue appends a line to the transcript.
func (s *Session) AddDialogue(speaker game.Role, text string) {
	s.Transcript = append(s.Transcript, game.DialogueEntry{
		Speaker:   speaker,
		Text:      text,
		Timestamp: time.Now(),
	})
	logging.TrialDebug("Dialogue [%s]: %d chars", speaker, len(text))
}

// SetPhase moves the trial to a new phase.
func (s *Session) SetPhase(p Phase) {
	logging.TrialDebug("Phase %s -> %s", s.Phase, p)
	s.Phase = p
}

// speakerCount counts transcript lines by one speaker.
func (s *Session) speakerCount(r game.Role) int {
	n := 0
	for _, d := range s.Transcript {
		if d.Speaker == r {
			n++
		}
	}
	return n
}

// IsFirstProsecutorTurn reports whether the prosecutor has spoken yet. The
// first turn uses the case's pre-written opening argument.
func (s *Session) IsFirstProsecutorTurn() bool {
	return s.speakerCount(game.RoleProsecutor) == 0
}

// IsFirstCoCounselTurn reports whether the co-counsel has spoken yet. The
// first turn uses the case's pre-written hint.
func (s *Session) IsFirstCoCounselTurn() bool {
	return s.speakerCount(game.RoleCoCounsel) == 0
}

// LastProsecutorStatement returns the prosecutor's most recent line.
func (s *Session) LastProsecutorStatement() string {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Speaker == game.RoleProsecutor {
			return s.Transcript[i].Text
		}
	}
	return "what the Silly Prosecutor just said"
}

// TranscriptText renders the whole transcript as "speaker: text" lines for
// prompt context.
func (s *Session) TranscriptText() string {
	var b strings.Builder
	for i, d := range s.Transcript {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", d.Speaker, d.Text)
	}
	return b.String()
}

// TimerRunning reports whether the countdown should tick. The clock only
// runs while the player is free to act: not during model calls, narration,
// or an open tutorial overlay.
func (s *Session) TimerRunning(loading, tutorialActive bool) bool {
	if s.Concluded || s.TimeLeft <= 0 {
		return false
	}
	if loading || tutorialActive {
		return false
	}
	return s.Phase == PhasePlayerAction || s.Phase == PhaseObjectionInput
}

// Tick advances the clock one second. When the clock hits zero the trial
// concludes as a time-up loss.
func (s *Session) Tick() (expired bool) {
	if s.Concluded || s.TimeLeft <= 0 {
		return false
	}
	s.TimeLeft--
	if s.TimeLeft > 0 {
		return false
	}
	s.AddDialogue(game.RoleNarrator, timeUpNarration)
	s.Conclude(timeUpVerdict, ReasonTimeUp, false)
	return true
}

// Conclude ends the trial.
func (s *Session) Conclude(verdictText string, reason ConcludeReason, won bool) {
	s.Concluded = true
	s.Reason = reason
	s.FinalVerdict = verdictText
	s.PlayerWon = won
	s.Phase = PhaseVerdict
	logging.Trial("Session concluded: case=%s reason=%s won=%t", s.Case.ID, reason, won)
}

// Transition is the result of resolving a Judge ruling: where the trial
// goes next and what the courtroom says about it.
type Transition struct {
	NextPhase Phase
	// JudgeLine is an extra line from the Judge (verdict announcements).
	JudgeLine string
	// NarratorLine explains the outcome to the player.
	NarratorLine string
	// ProsecutorContext seeds the prosecutor's next turn when the trial
	// swings back to the prosecution.
	ProsecutorContext string
	Won               bool
	Concluded         bool
}

const defaultProsecutorContext = "The player is waiting for your next argument or reaction."

// Resolve maps a classified ruling onto the next trial state. Pure: it
// inspects nothing but its arguments.
func Resolve(outcome verdict.Outcome, kind verdict.TurnKind, playerArgument string, c *game.CaseData) Transition {
	if kind == verdict.KindObjection {
		switch outcome {
		case verdict.OutcomeWinning:
			return Transition{
				NextPhase:    PhaseVerdict,
				JudgeLine:    fmt.Sprintf("This objection is so compelling, it clarifies the entire matter! %s", c.InnocentVerdictIfPlayerWins),
				NarratorLine: objectionWinNarration,
				Won:          true,
				Concluded:    true,
			}
		case verdict.OutcomeSustained:
			return Transition{
				NextPhase:         PhasePlayerAction,
				NarratorLine:      objectionSustainedNarration,
				ProsecutorContext: defaultProsecutorContext,
			}
		default:
			return Transition{
				NextPhase:         PhaseProsecutorArgument,
				NarratorLine:      objectionOverruledNarration,
				ProsecutorContext: fmt.Sprintf("The Defense Counsel just made an objection which the Judge did not find strong enough to alter the course of the trial. They said: %q. Prosecutor, continue with your argument, re-emphasizing the mathematical facts.", truncate(playerArgument, 70)),
			}
		}
	}

	switch outcome {
	case verdict.OutcomeWinning:
		return Transition{
			NextPhase: PhaseVerdict,
			JudgeLine: fmt.Sprintf("Okay, I've thought about it... %s", c.InnocentVerdictIfPlayerWins),
			Won:       true,
			Concluded: true,
		}
	case verdict.OutcomeIrrelevant:
		return Transition{
			NextPhase:         PhaseProsecutorArgument,
			NarratorLine:      proofIrrelevantNarration,
			ProsecutorContext: fmt.Sprintf("The Defense Counsel just made an argument that the Judge found completely irrelevant! They said: %q. What's your take on their irrelevant distraction, Prosecutor? Press your advantage and reiterate the mathematical facts of the case!", truncate(playerArgument, 70)),
		}
	case verdict.OutcomeFlawed:
		return Transition{
			NextPhase:         PhaseProsecutorArgument,
			NarratorLine:      proofFlawedNarration,
			ProsecutorContext: fmt.Sprintf("The Defense Counsel just made a mathematically flawed argument! The Judge pointed out issues. They said: %q. Prosecutor, emphasize their error and strengthen your case based on correct mathematics!", truncate(playerArgument, 70)),
		}
	default:
		return Transition{
			NextPhase:         PhaseProsecutorArgument,
			NarratorLine:      proofUnconvincingNarration,
			ProsecutorContext: defaultProsecutorContext,
		}
	}
}

// Apply records a transition on the session: extra dialogue, phase move,
// and conclusion if the ruling ended the trial.
func (s *Session) Apply(t Transition) {
	if t.JudgeLine != "" {
		s.AddDialogue(game.RoleJudge, t.JudgeLine)
	}
	if t.NarratorLine != "" {
		s.AddDialogue(game.RoleNarrator, t.NarratorLine)
	}
	if t.Concluded {
		s.Conclude(s.Case.InnocentVerdictIfPlayerWins, ReasonNormal, t.Won)
		return
	}
	s.SetPhase(t.NextPhase)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
