// Package game defines the core domain types for mathcourt: the generated
// case, its evidence, the courtroom cast, and the player's accumulated
// learnings. It also owns the curriculum (tiers, topics, pacing).
package game

import "time"

// Role identifies a courtroom character.
type Role string

const (
	RoleJudge      Role = "The Judge"
	RoleProsecutor Role = "Silly Prosecutor"
	RoleCoCounsel  Role = "Super Helper"
	RoleClient     Role = "Your Friend"
	RolePlayer     Role = "You (The Hero)"
	RoleNarrator   Role = "Narrator"
)

// EvidenceType categorizes a piece of evidence.
type EvidenceType string

const (
	EvidenceDocument  EvidenceType = "document"
	EvidenceGraph     EvidenceType = "graph"
	EvidenceDataTable EvidenceType = "data_table"
	EvidenceStatement EvidenceType = "statement"
	EvidenceImage     EvidenceType = "image"
)

// Evidence is one exhibit in a case. Graph/image content is inline SVG
// markup; data tables are JSON; documents and statements are plain text.
type Evidence struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Type            EvidenceType `json:"type"`
	Description     string       `json:"description"`
	Content         string       `json:"content"`
	IsFlawed        bool         `json:"isFlawed"`
	FlawDescription string       `json:"flawDescription,omitempty"`
}

// CaseData describes one trial. Immutable once generated; exactly one
// evidence item carries the core mathematical flaw.
type CaseData struct {
	ID                          string     `json:"id"`
	Title                       string     `json:"title"`
	ClassLevel                  string     `json:"classLevel"`
	ClientName                  string     `json:"clientName"`
	ClientDescription           string     `json:"clientDescription"`
	Accusation                  string     `json:"accusation"`
	InitialProsecutionArgument  string     `json:"initialProsecutionArgument"`
	InitialCoCounselHint        string     `json:"initialCoCounselHint"`
	Evidence                    []Evidence `json:"evidence"`
	KeyConcepts                 []string   `json:"keyConcepts"`
	GuiltyVerdictIfPlayerFails  string     `json:"guiltyVerdictIfPlayerFails"`
	InnocentVerdictIfPlayerWins string     `json:"innocentVerdictIfPlayerSucceeds"`
	IsClientActuallyGuilty      bool       `json:"isClientActuallyGuilty"`
	CaseDurationMinutes         float64    `json:"caseDurationMinutes"`
}

// FlawedEvidence returns the first flawed exhibit, or nil.
func (c *CaseData) FlawedEvidence() *Evidence {
	for i := range c.Evidence {
		if c.Evidence[i].IsFlawed {
			return &c.Evidence[i]
		}
	}
	return nil
}

// DialogueEntry is one line of the trial transcript.
type DialogueEntry struct {
	Speaker   Role      `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// LearningEntry records a concept the player picked up by winning a case.
// Entries are deduplicated by (Level, Text) and kept forever.
type LearningEntry struct {
	Level     int       `json:"level"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// TutorialStep identifies a one-time onboarding hint.
type TutorialStep string

const (
	TutorialBriefingIntro     TutorialStep = "CASE_BRIEFING_INTRO"
	TutorialBriefingProceed   TutorialStep = "CASE_BRIEFING_PROCEED_BUTTON"
	TutorialCourtroomWelcome  TutorialStep = "COURTROOM_WELCOME"
	TutorialCharacters        TutorialStep = "COURTROOM_CHARACTERS"
	TutorialDialogueBox       TutorialStep = "COURTROOM_DIALOGUE_BOX"
	TutorialTimerIntro        TutorialStep = "COURTROOM_TIMER_INTRO"
	TutorialPlayerActions     TutorialStep = "COURTROOM_PLAYER_ACTIONS_INTRO"
	TutorialToolEvidence      TutorialStep = "COURTROOM_TOOL_EVIDENCE"
	TutorialToolProofBoard    TutorialStep = "COURTROOM_TOOL_PROOF_BOARD"
	TutorialToolObjection     TutorialStep = "COURTROOM_TOOL_OBJECTION"
	TutorialObjectionInput    TutorialStep = "COURTROOM_OBJECTION_INPUT"
	TutorialEvidenceModal     TutorialStep = "EVIDENCE_MODAL_INTRO"
	TutorialProofBoardModal   TutorialStep = "PROOF_BOARD_MODAL_INTRO"
	TutorialHeaderMyLearnings TutorialStep = "HEADER_MY_LEARNINGS"
)

// AllTutorialSteps lists every step in presentation order.
func AllTutorialSteps() []TutorialStep {
	return []TutorialStep{
		TutorialBriefingIntro,
		TutorialBriefingProceed,
		TutorialCourtroomWelcome,
		TutorialCharacters,
		TutorialDialogueBox,
		TutorialTimerIntro,
		TutorialPlayerActions,
		TutorialToolEvidence,
		TutorialToolProofBoard,
		TutorialToolObjection,
		TutorialObjectionInput,
		TutorialEvidenceModal,
		TutorialProofBoardModal,
		TutorialHeaderMyLearnings,
	}
}
