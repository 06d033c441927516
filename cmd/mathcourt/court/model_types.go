package court

import (
	"mathcourt/internal/account"
	"mathcourt/internal/config"
	"mathcourt/internal/courtroom"
	"mathcourt/internal/game"
	"mathcourt/internal/llm"
	"mathcourt/internal/progress"
	"mathcourt/internal/store"
	"mathcourt/internal/trial"
	"mathcourt/internal/verdict"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// Screen identifies the top-level view.
type Screen int

const (
	ScreenAuth Screen = iota
	ScreenGenerating
	ScreenBriefing
	ScreenCourtroom
	ScreenVerdict
)

// Modal is an overlay on top of the courtroom.
type Modal int

const (
	ModalNone Modal = iota
	ModalEvidence
	ModalProofBoard
	ModalLearnings
)

// AuthMode toggles the auth screen between login and signup.
type AuthMode int

const (
	AuthLogin AuthMode = iota
	AuthSignUp
)

// followUp is what the trial does once the narration queue drains.
type followUp int

const (
	followNone followUp = iota
	followPlayerAction
	followProsecutor
	followConclude
)

// Model is the Bubble Tea model for the interactive courtroom.
type Model struct {
	// UI components
	username textinput.Model
	password textinput.Model
	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   Styles
	renderer *glamour.TermRenderer

	screen    Screen
	modal     Modal
	authMode  AuthMode
	authFocus int // 0 = username, 1 = password
	authErr   string

	width   int
	height  int
	ready   bool
	loading bool
	status  string
	err     error

	// Backend
	cfg        *config.Config
	store      *store.Store
	accounts   *account.Service
	client     llm.Client
	curriculum game.Curriculum
	classifier verdict.Classifier
	search     *progress.Search

	// Per-user state, set at login
	user      string
	tracker   *progress.Tracker
	generator *courtroom.Generator

	// Per-case state
	session           *trial.Session
	director          *courtroom.Director
	pendingNarration  []game.DialogueEntry
	afterNarration    followUp
	prosecutorContext string
	evidenceIndex     int
	clockRunning      bool

	// Tutorial overlay
	tutorial       game.TutorialStep
	tutorialActive bool

	// Verdict screen
	newLearnings []game.LearningEntry
}

// Messages for tea updates. Per-case messages carry the case id so replies
// from an abandoned case are dropped instead of corrupting the next one.
type (
	caseReadyMsg struct {
		level int
		c     *game.CaseData
		err   error
	}

	prosecutorSpokeMsg struct {
		caseID string
		text   string
	}

	coCounselSpokeMsg struct {
		caseID string
		text   string
	}

	judgeRuledMsg struct {
		caseID   string
		argument string
		ruling   string
		kind     verdict.TurnKind
	}

	narrationTickMsg struct{ caseID string }

	clockTickMsg struct{ caseID string }

	outcomeRecordedMsg struct {
		caseID string
		added  []game.LearningEntry
		err    error
	}
)
