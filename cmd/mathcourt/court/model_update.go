package court

import (
	"fmt"
	"strings"

	"mathcourt/internal/courtroom"
	"mathcourt/internal/game"
	"mathcourt/internal/logging"
	"mathcourt/internal/progress"
	"mathcourt/internal/trial"
	"mathcourt/internal/verdict"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update is the main event loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case spinner.TickMsg:
		if !m.loading && m.screen != ScreenGenerating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case caseReadyMsg:
		return m.handleCaseReady(msg)

	case prosecutorSpokeMsg:
		if m.stale(msg.caseID) {
			return m, nil
		}
		m.session.AddDialogue(game.RoleProsecutor, msg.text)
		m.refreshTranscript()
		// The co-counsel always follows a prosecutor turn, steering the
		// player back toward a relevant mathematical point before control
		// returns to them.
		m.session.SetPhase(trial.PhaseCoCounselAdvice)
		m.loading = true
		m.status = "Your Co-Counsel is thinking..."
		situation := "The Judge was not persuaded by the player's last submission and the Prosecutor has just pressed the advantage. Guide the player back to a relevant and correct mathematical point."
		return m, tea.Batch(m.spinner.Tick, m.coCounselCmd(situation, ""))

	case coCounselSpokeMsg:
		if m.stale(msg.caseID) {
			return m, nil
		}
		m.session.AddDialogue(game.RoleCoCounsel, msg.text)
		m.loading = false
		m.status = ""
		if m.session.Phase == trial.PhaseCoCounselAdvice {
			m.session.SetPhase(trial.PhasePlayerAction)
		}
		m.refreshTranscript()
		return m, m.armClock()

	case judgeRuledMsg:
		return m.handleJudgeRuling(msg)

	case narrationTickMsg:
		return m.handleNarration(msg)

	case clockTickMsg:
		return m.handleClockTick(msg)

	case outcomeRecordedMsg:
		if m.stale(msg.caseID) {
			return m, nil
		}
		m.loading = false
		m.status = ""
		if msg.err != nil {
			m.err = msg.err
		}
		m.newLearnings = msg.added
		m.screen = ScreenVerdict
		m.maybeTutorial(game.TutorialHeaderMyLearnings)
		return m, nil
	}

	return m, nil
}

// stale reports whether a per-case message belongs to an abandoned case.
func (m Model) stale(caseID string) bool {
	if m.session == nil || m.session.Case.ID != caseID {
		logging.UIDebug("Dropping message for stale case %s", caseID)
		return true
	}
	return false
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	contentWidth := msg.Width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}
	contentHeight := msg.Height - 12
	if contentHeight < 5 {
		contentHeight = 5
	}

	if !m.ready {
		m.viewport = newTranscriptViewport(contentWidth, contentHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = contentHeight
	}
	m.input.SetWidth(contentWidth)

	if r, err := newRenderer(contentWidth); err == nil {
		m.renderer = r
	}
	m.refreshTranscript()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// An open tutorial overlay swallows input until dismissed.
	if m.tutorialActive {
		switch msg.String() {
		case "enter", " ":
			if err := m.tracker.MarkTutorialStepComplete(m.tutorial); err != nil {
				logging.UIDebug("Failed to mark tutorial step: %v", err)
			}
			m.tutorialActive = false
		case "s":
			if err := m.tracker.SkipAllTutorials(); err != nil {
				logging.UIDebug("Failed to skip tutorials: %v", err)
			}
			m.tutorialActive = false
		}
		return m, nil
	}

	if m.modal != ModalNone {
		return m.handleModalKey(msg)
	}

	switch m.screen {
	case ScreenAuth:
		return m.handleAuthKey(msg)
	case ScreenGenerating:
		if msg.String() == "enter" && m.err != nil {
			return m.startNextCase()
		}
		return m, nil
	case ScreenBriefing:
		return m.handleBriefingKey(msg)
	case ScreenCourtroom:
		return m.handleCourtroomKey(msg)
	case ScreenVerdict:
		return m.handleVerdictKey(msg)
	}
	return m, nil
}

func (m Model) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.authFocus = 1 - m.authFocus
		if m.authFocus == 0 {
			m.username.Focus()
			m.password.Blur()
		} else {
			m.username.Blur()
			m.password.Focus()
		}
		return m, nil

	case "ctrl+s":
		if m.authMode == AuthLogin {
			m.authMode = AuthSignUp
		} else {
			m.authMode = AuthLogin
		}
		m.authErr = ""
		return m, nil

	case "enter":
		return m.submitAuth()
	}

	var cmd tea.Cmd
	if m.authFocus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) submitAuth() (tea.Model, tea.Cmd) {
	username := strings.TrimSpace(m.username.Value())
	password := m.password.Value()

	var err error
	if m.authMode == AuthSignUp {
		err = m.accounts.SignUp(username, password)
	} else {
		err = m.accounts.Login(username, password)
	}
	if err != nil {
		m.authErr = err.Error()
		m.password.Reset()
		return m, nil
	}

	m.authErr = ""
	m.user = username
	m.tracker = progress.NewTracker(m.store, username)
	m.generator = courtroom.NewGenerator(m.client, m.curriculum, m.tracker)
	return m.startNextCase()
}

func (m Model) startNextCase() (tea.Model, tea.Cmd) {
	m.screen = ScreenGenerating
	m.loading = true
	m.err = nil
	m.status = "Preparing your next case..."
	m.session = nil
	m.director = nil
	m.pendingNarration = nil
	m.afterNarration = followNone
	m.clockRunning = false
	m.newLearnings = nil
	m.evidenceIndex = 0
	return m, tea.Batch(m.spinner.Tick, m.generateCaseCmd())
}

func (m Model) handleCaseReady(msg caseReadyMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.status = ""
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}

	m.session = trial.NewSession(msg.c, msg.level)
	m.director = courtroom.NewDirector(m.client, msg.c)
	m.screen = ScreenBriefing
	m.maybeTutorial(game.TutorialBriefingIntro)
	m.refreshTranscript()
	return m, nil
}

func (m Model) handleBriefingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.beginTrial()
	case "ctrl+e":
		m.modal = ModalEvidence
		m.evidenceIndex = 0
		m.maybeTutorial(game.TutorialEvidenceModal)
		return m, nil
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

// beginTrial moves from the briefing into the courtroom and queues the
// opening sequence: narrator intro, the Judge's call to order, and the two
// pre-written opening turns from the case itself.
func (m Model) beginTrial() (tea.Model, tea.Cmd) {
	c := m.session.Case
	m.screen = ScreenCourtroom
	m.session.SetPhase(trial.PhaseTrialIntro)

	m.pendingNarration = []game.DialogueEntry{
		{Speaker: game.RoleNarrator, Text: fmt.Sprintf("Let's start the game for: %s! The %s is here to listen.", c.Title, game.RoleJudge)},
		{Speaker: game.RoleJudge, Text: fmt.Sprintf("Okay everyone, quiet please! We're going to talk about %s. %s, you can start.", c.ClientName, game.RoleProsecutor)},
		{Speaker: game.RoleProsecutor, Text: c.InitialProsecutionArgument},
		{Speaker: game.RoleCoCounsel, Text: c.InitialCoCounselHint},
	}
	m.afterNarration = followPlayerAction
	m.maybeTutorial(game.TutorialCourtroomWelcome)
	return m, m.narrationCmd()
}

func (m Model) handleNarration(msg narrationTickMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.caseID) || len(m.pendingNarration) == 0 {
		return m, nil
	}

	next := m.pendingNarration[0]
	m.pendingNarration = m.pendingNarration[1:]
	m.session.AddDialogue(next.Speaker, next.Text)
	m.refreshTranscript()

	if len(m.pendingNarration) > 0 {
		return m, m.narrationCmd()
	}

	follow := m.afterNarration
	m.afterNarration = followNone
	switch follow {
	case followPlayerAction:
		m.session.SetPhase(trial.PhasePlayerAction)
		m.input.Focus()
		m.maybeTutorial(game.TutorialPlayerActions)
		return m, m.armClock()
	case followProsecutor:
		m.loading = true
		m.status = "The Silly Prosecutor is preparing a response..."
		return m, tea.Batch(m.spinner.Tick, m.prosecutorCmd(m.prosecutorContext))
	case followConclude:
		m.loading = true
		m.status = "Court is adjourning..."
		return m, m.recordOutcomeCmd()
	}
	return m, nil
}

func (m Model) handleCourtroomKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		if m.session.Phase == trial.PhaseObjectionInput {
			m.session.SetPhase(trial.PhasePlayerAction)
			m.input.Placeholder = "Present your argument to the Judge..."
			m.input.Reset()
		}
		return m, nil

	case "ctrl+e":
		m.modal = ModalEvidence
		m.evidenceIndex = 0
		m.maybeTutorial(game.TutorialEvidenceModal)
		return m, nil

	case "ctrl+b":
		m.modal = ModalProofBoard
		m.maybeTutorial(game.TutorialProofBoardModal)
		return m, nil

	case "ctrl+l":
		m.modal = ModalLearnings
		return m, nil

	case "ctrl+o":
		if m.session.Phase == trial.PhasePlayerAction {
			m.session.SetPhase(trial.PhaseObjectionInput)
			m.input.Placeholder = "Objection! State your grounds..."
			m.input.Reset()
			m.maybeTutorial(game.TutorialObjectionInput)
		}
		return m, nil

	case "ctrl+h":
		return m.askCoCounsel()

	case "enter":
		return m.submitArgument()

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.session.Phase == trial.PhasePlayerAction || m.session.Phase == trial.PhaseObjectionInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) askCoCounsel() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	m.input.Reset()

	situation := "The player is preparing their argument and asked you for help."
	if query != "" {
		situation = "The player asked you a direct question while preparing their argument."
	}
	m.loading = true
	m.status = "Your Co-Counsel is thinking..."
	return m, tea.Batch(m.spinner.Tick, m.coCounselCmd(situation, query))
}

func (m Model) submitArgument() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	kind := verdict.KindProof
	if m.session.Phase == trial.PhaseObjectionInput {
		kind = verdict.KindObjection
	}

	m.input.Reset()
	m.input.Placeholder = "Present your argument to the Judge..."
	m.session.AddDialogue(game.RolePlayer, text)
	m.refreshTranscript()

	m.loading = true
	m.status = "The Judge is considering..."
	return m, tea.Batch(m.spinner.Tick, m.judgeCmd(text, kind))
}

func (m Model) handleJudgeRuling(msg judgeRuledMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.caseID) {
		return m, nil
	}

	m.session.AddDialogue(game.RoleJudge, msg.ruling)
	outcome := m.classifier.Classify(msg.ruling, msg.kind)
	t := trial.Resolve(outcome, msg.kind, msg.argument, m.session.Case)
	m.session.Apply(t)
	m.refreshTranscript()

	if t.Concluded {
		m.loading = true
		m.status = "Court is adjourning..."
		return m, m.recordOutcomeCmd()
	}

	if t.NextPhase == trial.PhaseProsecutorArgument {
		m.prosecutorContext = t.ProsecutorContext
		m.loading = true
		m.status = "The Silly Prosecutor is preparing a response..."
		return m, tea.Batch(m.spinner.Tick, m.prosecutorCmd(t.ProsecutorContext))
	}

	m.loading = false
	m.status = ""
	return m, m.armClock()
}

func (m Model) handleClockTick(msg clockTickMsg) (tea.Model, tea.Cmd) {
	if m.session == nil || m.session.Case.ID != msg.caseID {
		return m, nil
	}
	if m.session.Concluded {
		m.clockRunning = false
		return m, nil
	}

	if m.session.TimerRunning(m.loading, m.tutorialActive) {
		if expired := m.session.Tick(); expired {
			m.clockRunning = false
			m.refreshTranscript()
			m.loading = true
			m.status = "Court is adjourning..."
			return m, m.recordOutcomeCmd()
		}
	}
	return m, m.clockTickCmd()
}

func (m Model) handleVerdictKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.startNextCase()
	case "ctrl+l", "l":
		m.modal = ModalLearnings
		return m, nil
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "q":
		m.modal = ModalNone
	case "left", "h":
		if m.modal == ModalEvidence && m.evidenceIndex > 0 {
			m.evidenceIndex--
		}
	case "right", "l":
		if m.modal == ModalEvidence && m.session != nil && m.evidenceIndex < len(m.session.Case.Evidence)-1 {
			m.evidenceIndex++
		}
	}
	return m, nil
}

// armClock starts the one-second countdown loop if it is not already
// running. Only one loop exists per case.
func (m *Model) armClock() tea.Cmd {
	if m.clockRunning || m.session == nil || m.session.Concluded {
		return nil
	}
	m.clockRunning = true
	return m.clockTickCmd()
}

// maybeTutorial opens the overlay for a step the player has not seen.
func (m *Model) maybeTutorial(step game.TutorialStep) {
	if m.tracker == nil || m.tutorialActive {
		return
	}
	show, err := m.tracker.ShouldShowTutorial(step)
	if err != nil || !show {
		return
	}
	m.tutorial = step
	m.tutorialActive = true
}
