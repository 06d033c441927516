package court

import (
	"fmt"
	"strings"

	"mathcourt/internal/game"
	"mathcourt/internal/trial"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

func newTranscriptViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

func newRenderer(width int) (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
}

// refreshTranscript rebuilds the viewport from the session transcript and
// scrolls to the latest line.
func (m *Model) refreshTranscript() {
	if !m.ready || m.session == nil {
		return
	}
	m.viewport.SetContent(m.transcriptContent())
	m.viewport.GotoBottom()
}

func (m *Model) transcriptContent() string {
	var b strings.Builder
	for i, d := range m.session.Transcript {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.styles.SpeakerStyle(d.Speaker).Render(string(d.Speaker) + ":"))
		b.WriteString(" ")
		b.WriteString(d.Text)
	}
	return b.String()
}

// View renders the current screen.
func (m Model) View() string {
	if !m.ready {
		return "Setting up the courtroom..."
	}

	var body string
	switch m.screen {
	case ScreenAuth:
		body = m.viewAuth()
	case ScreenGenerating:
		body = m.viewGenerating()
	case ScreenBriefing:
		body = m.viewBriefing()
	case ScreenCourtroom:
		body = m.viewCourtroom()
	case ScreenVerdict:
		body = m.viewVerdict()
	}

	if m.tutorialActive {
		overlay := m.styles.Tutorial.Width(min(m.width-4, 70)).Render(
			tutorialText(m.tutorial) + "\n\n" + m.styles.Help.Render("enter: got it  s: skip all tutorials"))
		body = lipgloss.JoinVertical(lipgloss.Left, body, overlay)
	}
	return body
}

func (m Model) viewAuth() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("⚖  Math Courtroom"))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render("Defend your friend against the Silly Prosecutor."))
	b.WriteString("\n\n")

	mode := "Log in"
	if m.authMode == AuthSignUp {
		mode = "Sign up"
	}
	b.WriteString(m.styles.Header.Render(mode))
	b.WriteString("\n\n")
	b.WriteString("  " + m.username.View() + "\n")
	b.WriteString("  " + m.password.View() + "\n")

	if m.authErr != "" {
		b.WriteString("\n  " + m.styles.Error.Render(m.authErr) + "\n")
	}
	b.WriteString("\n" + m.styles.Help.Render("enter: submit  tab: switch field  ctrl+s: toggle login/signup  ctrl+c: quit"))
	return b.String()
}

func (m Model) viewGenerating() string {
	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s\n\n%s",
			m.styles.Title.Render("⚖  Math Courtroom"),
			m.styles.Error.Render("Could not prepare a case: "+m.err.Error()),
			m.styles.Help.Render("enter: try again  ctrl+c: quit"))
	}
	return fmt.Sprintf("%s\n\n %s %s",
		m.styles.Title.Render("⚖  Math Courtroom"),
		m.spinner.View(),
		m.styles.Status.Render(m.status))
}

// briefingMarkdown lays the case out as a markdown document for glamour.
func briefingMarkdown(c *game.CaseData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Title)
	fmt.Fprintf(&b, "*%s*\n\n", c.ClassLevel)
	fmt.Fprintf(&b, "**Your client:** %s. %s\n\n", c.ClientName, c.ClientDescription)
	fmt.Fprintf(&b, "**The accusation:** %s\n\n", c.Accusation)
	b.WriteString("## Evidence\n\n")
	for _, ev := range c.Evidence {
		fmt.Fprintf(&b, "- **%s** (%s): %s\n", ev.Title, ev.Type, ev.Description)
	}
	b.WriteString("\n## Key Concepts\n\n")
	for _, k := range c.KeyConcepts {
		fmt.Fprintf(&b, "- %s\n", k)
	}
	fmt.Fprintf(&b, "\nCase duration: **%s** on the courtroom clock.\n", formatClock(int(c.CaseDurationMinutes*60)))
	return b.String()
}

func (m Model) viewBriefing() string {
	md := briefingMarkdown(m.session.Case)
	rendered := md
	if m.renderer != nil {
		if out, err := m.renderer.Render(md); err == nil {
			rendered = out
		}
	}

	if m.modal == ModalEvidence {
		rendered = m.renderEvidenceModal()
	}

	return fmt.Sprintf("%s\n%s\n%s",
		m.headerLine(),
		rendered,
		m.styles.Help.Render("enter: enter the courtroom  ctrl+e: evidence  q: quit"))
}

func (m Model) viewCourtroom() string {
	center := m.viewport.View()
	switch m.modal {
	case ModalEvidence:
		center = m.renderEvidenceModal()
	case ModalProofBoard:
		center = m.renderProofBoard()
	case ModalLearnings:
		center = m.renderLearnings()
	}

	var input string
	phase := m.session.Phase
	if !m.loading && (phase == trial.PhasePlayerAction || phase == trial.PhaseObjectionInput) {
		input = m.styles.InputBox.Render(m.input.View())
	}

	var status string
	if m.loading {
		status = fmt.Sprintf(" %s %s", m.spinner.View(), m.styles.Status.Render(m.status))
	}

	help := "enter: present  ctrl+o: objection  ctrl+h: ask co-counsel  ctrl+e: evidence  ctrl+b: proof board  ctrl+l: learnings"
	if phase == trial.PhaseObjectionInput {
		help = "enter: object  esc: withdraw objection"
	}
	if m.modal != ModalNone {
		help = "esc: close  left/right: browse"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerLine(),
		center,
		status,
		input,
		m.styles.Help.Render(help),
	)
}

func (m Model) viewVerdict() string {
	s := m.session
	heading := "CASE LOST"
	if s.PlayerWon {
		heading = "CASE WON!"
	}

	var b strings.Builder
	b.WriteString(heading + "\n\n")
	b.WriteString(s.FinalVerdict)
	if len(m.newLearnings) > 0 {
		b.WriteString("\n\nNew learnings:")
		for _, l := range m.newLearnings {
			b.WriteString("\n  • " + l.Text)
		}
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s",
		m.headerLine(),
		m.styles.Verdict.Width(min(m.width-4, 76)).Render(b.String()),
		m.styles.Help.Render("enter: next case  l: my learnings  q: quit"))
}

func (m Model) headerLine() string {
	left := m.styles.Title.Render("⚖ mathcourt")
	parts := []string{left}
	if m.user != "" {
		parts = append(parts, m.styles.Subtitle.Render(m.user))
	}
	if m.session != nil {
		parts = append(parts, m.styles.Subtitle.Render(fmt.Sprintf("level %d", m.session.Level)))
		clock := m.styles.Timer
		if m.session.TimeLeft <= 30 {
			clock = m.styles.TimerLow
		}
		parts = append(parts, clock.Render("⏱ "+formatClock(m.session.TimeLeft)))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderEvidenceModal() string {
	evidence := m.session.Case.Evidence
	if len(evidence) == 0 {
		return m.styles.Modal.Render("No evidence on file.")
	}
	idx := m.evidenceIndex
	if idx >= len(evidence) {
		idx = len(evidence) - 1
	}
	ev := evidence[idx]

	var b strings.Builder
	fmt.Fprintf(&b, "Exhibit %d of %d: %s\n", idx+1, len(evidence), ev.Title)
	fmt.Fprintf(&b, "Type: %s\n\n", ev.Type)
	b.WriteString(ev.Description)
	// SVG markup is meaningless in a terminal; show the descriptive text
	// only for visual exhibits.
	if ev.Type != game.EvidenceGraph && ev.Type != game.EvidenceImage {
		b.WriteString("\n\n" + ev.Content)
	}
	return m.styles.Modal.Width(min(m.width-6, 72)).Render(b.String())
}

func (m Model) renderProofBoard() string {
	c := m.session.Case
	var b strings.Builder
	b.WriteString("PROOF BOARD\n\n")
	fmt.Fprintf(&b, "Accusation: %s\n\n", c.Accusation)
	b.WriteString("Key concepts to argue:\n")
	for _, k := range c.KeyConcepts {
		b.WriteString("  • " + k + "\n")
	}
	b.WriteString("\nExhibits:\n")
	for _, ev := range c.Evidence {
		fmt.Fprintf(&b, "  • %s (%s)\n", ev.Title, ev.Type)
	}
	return m.styles.Modal.Width(min(m.width-6, 72)).Render(b.String())
}

func (m Model) renderLearnings() string {
	lines := loadLearnings(m.tracker)
	var b strings.Builder
	b.WriteString("MY LEARNINGS\n\n")
	if len(lines) == 0 {
		b.WriteString("Nothing yet. Win a case to collect learnings!")
	}
	for _, l := range lines {
		b.WriteString("  • " + l + "\n")
	}
	return m.styles.Modal.Width(min(m.width-6, 72)).Render(b.String())
}
