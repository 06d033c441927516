package court

import (
	"mathcourt/internal/game"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles for the courtroom views.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Header   lipgloss.Style
	Timer    lipgloss.Style
	TimerLow lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style

	Judge      lipgloss.Style
	Prosecutor lipgloss.Style
	CoCounsel  lipgloss.Style
	Player     lipgloss.Style
	Narrator   lipgloss.Style

	InputBox lipgloss.Style
	Modal    lipgloss.Style
	Tutorial lipgloss.Style
	Verdict  lipgloss.Style
	Flawed   lipgloss.Style
}

// DefaultStyles returns the dark courtroom theme.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		Subtitle: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Header:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1),
		Timer:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
		TimerLow: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		Status:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		Judge:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		Prosecutor: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		CoCounsel:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
		Player:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
		Narrator:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),

		InputBox: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		Modal:    lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("220")).Padding(1, 2),
		Tutorial: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("114")).Padding(0, 1).Foreground(lipgloss.Color("252")),
		Verdict:  lipgloss.NewStyle().Bold(true).Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("220")).Padding(1, 3),
		Flawed:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}

// SpeakerStyle returns the style for a courtroom role's name.
func (s Styles) SpeakerStyle(r game.Role) lipgloss.Style {
	switch r {
	case game.RoleJudge:
		return s.Judge
	case game.RoleProsecutor:
		return s.Prosecutor
	case game.RoleCoCounsel:
		return s.CoCounsel
	case game.RolePlayer:
		return s.Player
	default:
		return s.Narrator
	}
}
