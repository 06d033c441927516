// Package court is the interactive courtroom interface: login, case
// briefing, the live trial loop, and the verdict screen.
package court

import (
	"fmt"
	"time"

	"mathcourt/internal/account"
	"mathcourt/internal/config"
	"mathcourt/internal/embedding"
	"mathcourt/internal/game"
	"mathcourt/internal/llm"
	"mathcourt/internal/logging"
	"mathcourt/internal/progress"
	"mathcourt/internal/store"
	"mathcourt/internal/verdict"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// New builds the courtroom model over an opened store.
func New(cfg *config.Config, s *store.Store) (Model, error) {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	input := textarea.New()
	input.Placeholder = "Present your argument to the Judge..."
	input.CharLimit = 2000
	input.SetHeight(3)
	input.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	client := llm.NewGeminiClientWithConfig(llm.GeminiConfig{
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		Timeout:         cfg.GetLLMTimeout(),
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
	})

	// The embedding engine is optional; learnings search falls back to
	// substring matching without it.
	var engine embedding.Engine
	if cfg.LLM.APIKey != "" {
		if e, err := embedding.NewGenAIEngine(cfg.LLM.APIKey, cfg.LLM.EmbeddingModel); err != nil {
			logging.Embedding("Embedding engine unavailable: %v", err)
		} else {
			engine = e
		}
	}

	m := Model{
		username: username,
		password: password,
		input:    input,
		spinner:  sp,
		styles:   DefaultStyles(),

		screen: ScreenAuth,

		cfg:      cfg,
		store:    s,
		accounts: account.NewService(s),
		client:   client,
		curriculum: game.Curriculum{
			Tier1MaxLevel:             cfg.Game.Tier1MaxLevel,
			Tier2MaxLevel:             cfg.Game.Tier2MaxLevel,
			InitialDurationMinutes:    cfg.Game.InitialDurationMinutes,
			DurationDecrementPerLevel: cfg.Game.DurationDecrementPerLevel,
			MinDurationMinutes:        cfg.Game.MinDurationMinutes,
		},
		classifier: verdict.NewKeywordClassifier(),
		search:     progress.NewSearch(s, engine),
	}

	// Prefill the remembered user so a returning player only types the
	// password.
	if last, found, err := m.accounts.LastUser(); err == nil && found {
		m.username.SetValue(last)
		m.username.Blur()
		m.password.Focus()
		m.authFocus = 1
	}

	return m, nil
}

// Init starts the cursor blink and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Run launches the interactive courtroom and blocks until the player quits.
func Run(cfg *config.Config, s *store.Store) error {
	m, err := New(cfg, s)
	if err != nil {
		return fmt.Errorf("failed to initialize courtroom: %w", err)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("courtroom exited with error: %w", err)
	}
	return nil
}

// formatClock renders remaining seconds as m:ss.
func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// narrationDelay is the pause between queued dialogue lines.
func (m Model) narrationDelay() time.Duration {
	return m.cfg.GetNarrationDelay()
}
