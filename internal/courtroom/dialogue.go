package courtroom

import (
	"context"

	"mathcourt/internal/game"
	"mathcourt/internal/llm"
	"mathcourt/internal/logging"
)

// Filler lines spoken when the model is unreachable. The trial must keep
// moving, so cast members never surface an error to the player.
const (
	prosecutorFiller = "The Prosecutor seems to be reviewing their notes... (API Error)"
	coCounselFiller  = "Your Co-Counsel is currently pondering the complexities of the case... (API Error)"
	judgeFiller      = "The Judge is currently in chambers reviewing the precedents... (API Error)"
)

// Director runs the courtroom cast for one case. The prosecutor and
// co-counsel hold chat history across turns; the Judge is stateless and
// gets full context on every ruling. Construct a fresh Director per case.
type Director struct {
	client llm.Client
	c      *game.CaseData

	prosecutorSystem  string
	prosecutorHistory []llm.ChatTurn
	coCounselSystem   string
	coCounselHistory  []llm.ChatTurn
}

// NewDirector returns a director for one case.
func NewDirector(client llm.Client, c *game.CaseData) *Director {
	return &Director{client: client, c: c}
}

// Reset drops all chat history, e.g. when a case is abandoned and retried.
func (d *Director) Reset() {
	d.prosecutorSystem = ""
	d.prosecutorHistory = nil
	d.coCounselSystem = ""
	d.coCounselHistory = nil
	logging.Dialogue("Chat history reset for case %s", d.c.ID)
}

// ProsecutorStatement returns the prosecutor's next argument. The chat is
// seeded lazily on the first call so the system instruction reflects the
// situation at that point.
func (d *Director) ProsecutorStatement(ctx context.Context, turnDescription, lastDialogue string) string {
	if d.prosecutorSystem == "" {
		d.prosecutorSystem = prosecutorSystemPrompt(d.c, turnDescription, lastDialogue)
	}

	prompt := prosecutorTurnPrompt(d.c, turnDescription, lastDialogue)
	d.prosecutorHistory = append(d.prosecutorHistory, llm.ChatTurn{Role: "user", Text: prompt})

	reply, err := d.client.CompleteChat(ctx, d.prosecutorSystem, d.prosecutorHistory)
	if err != nil {
		logging.DialogueWarn("Prosecutor turn failed for case %s: %v", d.c.ID, err)
		// Drop the unanswered turn so history stays user/model alternating.
		d.prosecutorHistory = d.prosecutorHistory[:len(d.prosecutorHistory)-1]
		return prosecutorFiller
	}
	d.prosecutorHistory = append(d.prosecutorHistory, llm.ChatTurn{Role: "model", Text: reply})
	logging.DialogueDebug("Prosecutor turn %d for case %s (%d chars)", len(d.prosecutorHistory)/2, d.c.ID, len(reply))
	return reply
}

// CoCounselAdvice returns the co-counsel's next tip. playerQuery is set when
// the player explicitly asked for help.
func (d *Director) CoCounselAdvice(ctx context.Context, situation, recentDialogue, playerQuery string) string {
	if d.coCounselSystem == "" {
		d.coCounselSystem = coCounselSystemPrompt(d.c, situation, playerQuery)
	}

	prompt := coCounselTurnPrompt(d.c, situation, recentDialogue, playerQuery)
	d.coCounselHistory = append(d.coCounselHistory, llm.ChatTurn{Role: "user", Text: prompt})

	reply, err := d.client.CompleteChat(ctx, d.coCounselSystem, d.coCounselHistory)
	if err != nil {
		logging.DialogueWarn("Co-counsel turn failed for case %s: %v", d.c.ID, err)
		d.coCounselHistory = d.coCounselHistory[:len(d.coCounselHistory)-1]
		return coCounselFiller
	}
	d.coCounselHistory = append(d.coCounselHistory, llm.ChatTurn{Role: "model", Text: reply})
	logging.DialogueDebug("Co-counsel turn %d for case %s (%d chars)", len(d.coCounselHistory)/2, d.c.ID, len(reply))
	return reply
}

// JudgeRuling asks the Judge to assess a player argument or objection. Each
// ruling is an independent call; the Judge keeps no memory between turns.
func (d *Director) JudgeRuling(ctx context.Context, playerArgument, situation string, level int) string {
	system := judgeSystemPrompt(d.c, playerArgument, situation, level)
	prompt := judgeTurnPrompt(d.c, playerArgument, situation, level)

	reply, err := d.client.CompleteWithSystem(ctx, system, prompt)
	if err != nil {
		logging.DialogueWarn("Judge ruling failed for case %s: %v", d.c.ID, err)
		return judgeFiller
	}
	logging.DialogueDebug("Judge ruled on case %s (%d chars)", d.c.ID, len(reply))
	return reply
}
