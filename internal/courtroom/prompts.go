package courtroom

import (
	"fmt"
	"strings"

	"mathcourt/internal/game"
)

// classPrefix extracts the "Class N" prefix from a classLevel string like
// "Class 9 - Triangles: ...".
func classPrefix(classLevel string) string {
	if idx := strings.Index(classLevel, " - "); idx > 0 {
		return classLevel[:idx]
	}
	return classLevel
}

// caseGenSystemPrompt builds the system instruction for case generation.
func caseGenSystemPrompt(level int, tier game.Tier, topic string, difficulty int, durationMinutes float64, caseID string) string {
	classFocus := tier.Label()
	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert curriculum designer for mathematics, specializing in Indian CBSE/NCERT syllabus for Classes 8, 9, and 10.
Your task is to generate a complete JSON object for a math courtroom case.
The player's current progression level is %d.
The case MUST be centered around a specific, demonstrable math concept from **%s**, focusing on the topic: %q.
The complexity of the problem and its presentation should be appropriate for player level %d operating within the %s curriculum.
The perceived difficulty (1-5 scale) for this case should be around %d.
NO general logic puzzles, brain teasers, or non-mathematical riddles. The core of the problem must be mathematical reasoning, calculation, application of formulas, or geometric proof.

Mathematical Topic: %q (from %s)

`, level, classFocus, topic, level, classFocus, difficulty, topic, classFocus)

	fmt.Fprintf(&b, `Field guidance:
- "id": use %q.
- "title": engaging, math-related title, e.g. 'The Case of the Miscalculated Triangle Area'.
- "classLevel": clearly state the class and topic, e.g. '%s - %s: Problem involving [specific aspect]'.
- "clientName": a conceptual client, e.g. 'The Accused Angle', 'Equation X', 'The Misunderstood Mean'.
- "clientDescription": one-sentence description of the client concept, tying it to the math problem.
- "accusation": a specific mathematical error related to %q.
- "initialProsecutionArgument": short, confident opening argument highlighting the alleged flaw, 1-2 sentences.
- "initialCoCounselHint": short, guiding hint pointing towards the mathematical principle to examine.
- "evidence": for 'graph' or 'image' types, "content" MUST be a valid, self-contained SVG designed for a dark UI background: light-colored lines, shapes, and text (shades of #E2E8F0, #94A3B8, or an accent like #38BDF8 or #A78BFA) on a transparent background, with <title> and <desc> for accessibility and a viewBox around '0 0 100 100'. For 'data_table', simple JSON of relevant data. For 'document' or 'statement', text containing mathematical steps, problem statements, or assertions.
- "flawDescription": if isFlawed is true, a clear explanation of the specific MATHEMATICAL flaw, e.g. 'The sum of angles in the triangle is shown as 190 degrees, but it must be 180 degrees.'
- "keyConcepts": the mathematical concepts the case exercises.
- "guiltyVerdictIfPlayerFails" and "innocentVerdictIfPlayerSucceeds": verdicts phrased around the mathematical outcome.
- "isClientActuallyGuilty": false.
- "caseDurationMinutes": %g.

Language must be clear, engaging, and age-appropriate for students (typically 12-16 years old) studying %s mathematics. Be precise with mathematical terms.
One piece of evidence MUST contain the primary mathematical flaw. Other evidence can be supportive, provide context, or be neutral.
Ensure 'flawDescription' clearly explains the mathematical error in relation to %q.
Generate a case from %s curriculum, topic: %q. Player's overall level for context: %d. Target perceived difficulty: %d/5.`,
		caseID, classFocus, topic, topic, durationMinutes, classFocus, topic, classFocus, topic, level, difficulty)

	return b.String()
}

// caseGenUserPrompt is the short user turn that accompanies the system
// instruction above.
func caseGenUserPrompt(level int, tier game.Tier, topic string, difficulty int) string {
	return fmt.Sprintf(`Generate a math courtroom case from %s curriculum for students. Player Level: %d. Topic: %q. Target difficulty: %d/5. Adhere strictly to the JSON structure, DARK THEME SVG (light elements on transparent background), and MATH FOCUS requirements in system instructions.`,
		tier.Label(), level, topic, difficulty)
}

// caseSchema is the response schema enforced for case generation.
func caseSchema() map[string]interface{} {
	str := func() map[string]interface{} { return map[string]interface{}{"type": "string"} }
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"id":                         str(),
			"title":                      str(),
			"classLevel":                 str(),
			"clientName":                 str(),
			"clientDescription":          str(),
			"accusation":                 str(),
			"initialProsecutionArgument": str(),
			"initialCoCounselHint":       str(),
			"evidence": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"id":          str(),
						"title":       str(),
						"type":        map[string]interface{}{"type": "string", "enum": []string{"document", "graph", "data_table", "statement", "image"}},
						"description": str(),
						"content":     str(),
						"isFlawed":    map[string]interface{}{"type": "boolean"},
						"flawDescription": map[string]interface{}{
							"type": "string",
						},
					},
					"required": []string{"id", "title", "type", "description", "content", "isFlawed"},
				},
			},
			"keyConcepts": map[string]interface{}{
				"type":  "array",
				"items": str(),
			},
			"guiltyVerdictIfPlayerFails":      str(),
			"innocentVerdictIfPlayerSucceeds": str(),
			"isClientActuallyGuilty":          map[string]interface{}{"type": "boolean"},
			"caseDurationMinutes":             map[string]interface{}{"type": "number"},
		},
		"required": []string{
			"id", "title", "classLevel", "clientName", "clientDescription",
			"accusation", "initialProsecutionArgument", "initialCoCounselHint",
			"evidence", "keyConcepts", "guiltyVerdictIfPlayerFails",
			"innocentVerdictIfPlayerSucceeds", "isClientActuallyGuilty",
			"caseDurationMinutes",
		},
	}
}

// prosecutorSystemPrompt builds the prosecutor's chat system instruction.
func prosecutorSystemPrompt(c *game.CaseData, turnDescription, lastDialogue string) string {
	return fmt.Sprintf(`You are a Prosecutor in a courtroom game for students (studying %s mathematics).
The case is about a MATH problem: %s (related to %s) is accused of %q.
You should speak confidently and focus on the alleged mathematical error.
Use clear, concise language suitable for 12-16 year olds.
Example: "The defense's calculation for the area is fundamentally flawed, as they neglected to use the correct formula for a trapezium." or "The presented graph incorrectly depicts the solution set for the linear inequality."
You are the Prosecutor. Never mention being an AI.
The player (Defense Counsel) is trying to disprove your mathematical assertions.
The current situation is: %s.
The last thing someone said was (last 100 chars): %q.
If the current situation indicates the Defense Counsel's previous argument was dismissed by the Judge as irrelevant, a distraction, or mathematically flawed, you should mock their attempt or re-emphasize your original point strongly, highlighting how their argument failed to address the core mathematical issue of %q.
Now, state your next argument about the MATH problem. Keep it to 1-2 focused sentences.`,
		classPrefix(c.ClassLevel), c.ClientName, c.ClassLevel, c.Accusation,
		turnDescription, tail(lastDialogue, 100), c.Accusation)
}

// prosecutorTurnPrompt is the per-turn user message for the prosecutor chat.
func prosecutorTurnPrompt(c *game.CaseData, turnDescription, lastDialogue string) string {
	return fmt.Sprintf(`Prosecutor,
The current situation is: %s.
The last thing someone said: %q.
What's your next concise argument to highlight the mathematical error by %s? Focus on the core math problem for a student audience (studying %s). If the player just made an irrelevant or flawed argument, react to that strongly. 1-2 sentences.`,
		turnDescription, tail(lastDialogue, 100), c.ClientName, classPrefix(c.ClassLevel))
}

// coCounselSystemPrompt builds the co-counsel's chat system instruction.
func coCounselSystemPrompt(c *game.CaseData, situation, playerQuery string) string {
	concepts := strings.Join(c.KeyConcepts, ", ")
	queryLine := ""
	if playerQuery != "" {
		queryLine = fmt.Sprintf("Defense Counsel just asked you: %q.\n", playerQuery)
	}
	return fmt.Sprintf(`You are a helpful Co-Counsel for the player (Defense Counsel) in a courtroom game for students (studying %s mathematics).
You are trying to help the player prove that %s (related to %s) is innocent of the MATH accusation: %q.
The case revolves around these mathematical concepts: %s.
You are supportive, insightful, and offer strategic advice related to the MATH.
Use clear language. Example: "Counsel, let's double-check the application of the distributive property in that algebraic expression."
You are the Co-Counsel. Never mention being an AI.
The current situation in court is: %s.
%sIf the current situation indicates the player's last argument was deemed irrelevant or mathematically flawed by the Judge and the Prosecutor has capitalized on it, your advice should strongly guide them back to making a *relevant and correct* mathematical point. Emphasize focusing on the key concepts: %s and the specific accusation: %q. Help them identify potential errors or areas to re-examine.
Now, give your concise, helpful MATH advice. 1-2 focused sentences.`,
		classPrefix(c.ClassLevel), c.ClientName, c.ClassLevel, c.Accusation,
		concepts, situation, queryLine, concepts, c.Accusation)
}

// coCounselTurnPrompt is the per-turn user message for the co-counsel chat.
func coCounselTurnPrompt(c *game.CaseData, situation, recentDialogue, playerQuery string) string {
	queryLine := ""
	if playerQuery != "" {
		queryLine = fmt.Sprintf("Defense Counsel asked: %q.\n", playerQuery)
	}
	return fmt.Sprintf(`Co-Counsel,
The current situation is: %s.
The last few things said were: %q.
%sWhat concise, helpful MATH tip can you offer the Defense Counsel for this case involving %s for students studying %s? If the player just made an irrelevant or mathematically flawed argument, help them get back on track and find the correct reasoning! 1-2 sentences.`,
		situation, tail(recentDialogue, 200), queryLine,
		strings.Join(c.KeyConcepts, ", "), classPrefix(c.ClassLevel))
}

// judgeSystemPrompt builds the Judge's single-shot system instruction. The
// Judge holds no chat state; every ruling gets the full context inline.
func judgeSystemPrompt(c *game.CaseData, playerArgument, context string, level int) string {
	concepts := strings.Join(c.KeyConcepts, ", ")

	// Experienced players are pressed for rigor; beginners get direct
	// affirmation so they are not discouraged.
	explanationExpectation := `If the Counsel's argument is mathematically correct AND RELEVANT, affirm it clearly. For less experienced players, direct affirmation is good. If it's incorrect or irrelevant, this will be handled by your primary evaluation of validity and relevance.`
	if level > 5 {
		explanationExpectation = `If the Defense Counsel's argument is mathematically sound AND RELEVANT to the case, but lacks thorough explanation (e.g., doesn't state the theorem/formula or show clear steps), gently prompt for more detail. Example: 'That's a valid point on [relevant math concept], Counsel. Could you elaborate on the specific mathematical steps or theorem that supports your assertion in relation to this case?'`
	}

	return fmt.Sprintf(`You are The Judge in a courtroom game for students (studying %s mathematics).
You are impartial, analytical, and speak clearly.
The case is about a MATH problem: %s, accused of: %q. The case is based on %s involving %s.
The current situation is: %s.
Defense Counsel (the player, current game level %d) just stated: %q.

Your role:
1. Evaluate the mathematical validity AND relevance of the Defense Counsel's argument to the specific accusation and key concepts (%s).
   - If the argument is mathematically sound AND directly helps disprove the accusation or clarify the key concepts in a relevant way, acknowledge it positively (e.g., using phrases like "sound mathematical argument", "proves the point", "correctly identifies"). This indicates a winning argument.
   - If the argument is mathematically sound BUT irrelevant to the case's core mathematical problem, you MUST state that it is irrelevant and does NOT help the case. Be specific if possible why it's irrelevant. Use phrases like "irrelevant", "not relevant".
   - If the argument is mathematically incorrect OR makes no mathematical sense, point out the flaw. Use phrases like "incorrect", "flaw in reasoning", "mathematically unsound". This indicates a flawed argument.
   - If the argument is off-topic and not mathematical, state that it is not relevant to the proceedings.
2. %s
3. Provide a concise response (1-2 sentences).

Maintain a respectful, judicial tone. The goal is to encourage rigorous mathematical thinking directly related to the case.
You are The Judge. Ensure your response clearly signals whether the argument is helpful (winning), irrelevant, or flawed. If it's irrelevant or flawed, make that clear so the player understands they need to try a different approach to solve the case.
If the context mentions an "objection", rule on the objection directly (e.g. "Objection sustained/overruled because..."). Otherwise, assess the argument.`,
		classPrefix(c.ClassLevel), c.ClientName, c.Accusation, c.ClassLevel, concepts,
		context, level, playerArgument, concepts, explanationExpectation)
}

// judgeTurnPrompt is the user message carrying the argument to be ruled on.
func judgeTurnPrompt(c *game.CaseData, playerArgument, context string, level int) string {
	return fmt.Sprintf(`Judge, Defense Counsel (player game level %d) presented this argument/objection regarding the math case (%s - %s): %q. The case context: %s. Please provide your assessment in one or two clear sentences, focusing on mathematical validity AND relevance to the case. Indicate if the argument is winning, irrelevant, or flawed.`,
		level, c.ClassLevel, strings.Join(c.KeyConcepts, ", "), playerArgument, context)
}

// tail returns the last n bytes of s.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
