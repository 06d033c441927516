package court

import "mathcourt/internal/game"

// tutorialCopy is the one-time onboarding text per step. Steps without an
// entry fall back to a generic hint.
var tutorialCopy = map[game.TutorialStep]string{
	game.TutorialBriefingIntro:     "Welcome, counselor! Read the case briefing carefully. Your friend is accused of a math mistake, and only you can clear their name.",
	game.TutorialBriefingProceed:   "When you have read everything, press Enter to head into the courtroom.",
	game.TutorialCourtroomWelcome:  "This is the courtroom. The Judge listens, the Silly Prosecutor attacks, and your Super Helper whispers advice.",
	game.TutorialCharacters:        "Watch the speaker names: the Judge rules, the Prosecutor argues against you, and your Co-Counsel is on your side.",
	game.TutorialDialogueBox:       "Everything said in court appears in the transcript. Scroll with PgUp and PgDn if it gets long.",
	game.TutorialTimerIntro:        "The clock in the header only runs while it is your turn to act. When it hits zero, the case is lost.",
	game.TutorialPlayerActions:     "Your turn! Type a mathematical argument and press Enter to present it. Ctrl+E shows evidence, Ctrl+B the proof board, Ctrl+H asks your Co-Counsel, Ctrl+O raises an objection.",
	game.TutorialToolEvidence:      "Evidence is the key to the case. Exactly one exhibit hides the mathematical flaw.",
	game.TutorialToolProofBoard:    "The proof board summarizes the accusation and the key concepts in play.",
	game.TutorialToolObjection:     "A sharp objection can turn the whole trial. Use it when the Prosecutor's math is wrong.",
	game.TutorialObjectionInput:    "State the grounds for your objection, then press Enter. The Judge will sustain it, overrule it, or end the case on the spot.",
	game.TutorialEvidenceModal:     "Use the left and right arrows to flip through exhibits. Look for the one whose math does not add up.",
	game.TutorialProofBoardModal:   "The proof board never changes during a trial. Come back here whenever you lose the thread.",
	game.TutorialHeaderMyLearnings: "You earned your first learnings! Press Ctrl+L any time to review everything you have picked up.",
}

// tutorialText returns the overlay copy for a step.
func tutorialText(step game.TutorialStep) string {
	if text, ok := tutorialCopy[step]; ok {
		return text
	}
	return "Press Enter to continue."
}
