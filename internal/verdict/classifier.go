// Package verdict interprets the Judge's free-text rulings. The Judge model
// is instructed to use signal phrases; the keyword classifier maps those
// phrases onto a small outcome enum that drives the trial state machine.
package verdict

import (
	"strings"

	"mathcourt/internal/logging"
)

// TurnKind distinguishes what the player submitted for ruling.
type TurnKind int

const (
	// KindProof is a final mathematical argument from the proof board.
	KindProof TurnKind = iota
	// KindObjection is an objection against the prosecutor's last argument.
	KindObjection
)

// Outcome is the classified result of a ruling.
type Outcome int

const (
	// OutcomeWinning ends the trial in the player's favor.
	OutcomeWinning Outcome = iota
	// OutcomeIrrelevant means the argument did not address the case.
	OutcomeIrrelevant
	// OutcomeFlawed means the Judge called out a mathematical error.
	OutcomeFlawed
	// OutcomeUnconvincing means the ruling carried no clear signal either way.
	OutcomeUnconvincing
	// OutcomeSustained means the objection stands but does not win the case.
	OutcomeSustained
	// OutcomeOverruled means the objection was rejected.
	OutcomeOverruled
)

// String returns the outcome name for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeWinning:
		return "winning"
	case OutcomeIrrelevant:
		return "irrelevant"
	case OutcomeFlawed:
		return "flawed"
	case OutcomeUnconvincing:
		return "unconvincing"
	case OutcomeSustained:
		return "sustained"
	case OutcomeOverruled:
		return "overruled"
	default:
		return "unknown"
	}
}

// Classifier turns a ruling into an outcome.
type Classifier interface {
	Classify(ruling string, kind TurnKind) Outcome
}

var winningKeywords = []string{
	"sound mathematical argument",
	"application is correct",
	"that explains it",
	"that is correct",
	"proves the point",
	"valid reasoning",
	"accurately identifies",
	"well argued",
	"convincing",
	"successfully demonstrates",
	"i agree",
	"persuasive",
	"clearly shows",
	"evidence supports this",
	"mathematically sound and relevant",
}

// Objections have one extra winning phrase of their own.
var objectionWinningKeywords = []string{"decisive point"}

var irrelevantKeywords = []string{
	"irrelevant",
	"not relevant",
	"unrelated",
	"doesn't apply",
	"off-topic",
	"doesn't address the point",
	"fails to address",
	"not pertinent",
}

var losingKeywords = []string{
	"not sure",
	"doesn't help",
	"not quite",
	"confusing",
	"doesn't make sense",
	"still not clear",
	"incorrect",
	"flaw",
	"fails to demonstrate",
	"misses the point",
	"mathematically unsound",
	"not convinced",
	"insufficient",
	"error in reasoning",
}

var sustainedKeywords = []string{
	"sustained",
	"you have a point",
	"that's a fair objection",
	"i agree with the defense",
	"point taken",
}

var overruledKeywords = []string{
	"overruled",
	"i don't see the issue",
	"prosecutor may continue",
	"not relevant here",
	"disagree",
}

// KeywordClassifier is the default Classifier.
//
// Precedence is uniform across both turn kinds: a ruling counts as winning
// only when it contains a winning phrase AND no irrelevant, losing, or
// overruling phrase. Negative signals always veto a win, so a hedged ruling
// like "overruled, though that was a sound mathematical argument" does not
// end the trial.
type KeywordClassifier struct{}

// NewKeywordClassifier returns the default classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// Classify maps a Judge ruling onto an outcome.
func (c *KeywordClassifier) Classify(ruling string, kind TurnKind) Outcome {
	s := strings.ToLower(ruling)

	winning := containsAny(s, winningKeywords)
	if kind == KindObjection && !winning {
		winning = containsAny(s, objectionWinningKeywords)
	}
	irrelevant := containsAny(s, irrelevantKeywords)
	losing := containsAny(s, losingKeywords)
	overruled := containsAny(s, overruledKeywords)

	var out Outcome
	switch {
	case winning && !irrelevant && !losing && !overruled:
		out = OutcomeWinning
	case kind == KindObjection:
		// A sustained phrase only counts when the Judge neither overruled
		// nor dismissed the objection as irrelevant.
		if containsAny(s, sustainedKeywords) && !overruled && !irrelevant {
			out = OutcomeSustained
		} else {
			out = OutcomeOverruled
		}
	case irrelevant:
		out = OutcomeIrrelevant
	case losing:
		out = OutcomeFlawed
	default:
		out = OutcomeUnconvincing
	}

	logging.VerdictDebug("Classified %s ruling as %s (%d chars)", kindName(kind), out, len(ruling))
	return out
}

func kindName(k TurnKind) string {
	if k == KindObjection {
		return "objection"
	}
	return "proof"
}
