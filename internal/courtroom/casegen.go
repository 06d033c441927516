// Package courtroom generates trial cases and drives the courtroom cast.
// Case generation and the Judge are single-shot model calls; the prosecutor
// and co-counsel are persistent chats that live for the duration of a case.
package courtroom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mathcourt/internal/game"
	"mathcourt/internal/llm"
	"mathcourt/internal/logging"
)

// ErrCaseGeneration is returned when the model produced output that could
// not be turned into a playable case.
var ErrCaseGeneration = errors.New("failed to generate case")

// TopicSource hands out the next curriculum topic for a tier. The progress
// tracker implements this with a per-user round-robin cursor.
type TopicSource interface {
	NextTopic(tier game.Tier) (string, error)
}

// Generator produces new cases from the model.
type Generator struct {
	client     llm.Client
	curriculum game.Curriculum
	topics     TopicSource
}

// NewGenerator returns a case generator.
func NewGenerator(client llm.Client, curriculum game.Curriculum, topics TopicSource) *Generator {
	return &Generator{client: client, curriculum: curriculum, topics: topics}
}

const evidenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Generate creates a case for the given player level.
func (g *Generator) Generate(ctx context.Context, level int) (*game.CaseData, error) {
	timer := logging.StartTimer(logging.CategoryCase, "Generate")
	defer timer.Stop()

	tier := g.curriculum.TierForLevel(level)
	topic, err := g.topics.NextTopic(tier)
	if err != nil {
		return nil, fmt.Errorf("failed to pick topic: %w", err)
	}
	difficulty := game.Difficulty(level)
	duration := g.curriculum.DurationMinutes(level)

	suffix := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), uuid.NewString()[:5])
	caseID := "CASE_DYNAMIC_" + suffix

	logging.Case("Generating case: level=%d class=%s topic=%q difficulty=%d duration=%.2fm",
		level, tier.Label(), topic, difficulty, duration)

	system := caseGenSystemPrompt(level, tier, topic, difficulty, duration, caseID)
	user := caseGenUserPrompt(level, tier, topic, difficulty)

	raw, err := g.client.CompleteWithSchema(ctx, system, user, caseSchema())
	if err != nil {
		logging.CaseError("Case generation request failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrCaseGeneration, err)
	}

	c, err := parseCase(raw)
	if err != nil {
		logging.CaseError("Case generation produced unparseable output (%d bytes): %v", len(raw), err)
		return nil, fmt.Errorf("%w: %v", ErrCaseGeneration, err)
	}
	if len(c.Evidence) == 0 {
		logging.CaseError("Case generation produced no evidence")
		return nil, fmt.Errorf("%w: case has no evidence", ErrCaseGeneration)
	}

	// The model's ids are not trusted; reassign locally so evidence ids are
	// unique and tied to the case.
	c.ID = caseID
	for i := range c.Evidence {
		c.Evidence[i].ID = fmt.Sprintf("EVIDENCE_%c_%s", evidenceAlphabet[i%len(evidenceAlphabet)], suffix)
	}

	for i := range c.Evidence {
		ev := &c.Evidence[i]
		if ev.Type != game.EvidenceGraph && ev.Type != game.EvidenceImage {
			continue
		}
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(ev.Content)), "<svg") {
			continue
		}
		logging.Get(logging.CategoryCase).Warn("Evidence %q of type %s has non-SVG content; substituting placeholder", ev.Title, ev.Type)
		ev.Content = placeholderSVG(topic, tier)
	}

	if c.ClassLevel == "" || !strings.HasPrefix(c.ClassLevel, tier.Label()) {
		c.ClassLevel = fmt.Sprintf("%s - %s: %s", tier.Label(), topic, c.Title)
	}
	if c.CaseDurationMinutes <= 0 {
		c.CaseDurationMinutes = duration
	}

	logging.Case("Generated case %s: %q evidence=%d flawed=%t", c.ID, c.Title, len(c.Evidence), c.FlawedEvidence() != nil)
	return c, nil
}

// parseCase strips an optional markdown fence and unmarshals the case.
func parseCase(raw string) (*game.CaseData, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	var c game.CaseData
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// placeholderSVG replaces graph or image evidence whose content was not a
// valid inline SVG. Styled for the dark theme like generated visuals.
func placeholderSVG(topic string, tier game.Tier) string {
	return fmt.Sprintf(`<svg viewBox="0 0 100 100" xmlns="http://www.w3.org/2000/svg"><title>Error: Visual Missing</title><desc>Visual could not be loaded or was not valid SVG. Expected math-related SVG for topic: %s from %s. Styled for dark theme.</desc><rect x="5" y="5" width="90" height="90" fill="rgba(248, 113, 113, 0.1)" stroke="#F87171" stroke-width="1.5"/><text x="50" y="45" dominant-baseline="middle" text-anchor="middle" font-family="sans-serif" font-size="10" fill="#FCA5A5">Visual Error!</text><text x="50" y="60" dominant-baseline="middle" text-anchor="middle" font-family="sans-serif" font-size="8" fill="#FCA5A5">SVG for %s missing.</text></svg>`,
		topic, tier.Label(), topic)
}
