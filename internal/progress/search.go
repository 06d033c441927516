package progress

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"mathcourt/internal/embedding"
	"mathcourt/internal/game"
	"mathcourt/internal/logging"
	"mathcourt/internal/store"
)

// Match is one learnings search hit.
type Match struct {
	Entry game.LearningEntry
	Score float64
}

// Search ranks a user's learnings against a free-text query. The engine may
// be nil (no API key); then a plain substring match is used instead of
// embeddings.
type Search struct {
	store  *store.Store
	engine embedding.Engine
}

// NewSearch returns a learnings search over the store.
func NewSearch(s *store.Store, engine embedding.Engine) *Search {
	return &Search{store: s, engine: engine}
}

// IndexLearnings embeds new learnings and stores their vectors. Failures
// are logged and skipped; search degrades gracefully for missing vectors.
func (s *Search) IndexLearnings(ctx context.Context, username string, entries []game.LearningEntry) {
	if s.engine == nil {
		return
	}
	for _, entry := range entries {
		vec, err := s.engine.Embed(ctx, entry.Text)
		if err != nil {
			logging.Embedding("Failed to embed learning (level %d): %v", entry.Level, err)
			continue
		}
		err = s.store.SaveLearningVector(store.LearningVector{
			Username:  username,
			Level:     entry.Level,
			Text:      entry.Text,
			Embedding: toFloat64(vec),
		})
		if err != nil {
			logging.Embedding("Failed to store learning vector: %v", err)
		}
	}
}

// Query returns the user's learnings ranked by relevance to the query.
func (s *Search) Query(ctx context.Context, username string, tracker *Tracker, query string, limit int) ([]Match, error) {
	learnings, err := tracker.Learnings()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	if s.engine != nil {
		if matches, ok := s.semanticQuery(ctx, username, learnings, query, limit); ok {
			return matches, nil
		}
	}
	return substringQuery(learnings, query, limit), nil
}

// semanticQuery ranks by cosine similarity over stored vectors. Returns
// ok=false when the query embedding or the vectors are unavailable, so the
// caller can fall back.
func (s *Search) semanticQuery(ctx context.Context, username string, learnings []game.LearningEntry, query string, limit int) ([]Match, bool) {
	queryVec, err := s.engine.Embed(ctx, query)
	if err != nil {
		logging.Embedding("Query embedding failed, falling back to substring search: %v", err)
		return nil, false
	}
	vectors, err := s.store.LearningVectors(username)
	if err != nil || len(vectors) == 0 {
		return nil, false
	}

	q := toFloat64(queryVec)
	byKey := make(map[string][]float64, len(vectors))
	for _, v := range vectors {
		byKey[vectorKey(v.Level, v.Text)] = v.Embedding
	}

	var matches []Match
	for _, entry := range learnings {
		vec, ok := byKey[vectorKey(entry.Level, entry.Text)]
		if !ok {
			continue
		}
		matches = append(matches, Match{Entry: entry, Score: embedding.CosineSimilarity(q, vec)})
	}
	if len(matches) == 0 {
		return nil, false
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, true
}

func substringQuery(learnings []game.LearningEntry, query string, limit int) []Match {
	q := strings.ToLower(query)
	var matches []Match
	for _, entry := range learnings {
		if q == "" || strings.Contains(strings.ToLower(entry.Text), q) {
			matches = append(matches, Match{Entry: entry, Score: 1})
		}
		if len(matches) == limit {
			break
		}
	}
	return matches
}

func vectorKey(level int, text string) string {
	return fmt.Sprintf("%d|%s", level, text)
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
