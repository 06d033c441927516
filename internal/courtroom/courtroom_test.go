package courtroom

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"mathcourt/internal/game"
	"mathcourt/internal/llm"
)

// fakeClient scripts model responses and records what was sent.
type fakeClient struct {
	response  string
	err       error
	lastSys   string
	lastUser  string
	lastTurns []llm.ChatTurn
	calls     int
}

func (f *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	return f.CompleteWithSystem(ctx, "", prompt)
}

func (f *fakeClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.lastSys = systemPrompt
	f.lastUser = userPrompt
	return f.response, f.err
}

func (f *fakeClient) CompleteChat(ctx context.Context, systemPrompt string, turns []llm.ChatTurn) (string, error) {
	f.calls++
	f.lastSys = systemPrompt
	f.lastTurns = append([]llm.ChatTurn(nil), turns...)
	return f.response, f.err
}

func (f *fakeClient) CompleteWithSchema(ctx context.Context, systemPrompt, userPrompt string, schema map[string]interface{}) (string, error) {
	f.calls++
	f.lastSys = systemPrompt
	f.lastUser = userPrompt
	return f.response, f.err
}

// fixedTopics always serves the same topic.
type fixedTopics struct{ topic string }

func (f fixedTopics) NextTopic(tier game.Tier) (string, error) { return f.topic, nil }

func sampleCaseJSON(t *testing.T) string {
	t.Helper()
	c := game.CaseData{
		ID:                          "model-made-up-id",
		Title:                       "The Case of the Crooked Triangle",
		ClassLevel:                  "Class 9 - Lines and Angles: angle sums",
		ClientName:                  "The Accused Angle",
		ClientDescription:           "An angle accused of breaking the 180 degree rule.",
		Accusation:                  "The angle sum of the triangle is claimed to be 190 degrees.",
		InitialProsecutionArgument:  "The diagram plainly shows an impossible triangle!",
		InitialCoCounselHint:        "Check the angle sum property, Counsel.",
		KeyConcepts:                 []string{"Angle sum property of triangles"},
		GuiltyVerdictIfPlayerFails:  "The triangle stands crooked.",
		InnocentVerdictIfPlayerWins: "The triangle is perfectly lawful.",
		CaseDurationMinutes:         4.75,
		Evidence: []game.Evidence{
			{ID: "x", Title: "The Diagram", Type: game.EvidenceGraph, Description: "d", Content: "<svg viewBox=\"0 0 100 100\"></svg>", IsFlawed: true, FlawDescription: "Angles sum to 190."},
			{ID: "y", Title: "The Statement", Type: game.EvidenceStatement, Description: "d", Content: "All was measured carefully."},
		},
	}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal sample case: %v", err)
	}
	return string(data)
}

func TestGenerateCase(t *testing.T) {
	fc := &fakeClient{response: sampleCaseJSON(t)}
	g := NewGenerator(fc, game.DefaultCurriculum(), fixedTopics{topic: "Lines and Angles"})

	c, err := g.Generate(context.Background(), 2)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.HasPrefix(c.ID, "CASE_DYNAMIC_") {
		t.Errorf("case id %q not locally assigned", c.ID)
	}
	if c.ID == "model-made-up-id" {
		t.Error("model-supplied case id was trusted")
	}
	suffix := strings.TrimPrefix(c.ID, "CASE_DYNAMIC_")
	if got, want := c.Evidence[0].ID, "EVIDENCE_A_"+suffix; got != want {
		t.Errorf("evidence[0].ID = %q, want %q", got, want)
	}
	if got, want := c.Evidence[1].ID, "EVIDENCE_B_"+suffix; got != want {
		t.Errorf("evidence[1].ID = %q, want %q", got, want)
	}

	if !strings.Contains(fc.lastSys, "Class 8") {
		t.Error("system prompt missing class focus for level 2")
	}
	if !strings.Contains(fc.lastSys, "Lines and Angles") {
		t.Error("system prompt missing topic")
	}
}

func TestGenerateCaseStripsFence(t *testing.T) {
	fenced := "```json\n" + sampleCaseJSON(t) + "\n```"
	fc := &fakeClient{response: fenced}
	g := NewGenerator(fc, game.DefaultCurriculum(), fixedTopics{topic: "Polynomials"})

	c, err := g.Generate(context.Background(), 12)
	if err != nil {
		t.Fatalf("Generate with fenced JSON failed: %v", err)
	}
	if c.Title != "The Case of the Crooked Triangle" {
		t.Errorf("title = %q", c.Title)
	}
}

func TestGenerateCaseBadJSON(t *testing.T) {
	fc := &fakeClient{response: "the model rambled instead of emitting JSON"}
	g := NewGenerator(fc, game.DefaultCurriculum(), fixedTopics{topic: "Probability"})

	_, err := g.Generate(context.Background(), 25)
	if !errors.Is(err, ErrCaseGeneration) {
		t.Errorf("Generate with bad JSON = %v, want ErrCaseGeneration", err)
	}
}

func TestGenerateCaseReplacesNonSVGGraph(t *testing.T) {
	var c game.CaseData
	if err := json.Unmarshal([]byte(sampleCaseJSON(t)), &c); err != nil {
		t.Fatal(err)
	}
	c.Evidence[0].Content = "a prose description instead of markup"
	data, _ := json.Marshal(c)

	fc := &fakeClient{response: string(data)}
	g := NewGenerator(fc, game.DefaultCurriculum(), fixedTopics{topic: "Circles"})

	got, err := g.Generate(context.Background(), 1)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.HasPrefix(strings.ToLower(got.Evidence[0].Content), "<svg") {
		t.Error("non-SVG graph content was not replaced")
	}
	if !strings.Contains(got.Evidence[0].Content, "Visual Error!") {
		t.Error("placeholder SVG missing error text")
	}
	// Statement evidence is left alone.
	if got.Evidence[1].Content != "All was measured carefully." {
		t.Errorf("statement content modified: %q", got.Evidence[1].Content)
	}
}

func TestGenerateCaseClassLevelDefault(t *testing.T) {
	var c game.CaseData
	if err := json.Unmarshal([]byte(sampleCaseJSON(t)), &c); err != nil {
		t.Fatal(err)
	}
	c.ClassLevel = "somewhere else entirely"
	data, _ := json.Marshal(c)

	fc := &fakeClient{response: string(data)}
	g := NewGenerator(fc, game.DefaultCurriculum(), fixedTopics{topic: "Mensuration"})

	got, err := g.Generate(context.Background(), 3)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := "Class 8 - Mensuration: The Case of the Crooked Triangle"
	if got.ClassLevel != want {
		t.Errorf("ClassLevel = %q, want %q", got.ClassLevel, want)
	}
}

func testCase() *game.CaseData {
	return &game.CaseData{
		ID:          "CASE_DYNAMIC_test",
		Title:       "The Polynomial Perplexity",
		ClassLevel:  "Class 9 - Polynomials: factor theorem",
		ClientName:  "Polynomial P",
		Accusation:  "P claims x=2 is a root, but substitution gives 5.",
		KeyConcepts: []string{"Factor theorem", "Remainder theorem"},
	}
}

func TestProsecutorKeepsChatHistory(t *testing.T) {
	fc := &fakeClient{response: "The factor theorem condemns your client!"}
	d := NewDirector(fc, testCase())

	d.ProsecutorStatement(context.Background(), "trial opening", "")
	d.ProsecutorStatement(context.Background(), "player argument dismissed", "that was irrelevant")

	// user, model, user
	if len(fc.lastTurns) != 3 {
		t.Fatalf("second call sent %d turns, want 3", len(fc.lastTurns))
	}
	if fc.lastTurns[1].Role != "model" {
		t.Errorf("turn 1 role = %q, want model", fc.lastTurns[1].Role)
	}
	if !strings.Contains(fc.lastSys, "Prosecutor") {
		t.Error("prosecutor system prompt missing role")
	}
}

func TestProsecutorFillerOnError(t *testing.T) {
	fc := &fakeClient{err: errors.New("boom")}
	d := NewDirector(fc, testCase())

	got := d.ProsecutorStatement(context.Background(), "trial opening", "")
	if got != prosecutorFiller {
		t.Errorf("ProsecutorStatement on error = %q, want filler line", got)
	}

	// The failed turn must not linger in history.
	fc.err = nil
	fc.response = "recovered"
	d.ProsecutorStatement(context.Background(), "trial opening", "")
	if len(fc.lastTurns) != 1 {
		t.Errorf("history after failed turn has %d entries, want 1", len(fc.lastTurns))
	}
}

func TestCoCounselFillerOnError(t *testing.T) {
	fc := &fakeClient{err: errors.New("boom")}
	d := NewDirector(fc, testCase())

	got := d.CoCounselAdvice(context.Background(), "player is stuck", "", "what should I look at?")
	if got != coCounselFiller {
		t.Errorf("CoCounselAdvice on error = %q, want filler line", got)
	}
}

func TestJudgeIsStateless(t *testing.T) {
	fc := &fakeClient{response: "Sustained."}
	d := NewDirector(fc, testCase())

	d.JudgeRuling(context.Background(), "The remainder is 5, not 0.", "objection against the prosecutor", 3)
	d.JudgeRuling(context.Background(), "By the factor theorem, x-2 is not a factor.", "final proof", 3)

	if fc.lastTurns != nil {
		t.Error("judge ruling used chat history")
	}
	if !strings.Contains(fc.lastSys, "The Judge") {
		t.Error("judge system prompt missing role")
	}
}

func TestJudgeBeginnerTone(t *testing.T) {
	c := testCase()
	beginner := judgeSystemPrompt(c, "arg", "ctx", 3)
	advanced := judgeSystemPrompt(c, "arg", "ctx", 9)

	if !strings.Contains(beginner, "direct affirmation is good") {
		t.Error("beginner prompt missing direct affirmation guidance")
	}
	if !strings.Contains(advanced, "elaborate on the specific mathematical steps") {
		t.Error("advanced prompt missing elaboration guidance")
	}
}

func TestJudgeFillerOnError(t *testing.T) {
	fc := &fakeClient{err: errors.New("boom")}
	d := NewDirector(fc, testCase())

	got := d.JudgeRuling(context.Background(), "arg", "ctx", 1)
	if got != judgeFiller {
		t.Errorf("JudgeRuling on error = %q, want filler line", got)
	}
}

func TestDirectorReset(t *testing.T) {
	fc := &fakeClient{response: "line"}
	d := NewDirector(fc, testCase())

	d.ProsecutorStatement(context.Background(), "opening", "")
	d.Reset()
	d.ProsecutorStatement(context.Background(), "opening again", "")
	if len(fc.lastTurns) != 1 {
		t.Errorf("history after Reset has %d entries, want 1", len(fc.lastTurns))
	}
}
