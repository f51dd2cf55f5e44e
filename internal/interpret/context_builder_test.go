package interpret_test

import (
	"strings"
	"testing"

	"github.com/Vovarama1992/dream_interpreter/internal/interpret"
)

func ptr(s string) *string { return &s }

func TestBuild_FirstDream(t *testing.T) {
	b := interpret.NewContextBuilder(3)
	p := b.Build(interpret.Persona{DisplayName: "Ana"}, "I was flying over mountains", nil)

	if !strings.Contains(p.System, "Ana") {
		t.Errorf("system prompt has no persona name: %q", p.System)
	}
	if !strings.Contains(p.User, "Это первый сон") {
		t.Errorf("expected first-dream framing, got %q", p.User)
	}
	if !strings.HasSuffix(p.User, "Новый сон: I was flying over mountains") {
		t.Errorf("new dream must close the user turn: %q", p.User)
	}
}

func TestBuild_HistoryOldestFirst(t *testing.T) {
	// от новых к старым, как отдаёт репозиторий
	history := []interpret.DreamRecord{
		{RequestText: "third dream", ResponseText: ptr("third answer")},
		{RequestText: "second dream", ResponseText: ptr("second answer")},
		{RequestText: "first dream", ResponseText: ptr("first answer")},
	}
	before := history[0].RequestText

	p := interpret.NewContextBuilder(3).Build(interpret.Persona{DisplayName: "Ana"}, "new one", history)

	if strings.Contains(p.User, "Это первый сон") {
		t.Fatalf("first-dream framing used with history: %q", p.User)
	}

	first := strings.Index(p.User, "first dream")
	second := strings.Index(p.User, "second dream")
	third := strings.Index(p.User, "third dream")
	newDream := strings.Index(p.User, "Новый сон: new one")
	if first < 0 || second < 0 || third < 0 || newDream < 0 {
		t.Fatalf("missing entries in %q", p.User)
	}
	if !(first < second && second < third && third < newDream) {
		t.Errorf("entries are not oldest-first: %q", p.User)
	}
	if !strings.Contains(p.User, "- Толкование: 'first answer'") {
		t.Errorf("interpretation missing: %q", p.User)
	}

	if history[0].RequestText != before {
		t.Errorf("caller history was reordered")
	}
}

func TestBuild_SkipsUninterpreted(t *testing.T) {
	history := []interpret.DreamRecord{
		{RequestText: "pending dream", ResponseText: nil},
		{RequestText: "blank answer", ResponseText: ptr("  ")},
		{RequestText: "old dream", ResponseText: ptr("old answer")},
	}

	p := interpret.NewContextBuilder(3).Build(interpret.Persona{DisplayName: "Ana"}, "new", history)

	if strings.Contains(p.User, "pending dream") || strings.Contains(p.User, "blank answer") {
		t.Errorf("uninterpreted entries leaked into prompt: %q", p.User)
	}
	if !strings.Contains(p.User, "old dream") {
		t.Errorf("valid entry missing: %q", p.User)
	}
}

func TestBuild_OnlyUninterpretedFallsBackToFirstDream(t *testing.T) {
	history := []interpret.DreamRecord{{RequestText: "pending", ResponseText: nil}}

	p := interpret.NewContextBuilder(3).Build(interpret.Persona{}, "new", history)

	if !strings.Contains(p.User, "Это первый сон") {
		t.Errorf("expected first-dream framing, got %q", p.User)
	}
	if !strings.Contains(p.System, interpret.GuestName) {
		t.Errorf("expected guest placeholder in %q", p.System)
	}
}

func TestBuild_TruncatesToMostRecent(t *testing.T) {
	history := []interpret.DreamRecord{
		{RequestText: "d4", ResponseText: ptr("a4")},
		{RequestText: "d3", ResponseText: ptr("a3")},
		{RequestText: "d2", ResponseText: ptr("a2")},
		{RequestText: "d1", ResponseText: ptr("a1")},
	}

	p := interpret.NewContextBuilder(3).Build(interpret.Persona{DisplayName: "Ana"}, "new", history)

	if strings.Contains(p.User, "'d1'") {
		t.Errorf("oldest entry beyond the window must be dropped: %q", p.User)
	}
	for _, d := range []string{"'d2'", "'d3'", "'d4'"} {
		if !strings.Contains(p.User, d) {
			t.Errorf("missing %s in %q", d, p.User)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	history := []interpret.DreamRecord{{RequestText: "d", ResponseText: ptr("a")}}
	b := interpret.NewContextBuilder(0)

	p1 := b.Build(interpret.Persona{DisplayName: "Ana"}, "new", history)
	p2 := b.Build(interpret.Persona{DisplayName: "Ana"}, "new", history)
	if p1 != p2 {
		t.Errorf("same input produced different prompts")
	}
	if b.MaxHistory != interpret.DefaultHistoryLimit {
		t.Errorf("expected default limit, got %d", b.MaxHistory)
	}
}
