package interpret_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/Vovarama1992/dream_interpreter/internal/interpret"
)

type mockCompleter struct {
	raw   string
	err   error
	calls atomic.Int32
	last  interpret.Prompt
}

func (m *mockCompleter) Complete(_ context.Context, p interpret.Prompt) (string, error) {
	m.calls.Add(1)
	m.last = p
	return m.raw, m.err
}

func newService(c interpret.Completer) *interpret.Service {
	return interpret.NewService(interpret.NewContextBuilder(3), c, zap.NewNop().Sugar())
}

func TestInterpret_Success(t *testing.T) {
	mc := &mockCompleter{raw: "<s>You are soaring toward freedom.</s>"}

	got, err := newService(mc).Interpret(context.Background(), interpret.Request{
		Dream:   "I was flying over mountains",
		Persona: interpret.Persona{DisplayName: "Ana"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "You are soaring toward freedom." {
		t.Errorf("unexpected interpretation: %q", got)
	}
	if n := mc.calls.Load(); n != 1 {
		t.Errorf("model must be called exactly once, got %d", n)
	}
}

func TestInterpret_EmptyAfterSanitize(t *testing.T) {
	for _, raw := range []string{"", "   \n", "<s></s> [INST][/INST]"} {
		mc := &mockCompleter{raw: raw}

		got, err := newService(mc).Interpret(context.Background(), interpret.Request{Dream: "a long enough dream"})
		if !errors.Is(err, interpret.ErrEmptyResult) {
			t.Fatalf("raw %q: expected ErrEmptyResult, got %v (text %q)", raw, err, got)
		}
		if got != "" {
			t.Errorf("raw %q: failure must not carry text, got %q", raw, got)
		}
		if errors.Is(err, interpret.ErrNetwork) || errors.Is(err, interpret.ErrClientRequest) {
			t.Errorf("empty result conflated with client failure: %v", err)
		}
	}
}

func TestInterpret_PropagatesClientError(t *testing.T) {
	clientErr := errors.New("boom")
	mc := &mockCompleter{err: clientErr}

	_, err := newService(mc).Interpret(context.Background(), interpret.Request{Dream: "dream text here"})
	if err != clientErr {
		t.Fatalf("client error must be returned unchanged, got %v", err)
	}
	if n := mc.calls.Load(); n != 1 {
		t.Errorf("no retries expected, got %d calls", n)
	}
}

func TestInterpret_PassesContext(t *testing.T) {
	answer := "old answer"
	mc := &mockCompleter{raw: "ok"}

	_, err := newService(mc).Interpret(context.Background(), interpret.Request{
		Dream:   "new dream",
		Persona: interpret.Persona{DisplayName: "Ana"},
		History: []interpret.DreamRecord{{RequestText: "old dream", ResponseText: &answer}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := interpret.NewContextBuilder(3).Build(
		interpret.Persona{DisplayName: "Ana"},
		"new dream",
		[]interpret.DreamRecord{{RequestText: "old dream", ResponseText: &answer}},
	)
	if mc.last != want {
		t.Errorf("prompt mismatch:\n got %+v\nwant %+v", mc.last, want)
	}
}
