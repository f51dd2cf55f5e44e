package dreams_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/dream_interpreter/internal/dreams"
	"github.com/Vovarama1992/dream_interpreter/internal/interpret"
	"github.com/Vovarama1992/dream_interpreter/internal/storage/storagetest"
	"github.com/Vovarama1992/dream_interpreter/internal/users"
)

type mockInterpreter struct {
	reply string
	err   error
	calls int
	last  interpret.Request
}

func (m *mockInterpreter) Interpret(_ context.Context, req interpret.Request) (string, error) {
	m.calls++
	m.last = req
	return m.reply, m.err
}

type mockNotifier struct {
	errs []error
}

func (m *mockNotifier) Notify(_ context.Context, err error, _ string) error {
	m.errs = append(m.errs, err)
	return nil
}

type mockExporter struct {
	key         string
	data        []byte
	contentType string
}

func (m *mockExporter) Upload(_ context.Context, key string, data []byte, contentType string) (string, error) {
	m.key, m.data, m.contentType = key, data, contentType
	return "https://s3.example/" + key + "?sig=1", nil
}

type fixture struct {
	svc      dreams.Service
	repo     dreams.Repo
	users    users.Service
	interp   *mockInterpreter
	notifier *mockNotifier
	exporter *mockExporter
}

func newFixture(t *testing.T, withExporter bool) *fixture {
	return newFixtureWithLimit(t, withExporter, 3)
}

func newFixtureWithLimit(t *testing.T, withExporter bool, historyLimit int) *fixture {
	db := storagetest.NewDB(t)
	f := &fixture{
		repo:     dreams.NewRepo(db),
		users:    users.NewService(db, users.NewInfra(db)),
		interp:   &mockInterpreter{reply: "Полёт — это свобода."},
		notifier: &mockNotifier{},
	}

	var exp dreams.Exporter
	if withExporter {
		f.exporter = &mockExporter{}
		exp = f.exporter
	}

	f.svc = dreams.NewService(f.repo, f.users, f.interp, exp, f.notifier, historyLimit, zap.NewNop().Sugar())
	return f
}

func (f *fixture) user(t *testing.T) *users.User {
	t.Helper()
	u, err := f.users.LoginOrCreate(context.Background(), "Ana", time.Date(1995, 8, 25, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestInterpret_SavesDream(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	u := f.user(t)

	d, err := f.svc.Interpret(ctx, u.ID, "  I was flying over mountains  ")
	if err != nil {
		t.Fatalf("interpret: %v", err)
	}
	if d.ID == 0 || d.RequestText != "I was flying over mountains" {
		t.Errorf("unexpected dream: %+v", d)
	}
	if d.ResponseText == nil || *d.ResponseText != "Полёт — это свобода." {
		t.Errorf("unexpected response: %v", d.ResponseText)
	}
	if f.interp.calls != 1 {
		t.Errorf("interpreter must be called once, got %d", f.interp.calls)
	}
	if f.interp.last.Persona.DisplayName != "Ana" || len(f.interp.last.History) != 0 {
		t.Errorf("unexpected request: %+v", f.interp.last)
	}
}

func TestInterpret_PassesRecentHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	u := f.user(t)

	for _, text := range []string{"dream number one", "dream number two", "dream number three", "dream number four"} {
		if _, err := f.repo.Create(ctx, u.ID, text, "answer to "+text); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if _, err := f.svc.Interpret(ctx, u.ID, "dream number five"); err != nil {
		t.Fatalf("interpret: %v", err)
	}

	h := f.interp.last.History
	if len(h) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(h))
	}
	want := []string{"dream number four", "dream number three", "dream number two"}
	for i, w := range want {
		if h[i].RequestText != w {
			t.Errorf("history[%d] = %q, want %q", i, h[i].RequestText, w)
		}
	}
}

func TestInterpret_ZeroHistoryLimitUsesDefault(t *testing.T) {
	ctx := context.Background()
	f := newFixtureWithLimit(t, false, 0)
	u := f.user(t)

	for _, text := range []string{"dream number one", "dream number two", "dream number three", "dream number four"} {
		if _, err := f.repo.Create(ctx, u.ID, text, "answer to "+text); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if _, err := f.svc.Interpret(ctx, u.ID, "dream number five"); err != nil {
		t.Fatalf("interpret: %v", err)
	}
	if got := len(f.interp.last.History); got != interpret.DefaultHistoryLimit {
		t.Errorf("history window: got %d, want %d", got, interpret.DefaultHistoryLimit)
	}
}

func TestInterpret_FailureIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	u := f.user(t)

	failure := &interpret.Error{Kind: interpret.ErrTimeout, Message: "too slow"}
	f.interp.err = failure

	_, err := f.svc.Interpret(ctx, u.ID, "a dream that times out")
	if !errors.Is(err, interpret.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if len(f.notifier.errs) != 1 {
		t.Errorf("admin must be notified once, got %d", len(f.notifier.errs))
	}

	list, err := f.repo.ListByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("failed interpretation persisted: %+v", list)
	}
}

func TestInterpret_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	u := f.user(t)

	if _, err := f.svc.Interpret(ctx, u.ID, "  короткий "); !errors.Is(err, dreams.ErrDreamTooShort) {
		t.Errorf("expected ErrDreamTooShort, got %v", err)
	}
	if _, err := f.svc.Interpret(ctx, 9999, "long enough dream text"); !errors.Is(err, users.ErrNotFound) {
		t.Errorf("expected users.ErrNotFound, got %v", err)
	}
	if f.interp.calls != 0 {
		t.Errorf("model must not be called for invalid input")
	}
}

func TestHistory_ChatView(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	u := f.user(t)

	if _, err := f.repo.Create(ctx, u.ID, "first dream text", "first answer"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.repo.Create(ctx, u.ID, "second dream text", "second answer"); err != nil {
		t.Fatal(err)
	}

	msgs, err := f.svc.History(ctx, u.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	var got []string
	for _, m := range msgs {
		got = append(got, m.Role+":"+m.Text)
	}
	want := "user:first dream text|bot:first answer|user:second dream text|bot:second answer"
	if strings.Join(got, "|") != want {
		t.Errorf("unexpected chat view: %v", got)
	}

	if _, err := f.svc.History(ctx, 9999); !errors.Is(err, users.ErrNotFound) {
		t.Errorf("expected users.ErrNotFound, got %v", err)
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	u := f.user(t)

	if _, err := f.repo.Create(ctx, u.ID, "exported dream", "exported answer"); err != nil {
		t.Fatal(err)
	}

	url, err := f.svc.Export(ctx, u.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(url, "https://s3.example/exports/") {
		t.Errorf("unexpected url: %s", url)
	}
	if f.exporter.contentType != "application/json" {
		t.Errorf("content type: %s", f.exporter.contentType)
	}

	var file struct {
		UserID int64          `json:"user_id"`
		Name   string         `json:"name"`
		Dreams []dreams.Dream `json:"dreams"`
	}
	if err := json.Unmarshal(f.exporter.data, &file); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if file.UserID != u.ID || file.Name != "Ana" || len(file.Dreams) != 1 {
		t.Errorf("unexpected export: %+v", file)
	}
}

func TestExport_Disabled(t *testing.T) {
	f := newFixture(t, false)
	u := f.user(t)

	if _, err := f.svc.Export(context.Background(), u.ID); !errors.Is(err, dreams.ErrExportDisabled) {
		t.Errorf("expected ErrExportDisabled, got %v", err)
	}
}
