package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"movie-vault-bot/internal/adapters/gatestore"
	"movie-vault-bot/internal/domain"
)

type stubTransport struct {
	statuses map[string]string
	err      error
	calls    int
}

func (s *stubTransport) SendPhoto(int64, string, string) (int, error)    { return 0, nil }
func (s *stubTransport) SendVideo(int64, string, string) (int, error)    { return 0, nil }
func (s *stubTransport) SendDocument(int64, string, string) (int, error) { return 0, nil }
func (s *stubTransport) SendMessage(int64, string) (int, error)          { return 0, nil }
func (s *stubTransport) DeleteMessage(int64, int) error                  { return nil }

func (s *stubTransport) MemberStatus(chatRef string, userID int64) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.statuses[chatRef], nil
}

func newTestGate(tr domain.Transport) *Service {
	return NewService(zerolog.Nop(), tr, gatestore.NewMemory())
}

func TestEmptySetAuthorizes(t *testing.T) {
	tr := &stubTransport{}
	g := newTestGate(tr)
	if !g.IsAuthorized(context.Background(), 42) {
		t.Fatal("пустой набор чатов должен давать доступ")
	}
	if tr.calls != 0 {
		t.Fatal("без чатов не должно быть проверок членства")
	}
}

func TestAllMembershipsRequired(t *testing.T) {
	ctx := context.Background()
	tr := &stubTransport{statuses: map[string]string{"@a": "member", "@b": "left"}}
	g := newTestGate(tr)
	_ = g.Add(ctx, "@a")
	_ = g.Add(ctx, "@b")
	if g.IsAuthorized(ctx, 42) {
		t.Fatal("не член одного из чатов не должен получить доступ")
	}
	tr.statuses["@b"] = "administrator"
	if !g.IsAuthorized(ctx, 42) {
		t.Fatal("член всех чатов должен получить доступ")
	}
}

func TestLookupErrorFailsClosed(t *testing.T) {
	ctx := context.Background()
	tr := &stubTransport{err: errors.New("telegram недоступен")}
	g := newTestGate(tr)
	_ = g.Add(ctx, "@a")
	if g.IsAuthorized(ctx, 42) {
		t.Fatal("ошибка проверки членства должна закрывать доступ")
	}
}

func TestAddRemoveListIdempotent(t *testing.T) {
	ctx := context.Background()
	g := newTestGate(&stubTransport{})
	_ = g.Add(ctx, "@a")
	_ = g.Add(ctx, "@a")
	_ = g.Add(ctx, " @b ")
	refs, err := g.Refs(ctx)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("ожидали 2 чата, получили %v", refs)
	}
	_ = g.Remove(ctx, "@a")
	_ = g.Remove(ctx, "@a")
	refs, _ = g.Refs(ctx)
	if len(refs) != 1 || refs[0] != "@b" {
		t.Fatalf("ожидали только @b, получили %v", refs)
	}
}

func TestJoinLink(t *testing.T) {
	cases := map[string]string{
		"@movies":           "https://t.me/movies",
		"https://t.me/+abc": "https://t.me/+abc",
		"-1001234567890":    "-1001234567890",
	}
	for ref, want := range cases {
		if got := JoinLink(ref); got != want {
			t.Fatalf("%s: ожидали %s, получили %s", ref, want, got)
		}
	}
}
