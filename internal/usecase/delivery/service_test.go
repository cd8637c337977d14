package delivery

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"movie-vault-bot/internal/domain"
)

type stubMovies struct {
	movies map[string]domain.Movie
}

func (s *stubMovies) UpsertMovie(ctx context.Context, movie domain.Movie) error {
	if s.movies == nil {
		s.movies = make(map[string]domain.Movie)
	}
	s.movies[movie.ID] = movie
	return nil
}

func (s *stubMovies) GetMovie(ctx context.Context, id string) (domain.Movie, error) {
	m, ok := s.movies[id]
	if !ok {
		return domain.Movie{}, domain.ErrMovieNotFound
	}
	return m, nil
}

type sentCall struct {
	op      string
	chatID  int64
	payload string
}

type fakeTransport struct {
	mu      sync.Mutex
	nextID  int
	sent    []sentCall
	deleted []int
	failRef string
}

func (f *fakeTransport) record(op string, chatID int64, payload string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRef != "" && payload == f.failRef {
		return 0, errors.New("telegram: bad request")
	}
	f.nextID++
	f.sent = append(f.sent, sentCall{op: op, chatID: chatID, payload: payload})
	return f.nextID, nil
}

func (f *fakeTransport) SendPhoto(chatID int64, fileID, caption string) (int, error) {
	return f.record("photo", chatID, fileID)
}

func (f *fakeTransport) SendVideo(chatID int64, fileID, caption string) (int, error) {
	return f.record("video", chatID, fileID)
}

func (f *fakeTransport) SendDocument(chatID int64, fileID, caption string) (int, error) {
	return f.record("document", chatID, fileID)
}

func (f *fakeTransport) SendMessage(chatID int64, text string) (int, error) {
	return f.record("message", chatID, text)
}

func (f *fakeTransport) DeleteMessage(chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeTransport) MemberStatus(chatRef string, userID int64) (string, error) {
	return domain.MemberStatusMember, nil
}

func (f *fakeTransport) snapshot() ([]sentCall, []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentCall(nil), f.sent...), append([]int(nil), f.deleted...)
}

type stubGate struct{ allowed bool }

func (g *stubGate) IsAuthorized(context.Context, int64) bool { return g.allowed }

func testMovie() domain.Movie {
	return domain.Movie{
		ID:          "100",
		Description: "Movie A",
		PosterRefs:  []string{"P1"},
		Files: []domain.MovieFile{
			{Kind: domain.FileKindVideo, FileID: "V1"},
			{Kind: domain.FileKindDocument, FileID: "D1"},
			{Kind: "sticker", FileID: "X1"},
		},
		EpisodeCount: 3,
	}
}

func TestDeliverNotFound(t *testing.T) {
	tr := &fakeTransport{}
	s := NewService(zerolog.Nop(), &stubMovies{}, tr, &stubGate{allowed: true}, time.Minute)
	res := s.Deliver(context.Background(), "нет", 42)
	if res.Outcome != OutcomeNotFound {
		t.Fatalf("ожидали NotFound, получили %s", res.Outcome)
	}
	sent, _ := tr.snapshot()
	if len(sent) != 0 {
		t.Fatal("при NotFound не должно быть отправок")
	}
}

func TestDeliverEmptyFilesNotFound(t *testing.T) {
	movies := &stubMovies{}
	_ = movies.UpsertMovie(context.Background(), domain.Movie{ID: "100"})
	s := NewService(zerolog.Nop(), movies, &fakeTransport{}, &stubGate{allowed: true}, time.Minute)
	if res := s.Deliver(context.Background(), "100", 42); res.Outcome != OutcomeNotFound {
		t.Fatalf("запись без файлов — NotFound, получили %s", res.Outcome)
	}
}

func TestDeliverForbidden(t *testing.T) {
	movies := &stubMovies{}
	_ = movies.UpsertMovie(context.Background(), testMovie())
	tr := &fakeTransport{}
	s := NewService(zerolog.Nop(), movies, tr, &stubGate{allowed: false}, time.Minute)
	res := s.Deliver(context.Background(), "100", 42)
	if res.Outcome != OutcomeForbidden {
		t.Fatalf("ожидали Forbidden, получили %s", res.Outcome)
	}
	sent, _ := tr.snapshot()
	if len(sent) != 0 {
		t.Fatal("при Forbidden не должно быть отправок")
	}
}

func TestDeliverSendsInOrderAndRetracts(t *testing.T) {
	movies := &stubMovies{}
	_ = movies.UpsertMovie(context.Background(), testMovie())
	tr := &fakeTransport{}
	s := NewService(zerolog.Nop(), movies, tr, &stubGate{allowed: true}, 30*time.Millisecond)

	res := s.Deliver(context.Background(), "100", 42)
	if res.Outcome != OutcomeDelivered {
		t.Fatalf("ожидали Delivered, получили %s", res.Outcome)
	}
	sent, _ := tr.snapshot()
	// Три файла плюс предупреждение об отзыве.
	if len(sent) != 4 {
		t.Fatalf("ожидали 4 отправки, получили %d", len(sent))
	}
	wantOps := []string{"video", "document", "document", "message"}
	for i, op := range wantOps {
		if sent[i].op != op {
			t.Fatalf("позиция %d: ожидали %s, получили %s", i, op, sent[i].op)
		}
	}
	if len(res.Session.MessageIDs) != 4 {
		t.Fatalf("в сессии должно быть 4 сообщения, получили %d", len(res.Session.MessageIDs))
	}

	time.Sleep(80 * time.Millisecond)
	_, deleted := tr.snapshot()
	if len(deleted) != 4 {
		t.Fatalf("отзыв должен удалить все сообщения сессии, удалено %d", len(deleted))
	}
}

func TestDeliverSkipsFailedFile(t *testing.T) {
	movies := &stubMovies{}
	_ = movies.UpsertMovie(context.Background(), testMovie())
	tr := &fakeTransport{failRef: "V1"}
	s := NewService(zerolog.Nop(), movies, tr, &stubGate{allowed: true}, time.Minute)

	res := s.Deliver(context.Background(), "100", 42)
	if res.Outcome != OutcomeDelivered {
		t.Fatalf("частичная выдача остаётся Delivered, получили %s", res.Outcome)
	}
	sent, _ := tr.snapshot()
	if len(sent) != 3 {
		t.Fatalf("ожидали 3 отправки без упавшего файла, получили %d", len(sent))
	}
	if sent[0].payload != "D1" {
		t.Fatalf("ожидали продолжение с D1, получили %s", sent[0].payload)
	}
}

func TestRetractionWarningText(t *testing.T) {
	if !strings.Contains(retractionWarning(2*time.Minute), "2 мин") {
		t.Fatal("предупреждение должно называть задержку в минутах")
	}
	if !strings.Contains(retractionWarning(30*time.Second), "30 сек") {
		t.Fatal("короткая задержка — в секундах")
	}
}
