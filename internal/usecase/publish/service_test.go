package publish

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"movie-vault-bot/internal/adapters/gatestore"
	"movie-vault-bot/internal/domain"
)

type stubMovies struct{ movie domain.Movie }

func (s *stubMovies) UpsertMovie(context.Context, domain.Movie) error { return nil }

func (s *stubMovies) GetMovie(ctx context.Context, id string) (domain.Movie, error) {
	if s.movie.ID != id {
		return domain.Movie{}, domain.ErrMovieNotFound
	}
	return s.movie, nil
}

type photoCall struct {
	chatID  int64
	fileID  string
	caption string
}

type fakeTransport struct {
	photos   []photoCall
	failChat int64
}

func (f *fakeTransport) SendPhoto(chatID int64, fileID, caption string) (int, error) {
	if f.failChat != 0 && chatID == f.failChat {
		return 0, errors.New("telegram: chat not found")
	}
	f.photos = append(f.photos, photoCall{chatID: chatID, fileID: fileID, caption: caption})
	return len(f.photos), nil
}

func (f *fakeTransport) SendVideo(int64, string, string) (int, error)    { return 0, nil }
func (f *fakeTransport) SendDocument(int64, string, string) (int, error) { return 0, nil }
func (f *fakeTransport) SendMessage(int64, string) (int, error)          { return 0, nil }
func (f *fakeTransport) DeleteMessage(int64, int) error                  { return nil }
func (f *fakeTransport) MemberStatus(string, int64) (string, error) {
	return domain.MemberStatusMember, nil
}

func TestBroadcastCaptionOnFirstPosterOnly(t *testing.T) {
	movies := &stubMovies{movie: domain.Movie{
		ID:         "100",
		PosterRefs: []string{"P1", "P2"},
	}}
	tr := &fakeTransport{}
	s := NewService(zerolog.Nop(), movies, tr, gatestore.NewMemory(), []int64{-1, -2}, "https://t.me/goldstar_bot")

	if err := s.Broadcast(context.Background(), "100"); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(tr.photos) != 4 {
		t.Fatalf("ожидали 4 отправки, получили %d", len(tr.photos))
	}
	for i, p := range tr.photos {
		first := i%2 == 0
		if first && p.caption == "" {
			t.Fatal("первый постер должен нести подпись")
		}
		if !first && p.caption != "" {
			t.Fatal("второй постер должен быть без подписи")
		}
	}
}

func TestBroadcastDestinationsIndependent(t *testing.T) {
	movies := &stubMovies{movie: domain.Movie{ID: "100", PosterRefs: []string{"P1"}}}
	tr := &fakeTransport{failChat: -1}
	s := NewService(zerolog.Nop(), movies, tr, nil, []int64{-1, -2}, "")

	if err := s.Broadcast(context.Background(), "100"); err != nil {
		t.Fatalf("ошибка одного чата не должна останавливать рассылку: %v", err)
	}
	if len(tr.photos) != 1 || tr.photos[0].chatID != -2 {
		t.Fatalf("ожидали отправку во второй чат, получили %v", tr.photos)
	}
}

func TestBroadcastUnknownMovie(t *testing.T) {
	s := NewService(zerolog.Nop(), &stubMovies{}, &fakeTransport{}, nil, []int64{-1}, "")
	if err := s.Broadcast(context.Background(), "нет"); err == nil {
		t.Fatal("ожидали ошибку для неизвестной записи")
	}
}

func TestComposeCaption(t *testing.T) {
	movie := domain.Movie{ID: "100", Description: "Movie A"}
	caption := ComposeCaption(movie, []string{"https://t.me/movies"}, "https://t.me/goldstar_bot")
	if !strings.Contains(caption, "Movie A") {
		t.Fatal("подпись должна содержать описание")
	}
	if !strings.Contains(caption, "📌 Вступите: https://t.me/movies") {
		t.Fatal("подпись должна содержать ссылки на вступление")
	}
	if !strings.Contains(caption, "https://t.me/goldstar_bot?start=100") {
		t.Fatal("подпись должна содержать deep-link на скачивание")
	}
}

func TestComposeCaptionDefaults(t *testing.T) {
	caption := ComposeCaption(domain.Movie{ID: "7"}, nil, "")
	if caption != defaultCaption {
		t.Fatalf("пустое описание заменяется заглушкой, получили %q", caption)
	}
}

func TestComposeCaptionSeries(t *testing.T) {
	movie := domain.Movie{ID: "100", Description: "Сериал X", Series: true, Season: 2, EpisodeCount: 8}
	caption := ComposeCaption(movie, nil, "")
	if !strings.Contains(caption, "сезон 2") || !strings.Contains(caption, "серий: 8") {
		t.Fatalf("подпись сериала должна называть сезон и число серий: %q", caption)
	}
}
