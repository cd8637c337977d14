package domain

import (
	"context"
	"errors"
)

// ErrMovieNotFound возвращается хранилищем, когда записи с таким ID нет.
var ErrMovieNotFound = errors.New("фильм не найден")

// MovieRepo — хранилище записей фильмов.
type MovieRepo interface {
	UpsertMovie(ctx context.Context, movie Movie) error
	GetMovie(ctx context.Context, id string) (Movie, error)
}

// UserRepo управляет пользователями.
type UserRepo interface {
	UpsertByTGID(ctx context.Context, tgUserID int64) (User, error)
}

// Transport — операции Telegram, которые нужны ядру. Методы отправки
// возвращают message id отправленного сообщения.
type Transport interface {
	SendPhoto(chatID int64, fileID, caption string) (int, error)
	SendVideo(chatID int64, fileID, caption string) (int, error)
	SendDocument(chatID int64, fileID, caption string) (int, error)
	SendMessage(chatID int64, text string) (int, error)
	DeleteMessage(chatID int64, messageID int) error
	MemberStatus(chatRef string, userID int64) (string, error)
}

// PublishQueue — очередь задач публикации.
type PublishQueue interface {
	Enqueue(ctx context.Context, job PublishJob) error
	Pop(ctx context.Context) (PublishJob, error)
}

// GateStore хранит изменяемый набор чатов, членство в которых требуется
// для выдачи файлов. Все операции идемпотентны.
type GateStore interface {
	Add(ctx context.Context, ref string) error
	Remove(ctx context.Context, ref string) error
	List(ctx context.Context) ([]string, error)
}
