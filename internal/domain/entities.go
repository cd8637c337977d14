package domain

import (
	"strconv"
	"time"
)

// FileKind — тип медиафайла в записи фильма.
type FileKind string

const (
	FileKindPhoto    FileKind = "photo"
	FileKindVideo    FileKind = "video"
	FileKindDocument FileKind = "document"
)

// MovieFile описывает один медиафайл фильма: тип, file_id Telegram и подпись.
type MovieFile struct {
	Kind    FileKind `json:"type"`
	FileID  string   `json:"file_id"`
	Caption string   `json:"caption,omitempty"`
}

// Movie — опубликованная запись фильма или сериала. После сохранения запись
// неизменяема; повторный апсерт с тем же ID полностью её заменяет.
type Movie struct {
	ID           string
	Description  string
	PosterRefs   []string
	Files        []MovieFile
	Series       bool
	Season       int
	EpisodeCount int
}

// Draft — незавершённая сборка фильма в приватной группе куратора.
// Экземпляр принадлежит агрегатору, пока черновик открыт.
type Draft struct {
	ChatID       int64
	AnchorID     int64
	PosterRefs   []string
	Description  string
	Files        []MovieFile
	Series       bool
	Season       int
	EpisodeCount int
	CreatedAt    time.Time
}

// MovieID возвращает постоянный идентификатор будущей записи:
// message id постера, открывшего черновик.
func (d Draft) MovieID() string {
	return strconv.FormatInt(d.AnchorID, 10)
}

// Movie собирает итоговую запись из завершённого черновика.
func (d Draft) Movie() Movie {
	return Movie{
		ID:           d.MovieID(),
		Description:  d.Description,
		PosterRefs:   d.PosterRefs,
		Files:        d.Files,
		Series:       d.Series,
		Season:       d.Season,
		EpisodeCount: d.EpisodeCount,
	}
}

// DeliverySession — одна выдача файлов пользователю. Живёт до срабатывания
// таймера отзыва.
type DeliverySession struct {
	ID         string
	Recipient  int64
	MessageIDs []int
	ExpiresAt  time.Time
}

// PublishJob — задача публикации постера в публичные чаты.
type PublishJob struct {
	ID          string    `json:"id"`
	MovieID     string    `json:"movie_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// User описывает пользователя Telegram, когда-либо обращавшегося к боту.
type User struct {
	ID        int64
	TGUserID  int64
	CreatedAt time.Time
}

// Статусы участника чата, дающие доступ к выдаче.
const (
	MemberStatusMember        = "member"
	MemberStatusAdministrator = "administrator"
	MemberStatusCreator       = "creator"
)
