package drafts

import (
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"movie-vault-bot/internal/domain"
	"movie-vault-bot/internal/infra/metrics"
	"movie-vault-bot/internal/infra/timer"
)

// Service — агрегатор черновиков. На каждый чат-источник одновременно
// открыт не более одного черновика; доступ к таблице сериализован мьютексом,
// под блокировкой нет никакого I/O.
type Service struct {
	log       zerolog.Logger
	ttl       time.Duration
	overwrite bool

	mu     sync.Mutex
	drafts map[int64]*entry
}

// entry привязывает таймер истечения к конкретному экземпляру черновика:
// сработавший таймер трогает только свой экземпляр, поэтому устаревший
// таймер после финализации и повторного открытия ничего не удаляет.
type entry struct {
	draft  domain.Draft
	expiry *timer.Handle
}

// NewService создаёт агрегатор. ttl — время жизни открытого черновика,
// overwrite — затирать ли активный черновик новым постером.
func NewService(log zerolog.Logger, ttl time.Duration, overwrite bool) *Service {
	return &Service{
		log:       log,
		ttl:       ttl,
		overwrite: overwrite,
		drafts:    make(map[int64]*entry),
	}
}

// OnPoster открывает черновик по постеру. Постер без file_id игнорируется.
// Если черновик для ключа уже открыт, поведение задаёт политика overwrite.
func (s *Service) OnPoster(key, anchorID int64, posterRef, caption string) {
	if posterRef == "" {
		return
	}
	series, season := ParseSeriesTag(caption)
	draft := domain.Draft{
		ChatID:      key,
		AnchorID:    anchorID,
		PosterRefs:  []string{posterRef},
		Description: caption,
		Series:      series,
		Season:      season,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.drafts[key]; ok {
		if !s.overwrite {
			s.log.Debug().Int64("chat", key).Msg("черновик уже открыт, постер проигнорирован")
			return
		}
		old.expiry.Stop()
		s.log.Debug().Int64("chat", key).Msg("активный черновик заменён новым постером")
	}
	e := &entry{draft: draft}
	e.expiry = timer.Schedule(s.ttl, func() { s.expire(key, e) })
	s.drafts[key] = e
	metrics.DraftsOpened.Inc()
	s.log.Info().Int64("chat", key).Int64("anchor", anchorID).Msg("черновик открыт")
}

// OnAttachment добавляет медиафайл в открытый черновик, сохраняя порядок
// поступления. Без открытого черновика событие молча игнорируется:
// у записи обязан быть постер-якорь.
func (s *Service) OnAttachment(key int64, kind domain.FileKind, ref, caption string) {
	if ref == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.drafts[key]
	if !ok {
		return
	}
	e.draft.Files = append(e.draft.Files, domain.MovieFile{Kind: kind, FileID: ref, Caption: caption})
	e.draft.EpisodeCount++
}

// OnTerminator завершает черновик: снимает таймер, удаляет черновик из
// таблицы и передаёт его вызывающему. Без открытого черновика — no-op.
func (s *Service) OnTerminator(key int64) (domain.Draft, bool) {
	s.mu.Lock()
	e, ok := s.drafts[key]
	if !ok {
		s.mu.Unlock()
		return domain.Draft{}, false
	}
	delete(s.drafts, key)
	e.expiry.Stop()
	s.mu.Unlock()

	metrics.DraftsFinalized.Inc()
	s.log.Info().Int64("chat", key).Str("movie", e.draft.MovieID()).Msg("черновик завершён")
	return e.draft, true
}

// Cancel отменяет открытый черновик по команде оператора.
// Возвращает false, если активного черновика нет.
func (s *Service) Cancel(key int64) bool {
	s.mu.Lock()
	e, ok := s.drafts[key]
	if !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.drafts, key)
	e.expiry.Stop()
	s.mu.Unlock()

	metrics.DraftsCancelled.Inc()
	s.log.Info().Int64("chat", key).Msg("черновик отменён оператором")
	return true
}

// Active сообщает, открыт ли черновик для ключа.
func (s *Service) Active(key int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.drafts[key]
	return ok
}

func (s *Service) expire(key int64, e *entry) {
	s.mu.Lock()
	current, ok := s.drafts[key]
	if !ok || current != e {
		// Черновик уже завершён или ключ переоткрыт новым экземпляром.
		s.mu.Unlock()
		return
	}
	delete(s.drafts, key)
	s.mu.Unlock()

	metrics.DraftsExpired.Inc()
	s.log.Info().Int64("chat", key).Msg("черновик истёк по таймауту")
}

var seriesTagRegex = regexp.MustCompile(`(?i)#(?:сериал|serial|series)(?:[\s:]*s?(\d+))?`)

// ParseSeriesTag извлекает из подписи постера признак сериала и номер
// сезона: "#сериал", "#serial 2", "#series s3".
func ParseSeriesTag(caption string) (bool, int) {
	m := seriesTagRegex.FindStringSubmatch(caption)
	if m == nil {
		return false, 0
	}
	if m[1] == "" {
		return true, 0
	}
	season, err := strconv.Atoi(m[1])
	if err != nil {
		return true, 0
	}
	return true, season
}
