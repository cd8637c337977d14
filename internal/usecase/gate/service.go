package gate

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"movie-vault-bot/internal/domain"
)

// Service проверяет право пользователя на получение файлов по членству
// в настроенных чатах. Пустой набор чатов означает открытый доступ.
type Service struct {
	log       zerolog.Logger
	transport domain.Transport
	store     domain.GateStore
}

// NewService создаёт гейт доступа.
func NewService(log zerolog.Logger, transport domain.Transport, store domain.GateStore) *Service {
	return &Service{log: log, transport: transport, store: store}
}

// IsAuthorized возвращает true, если пользователь состоит в каждом из
// настроенных чатов. Любая ошибка проверки членства закрывает доступ.
func (s *Service) IsAuthorized(ctx context.Context, userID int64) bool {
	refs, err := s.store.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("не удалось получить список чатов гейта")
		return false
	}
	if len(refs) == 0 {
		return true
	}
	for _, ref := range refs {
		status, err := s.transport.MemberStatus(ref, userID)
		if err != nil {
			s.log.Warn().Err(err).Str("chat", ref).Int64("user", userID).Msg("проверка членства не удалась")
			return false
		}
		if !allowedStatus(status) {
			return false
		}
	}
	return true
}

func allowedStatus(status string) bool {
	switch status {
	case domain.MemberStatusMember, domain.MemberStatusAdministrator, domain.MemberStatusCreator:
		return true
	default:
		return false
	}
}

// Add добавляет чат в набор гейта. Повторное добавление — no-op.
func (s *Service) Add(ctx context.Context, ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	return s.store.Add(ctx, ref)
}

// Remove убирает чат из набора. Удаление отсутствующего — no-op.
func (s *Service) Remove(ctx context.Context, ref string) error {
	return s.store.Remove(ctx, strings.TrimSpace(ref))
}

// Refs возвращает настроенные чаты гейта.
func (s *Service) Refs(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// JoinLinks возвращает ссылки для вступления, выведенные из настроенных
// чатов. Ошибка чтения набора даёт пустой список.
func (s *Service) JoinLinks(ctx context.Context) []string {
	refs, err := s.store.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("не удалось получить список чатов гейта")
		return nil
	}
	links := make([]string, 0, len(refs))
	for _, ref := range refs {
		links = append(links, JoinLink(ref))
	}
	return links
}

// JoinLink превращает ссылку чата в URL для вступления.
func JoinLink(ref string) string {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	case strings.HasPrefix(ref, "@"):
		return "https://t.me/" + strings.TrimPrefix(ref, "@")
	default:
		return ref
	}
}
