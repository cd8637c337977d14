package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"movie-vault-bot/internal/domain"
	"movie-vault-bot/internal/infra/metrics"
)

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.MovieRepo = (*Postgres)(nil)
	_ domain.UserRepo  = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// UpsertMovie сохраняет запись фильма. Повторный апсерт с тем же ID
// полностью заменяет содержимое записи.
func (p *Postgres) UpsertMovie(ctx context.Context, movie domain.Movie) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	posters, err := json.Marshal(movie.PosterRefs)
	if err != nil {
		return fmt.Errorf("marshal poster refs: %w", err)
	}
	files, err := json.Marshal(movie.Files)
	if err != nil {
		return fmt.Errorf("marshal files: %w", err)
	}

	start := time.Now()
	_, err = p.pool.Exec(ctx, `
INSERT INTO movies (movie_id, description, poster_file_ids, files_json, series, season, episode_count, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (movie_id) DO UPDATE SET
    description = EXCLUDED.description,
    poster_file_ids = EXCLUDED.poster_file_ids,
    files_json = EXCLUDED.files_json,
    series = EXCLUDED.series,
    season = EXCLUDED.season,
    episode_count = EXCLUDED.episode_count,
    updated_at = now()
`, movie.ID, movie.Description, posters, files, movie.Series, movie.Season, movie.EpisodeCount)
	metrics.ObserveNetworkRequest("postgres", "movies_upsert", "movies", start, err)
	return err
}

// GetMovie возвращает запись фильма по ID.
func (p *Postgres) GetMovie(ctx context.Context, id string) (domain.Movie, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var (
		movie   domain.Movie
		posters []byte
		files   []byte
	)
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT movie_id, description, poster_file_ids, files_json, series, season, episode_count
FROM movies WHERE movie_id = $1
`, id).Scan(&movie.ID, &movie.Description, &posters, &files, &movie.Series, &movie.Season, &movie.EpisodeCount)
	metrics.ObserveNetworkRequest("postgres", "movies_get", "movies", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Movie{}, domain.ErrMovieNotFound
	}
	if err != nil {
		return domain.Movie{}, err
	}
	if len(posters) > 0 {
		if err := json.Unmarshal(posters, &movie.PosterRefs); err != nil {
			return domain.Movie{}, fmt.Errorf("unmarshal poster refs: %w", err)
		}
	}
	if len(files) > 0 {
		if err := json.Unmarshal(files, &movie.Files); err != nil {
			return domain.Movie{}, fmt.Errorf("unmarshal files: %w", err)
		}
	}
	return movie, nil
}

// UpsertByTGID регистрирует пользователя по Telegram ID.
func (p *Postgres) UpsertByTGID(ctx context.Context, tgUserID int64) (domain.User, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var user domain.User
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
INSERT INTO users (tg_user_id)
VALUES ($1)
ON CONFLICT (tg_user_id) DO UPDATE SET updated_at = now()
RETURNING id, tg_user_id, created_at
`, tgUserID).Scan(&user.ID, &user.TGUserID, &user.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "users_upsert", "users", start, err)
	return user, err
}
