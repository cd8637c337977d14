package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"movie-vault-bot/internal/adapters/gatestore"
	"movie-vault-bot/internal/adapters/repo"
	"movie-vault-bot/internal/adapters/telegram"
	"movie-vault-bot/internal/infra/config"
	"movie-vault-bot/internal/infra/db"
	infrahttp "movie-vault-bot/internal/infra/http"
	"movie-vault-bot/internal/infra/log"
	"movie-vault-bot/internal/infra/metrics"
	"movie-vault-bot/internal/infra/queue"
	"movie-vault-bot/internal/usecase/publish"
)

const gateRefsKey = "gate_refs"

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)
	metrics.MustRegister(prometheus.DefaultRegisterer)

	if cfg.RedisAddr == "" {
		logger.Fatal().Msg("паблишеру нужен Redis: задайте REDIS_ADDR")
	}

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось подключиться к БД")
	}
	defer pool.Close()
	repoAdapter := repo.NewPostgres(pool)

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось создать бота")
	}
	transport := telegram.NewClient(botAPI)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	gateStore := gatestore.NewRedis(rdb, gateRefsKey)
	publishQueue := queue.NewRedisPublishQueue(rdb, cfg.Queues.Publish)

	publishService := publish.NewService(logger, repoAdapter, transport, gateStore, cfg.PublicChatIDs, cfg.Telegram.BotLink)
	worker := publish.NewWorker(logger, publishQueue, publishService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := infrahttp.NewServer(logger)
	go func() {
		if err := srv.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP сервер остановлен")
		}
	}()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
		<-stop
		logger.Info().Msg("остановка паблишера")
		cancel()
	}()

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("воркер публикации завершился с ошибкой")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
