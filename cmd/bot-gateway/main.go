package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"movie-vault-bot/internal/adapters/bot"
	"movie-vault-bot/internal/adapters/gatestore"
	"movie-vault-bot/internal/adapters/repo"
	"movie-vault-bot/internal/adapters/telegram"
	"movie-vault-bot/internal/domain"
	"movie-vault-bot/internal/infra/config"
	"movie-vault-bot/internal/infra/db"
	infrahttp "movie-vault-bot/internal/infra/http"
	"movie-vault-bot/internal/infra/log"
	"movie-vault-bot/internal/infra/metrics"
	"movie-vault-bot/internal/infra/queue"
	"movie-vault-bot/internal/usecase/delivery"
	"movie-vault-bot/internal/usecase/drafts"
	"movie-vault-bot/internal/usecase/gate"
	"movie-vault-bot/internal/usecase/publish"
)

const gateRefsKey = "gate_refs"

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)
	metrics.MustRegister(prometheus.DefaultRegisterer)

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

	// Без Redis гейт и очередь живут в памяти процесса, а задачи
	// публикации обрабатывает сам гейтвей.
	var (
		gateStore    domain.GateStore
		publishQueue domain.PublishQueue
		localWorker  bool
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		gateStore = gatestore.NewRedis(rdb, gateRefsKey)
		publishQueue = queue.NewRedisPublishQueue(rdb, cfg.Queues.Publish)
	} else {
		logger.Warn().Msg("REDIS_ADDR не задан, гейт и очередь работают в памяти")
		gateStore = gatestore.NewMemory()
		publishQueue = queue.NewMemoryPublishQueue(0)
		localWorker = true
	}

	gateService := gate.NewService(logger, transport, gateStore)
	aggregator := drafts.NewService(logger, cfg.Drafts.TTL, cfg.Drafts.Overwrite)
	deliveryService := delivery.NewService(logger, repoAdapter, transport, gateService, cfg.Delivery.RetractDelay)
	publishService := publish.NewService(logger, repoAdapter, transport, gateStore, cfg.PublicChatIDs, cfg.Telegram.BotLink)

	h := bot.NewHandler(logger, transport, aggregator, deliveryService, gateService, repoAdapter, repoAdapter, publishQueue, cfg.PrivateChatID, cfg.AdminID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if localWorker {
		worker := publish.NewWorker(logger, publishQueue, publishService)
		go func() {
			if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("воркер публикации остановлен")
			}
		}()
	}

	srv := infrahttp.NewServer(logger)
	srv.Router.Post("/bot/webhook", func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.HandleUpdate(r.Context(), update)
		w.WriteHeader(http.StatusOK)
	})

	if cfg.Telegram.WebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.Telegram.WebhookURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("некорректный URL вебхука")
		}
		if _, err := botAPI.Request(wh); err != nil {
			logger.Fatal().Err(err).Msg("не удалось зарегистрировать вебхук")
		}
		logger.Info().Str("url", cfg.Telegram.WebhookURL).Msg("вебхук зарегистрирован")
	}

	go func() {
		if err := srv.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP сервер остановлен")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	logger.Info().Msg("остановка бота")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

var _ domain.Transport = (*telegram.Client)(nil)
var _ domain.MovieRepo = (*repo.Postgres)(nil)
var _ domain.UserRepo = (*repo.Postgres)(nil)
