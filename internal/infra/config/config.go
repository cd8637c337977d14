package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	Telegram struct {
		Token      string `envconfig:"TG_BOT_TOKEN"`
		WebhookURL string `envconfig:"TG_WEBHOOK_URL"`
		BotLink    string `envconfig:"TG_BOT_LINK"`
	} `envconfig:""`

	// Приватная группа кураторов, из которой собираются черновики.
	PrivateChatID int64 `envconfig:"PRIVATE_CHAT_ID"`
	// Публичные чаты, куда публикуются постеры.
	PublicChatIDs []int64 `envconfig:"PUBLIC_CHAT_IDS"`
	AdminID       int64   `envconfig:"ADMIN_ID"`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	Drafts struct {
		TTL       time.Duration `envconfig:"DRAFT_TTL" default:"10m"`
		Overwrite bool          `envconfig:"DRAFT_OVERWRITE" default:"false"`
	} `envconfig:""`

	Delivery struct {
		RetractDelay time.Duration `envconfig:"DELIVERY_RETRACT_DELAY" default:"2m"`
	} `envconfig:""`

	Queues struct {
		Publish string `envconfig:"PUBLISH_QUEUE_KEY" default:"publish_jobs"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
