package config

import (
	"log"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию бота.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	TZ     string `envconfig:"TZ" default:"Asia/Jerusalem"`
	Port   int    `envconfig:"PORT" default:"8000"`

	Telegram struct {
		Token string `envconfig:"TG_BOT_TOKEN"`
	} `envconfig:""`

	Groq struct {
		APIKey  string `envconfig:"GROQ_API_KEY"`
		BaseURL string `envconfig:"GROQ_BASE_URL"`
		Model   string `envconfig:"GROQ_MODEL" default:"llama3-8b-8192"`
	} `envconfig:""`

	YouTube struct {
		APIKey  string `envconfig:"YOUTUBE_API_KEY"`
		BaseURL string `envconfig:"YOUTUBE_BASE_URL"`
	} `envconfig:""`

	Daily struct {
		ChatID int64  `envconfig:"DAILY_CHAT_ID"`
		Time   string `envconfig:"DAILY_TIME" default:"08:00"`
	} `envconfig:""`

	DBDir string `envconfig:"DB_DIR" default:"/tmp/historybot"`

	Limits struct {
		HistoryChars int `envconfig:"HISTORY_BODY_CHARS" default:"300"`
		WorldChars   int `envconfig:"WORLD_BODY_CHARS" default:"250"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения. Отсутствие обязательных кредов —
// фатальная ошибка: без них процесс не должен начинать обслуживание.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	var missing []string
	if cfg.Telegram.Token == "" {
		missing = append(missing, "TG_BOT_TOKEN")
	}
	if cfg.Groq.APIKey == "" {
		missing = append(missing, "GROQ_API_KEY")
	}
	if cfg.YouTube.APIKey == "" {
		missing = append(missing, "YOUTUBE_API_KEY")
	}
	if len(missing) > 0 {
		log.Fatalf("не хватает переменных окружения: %s", strings.Join(missing, ", "))
	}
	return cfg
}
