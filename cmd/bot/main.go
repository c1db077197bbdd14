package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"

	"history-digest-bot/internal/adapters/bot"
	"history-digest-bot/internal/adapters/repo"
	"history-digest-bot/internal/adapters/rss"
	"history-digest-bot/internal/adapters/translator"
	"history-digest-bot/internal/adapters/youtube"
	"history-digest-bot/internal/infra/config"
	"history-digest-bot/internal/infra/db"
	"history-digest-bot/internal/infra/groq"
	infrahttp "history-digest-bot/internal/infra/http"
	"history-digest-bot/internal/infra/log"
	"history-digest-bot/internal/infra/metrics"
	"history-digest-bot/internal/usecase/digest"
	"history-digest-bot/internal/usecase/flow"
	"history-digest-bot/internal/usecase/schedule"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)
	metrics.MustRegister(prometheus.DefaultRegisterer)

	conn, err := db.Open(cfg.DBDir)
	if err != nil {
		// Без персистентного маунта все статьи выглядят новыми; это лучше,
		// чем не отдавать контент вовсе.
		logger.Warn().Err(err).Str("dir", cfg.DBDir).Msg("хранилище недоступно, дедупликация отключена")
		conn = nil
	} else {
		defer conn.Close()
	}
	store := repo.NewSQLite(conn, logger)

	source := rss.NewSource(rss.DefaultFeeds(), logger)
	groqClient := groq.NewClient(cfg.Groq.APIKey, cfg.Groq.BaseURL, 30*time.Second)
	translatorAdapter := translator.NewGroq(groqClient, cfg.Groq.Model, logger)
	videoClient := youtube.NewClient(cfg.YouTube.APIKey, cfg.YouTube.BaseURL, 15*time.Second)

	pipeline := digest.NewService(source, store, translatorAdapter, digest.Limits{
		History: cfg.Limits.HistoryChars,
		World:   cfg.Limits.WorldChars,
	}, logger)

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось создать бота")
	}

	sender := bot.NewSender(botAPI, logger)
	flowService := flow.NewService(pipeline, store, videoClient, sender, logger)
	handler := bot.NewHandler(botAPI, logger, flowService, sender, store, source, translatorAdapter, videoClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if cfg.Daily.ChatID != 0 {
		loc, err := time.LoadLocation(cfg.TZ)
		if err != nil {
			logger.Warn().Err(err).Str("tz", cfg.TZ).Msg("часовой пояс не распознан, используем UTC")
			loc = time.UTC
		}
		daily, err := schedule.NewService(flowService, []int64{cfg.Daily.ChatID}, cfg.Daily.Time, loc, logger)
		if err != nil {
			logger.Fatal().Err(err).Str("time", cfg.Daily.Time).Msg("не удалось настроить ежедневный триггер")
		}
		go daily.Run(ctx)
		logger.Info().Int64("chat", cfg.Daily.ChatID).Str("time", cfg.Daily.Time).Str("tz", loc.String()).Msg("ежедневный триггер включён")
	} else {
		logger.Info().Msg("ежедневный триггер выключен: DAILY_CHAT_ID не задан")
	}

	srv := infrahttp.NewServer(logger)
	go func() {
		if err := srv.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logger.Error().Err(err).Msg("HTTP сервер остановлен")
		}
	}()

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	updates := botAPI.GetUpdatesChan(updateCfg)
	logger.Info().Str("bot", botAPI.Self.UserName).Msg("бот запущен, слушаем апдейты")

	// Апдейты обрабатываются последовательно: порядок событий одного чата
	// гарантирован, переход состояния завершается до следующего события.
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("остановка бота")
			botAPI.StopReceivingUpdates()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = srv.Shutdown(shutdownCtx)
			cancel()
			os.Exit(0)
		case upd := <-updates:
			handler.HandleUpdate(ctx, upd)
		}
	}
}
