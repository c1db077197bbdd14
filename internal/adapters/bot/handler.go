package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"history-digest-bot/internal/domain"
	"history-digest-bot/internal/infra/metrics"
	"history-digest-bot/internal/usecase/flow"
)

const debugCheckTimeout = 10 * time.Second

// Handler обслуживает входящие апдейты бота: команды и нажатия кнопок.
type Handler struct {
	bot       *tgbotapi.BotAPI
	log       zerolog.Logger
	flow      *flow.Service
	messenger domain.Messenger

	// Коллабораторы нужны напрямую только команде /debug.
	store      domain.DeliveryStore
	source     domain.ContentSource
	translator domain.Translator
	videos     domain.VideoSearcher
}

// NewHandler создаёт обработчик.
func NewHandler(botAPI *tgbotapi.BotAPI, logger zerolog.Logger, flowUC *flow.Service, messenger domain.Messenger, store domain.DeliveryStore, source domain.ContentSource, translator domain.Translator, videos domain.VideoSearcher) *Handler {
	return &Handler{
		bot:        botAPI,
		log:        logger,
		flow:       flowUC,
		messenger:  messenger,
		store:      store,
		source:     source,
		translator: translator,
		videos:     videos,
	}
}

// HandleUpdate обрабатывает входящий апдейт.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		h.handleMessage(ctx, upd.Message)
	} else if upd.CallbackQuery != nil {
		h.handleCallback(ctx, upd.CallbackQuery)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	chatID := msg.Chat.ID
	switch {
	case strings.HasPrefix(text, "/start"):
		name := ""
		if msg.From != nil {
			name = msg.From.FirstName
		}
		if err := h.flow.Start(ctx, chatID, name); err != nil {
			h.log.Error().Err(err).Int64("chat", chatID).Msg("не удалось запустить сценарий")
		}
	case strings.HasPrefix(text, "/cancel"):
		h.flow.Cancel(ctx, chatID)
	case strings.HasPrefix(text, "/stats"):
		h.handleStats(ctx, chatID)
	case strings.HasPrefix(text, "/debug"):
		h.handleDebug(ctx, chatID)
	case strings.HasPrefix(text, "/getchatid"):
		h.reply(chatID, fmt.Sprintf("Chat ID: `%d`", chatID))
	default:
		// Сценарий управляется только кнопками: произвольный текст при
		// активной сессии не меняет состояние и остаётся без ответа.
		if h.flow.Active(chatID) {
			return
		}
		h.reply(chatID, "שלח /start כדי להתחיל סבב יומי 📜")
	}
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message != nil {
		h.flow.HandleAction(ctx, cb.Message.Chat.ID, cb.Data)
	}
	start := time.Now()
	_, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, ""))
	metrics.ObserveNetworkRequest("telegram_bot", "answer_callback", strconv.FormatInt(cb.From.ID, 10), start, err)
	if err != nil {
		h.log.Error().Err(err).Msg("не удалось ответить на callback")
	}
}

func (h *Handler) handleStats(ctx context.Context, chatID int64) {
	stats, err := h.store.Stats(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("статистика недоступна")
		h.reply(chatID, "❌ הנתונים אינם זמינים כרגע.")
		return
	}
	lastLine := "🔸 משלוח אחרון: אין עדיין"
	if !stats.LastDeliveredAt.IsZero() {
		lastLine = "🔸 משלוח אחרון: " + stats.LastDeliveredAt.Format("2006-01-02 15:04 UTC")
	}
	sessionLine := "🔸 סבב פעיל: לא"
	if h.flow.Active(chatID) {
		sessionLine = "🔸 סבב פעיל: כן"
	}
	h.reply(chatID, strings.Join([]string{
		"📊 **סטטיסטיקה**",
		"",
		fmt.Sprintf("🔸 סה\"כ כתבות שנשלחו: %d", stats.Total),
		lastLine,
		sessionLine,
	}, "\n"))
}

func (h *Handler) handleDebug(ctx context.Context, chatID int64) {
	h.reply(chatID, "🔍 בודק את כל הרכיבים...")

	ctx, cancel := context.WithTimeout(ctx, debugCheckTimeout)
	defer cancel()

	var lines []string
	check := func(name string, err error) {
		if err != nil {
			lines = append(lines, fmt.Sprintf("❌ %s: %v", name, err))
			return
		}
		lines = append(lines, "✅ "+name+": OK")
	}

	check("History RSS", h.source.Ping(ctx, domain.CategoryHistory))
	check("World RSS", h.source.Ping(ctx, domain.CategoryWorld))

	_, translateErr := h.translator.Translate(ctx, "Hello world", "בדיקה")
	check("Groq API", translateErr)

	_, videoErr := h.videos.Search(ctx, "test")
	if errors.Is(videoErr, domain.ErrNoVideo) {
		videoErr = nil
	}
	check("YouTube API", videoErr)

	check("Store", h.store.Ping(ctx))

	h.reply(chatID, "🔍 **תוצאות בדיקת מערכת:**\n\n"+strings.Join(lines, "\n"))
}

func (h *Handler) reply(chatID int64, text string) {
	if err := h.messenger.SendText(chatID, text); err != nil {
		h.log.Error().Err(err).Int64("chat", chatID).Msg("не удалось отправить ответ")
	}
}
