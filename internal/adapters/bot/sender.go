package bot

import (
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"history-digest-bot/internal/adapters/telegram"
	"history-digest-bot/internal/domain"
	"history-digest-bot/internal/infra/metrics"
)

// Sender реализует domain.Messenger поверх Bot API. Сообщения уходят с
// Markdown-разметкой и без превью ссылок, длинные тексты режутся по лимиту.
type Sender struct {
	bot *tgbotapi.BotAPI
	log zerolog.Logger
}

// NewSender создаёт отправителя.
func NewSender(botAPI *tgbotapi.BotAPI, logger zerolog.Logger) *Sender {
	return &Sender{bot: botAPI, log: logger}
}

var _ domain.Messenger = (*Sender)(nil)

// SendText отправляет обычное сообщение.
func (s *Sender) SendText(chatID int64, text string) error {
	return s.send(chatID, text, nil)
}

// SendWithButton отправляет сообщение с одной inline-кнопкой.
func (s *Sender) SendWithButton(chatID int64, text, label, action string) error {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, action),
		),
	)
	return s.send(chatID, text, &markup)
}

func (s *Sender) send(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	parts := telegram.SplitMessage(text)
	for i, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.DisableWebPagePreview = true
		// Кнопка вешается на последнюю часть, чтобы оказаться под текстом.
		if keyboard != nil && i == len(parts)-1 {
			msg.ReplyMarkup = keyboard
		}
		start := time.Now()
		_, err := s.bot.Send(msg)
		metrics.ObserveNetworkRequest("telegram_bot", "send_message", strconv.FormatInt(chatID, 10), start, err)
		if err != nil {
			metrics.BotSendErrors.Inc()
			s.log.Error().Err(err).Int64("chat", chatID).Msg("не удалось отправить сообщение")
			return err
		}
	}
	return nil
}
