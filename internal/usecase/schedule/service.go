package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"history-digest-bot/internal/infra/metrics"
)

// ErrInvalidTime возвращается, если время рассылки задано не в формате ЧЧ:ММ.
var ErrInvalidTime = errors.New("некорректное время рассылки")

// Таймаут на доставку одному получателю: переводчик и поиск видео внутри
// укладываются в него или деградируют.
const recipientTimeout = 60 * time.Second

// Starter запускает сценарий для чата так же, как команда /start.
type Starter interface {
	Start(ctx context.Context, chatID int64, name string) error
}

// Service — ежедневный триггер: раз в сутки в заданное локальное время
// заново входит в первый этап сценария для настроенных получателей.
type Service struct {
	flow       Starter
	recipients []int64
	at         string
	loc        *time.Location
	log        zerolog.Logger

	lastFired string
}

// NewService создаёт триггер. at — локальное время в формате ЧЧ:ММ.
func NewService(flow Starter, recipients []int64, at string, loc *time.Location, logger zerolog.Logger) (*Service, error) {
	if _, err := time.Parse("15:04", at); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTime, at)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{flow: flow, recipients: recipients, at: at, loc: loc, log: logger}, nil
}

// Run крутит поминутный цикл до отмены контекста.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now().In(s.loc)
			if s.shouldFire(now) {
				s.fire(ctx, now)
			}
		}
	}
}

// shouldFire сверяет локальное время с настройкой и защищает от повторного
// срабатывания в ту же дату.
func (s *Service) shouldFire(now time.Time) bool {
	return now.Format("15:04") == s.at && s.lastFired != now.Format("2006-01-02")
}

// fire доставляет сценарий каждому получателю. Сбой одного получателя не
// мешает остальным.
func (s *Service) fire(ctx context.Context, now time.Time) {
	s.lastFired = now.Format("2006-01-02")
	metrics.DailyTriggerRuns.Inc()
	s.log.Info().Str("at", s.at).Int("recipients", len(s.recipients)).Msg("ежедневный триггер сработал")

	for _, chatID := range s.recipients {
		recipientCtx, cancel := context.WithTimeout(ctx, recipientTimeout)
		err := s.flow.Start(recipientCtx, chatID, "")
		cancel()
		if err != nil {
			metrics.DailyTriggerFailures.Inc()
			s.log.Error().Err(err).Int64("chat", chatID).Msg("ежедневная доставка не удалась")
		}
	}
}
