package flow

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"history-digest-bot/internal/domain"
	"history-digest-bot/internal/infra/metrics"
	"history-digest-bot/internal/usecase/digest"
)

// Идентификаторы действий кнопок. Колбэк сверяется с ожидаемым действием
// текущего этапа: несовпадение — устаревшая кнопка, молча игнорируем.
const (
	ActionWorld = "world_content"
	ActionVideo = "video_content"
)

const (
	btnWorldLabel = "📸 תראה לי משהו מעניין מהעולם"
	btnVideoLabel = "🎬 סיים לי עם סרטון קצר"

	msgLoadWorld = "⏳ מחפש תוכן מעניין מהעולם..."
	msgLoadVideo = "⏳ מחפש סרטון מעניין..."
	msgNoContent = "❌ מצטער, לא הצלחתי לטעון תוכן כרגע. נסה שוב מאוחר יותר."
	msgCancelled = "🌀 הסבב בוטל. שלח /start כדי להתחיל מחדש."
)

// Запросы на случай, когда у сессии нет темы для поиска ролика.
var fallbackVideoQueries = []string{
	"היסטוריה מעניינת",
	"עובדות היסטוריות",
	"גילויים ארכיאולוגיים",
}

// Pipeline — то, что state machine требует от конвейера агрегации.
type Pipeline interface {
	NextUnseen(ctx context.Context, category domain.Category) (domain.StageItem, error)
}

// Service реализует сценарий из трёх этапов (история → мир → видео) как
// явную машину состояний. Сессии живут только в памяти: рестарт теряет
// незавершённые проходы, каждый этап идемпотентен и переинициируется
// пользователем.
type Service struct {
	mu       sync.Mutex
	sessions map[int64]*domain.Session

	pipeline  Pipeline
	store     domain.DeliveryStore
	videos    domain.VideoSearcher
	messenger domain.Messenger
	log       zerolog.Logger
}

// NewService создаёт машину состояний сценария.
func NewService(pipeline Pipeline, store domain.DeliveryStore, videos domain.VideoSearcher, messenger domain.Messenger, logger zerolog.Logger) *Service {
	return &Service{
		sessions:  make(map[int64]*domain.Session),
		pipeline:  pipeline,
		store:     store,
		videos:    videos,
		messenger: messenger,
		log:       logger,
	}
}

// Start запускает сценарий заново: действует и для команды /start, и для
// ежедневного триггера. Активная сессия чата вытесняется. Ошибка
// возвращается только при сбое отправки.
func (s *Service) Start(ctx context.Context, chatID int64, name string) error {
	if err := s.messenger.SendText(chatID, digest.FormatWelcome(name)); err != nil {
		return err
	}

	item, err := s.pipeline.NextUnseen(ctx, domain.CategoryHistory)
	if err != nil {
		if !errors.Is(err, digest.ErrNoFreshContent) {
			s.log.Error().Err(err).Int64("chat", chatID).Msg("конвейер вернул ошибку на этапе истории")
		}
		s.drop(chatID)
		return s.messenger.SendText(chatID, msgNoContent)
	}

	if err := s.messenger.SendWithButton(chatID, digest.FormatHistory(item), btnWorldLabel, ActionWorld); err != nil {
		return err
	}
	// Журнал пополняется только после подтверждённой отправки.
	s.store.MarkSent(ctx, item.Item.Title, item.Item.SourceName)
	metrics.IncDelivery("history")
	metrics.SessionsStarted.Inc()

	sess := &domain.Session{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Stage:     domain.StageAwaitingWorld,
		Topic:     item.Item.Title,
		StartedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	if prev, ok := s.sessions[chatID]; ok {
		s.log.Info().Str("session", prev.ID).Int64("chat", chatID).Msg("сессия вытеснена новым запуском")
	}
	s.sessions[chatID] = sess
	s.mu.Unlock()

	s.log.Info().Str("session", sess.ID).Int64("chat", chatID).Msg("сценарий запущен")
	return nil
}

// HandleAction обрабатывает нажатие кнопки. Колбэки, не совпадающие с
// ожидаемым действием текущего этапа, игнорируются без ответа.
func (s *Service) HandleAction(ctx context.Context, chatID int64, action string) {
	s.mu.Lock()
	sess, ok := s.sessions[chatID]
	s.mu.Unlock()
	if !ok {
		s.log.Debug().Int64("chat", chatID).Str("action", action).Msg("колбэк без активной сессии")
		return
	}

	switch {
	case sess.Stage == domain.StageAwaitingWorld && action == ActionWorld:
		s.worldStage(ctx, sess)
	case sess.Stage == domain.StageAwaitingVideo && action == ActionVideo:
		s.videoStage(ctx, sess)
	default:
		s.log.Debug().Str("session", sess.ID).Str("action", action).Int("stage", int(sess.Stage)).Msg("устаревший колбэк, игнорируем")
	}
}

// Cancel прерывает активный сценарий.
func (s *Service) Cancel(ctx context.Context, chatID int64) {
	s.drop(chatID)
	if err := s.messenger.SendText(chatID, msgCancelled); err != nil {
		s.log.Error().Err(err).Int64("chat", chatID).Msg("не удалось подтвердить отмену")
	}
}

// Active сообщает, есть ли у чата активная сессия.
func (s *Service) Active(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[chatID]
	return ok
}

func (s *Service) worldStage(ctx context.Context, sess *domain.Session) {
	if err := s.messenger.SendText(sess.ChatID, msgLoadWorld); err != nil {
		s.log.Error().Err(err).Str("session", sess.ID).Msg("не удалось отправить статус загрузки")
		return
	}

	item, err := s.pipeline.NextUnseen(ctx, domain.CategoryWorld)
	if err != nil {
		if !errors.Is(err, digest.ErrNoFreshContent) {
			s.log.Error().Err(err).Str("session", sess.ID).Msg("конвейер вернул ошибку на этапе мира")
		}
		s.drop(sess.ChatID)
		if err := s.messenger.SendText(sess.ChatID, msgNoContent); err != nil {
			s.log.Error().Err(err).Str("session", sess.ID).Msg("не удалось отправить сообщение об отсутствии контента")
		}
		return
	}

	if err := s.messenger.SendWithButton(sess.ChatID, digest.FormatWorld(item), btnVideoLabel, ActionVideo); err != nil {
		// Этап не засчитан: состояние не меняем, кнопку можно нажать ещё раз.
		s.log.Error().Err(err).Str("session", sess.ID).Msg("не удалось отправить этап мира")
		return
	}
	s.store.MarkSent(ctx, item.Item.Title, item.Item.SourceName)
	metrics.IncDelivery("world")

	s.mu.Lock()
	sess.Stage = domain.StageAwaitingVideo
	sess.Topic = item.Item.Title
	s.mu.Unlock()
}

func (s *Service) videoStage(ctx context.Context, sess *domain.Session) {
	if err := s.messenger.SendText(sess.ChatID, msgLoadVideo); err != nil {
		s.log.Error().Err(err).Str("session", sess.ID).Msg("не удалось отправить статус загрузки")
		return
	}

	topic := sess.Topic
	if topic == "" {
		topic = fallbackVideoQueries[rand.Intn(len(fallbackVideoQueries))]
	}

	text := ""
	video, err := s.videos.Search(ctx, topic)
	switch {
	case err == nil:
		text = digest.FormatVideo(video)
		metrics.IncDelivery("video")
	case errors.Is(err, domain.ErrNoVideo):
		text = digest.FormatClosing()
	default:
		s.log.Warn().Err(err).Str("session", sess.ID).Msg("поиск видео недоступен, завершаем без ролика")
		text = digest.FormatClosing()
	}

	if err := s.messenger.SendText(sess.ChatID, text); err != nil {
		s.log.Error().Err(err).Str("session", sess.ID).Msg("не удалось отправить завершение сценария")
		return
	}
	s.drop(sess.ChatID)
	s.log.Info().Str("session", sess.ID).Int64("chat", sess.ChatID).Msg("сценарий завершён")
}

func (s *Service) drop(chatID int64) {
	s.mu.Lock()
	delete(s.sessions, chatID)
	s.mu.Unlock()
}
