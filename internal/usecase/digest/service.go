package digest

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"history-digest-bot/internal/domain"
)

// ErrNoFreshContent возвращается, когда все провайдеры недоступны или все
// кандидаты выигравшего провайдера уже отправлялись. Работа на один запрос
// ограничена одной пачкой: после неё другие провайдеры не опрашиваются.
var ErrNoFreshContent = errors.New("нет свежего контента")

// Limits задаёт максимум знаков тела по этапам.
type Limits struct {
	History int
	World   int
}

// Service — конвейер агрегации: отдаёт первую ещё не отправленную статью
// рубрики, переведённую и усечённую до лимита этапа. Запись в журнал
// доставок остаётся за вызывающим — отмечать надо только после
// подтверждённой отправки.
type Service struct {
	source     domain.ContentSource
	store      domain.DeliveryStore
	translator domain.Translator
	limits     Limits
	log        zerolog.Logger
}

// NewService создаёт конвейер.
func NewService(source domain.ContentSource, store domain.DeliveryStore, translator domain.Translator, limits Limits, logger zerolog.Logger) *Service {
	if limits.History <= 0 {
		limits.History = 300
	}
	if limits.World <= 0 {
		limits.World = 250
	}
	return &Service{source: source, store: store, translator: translator, limits: limits, log: logger}
}

// NextUnseen возвращает первую не отправлявшуюся статью рубрики. Если
// перевод не удался, статья возвращается на языке оригинала с
// Translated=false — форматирование для такого текста отличается.
func (s *Service) NextUnseen(ctx context.Context, category domain.Category) (domain.StageItem, error) {
	items, err := s.source.Fetch(ctx, category)
	if err != nil {
		s.log.Warn().Err(err).Str("category", string(category)).Msg("источники недоступны")
		return domain.StageItem{}, ErrNoFreshContent
	}

	var chosen *domain.Item
	for idx := range items {
		if !s.store.HasBeenSent(ctx, items[idx].Title, items[idx].SourceName) {
			chosen = &items[idx]
			break
		}
	}
	if chosen == nil {
		s.log.Info().Str("category", string(category)).Int("candidates", len(items)).Msg("все кандидаты уже отправлялись")
		return domain.StageItem{}, ErrNoFreshContent
	}

	stage := domain.StageItem{Item: *chosen, Title: chosen.Title, Body: bodyOrFallback(*chosen), Translated: false}

	titleHint, bodyHint := hintsFor(category)
	title, titleErr := s.translator.Translate(ctx, stage.Title, titleHint)
	body, bodyErr := "", error(nil)
	if titleErr == nil {
		body, bodyErr = s.translator.Translate(ctx, stage.Body, bodyHint)
	}
	switch {
	case titleErr != nil:
		s.log.Warn().Err(titleErr).Str("title", chosen.Title).Msg("перевод не удался, отдаём оригинал")
	case bodyErr != nil:
		// Переведённый заголовок с непереведённым телом смешивать нельзя.
		s.log.Warn().Err(bodyErr).Str("title", chosen.Title).Msg("перевод тела не удался, отдаём оригинал целиком")
	default:
		stage.Title = title
		stage.Body = body
		stage.Translated = true
	}

	stage.Body = TruncateAtWord(stage.Body, s.limitFor(category))
	return stage, nil
}

func (s *Service) limitFor(category domain.Category) int {
	if category == domain.CategoryWorld {
		return s.limits.World
	}
	return s.limits.History
}

func bodyOrFallback(item domain.Item) string {
	if item.Body != "" {
		return item.Body
	}
	if item.Category == domain.CategoryWorld {
		return "תוכן מעניין ללא תיאור זמין"
	}
	return "לא זמין תיאור לכתבה זו"
}

func hintsFor(category domain.Category) (title, body string) {
	if category == domain.CategoryWorld {
		return "כותרת של תוכן מעניין על טבע או תרבות", "תיאור של תוכן מעניין"
	}
	return "כותרת של אירוע היסטורי", "תקציר של אירוע היסטורי"
}
