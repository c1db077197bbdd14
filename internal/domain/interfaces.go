package domain

import (
	"context"
	"errors"
)

// ErrNoVideo возвращается поиском, когда подходящий ролик не найден.
var ErrNoVideo = errors.New("подходящее видео не найдено")

// ContentSource отдаёт кандидатов по рубрике, перебирая провайдеров в
// фиксированном порядке приоритета. Ошибка означает, что недоступны все
// провайдеры рубрики.
type ContentSource interface {
	Fetch(ctx context.Context, category Category) ([]Item, error)
	Ping(ctx context.Context, category Category) error
}

// Translator переводит текст на целевой язык. hint — короткое описание
// контекста для качества перевода. Успешный результат не смешивает язык
// оригинала и целевой язык в одной строке.
type Translator interface {
	Translate(ctx context.Context, text, hint string) (string, error)
}

// VideoSearcher ищет короткий ролик по теме. Отсутствие результата — ErrNoVideo.
type VideoSearcher interface {
	Search(ctx context.Context, query string) (Video, error)
}

// DeliveryStore — журнал уже отправленных статей, переживающий рестарты.
// Чтение работает по принципу fail-open: при недоступном хранилище статья
// считается новой, дубль предпочтительнее молчания. Ошибки записи логируются
// и не поднимаются выше.
type DeliveryStore interface {
	HasBeenSent(ctx context.Context, title, source string) bool
	MarkSent(ctx context.Context, title, source string)
	Stats(ctx context.Context) (DeliveryStats, error)
	Ping(ctx context.Context) error
}

// Messenger отправляет сообщения в чат.
type Messenger interface {
	SendText(chatID int64, text string) error
	SendWithButton(chatID int64, text, label, action string) error
}
