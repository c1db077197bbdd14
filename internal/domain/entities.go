package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Category определяет рубрику контента.
type Category string

const (
	// CategoryHistory — исторические события дня.
	CategoryHistory Category = "history"
	// CategoryWorld — факты о природе и мире.
	CategoryWorld Category = "world"
)

// Item описывает статью из внешнего источника. После получения не изменяется.
type Item struct {
	Title      string
	Body       string
	SourceName string
	Link       string
	Category   Category
}

// Fingerprint возвращает детерминированный отпечаток статьи по паре
// (заголовок, источник). Тело в отпечаток не входит: перевод может
// отличаться от запуска к запуску.
func (i Item) Fingerprint() string {
	return Fingerprint(i.Title, i.SourceName)
}

// Fingerprint вычисляет отпечаток для дедупликации.
func Fingerprint(title, source string) string {
	h := sha256.New()
	h.Write([]byte(title))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

// StageItem — статья, подготовленная конвейером к отправке: переведённый
// заголовок и усечённое тело. Translated=false означает, что перевод не
// удался и оба поля остались на языке оригинала.
type StageItem struct {
	Item       Item
	Title      string
	Body       string
	Translated bool
}

// DeliveryRecord фиксирует уже отправленную статью. Записи только
// добавляются, уникальны по отпечатку и никогда не удаляются.
type DeliveryRecord struct {
	Fingerprint string
	Title       string
	Source      string
	DeliveredAt time.Time
}

// DeliveryStats — агрегат по журналу доставок для команды /stats.
type DeliveryStats struct {
	Total           int64
	LastDeliveredAt time.Time
}

// Stage задаёт текущий шаг сценария. Завершённая сессия не хранится:
// отсутствие записи означает, что активного сценария нет.
type Stage int

const (
	// StageAwaitingWorld — факт из истории отправлен, ждём кнопку «мир».
	StageAwaitingWorld Stage = iota
	// StageAwaitingVideo — факт о мире отправлен, ждём кнопку «видео».
	StageAwaitingVideo
)

// Session хранит прогресс одного прохода сценария для чата.
type Session struct {
	ID        string
	ChatID    int64
	Stage     Stage
	Topic     string
	StartedAt time.Time
}

// Video описывает найденный ролик.
type Video struct {
	Title       string
	Description string
	URL         string
}
