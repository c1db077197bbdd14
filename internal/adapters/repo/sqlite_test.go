package repo

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"history-digest-bot/internal/infra/db"
)

func openTestStore(t *testing.T, dir string) *SQLite {
	t.Helper()
	conn, err := db.Open(dir)
	if err != nil {
		t.Fatalf("не удалось открыть базу: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewSQLite(conn, zerolog.Nop())
}

func TestMarkAndCheck(t *testing.T) {
	store := openTestStore(t, t.TempDir())
	ctx := context.Background()

	if store.HasBeenSent(ctx, "Ancient Rome", "History.com") {
		t.Fatal("до записи статья должна считаться новой")
	}
	store.MarkSent(ctx, "Ancient Rome", "History.com")
	if !store.HasBeenSent(ctx, "Ancient Rome", "History.com") {
		t.Fatal("после записи статья должна считаться отправленной")
	}
	if store.HasBeenSent(ctx, "Ancient Rome", "Smithsonian Magazine") {
		t.Fatal("тот же заголовок из другого источника — другая статья")
	}
}

func TestMarkSentIdempotent(t *testing.T) {
	store := openTestStore(t, t.TempDir())
	ctx := context.Background()

	store.MarkSent(ctx, "Ancient Rome", "History.com")
	store.MarkSent(ctx, "Ancient Rome", "History.com")

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if stats.Total != 1 {
		t.Fatalf("повторная отметка не должна добавлять строк, получили %d", stats.Total)
	}
	if stats.LastDeliveredAt.IsZero() {
		t.Fatal("ожидали время последней доставки")
	}
}

func TestSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	conn, err := db.Open(dir)
	if err != nil {
		t.Fatalf("не удалось открыть базу: %v", err)
	}
	store := NewSQLite(conn, zerolog.Nop())
	store.MarkSent(ctx, "Ancient Rome", "History.com")
	conn.Close()

	// Рестарт процесса: то же содержимое каталога, новое соединение.
	reopened := openTestStore(t, dir)
	if !reopened.HasBeenSent(ctx, "Ancient Rome", "History.com") {
		t.Fatal("журнал доставок должен переживать перезапуск")
	}
}

func TestDegradedWithoutDB(t *testing.T) {
	store := NewSQLite(nil, zerolog.Nop())
	ctx := context.Background()

	if store.HasBeenSent(ctx, "Ancient Rome", "History.com") {
		t.Fatal("без базы все статьи считаются новыми")
	}
	store.MarkSent(ctx, "Ancient Rome", "History.com") // no-op, без паники
	if _, err := store.Stats(ctx); err == nil {
		t.Fatal("статистика без базы должна возвращать ошибку")
	}
	if err := store.Ping(ctx); err == nil {
		t.Fatal("ping без базы должен возвращать ошибку")
	}
}

func TestStatsEmpty(t *testing.T) {
	store := openTestStore(t, t.TempDir())

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if stats.Total != 0 || !stats.LastDeliveredAt.IsZero() {
		t.Fatalf("пустой журнал: получили %+v", stats)
	}
}
