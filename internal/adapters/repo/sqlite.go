package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"history-digest-bot/internal/domain"
	"history-digest-bot/internal/infra/metrics"
)

// SQLite реализует журнал доставок на базе modernc sqlite. Допускает nil
// вместо базы: если персистентный маунт недоступен, хранилище деградирует
// до «все статьи новые» вместо отказа всего бота.
type SQLite struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLite создаёт адаптер хранилища.
func NewSQLite(db *sql.DB, logger zerolog.Logger) *SQLite {
	return &SQLite{db: db, log: logger}
}

var _ domain.DeliveryStore = (*SQLite)(nil)

func (s *SQLite) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// HasBeenSent проверяет отпечаток (заголовок, источник) в журнале.
// Любая ошибка хранилища трактуется как «не отправляли»: редкий дубль
// лучше, чем заблокированная доставка.
func (s *SQLite) HasBeenSent(ctx context.Context, title, source string) bool {
	if s.db == nil {
		return false
	}
	ctx, cancel := s.connCtx(ctx)
	defer cancel()

	fp := domain.Fingerprint(title, source)
	start := time.Now()
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM deliveries WHERE fingerprint = ?`, fp).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.ObserveNetworkRequest("sqlite", "deliveries_select", "deliveries", start, nil)
		return false
	}
	metrics.ObserveNetworkRequest("sqlite", "deliveries_select", "deliveries", start, err)
	if err != nil {
		s.log.Warn().Err(err).Str("title", title).Msg("хранилище недоступно, считаем статью новой")
		return false
	}
	return true
}

// MarkSent идемпотентно добавляет запись о доставке. Повторная вставка того
// же отпечатка — no-op. Ошибки записи логируются и не поднимаются выше.
func (s *SQLite) MarkSent(ctx context.Context, title, source string) {
	if s.db == nil {
		return
	}
	ctx, cancel := s.connCtx(ctx)
	defer cancel()

	fp := domain.Fingerprint(title, source)
	start := time.Now()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO deliveries (fingerprint, title, source, delivered_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (fingerprint) DO NOTHING
`, fp, title, source, time.Now().UTC().Unix())
	metrics.ObserveNetworkRequest("sqlite", "deliveries_insert", "deliveries", start, err)
	if err != nil {
		s.log.Error().Err(err).Str("title", title).Str("source", source).Msg("не удалось записать доставку")
	}
}

// Stats возвращает агрегат по журналу для команды /stats.
func (s *SQLite) Stats(ctx context.Context) (domain.DeliveryStats, error) {
	if s.db == nil {
		return domain.DeliveryStats{}, fmt.Errorf("repo: хранилище отключено")
	}
	ctx, cancel := s.connCtx(ctx)
	defer cancel()

	start := time.Now()
	var (
		total int64
		last  sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), MAX(delivered_at) FROM deliveries`).Scan(&total, &last)
	metrics.ObserveNetworkRequest("sqlite", "deliveries_stats", "deliveries", start, err)
	if err != nil {
		return domain.DeliveryStats{}, fmt.Errorf("repo: статистика доставок: %w", err)
	}
	stats := domain.DeliveryStats{Total: total}
	if last.Valid {
		stats.LastDeliveredAt = time.Unix(last.Int64, 0).UTC()
	}
	return stats, nil
}

// Ping проверяет доступность хранилища.
func (s *SQLite) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("repo: хранилище отключено")
	}
	ctx, cancel := s.connCtx(ctx)
	defer cancel()
	return s.db.PingContext(ctx)
}
