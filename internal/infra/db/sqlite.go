package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// currentSchemaVersion — актуальная версия схемы (pragma user_version).
const currentSchemaVersion = 1

// Open открывает базу журнала доставок в dir/historybot.db. Каталог лежит на
// персистентном маунте и переживает рестарты процесса, но не обязательно
// полный редеплой.
func Open(dir string) (*sql.DB, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("создание каталога хранилища: %w", err)
	}
	path := filepath.Join(dir, "historybot.db")
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("открытие базы: %w", err)
	}
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func migrate(conn *sql.DB) error {
	var version int
	if err := conn.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return fmt.Errorf("чтение user_version: %w", err)
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS deliveries (
		  fingerprint  TEXT PRIMARY KEY,
		  title        TEXT NOT NULL,
		  source       TEXT NOT NULL,
		  delivered_at INTEGER NOT NULL
		);
		`
		if _, err := conn.Exec(schema); err != nil {
			return fmt.Errorf("миграция 1: %w", err)
		}
		if err := setVersion(conn, 1); err != nil {
			return err
		}
	}

	return nil
}

func setVersion(conn *sql.DB, version int) error {
	if _, err := conn.Exec(fmt.Sprintf("PRAGMA user_version=%d", version)); err != nil {
		return fmt.Errorf("запись user_version: %w", err)
	}
	return nil
}
