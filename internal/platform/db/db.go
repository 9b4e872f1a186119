package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"
)

const driverName = "sqlite3"

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	Certificate Certs  `yaml:"certificate"`
}

type AuthConfig struct {
	Secret        string `yaml:"secret"`
	AdminID       string `yaml:"admin_id"`
	AdminPassword string `yaml:"admin_password"`
}

type Config struct {
	Version string         `yaml:"version"`
	Mode    string         `yaml:"mode"`
	DB      DatabaseConfig `yaml:"database"`
	Server  ServerConfig   `yaml:"server"`
	Auth    AuthConfig     `yaml:"auth"`
}

func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込み失敗: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("設定ファイルのパース失敗: %w", err)
	}
	return &cfg, nil
}

// Connect opens (or creates) the SQLite database file and applies migrations.
func Connect(c DatabaseConfig) (*sql.DB, error) {
	// 初回起動でディレクトリが無いと open が失敗する
	if dir := filepath.Dir(c.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("DBディレクトリの作成に失敗: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", c.Path)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("接続準備に失敗: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("DB接続に失敗: %w", err)
	}

	// 組み込みDBなので控えめに（書き込みは busy_timeout で直列化される）
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

const schemaVersion = 1

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS books (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		author     TEXT NOT NULL,
		quantity   INTEGER NOT NULL DEFAULT 0,
		isbn       TEXT NOT NULL DEFAULT '',
		category   TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		grade        TEXT NOT NULL DEFAULT '',
		phone_number TEXT,
		student_id   TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL,
		created_at   TIMESTAMP NOT NULL
	)`,
	// book_id / student_id に FK は張らない。貸出記録は実体の削除後も残す運用。
	`CREATE TABLE IF NOT EXISTS lent (
		id          TEXT PRIMARY KEY,
		book_id     TEXT NOT NULL,
		student_id  TEXT NOT NULL,
		lent_at     TIMESTAMP NOT NULL,
		due_date    TIMESTAMP NOT NULL,
		returned_at TIMESTAMP,
		status      TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS auth_accounts (
		id            TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL,
		is_disabled   INTEGER NOT NULL DEFAULT 0,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lent_student_status ON lent (student_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_lent_book ON lent (book_id)`,
	`CREATE INDEX IF NOT EXISTS idx_lent_lent_at ON lent (lent_at)`,
}

func applyMigrations(db *sql.DB) error {
	var current int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&current); err != nil {
		return fmt.Errorf("スキーマバージョンの取得に失敗: %w", err)
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	for _, stmt := range migrations {
		if _, err := tx.Exec(stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("マイグレーション失敗: %w", err)
		}
	}
	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
