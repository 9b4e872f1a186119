package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "1.0"
mode: dev
database:
  path: data/library.db
server:
  addr: ":8443"
auth:
  secret: "s3cret"
  admin_id: "admin"
  admin_password: "pw"
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Mode)
	assert.Equal(t, "data/library.db", cfg.DB.Path)
	assert.Equal(t, ":8443", cfg.Server.Addr)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConnectCreatesDirAndMigrates(t *testing.T) {
	// ネストしたディレクトリごと作られる
	path := filepath.Join(t.TempDir(), "nested", "dir", "lib.db")

	conn, err := Connect(DatabaseConfig{Path: path})
	require.NoError(t, err)
	defer conn.Close()

	for _, table := range []string{"books", "students", "lent", "auth_accounts"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}

	var version int
	require.NoError(t, conn.QueryRow(`PRAGMA user_version`).Scan(&version))
	assert.Equal(t, schemaVersion, version)
}

func TestConnectIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")

	first, err := Connect(DatabaseConfig{Path: path})
	require.NoError(t, err)
	_, err = first.Exec(`INSERT INTO books (id, title, author, quantity, status, created_at)
		VALUES ('b1', 't', 'a', 1, 'available', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// 再接続してもデータは消えない
	second, err := Connect(DatabaseConfig{Path: path})
	require.NoError(t, err)
	defer second.Close()

	var n int
	require.NoError(t, second.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&n))
	assert.Equal(t, 1, n)
}
