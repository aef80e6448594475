package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "version: \"1.0\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Mode)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "data/library.db", cfg.DB.Path)
	assert.Equal(t, 14, cfg.Loans.DefaultDays)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfigMySQL(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
mode: release
database:
  driver: mysql
  host: db
  user: lib
  password: secret
  dbname: library
loans:
  default_days: 21
`))
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 3306, cfg.DB.Port)
	assert.Equal(t, "lib", cfg.DB.Username)
	assert.Empty(t, cfg.DB.Path)
	assert.Equal(t, 21, cfg.Loans.DefaultDays)
}

func TestLoadConfigRejectsUnknownValues(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "mode: staging\n"))
	assert.ErrorContains(t, err, "invalid mode")

	_, err = LoadConfig(writeConfig(t, "database:\n  driver: postgres\n"))
	assert.ErrorContains(t, err, "unsupported database driver")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "lib.db"))
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, Migrate(ctx, conn, DriverSQLite))
	require.NoError(t, Migrate(ctx, conn, DriverSQLite))

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('books','book_authors','members','loans')`).Scan(&n))
	assert.Equal(t, 4, n)

	assert.Error(t, Migrate(ctx, conn, "postgres"))
}

func TestCopyCheckConstraint(t *testing.T) {
	ctx := context.Background()
	conn, err := OpenSQLite(filepath.Join(t.TempDir(), "lib.db"))
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, Migrate(ctx, conn, DriverSQLite))

	_, err = conn.Exec(`INSERT INTO books (title, category, isbn, total_copies, available_copies) VALUES ('t', 'FICTION', 'x', 1, 2)`)
	assert.Error(t, err)
}

func TestIsDuplicate(t *testing.T) {
	ctx := context.Background()
	conn, err := OpenSQLite(filepath.Join(t.TempDir(), "lib.db"))
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, Migrate(ctx, conn, DriverSQLite))

	const q = `INSERT INTO members (member_id, name, email, active) VALUES ('M-1', 'a', 'a@example.com', 1)`
	_, err = conn.Exec(q)
	require.NoError(t, err)
	_, err = conn.Exec(q)
	require.Error(t, err)
	assert.True(t, IsDuplicate(err))

	assert.True(t, IsDuplicate(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsDuplicate(&mysql.MySQLError{Number: 1452}))
	assert.False(t, IsDuplicate(os.ErrNotExist))
}

func TestRunInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	conn, err := OpenSQLite(filepath.Join(t.TempDir(), "lib.db"))
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, Migrate(ctx, conn, DriverSQLite))

	boom := assert.AnError
	err = RunInTx(ctx, conn, nil, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO members (member_id, name, email) VALUES ('M-2', 'b', 'b@example.com')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM members`).Scan(&n))
	assert.Zero(t, n)
}
