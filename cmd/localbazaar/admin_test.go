package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localbazaar/internal/repos"
	"localbazaar/internal/services"
)

// demoStore points the CLI at a fresh seeded database file. A :memory: DSN
// would not outlive the command's own connection.
func demoStore(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("DB_DSN", dsn)
	t.Setenv("LOG_FILE", "")
	t.Setenv("LOG_LEVEL", "warn")

	db, err := repos.OpenDB(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	seeded, err := repos.SeedDemo(context.Background(), db)
	require.NoError(t, err)
	require.True(t, seeded)
	return db
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs([]string{}) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestGrantAdminCommand(t *testing.T) {
	db := demoStore(t)

	out, err := runCLI(t, "grant-admin", "bea@campus.test")
	require.NoError(t, err)
	assert.Equal(t, "Bea (bea@campus.test) is now an admin\n", out)

	var isAdmin bool
	require.NoError(t, db.Get(&isAdmin, `SELECT is_admin FROM users WHERE email = 'bea@campus.test'`))
	assert.True(t, isAdmin)

	_, err = runCLI(t, "grant-admin", "nobody@campus.test")
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	_, err = runCLI(t, "grant-admin")
	assert.Error(t, err)
}

func TestReconcileCommand(t *testing.T) {
	db := demoStore(t)

	out, err := runCLI(t, "reconcile")
	require.NoError(t, err)
	assert.Equal(t, "corrected 0 user(s)\n", out)

	_, err = db.Exec(`UPDATE users SET total_listings = 40, total_sales = 9 WHERE id = 'u-sam'`)
	require.NoError(t, err)

	out, err = runCLI(t, "reconcile")
	require.NoError(t, err)
	assert.Equal(t, "corrected 1 user(s)\n", out)

	var sales int
	require.NoError(t, db.Get(&sales, `SELECT total_sales FROM users WHERE id = 'u-sam'`))
	assert.Zero(t, sales)
}
