// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/templui/storyloom/internal/db"
	"github.com/templui/storyloom/internal/model"
)

// NewDB opens a migrated SQLite database in a temp directory. It is closed
// when the test ends.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Init("sqlite", path+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	err = db.RunMigrations(context.Background(), conn.DB, "sqlite")
	require.NoError(t, err)

	return conn
}

// InsertUser creates a user row so stories have an owner.
func InsertUser(t *testing.T, conn *sqlx.DB, email string) *model.User {
	t.Helper()

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: "x",
		CreatedAt:    time.Now(),
	}
	_, err := conn.Exec(`INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	require.NoError(t, err)
	return user
}
