package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sweet_shop/internal/repo"
	pkgdb "github.com/Skotchmaster/sweet_shop/pkg/db"
)

// NewDB opens a migrated SQLite database that lives for the duration of t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sweetshop.db")
	db, err := pkgdb.Open(context.Background(), "sqlite://"+path)
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))

	t.Cleanup(func() { _ = pkgdb.Close(db) })
	return db
}
