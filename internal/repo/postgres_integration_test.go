package repo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/repo"
	pkgdb "github.com/Skotchmaster/sweet_shop/pkg/db"
)

func startPostgres(t *testing.T) (dsn string) {
	t.Helper()
	ctx := context.Background()

	// testcontainers panics when no Docker daemon is reachable
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("postgres container unavailable: %v", r)
		}
	}()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("sweetshop"),
		postgres.WithUsername("sweetshop"),
		postgres.WithPassword("sweetshop"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := pg.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err = pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestPostgres_PurchaseUnderContention(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	dsn := startPostgres(t)
	ctx := context.Background()

	db, err := pkgdb.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })
	require.NoError(t, repo.AutoMigrate(db))

	r := &repo.GormRepo{DB: db}
	sweet := &models.Sweet{Name: "Kaju Katli", Category: "Dry", Price: decimal.RequireFromString("12.50"), Quantity: 10, IsAvailable: true}
	require.NoError(t, r.CreateSweet(ctx, sweet))

	t.Run("duplicate name is rejected case-insensitively", func(t *testing.T) {
		err := r.CreateSweet(ctx, &models.Sweet{Name: "KAJU KATLI", Category: "Dry", Price: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, repo.ErrDuplicateName)
	})

	t.Run("concurrent purchases never oversell", func(t *testing.T) {
		var (
			wg sync.WaitGroup
			mu sync.Mutex
			ok int
		)
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func(user uint) {
				defer wg.Done()
				if _, _, err := r.Purchase(ctx, user, sweet.ID, 1); err == nil {
					mu.Lock()
					ok++
					mu.Unlock()
				} else {
					assert.ErrorIs(t, err, repo.ErrInsufficientStock)
				}
			}(uint(i + 1))
		}
		wg.Wait()

		assert.Equal(t, 10, ok)
		got, err := r.GetSweet(ctx, sweet.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Quantity)
		assert.False(t, got.IsAvailable)
	})

	t.Run("search is case-insensitive on postgres", func(t *testing.T) {
		total, _, err := r.SearchSweets(ctx, repo.SweetFilter{Name: "katli", Category: "DRY"}, 0, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})
}
