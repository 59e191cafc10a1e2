package repo_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/repo"
	"github.com/Skotchmaster/sweet_shop/internal/testutil"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
)

func seedSweets(t *testing.T, r *repo.GormRepo) []models.Sweet {
	t.Helper()
	sweets := []models.Sweet{
		{Name: "Kaju Katli", Category: "Dry", Price: decimal.RequireFromString("12.50"), Quantity: 10, IsAvailable: true},
		{Name: "Rasgulla", Category: "Syrup", Price: decimal.RequireFromString("4.00"), Quantity: 0},
		{Name: "Badam Barfi", Category: "dry", Price: decimal.RequireFromString("9.75"), Quantity: 3, IsAvailable: true},
		{Name: "Jalebi", Category: "Fried", Price: decimal.RequireFromString("3.20"), Quantity: 40, IsAvailable: true},
		{Name: "Gulab Jamun", Category: "Syrup", Price: decimal.RequireFromString("5.00"), Quantity: 7, IsAvailable: true},
	}
	for i := range sweets {
		require.NoError(t, r.CreateSweet(context.Background(), &sweets[i]))
	}
	return sweets
}

func TestSearchSweets_Filters(t *testing.T) {
	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	seedSweets(t, r)
	ctx := context.Background()

	total, items, err := r.SearchSweets(ctx, repo.SweetFilter{Category: "Dry"}, 0, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Kaju Katli", items[0].Name)
	assert.Equal(t, "Badam Barfi", items[1].Name)

	_, items, err = r.SearchSweets(ctx, repo.SweetFilter{Name: "JAM"}, 0, 100)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Gulab Jamun", items[0].Name)

	minP, maxP := decimal.RequireFromString("4.00"), decimal.RequireFromString("10")
	_, items, err = r.SearchSweets(ctx, repo.SweetFilter{MinPrice: &minP, MaxPrice: &maxP}, 0, 100)
	require.NoError(t, err)
	names := make([]string, 0, len(items))
	for _, s := range items {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Rasgulla", "Badam Barfi", "Gulab Jamun"}, names)

	total, _, err = r.SearchSweets(ctx, repo.SweetFilter{InStock: true}, 0, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
}

func TestListSweets_Paging(t *testing.T) {
	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	seedSweets(t, r)

	total, items, err := r.ListSweets(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Badam Barfi", items[0].Name)
}

func TestCreateAndUpdateSweet_DuplicateName(t *testing.T) {
	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	sweets := seedSweets(t, r)
	ctx := context.Background()

	dup := models.Sweet{Name: "jalebi", Category: "Fried", Price: decimal.NewFromInt(1)}
	assert.ErrorIs(t, r.CreateSweet(ctx, &dup), repo.ErrDuplicateName)

	name := "Jalebi"
	_, err := r.UpdateSweet(ctx, sweets[0].ID, transport.UpdateSweetRequest{Name: &name})
	assert.ErrorIs(t, err, repo.ErrDuplicateName)

	qty := 0
	updated, err := r.UpdateSweet(ctx, sweets[0].ID, transport.UpdateSweetRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Quantity)
	assert.False(t, updated.IsAvailable)

	_, err = r.UpdateSweet(ctx, 999, transport.UpdateSweetRequest{Quantity: &qty})
	assert.True(t, repo.IsNotFound(err))
}

func TestPurchase_DecrementsAndRecords(t *testing.T) {
	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	sweets := seedSweets(t, r)
	ctx := context.Background()

	purchase, sweet, err := r.Purchase(ctx, 1, sweets[2].ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, sweet.Quantity)
	assert.False(t, sweet.IsAvailable)
	assert.True(t, decimal.RequireFromString("29.25").Equal(purchase.TotalPrice))

	_, _, err = r.Purchase(ctx, 1, sweets[2].ID, 1)
	var stockErr *repo.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.ErrorIs(t, err, repo.ErrInsufficientStock)
	assert.Equal(t, "Insufficient inventory. Available: 0, Requested: 1", stockErr.Error())

	total, history, err := r.ListPurchases(ctx, 1, 0, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, history, 1)
	assert.Equal(t, sweets[2].ID, history[0].SweetID)
}

func TestPurchase_ConcurrentBuyersNeverOversell(t *testing.T) {
	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	sweets := seedSweets(t, r)
	ctx := context.Background()
	target := sweets[0]

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func(user uint) {
			defer wg.Done()
			if _, _, err := r.Purchase(ctx, user, target.ID, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(uint(i + 1))
	}
	wg.Wait()

	assert.Equal(t, target.Quantity, succeeded)
	got, err := r.GetSweet(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}

func TestRestockAndDelete(t *testing.T) {
	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	sweets := seedSweets(t, r)
	ctx := context.Background()

	restocked, err := r.Restock(ctx, sweets[1].ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, restocked.Quantity)
	assert.True(t, restocked.IsAvailable)

	_, err = r.Restock(ctx, 999, 1)
	assert.True(t, repo.IsNotFound(err))

	require.NoError(t, r.DeleteSweet(ctx, sweets[1].ID))
	assert.True(t, repo.IsNotFound(r.DeleteSweet(ctx, sweets[1].ID)))
}

func TestSweetsByIDs_PreservesOrder(t *testing.T) {
	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	sweets := seedSweets(t, r)

	got, err := r.SweetsByIDs(context.Background(), []uint{sweets[3].ID, 999, sweets[0].ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Jalebi", got[0].Name)
	assert.Equal(t, "Kaju Katli", got[1].Name)
}
