package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sweet_shop/internal/transport"
)

func ptr[T any](v T) *T { return &v }

func TestSweetService_CreateSweet(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	s := env.create(t, "  Kaju Katli ", "Dry", "12.499", 0)
	assert.Equal(t, "Kaju Katli", s.Name)
	assert.False(t, s.IsAvailable)
	assert.True(t, decimal.RequireFromString("12.50").Equal(s.Price))

	_, err := env.sweets.CreateSweet(ctx, transport.CreateSweetRequest{Name: "kaju katli", Category: "Dry", Price: decimal.NewFromInt(1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "Sweet with name 'kaju katli' already exists", err.Error())

	_, err = env.sweets.CreateSweet(ctx, transport.CreateSweetRequest{Name: "X", Category: "Dry", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, []string{"sweet_created"}, env.events.types())
}

func TestSweetService_GetSweet_CachesAndInvalidates(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	s := env.create(t, "Jalebi", "Fried", "3.20", 5)

	first, err := env.sweets.GetSweet(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, first.Quantity)

	// write behind the service's back: the cached copy is served
	require.NoError(t, env.repo.DB.Exec("UPDATE sweets SET quantity = 1 WHERE id = ?", s.ID).Error)
	cached, err := env.sweets.GetSweet(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, cached.Quantity)

	// a mutation through the service drops the entry
	_, err = env.sweets.UpdateSweet(ctx, s.ID, transport.UpdateSweetRequest{Description: ptr("crispy")})
	require.NoError(t, err)
	fresh, err := env.sweets.GetSweet(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Quantity)
	assert.Equal(t, "crispy", fresh.Description)

	_, err = env.sweets.GetSweet(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Sweet with ID 999 not found", err.Error())
}

func TestSweetService_UpdateAndDelete(t *testing.T) {
	index := newFakeIndex()
	env := newTestEnv(t, index)
	ctx := context.Background()
	a := env.create(t, "Ladoo", "Dry", "2.00", 1)
	env.create(t, "Peda", "Milk", "2.00", 1)

	_, err := env.sweets.UpdateSweet(ctx, a.ID, transport.UpdateSweetRequest{Name: ptr("Peda")})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.sweets.UpdateSweet(ctx, a.ID, transport.UpdateSweetRequest{Price: ptr(decimal.Zero)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.sweets.UpdateSweet(ctx, 404, transport.UpdateSweetRequest{})
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := env.sweets.UpdateSweet(ctx, a.ID, transport.UpdateSweetRequest{Category: ptr("Festive"), Quantity: ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, "Festive", updated.Category)
	assert.False(t, updated.IsAvailable)
	assert.Equal(t, "Festive", index.docs[a.ID].Category)

	require.NoError(t, env.sweets.DeleteSweet(ctx, a.ID))
	assert.ErrorIs(t, env.sweets.DeleteSweet(ctx, a.ID), ErrNotFound)
	assert.Equal(t, []uint{a.ID}, index.deleted)

	assert.Equal(t, []string{"sweet_created", "sweet_created", "sweet_updated", "sweet_deleted"}, env.events.types())
}

func TestSweetService_SearchSweets_Database(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.create(t, "Kaju Katli", "Dry", "12.50", 10)
	env.create(t, "Rasgulla", "Syrup", "4.00", 0)
	env.create(t, "Badam Barfi", "DRY", "9.75", 3)
	env.create(t, "Jalebi", "Fried", "3.20", 40)
	env.create(t, "Gulab Jamun", "Syrup", "5.00", 7)

	total, items, err := env.sweets.SearchSweets(ctx, transport.SearchRequest{Category: "dry"}, 0, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)

	total, _, err = env.sweets.SearchSweets(ctx, transport.SearchRequest{Category: "Syrup", InStock: ptr(true)}, 0, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, _, err = env.sweets.SearchSweets(ctx, transport.SearchRequest{
		MinPrice: ptr(decimal.NewFromInt(10)),
		MaxPrice: ptr(decimal.NewFromInt(5)),
	}, 0, 100)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSweetService_SearchSweets_IndexWithFallback(t *testing.T) {
	index := newFakeIndex()
	env := newTestEnv(t, index)
	ctx := context.Background()
	a := env.create(t, "Kaju Katli", "Dry", "12.50", 10)
	b := env.create(t, "Badam Barfi", "Dry", "9.75", 3)

	index.ids = []uint{b.ID, a.ID}
	_, items, err := env.sweets.SearchSweets(ctx, transport.SearchRequest{Name: "a"}, 0, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID)
	assert.Equal(t, "a", index.queries[0].Name)

	index.err = errIndexDown
	total, items, err := env.sweets.SearchSweets(ctx, transport.SearchRequest{Name: "kaju"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, a.ID, items[0].ID)
}

func TestSweetService_PublishFailureDoesNotFailWrite(t *testing.T) {
	env := newTestEnv(t, nil)
	env.events.err = errors.New("broker down")

	s := env.create(t, "Mysore Pak", "Dry", "6.00", 2)
	got, err := env.sweets.GetSweet(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mysore Pak", got.Name)
}

func TestSweetService_Reindex(t *testing.T) {
	index := newFakeIndex()
	env := newTestEnv(t, nil)
	env.create(t, "Ladoo", "Dry", "2.00", 1)
	env.create(t, "Peda", "Milk", "3.00", 0)

	n, err := env.sweets.Reindex(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	env.sweets.Index = index
	n, err = env.sweets.Reindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, index.docs, 2)
}
