package storefront_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sweet_shop/internal/apiclient"
	"github.com/Skotchmaster/sweet_shop/internal/storefront"
	"github.com/Skotchmaster/sweet_shop/internal/testutil/backend"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
)

func adminClient(t *testing.T, b *backend.Backend) *apiclient.Client {
	t.Helper()
	b.User(t, backend.AdminEmail)
	c := apiclient.NewClient(b.URL())
	tok, err := c.Login(context.Background(), transport.LoginRequest{Email: backend.AdminEmail, Password: backend.Password})
	require.NoError(t, err)
	c.SetToken(tok.AccessToken)
	return c
}

func lastText(t *testing.T, b *storefront.NoticeBoard) string {
	t.Helper()
	n, ok := b.Last()
	require.True(t, ok)
	return n.Text
}

func TestAdmin_MutationsReload(t *testing.T) {
	b := backend.Start(t)
	api := adminClient(t, b)
	var confirmed atomic.Int32
	a := storefront.NewAdmin(api, storefront.ConfirmFunc(func(prompt string) bool {
		confirmed.Add(1)
		assert.Equal(t, "Are you sure you want to delete this sweet?", prompt)
		return true
	}))
	t.Cleanup(a.Close)
	ctx := context.Background()

	require.NoError(t, a.Create(ctx, storefront.SweetForm{Name: "Kaju Katli", Category: "Dry", Price: decimal.RequireFromString("12.50"), Quantity: 0}))
	assert.Equal(t, "Sweet created!", lastText(t, a.Notices()))
	items, err := a.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	id := items[0].ID
	assert.False(t, items[0].IsAvailable)

	err = a.Create(ctx, storefront.SweetForm{Name: "kaju katli", Category: "Dry", Price: decimal.NewFromInt(1)})
	require.Error(t, err)
	assert.Equal(t, "Sweet with name 'kaju katli' already exists", lastText(t, a.Notices()))

	require.NoError(t, a.Update(ctx, id, storefront.SweetForm{Name: "Kaju Katli", Category: "Festive", Price: decimal.NewFromInt(13), Quantity: 0}))
	assert.Equal(t, "Sweet updated!", lastText(t, a.Notices()))

	require.NoError(t, a.Restock(ctx, id, 12))
	assert.Equal(t, "Restocked successfully!", lastText(t, a.Notices()))
	items, _ = a.Items(ctx)
	assert.Equal(t, 12, items[0].Quantity)
	assert.Equal(t, "Festive", items[0].Category)
	assert.True(t, items[0].IsAvailable)

	err = a.Restock(ctx, 999, 1)
	require.Error(t, err)
	assert.Equal(t, "Sweet with ID 999 not found", lastText(t, a.Notices()))

	require.NoError(t, a.Delete(ctx, id))
	assert.Equal(t, "Sweet deleted!", lastText(t, a.Notices()))
	assert.EqualValues(t, 1, confirmed.Load())
	items, _ = a.Items(ctx)
	assert.Empty(t, items)
}

type countingAdminAPI struct {
	storefront.AdminAPI
	calls atomic.Int32
}

func (c *countingAdminAPI) CreateSweet(context.Context, transport.CreateSweetRequest) (*transport.Sweet, error) {
	c.calls.Add(1)
	return &transport.Sweet{}, nil
}

func (c *countingAdminAPI) DeleteSweet(context.Context, uint) (*transport.OperationResponse, error) {
	c.calls.Add(1)
	return &transport.OperationResponse{Success: true}, nil
}

func (c *countingAdminAPI) Restock(context.Context, uint, int) (*transport.Sweet, error) {
	c.calls.Add(1)
	return &transport.Sweet{}, nil
}

func TestAdmin_LocalRejectionsSendNothing(t *testing.T) {
	api := &countingAdminAPI{}
	a := storefront.NewAdmin(api, storefront.ConfirmFunc(func(string) bool { return false }))
	t.Cleanup(a.Close)
	ctx := context.Background()

	assert.ErrorIs(t, a.Delete(ctx, 1), storefront.ErrCancelled)

	err := a.Create(ctx, storefront.SweetForm{Name: " ", Category: "", Price: decimal.Zero, Quantity: -1})
	require.ErrorIs(t, err, storefront.ErrValidation)
	assert.Equal(t, "Name is required; Category is required; Price must be > 0; Valid quantity required", lastText(t, a.Notices()))

	assert.ErrorIs(t, a.Restock(ctx, 1, 0), storefront.ErrValidation)
	assert.Zero(t, api.calls.Load())
}

func TestAdmin_ErrorNoticesExpire(t *testing.T) {
	api := &countingAdminAPI{}
	a := storefront.NewAdmin(api, nil, storefront.WithNoticeTTL(30*time.Millisecond))
	t.Cleanup(a.Close)

	require.ErrorIs(t, a.Restock(context.Background(), 1, 0), storefront.ErrValidation)
	assert.Equal(t, "Restock quantity must be > 0", lastText(t, a.Notices()))
	assert.Eventually(t, func() bool {
		return len(a.Notices().Active()) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestShop_CategoryScenarioAgainstBackend(t *testing.T) {
	b := backend.Start(t)
	b.User(t, "ann@example.com")
	b.Sweet(t, "Kaju Katli", "Dry", "12.50", 10)
	b.Sweet(t, "Rasgulla", "Syrup", "4.00", 0)
	b.Sweet(t, "Badam Barfi", "Dry", "9.75", 3)
	b.Sweet(t, "Jalebi", "Fried", "3.20", 40)
	b.Sweet(t, "Gulab Jamun", "Syrup", "5.00", 7)

	api := apiclient.NewClient(b.URL())
	tok, err := api.Login(context.Background(), transport.LoginRequest{Email: "ann@example.com", Password: backend.Password})
	require.NoError(t, err)
	api.SetToken(tok.AccessToken)

	s := storefront.NewShop(api)
	t.Cleanup(s.Close)
	ctx := context.Background()

	require.NoError(t, s.LoadAll(ctx))
	require.NoError(t, s.SetCategory(ctx, "dry"))
	require.NoError(t, s.Settle(ctx))

	v, err := s.View(ctx)
	require.NoError(t, err)
	require.Len(t, v.Items, 2)
	for _, it := range v.Items {
		assert.Equal(t, "Dry", it.Category)
	}

	require.NoError(t, s.AddToCart(ctx, v.Items[1].ID))
	require.NoError(t, s.Purchase(ctx, v.Items[1].ID))
	v, _ = s.View(ctx)
	assert.Empty(t, v.Cart)
	assert.Equal(t, 5, v.Loaded, "purchase reloads the full catalog")
}
