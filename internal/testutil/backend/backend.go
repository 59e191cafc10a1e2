// Package backend runs the real HTTP API over SQLite for client-side tests.
package backend

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sweet_shop/internal/httpserver"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/repo"
	"github.com/Skotchmaster/sweet_shop/internal/service"
	"github.com/Skotchmaster/sweet_shop/internal/testutil"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
)

const (
	AdminEmail = "admin@sweetshop.com"
	Password   = "Secret123"
)

type Backend struct {
	Server *httptest.Server
	Repo   *repo.GormRepo
	Sweets *service.SweetService
	Auth   *service.AuthService
}

func (b *Backend) URL() string { return b.Server.URL }

func Start(t *testing.T) *Backend {
	t.Helper()
	db := testutil.NewDB(t)
	r := &repo.GormRepo{DB: db}
	sweets := service.NewSweetService(r, nil, nil)
	auth := &service.AuthService{
		Repo:       r,
		JWTSecret:  []byte("backend-test-secret"),
		TokenTTL:   time.Hour,
		AdminEmail: AdminEmail,
	}

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: auth},
		SweetHandler: &httpserver.SweetHTTP{
			Sweets:    sweets,
			Inventory: &service.InventoryService{Repo: r, Sweets: sweets},
		},
		JWTSecret: auth.JWTSecret,
		DB:        db,
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &Backend{Server: srv, Repo: r, Sweets: sweets, Auth: auth}
}

// User registers an account directly through the service layer.
func (b *Backend) User(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := b.Auth.Register(context.Background(), transport.RegisterRequest{Email: email, FullName: "Test User", Password: Password})
	require.NoError(t, err)
	return u
}

func (b *Backend) Sweet(t *testing.T, name, category, price string, qty int) *models.Sweet {
	t.Helper()
	s, err := b.Sweets.CreateSweet(context.Background(), transport.CreateSweetRequest{
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	})
	require.NoError(t, err)
	return s
}
