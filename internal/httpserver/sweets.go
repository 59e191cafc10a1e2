package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweet_shop/internal/service"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
	"github.com/Skotchmaster/sweet_shop/internal/util"
	"github.com/Skotchmaster/sweet_shop/pkg/logging"
	middleware "github.com/Skotchmaster/sweet_shop/pkg/middleware/auth"
)

type SweetHTTP struct {
	Sweets    *service.SweetService
	Inventory *service.InventoryService
}

func paging(c echo.Context) (skip, limit int) {
	return util.ParseIntDefault(c.QueryParam("skip"), 0), util.ParseIntDefault(c.QueryParam("limit"), util.DefaultLimit)
}

func (h *SweetHTTP) ListSweets(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sweets.list")

	skip, limit := paging(c)
	total, items, err := h.Sweets.ListSweets(ctx, skip, limit)
	if err != nil {
		return serviceError(l, "list_sweets_failed", err)
	}

	l.Debug("list_sweets_success", "total", total)
	return c.JSON(http.StatusOK, toSweetList(total, items))
}

func (h *SweetHTTP) GetSweet(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sweets.get")

	id, err := pathID(c, l, "get_sweet_failed")
	if err != nil {
		return err
	}

	sweet, err := h.Sweets.GetSweet(ctx, id)
	if err != nil {
		return serviceError(l, "get_sweet_failed", err)
	}
	return c.JSON(http.StatusOK, toSweet(sweet))
}

func (h *SweetHTTP) SearchSweets(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sweets.search")

	var req transport.SearchRequest
	if err := bindRequest(c, l, "search_sweets_failed", &req); err != nil {
		return err
	}

	skip, limit := paging(c)
	total, items, err := h.Sweets.SearchSweets(ctx, req, skip, limit)
	if err != nil {
		return serviceError(l, "search_sweets_failed", err)
	}

	l.Info("search_sweets_success", "total", total)
	return c.JSON(http.StatusOK, toSweetList(total, items))
}

func (h *SweetHTTP) CreateSweet(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sweets.create")

	var req transport.CreateSweetRequest
	if err := bindRequest(c, l, "create_sweet_failed", &req); err != nil {
		return err
	}

	sweet, err := h.Sweets.CreateSweet(ctx, req)
	if err != nil {
		return serviceError(l, "create_sweet_failed", err)
	}

	l.Info("create_sweet_success", "sweet_id", sweet.ID)
	return c.JSON(http.StatusCreated, toSweet(sweet))
}

func (h *SweetHTTP) UpdateSweet(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sweets.update")

	id, err := pathID(c, l, "update_sweet_failed")
	if err != nil {
		return err
	}
	var req transport.UpdateSweetRequest
	if err := bindRequest(c, l, "update_sweet_failed", &req); err != nil {
		return err
	}

	sweet, err := h.Sweets.UpdateSweet(ctx, id, req)
	if err != nil {
		return serviceError(l, "update_sweet_failed", err)
	}

	l.Info("update_sweet_success", "sweet_id", id)
	return c.JSON(http.StatusOK, toSweet(sweet))
}

func (h *SweetHTTP) DeleteSweet(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sweets.delete")

	id, err := pathID(c, l, "delete_sweet_failed")
	if err != nil {
		return err
	}
	if err := h.Sweets.DeleteSweet(ctx, id); err != nil {
		return serviceError(l, "delete_sweet_failed", err)
	}

	l.Info("delete_sweet_success", "sweet_id", id)
	return c.JSON(http.StatusOK, transport.OperationResponse{Success: true, Message: "Sweet deleted successfully"})
}

func (h *SweetHTTP) Purchase(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sweets.purchase")

	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		l.Warn("purchase_failed", "status", http.StatusUnauthorized, "reason", "no claims in context")
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	id, err := pathID(c, l, "purchase_failed")
	if err != nil {
		return err
	}
	var req transport.PurchaseRequest
	if err := bindRequest(c, l, "purchase_failed", &req); err != nil {
		return err
	}

	purchase, err := h.Inventory.Purchase(ctx, claims.UserID, id, req.Quantity)
	if err != nil {
		return serviceError(l, "purchase_failed", err)
	}

	return c.JSON(http.StatusOK, transport.PurchaseResponse{
		Success: true,
		Message: "Purchase successful",
		Data: transport.PurchaseResult{
			PurchaseID: purchase.ID,
			Quantity:   purchase.Quantity,
			TotalPrice: purchase.TotalPrice,
		},
	})
}

func (h *SweetHTTP) Restock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sweets.restock")

	id, err := pathID(c, l, "restock_failed")
	if err != nil {
		return err
	}
	var req transport.RestockRequest
	if err := bindRequest(c, l, "restock_failed", &req); err != nil {
		return err
	}

	sweet, err := h.Inventory.Restock(ctx, id, req.Quantity)
	if err != nil {
		return serviceError(l, "restock_failed", err)
	}

	l.Info("restock_success", "sweet_id", id, "quantity", sweet.Quantity)
	return c.JSON(http.StatusOK, toSweet(sweet))
}

func (h *SweetHTTP) History(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "purchases.history")

	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	skip := util.ParseIntDefault(c.QueryParam("skip"), 0)
	limit := util.ParseIntDefault(c.QueryParam("limit"), 0)
	total, items, err := h.Inventory.History(ctx, claims.UserID, skip, limit)
	if err != nil {
		return serviceError(l.With("user_id", claims.UserID), "history_failed", err)
	}
	return c.JSON(http.StatusOK, toPurchaseList(total, items))
}
