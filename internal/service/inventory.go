package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/Skotchmaster/sweet_shop/internal/metrics"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/mykafka"
	"github.com/Skotchmaster/sweet_shop/internal/repo"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
	"github.com/Skotchmaster/sweet_shop/internal/util"
	"github.com/Skotchmaster/sweet_shop/pkg/logging"
)

const historyPageSize = 50

type InventoryService struct {
	Repo   *repo.GormRepo
	Sweets *SweetService
	Events EventPublisher
	Index  SearchIndex
}

func idKey(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func (s *InventoryService) Purchase(ctx context.Context, userID, sweetID uint, quantity int) (*models.Purchase, error) {
	l := logging.FromContext(ctx).With("svc", "inventory.purchase", "sweet_id", sweetID, "user_id", userID)

	if err := transport.Validate(transport.PurchaseRequest{Quantity: quantity}); err != nil {
		return nil, detailed(ErrValidation, "%s", transport.Detail(err))
	}

	purchase, sweet, err := s.Repo.Purchase(ctx, userID, sweetID, quantity)
	if err != nil {
		var stockErr *repo.StockError
		switch {
		case repo.IsNotFound(err):
			return nil, notFound(sweetID)
		case errors.As(err, &stockErr):
			metrics.PurchasesRejected.Inc()
			l.Warn("purchase_rejected", "available", stockErr.Available, "requested", stockErr.Requested)
			return nil, detailed(ErrInsufficientStock, "%s", stockErr.Error())
		}
		return nil, err
	}
	s.Sweets.invalidate(sweetID)

	metrics.ItemsPurchased.WithLabelValues(sweet.Category).Add(float64(quantity))
	metrics.Revenue.Add(purchase.TotalPrice.InexactFloat64())
	l.Info("purchase_completed", "quantity", quantity, "remaining", sweet.Quantity)

	publish(ctx, s.Events, mykafka.TopicSweetEvents, idKey(sweetID), map[string]any{
		"type":       "sweet_purchased",
		"sweetID":    sweetID,
		"userID":     userID,
		"purchaseID": purchase.ID,
		"quantity":   quantity,
		"totalPrice": purchase.TotalPrice.String(),
		"remaining":  sweet.Quantity,
	})
	reindex(ctx, s.Index, sweet)
	return purchase, nil
}

func (s *InventoryService) Restock(ctx context.Context, sweetID uint, quantity int) (*models.Sweet, error) {
	if err := transport.Validate(transport.RestockRequest{Quantity: quantity}); err != nil {
		return nil, detailed(ErrValidation, "%s", transport.Detail(err))
	}

	sweet, err := s.Repo.Restock(ctx, sweetID, quantity)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, notFound(sweetID)
		}
		return nil, err
	}
	s.Sweets.invalidate(sweetID)

	metrics.ItemsRestocked.WithLabelValues(sweet.Category).Add(float64(quantity))
	publish(ctx, s.Events, mykafka.TopicSweetEvents, idKey(sweetID), map[string]any{
		"type":     "sweet_restocked",
		"sweetID":  sweetID,
		"added":    quantity,
		"quantity": sweet.Quantity,
	})
	reindex(ctx, s.Index, sweet)
	return sweet, nil
}

func (s *InventoryService) History(ctx context.Context, userID uint, skip, limit int) (int64, []models.Purchase, error) {
	if limit <= 0 {
		limit = historyPageSize
	}
	offset, size := util.Window(skip, limit)
	return s.Repo.ListPurchases(ctx, userID, offset, size)
}
