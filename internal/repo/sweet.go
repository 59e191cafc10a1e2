package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
)

var (
	ErrDuplicateName     = errors.New("sweet name already exists")
	ErrInsufficientStock = errors.New("insufficient inventory")
)

// StockError carries the quantities of a rejected purchase.
type StockError struct {
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Insufficient inventory. Available: %d, Requested: %d", e.Available, e.Requested)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

type SweetFilter struct {
	Name     string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	InStock  bool
}

func (f SweetFilter) apply(q *gorm.DB) *gorm.DB {
	if name := strings.TrimSpace(f.Name); name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if category := strings.TrimSpace(f.Category); category != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(category))
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.InStock {
		q = q.Where("quantity > 0")
	}
	return q
}

func (r *GormRepo) GetSweet(ctx context.Context, id uint) (*models.Sweet, error) {
	var sweet models.Sweet
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&sweet).Error; err != nil {
		return nil, err
	}
	return &sweet, nil
}

func (r *GormRepo) ListSweets(ctx context.Context, offset, limit int) (int64, []models.Sweet, error) {
	return r.SearchSweets(ctx, SweetFilter{}, offset, limit)
}

func (r *GormRepo) SearchSweets(ctx context.Context, f SweetFilter, offset, limit int) (int64, []models.Sweet, error) {
	var total int64
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.Sweet{})).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Sweet, 0, limit)
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.Sweet{})).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

// SweetsByIDs returns the rows in the order of ids, skipping ids that no longer exist.
func (r *GormRepo) SweetsByIDs(ctx context.Context, ids []uint) ([]models.Sweet, error) {
	if len(ids) == 0 {
		return []models.Sweet{}, nil
	}

	var rows []models.Sweet
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Sweet, len(rows))
	for _, s := range rows {
		byID[s.ID] = s
	}
	out := make([]models.Sweet, 0, len(rows))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func nameTaken(tx *gorm.DB, name string, exceptID uint) (bool, error) {
	var count int64
	q := tx.Model(&models.Sweet{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateSweet(ctx context.Context, sweet *models.Sweet) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, sweet.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}
		return tx.Create(sweet).Error
	})
}

func (r *GormRepo) UpdateSweet(ctx context.Context, id uint, req transport.UpdateSweetRequest) (*models.Sweet, error) {
	var sweet models.Sweet
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sweet, id).Error; err != nil {
			return err
		}

		if req.Name != nil && *req.Name != sweet.Name {
			taken, err := nameTaken(tx, *req.Name, id)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateName
			}
			sweet.Name = *req.Name
		}
		if req.Description != nil {
			sweet.Description = *req.Description
		}
		if req.Category != nil {
			sweet.Category = *req.Category
		}
		if req.Price != nil {
			sweet.Price = *req.Price
		}
		if req.Quantity != nil {
			sweet.Quantity = *req.Quantity
			sweet.IsAvailable = sweet.Quantity > 0
		}
		if req.IsAvailable != nil {
			sweet.IsAvailable = *req.IsAvailable
		}

		return tx.Save(&sweet).Error
	})
	if err != nil {
		return nil, err
	}
	return &sweet, nil
}

func (r *GormRepo) DeleteSweet(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Sweet{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Purchase decrements stock and records the purchase in one transaction.
// The decrement is conditional on quantity >= qty, so concurrent buyers
// can never drive stock below zero even where row locks are unavailable.
func (r *GormRepo) Purchase(ctx context.Context, userID, sweetID uint, qty int) (*models.Purchase, *models.Sweet, error) {
	var (
		sweet    models.Sweet
		purchase models.Purchase
	)

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sweet, sweetID).Error; err != nil {
			return err
		}
		if sweet.Quantity < qty {
			return &StockError{Available: sweet.Quantity, Requested: qty}
		}

		res := tx.Model(&models.Sweet{}).
			Where("id = ? AND quantity >= ?", sweetID, qty).
			Updates(map[string]any{
				"quantity":     gorm.Expr("quantity - ?", qty),
				"is_available": gorm.Expr("quantity - ? > 0", qty),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.First(&sweet, sweetID).Error; err != nil {
				return err
			}
			return &StockError{Available: sweet.Quantity, Requested: qty}
		}

		if err := tx.First(&sweet, sweetID).Error; err != nil {
			return err
		}

		purchase = models.Purchase{
			UserID:     userID,
			SweetID:    sweetID,
			Quantity:   qty,
			TotalPrice: sweet.Price.Mul(decimal.NewFromInt(int64(qty))),
		}
		return tx.Create(&purchase).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &purchase, &sweet, nil
}

func (r *GormRepo) Restock(ctx context.Context, sweetID uint, qty int) (*models.Sweet, error) {
	var sweet models.Sweet
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Sweet{}).
			Where("id = ?", sweetID).
			Updates(map[string]any{
				"quantity":     gorm.Expr("quantity + ?", qty),
				"is_available": true,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&sweet, sweetID).Error
	})
	if err != nil {
		return nil, err
	}
	return &sweet, nil
}

func (r *GormRepo) CountSweets(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Sweet{}).Count(&n).Error
	return n, err
}
