package repo

import (
	"context"

	"github.com/Skotchmaster/sweet_shop/internal/models"
)

func (r *GormRepo) ListPurchases(ctx context.Context, userID uint, offset, limit int) (int64, []models.Purchase, error) {
	q := r.DB.WithContext(ctx).Model(&models.Purchase{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	purchases := make([]models.Purchase, 0, limit)
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&purchases).Error; err != nil {
		return 0, nil, err
	}
	return total, purchases, nil
}
