package httpserver

import (
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
)

func toUser(u *models.User) transport.User {
	return transport.User{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		IsAdmin:   u.IsAdmin,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func toSweet(s *models.Sweet) transport.Sweet {
	return transport.Sweet{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Category:    s.Category,
		Price:       s.Price,
		Quantity:    s.Quantity,
		IsAvailable: s.IsAvailable,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toSweetList(total int64, items []models.Sweet) transport.SweetList {
	out := transport.SweetList{Total: total, Sweets: make([]transport.Sweet, 0, len(items))}
	for i := range items {
		out.Sweets = append(out.Sweets, toSweet(&items[i]))
	}
	return out
}

func toPurchaseList(total int64, items []models.Purchase) transport.PurchaseList {
	out := transport.PurchaseList{Total: total, Purchases: make([]transport.PurchaseRecord, 0, len(items))}
	for _, p := range items {
		out.Purchases = append(out.Purchases, transport.PurchaseRecord{
			ID:         p.ID,
			SweetID:    p.SweetID,
			Quantity:   p.Quantity,
			TotalPrice: p.TotalPrice,
			CreatedAt:  p.CreatedAt,
		})
	}
	return out
}
