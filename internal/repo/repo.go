package repo

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/sweet_shop/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
