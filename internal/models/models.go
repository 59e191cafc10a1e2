package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sweet struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"            json:"id"`
	Name        string          `gorm:"uniqueIndex;size:100;not null"       json:"name"`
	Description string          `gorm:"size:500"                            json:"description,omitempty"`
	Category    string          `gorm:"index;size:50;not null"              json:"category"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null"         json:"price"`
	Quantity    int             `gorm:"not null;default:0;check:quantity>=0" json:"quantity"`
	IsAvailable bool            `gorm:"not null"                            json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	FullName     string    `gorm:"size:100;not null"        json:"full_name"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	IsAdmin      bool      `gorm:"not null"                 json:"is_admin"`
	IsActive     bool      `gorm:"not null"                 json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Purchase struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID     uint            `gorm:"index;not null"              json:"user_id"`
	SweetID    uint            `gorm:"index;not null"              json:"sweet_id"`
	Quantity   int             `gorm:"not null;check:quantity>0"   json:"quantity"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

func All() []any {
	return []any{&Sweet{}, &User{}, &Purchase{}}
}
