package transport

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money goes over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type RegisterRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Password string `json:"password"  validate:"required,min=8,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsAdmin   bool      `json:"is_admin"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

type Sweet struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	IsAvailable bool            `json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type SweetList struct {
	Total  int64   `json:"total"`
	Sweets []Sweet `json:"sweets"`
}

type CreateSweetRequest struct {
	Name        string          `json:"name"                  validate:"required,min=2,max=100"`
	Description string          `json:"description,omitempty" validate:"max=500"`
	Category    string          `json:"category"              validate:"required,min=2,max=50"`
	Price       decimal.Decimal `json:"price"                 validate:"gt=0"`
	Quantity    int             `json:"quantity"              validate:"gte=0"`
}

// UpdateSweetRequest is a partial update: nil fields are left untouched.
type UpdateSweetRequest struct {
	Name        *string          `json:"name,omitempty"         validate:"omitempty,min=2,max=100"`
	Description *string          `json:"description,omitempty"  validate:"omitempty,max=500"`
	Category    *string          `json:"category,omitempty"     validate:"omitempty,min=2,max=50"`
	Price       *decimal.Decimal `json:"price,omitempty"        validate:"omitempty,gt=0"`
	Quantity    *int             `json:"quantity,omitempty"     validate:"omitempty,gte=0"`
	IsAvailable *bool            `json:"is_available,omitempty"`
}

type SearchRequest struct {
	Name     string           `json:"name,omitempty"`
	Category string           `json:"category,omitempty"`
	MinPrice *decimal.Decimal `json:"min_price,omitempty" validate:"omitempty,gte=0"`
	MaxPrice *decimal.Decimal `json:"max_price,omitempty" validate:"omitempty,gte=0"`
	InStock  *bool            `json:"in_stock,omitempty"`
}

// Empty reports whether the request filters nothing.
func (r SearchRequest) Empty() bool {
	return strings.TrimSpace(r.Name) == "" &&
		strings.TrimSpace(r.Category) == "" &&
		r.MinPrice == nil && r.MaxPrice == nil && r.InStock == nil
}

type PurchaseRequest struct {
	Quantity int `json:"quantity" validate:"gt=0,lte=1000"`
}

type RestockRequest struct {
	Quantity int `json:"quantity" validate:"gt=0,lte=10000"`
}

type PurchaseResult struct {
	PurchaseID uint            `json:"purchase_id"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type PurchaseResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    PurchaseResult `json:"data"`
}

type OperationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type PurchaseRecord struct {
	ID         uint            `json:"id"`
	SweetID    uint            `json:"sweet_id"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

type PurchaseList struct {
	Total     int64            `json:"total"`
	Purchases []PurchaseRecord `json:"purchases"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
