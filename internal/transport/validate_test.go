package transport

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestValidate_CreateSweetRequest(t *testing.T) {
	valid := CreateSweetRequest{
		Name:     "Gulab Jamun",
		Category: "Syrup",
		Price:    decimal.RequireFromString("2.50"),
		Quantity: 0,
	}
	require.NoError(t, Validate(valid))

	tests := []struct {
		name  string
		mut   func(r *CreateSweetRequest)
		field string
	}{
		{name: "short name", mut: func(r *CreateSweetRequest) { r.Name = "G" }, field: "name"},
		{name: "missing category", mut: func(r *CreateSweetRequest) { r.Category = "" }, field: "category"},
		{name: "zero price", mut: func(r *CreateSweetRequest) { r.Price = decimal.Zero }, field: "price"},
		{name: "negative price", mut: func(r *CreateSweetRequest) { r.Price = decimal.NewFromInt(-1) }, field: "price"},
		{name: "negative quantity", mut: func(r *CreateSweetRequest) { r.Quantity = -1 }, field: "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mut(&req)
			err := Validate(req)
			require.Error(t, err)
			assert.Contains(t, FormatValidationError(err), tt.field)
		})
	}
}

func TestValidate_UpdateSweetRequest_OptionalFields(t *testing.T) {
	require.NoError(t, Validate(UpdateSweetRequest{}))
	require.NoError(t, Validate(UpdateSweetRequest{Price: ptr(decimal.RequireFromString("0.99"))}))

	err := Validate(UpdateSweetRequest{Price: ptr(decimal.Zero)})
	require.Error(t, err)
	assert.Equal(t, "price: Must be greater than 0", Detail(err))
}

func TestValidate_QuantityBounds(t *testing.T) {
	require.NoError(t, Validate(PurchaseRequest{Quantity: 1000}))
	require.Error(t, Validate(PurchaseRequest{Quantity: 0}))
	require.Error(t, Validate(PurchaseRequest{Quantity: 1001}))

	require.NoError(t, Validate(RestockRequest{Quantity: 10000}))
	require.Error(t, Validate(RestockRequest{Quantity: 10001}))
}

func TestValidate_Register(t *testing.T) {
	err := Validate(RegisterRequest{Email: "nope", FullName: "A", Password: "short"})
	require.Error(t, err)

	fields := FormatValidationError(err)
	assert.Equal(t, "Invalid email format", fields["email"])
	assert.Equal(t, "Must be at least 2 characters", fields["full_name"])
	assert.Equal(t, "Must be at least 8 characters", fields["password"])
}

func TestSearchRequest_Empty(t *testing.T) {
	assert.True(t, SearchRequest{}.Empty())
	assert.True(t, SearchRequest{Name: "  "}.Empty())
	assert.False(t, SearchRequest{Category: "Dry"}.Empty())
	assert.False(t, SearchRequest{InStock: ptr(true)}.Empty())
}
