package invoice

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prathap331/GB-Backend/internal/domain/order"
	"github.com/Prathap331/GB-Backend/internal/domain/pricing"
)

func paidOrder() *order.Order {
	return &order.Order{
		ID:              42,
		Subtotal:        decimal.RequireFromString("1000.00"),
		TotalDiscount:   decimal.RequireFromString("100.00"),
		GSTAmount:       decimal.RequireFromString("45.00"),
		ShippingFee:     decimal.RequireFromString("49.00"),
		TotalAmount:     decimal.RequireFromString("994.00"),
		PaymentMethod:   pricing.MethodOnline,
		PaymentStatus:   order.PaymentCompleted,
		Status:          order.StatusConfirmed,
		DeliveryAddress: "Asha Rao\n12 MG Road\nBengaluru, KA 560001\nIndia",
		ContestID:       "a1b2c3d4",
		LuckyNumbers:    []string{"0042137"},
		CreatedAt:       time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		Items: []order.Item{{
			ProductID:    1,
			VariantID:    10,
			Quantity:     2,
			PricePerUnit: decimal.RequireFromString("500.00"),
			Subtotal:     decimal.RequireFromString("1000.00"),
			ProductName:  "Blue Tee",
			Size:         "M",
			Color:        "Blue",
		}},
	}
}

func TestRender(t *testing.T) {
	r := NewRenderer(Seller{
		Name:    "GB Store",
		Address: "1 Commerce Park, Mumbai",
		GSTIN:   "27AAAAA0000A1Z5",
		Email:   "billing@example.com",
	})

	pdf, err := r.Render(paidOrder(), "Asha Rao")
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]), "output must be a PDF document")
}

func TestRender_UnpaidOrder(t *testing.T) {
	r := NewRenderer(Seller{Name: "GB Store"})

	o := paidOrder()
	o.PaymentStatus = order.PaymentPending

	_, err := r.Render(o, "Asha Rao")
	assert.ErrorIs(t, err, order.ErrInvoiceNotReady)
}

func TestRender_NoLuckyNumbers(t *testing.T) {
	r := NewRenderer(Seller{Name: "GB Store"})

	o := paidOrder()
	o.LuckyNumbers = nil

	pdf, err := r.Render(o, "Asha Rao")
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}
