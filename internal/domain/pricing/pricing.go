// Package pricing computes order totals from resolved line items: brand-grouped
// tiered discounts, GST, shipping, and the COD surcharge. The engine is pure:
// the preview endpoint and order creation call the same code and must produce
// identical results for identical input.
package pricing

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Prathap331/GB-Backend/internal/domain/offer"
)

// PaymentMethod selects the surcharge rules applied at the end of pricing.
type PaymentMethod string

const (
	// MethodCOD adds the cash-on-delivery surcharge.
	MethodCOD PaymentMethod = "COD"
	// MethodOnline routes the order through the payment gateway.
	MethodOnline PaymentMethod = "Online"
)

// Pricing policy. Fixed per deployment, not per call.
var (
	// GSTRate is the flat GST rate applied to the discounted subtotal.
	GSTRate = decimal.RequireFromString("0.05")
	// FreeShippingThreshold is the pre-shipping total at or above which
	// shipping is free.
	FreeShippingThreshold = decimal.RequireFromString("499")
	// ShippingFee is charged below FreeShippingThreshold.
	ShippingFee = decimal.RequireFromString("49")
	// CODFeeRate is the percentage component of the COD surcharge.
	CODFeeRate = decimal.RequireFromString("0.02")
	// CODFeeMinimum floors the COD surcharge.
	CODFeeMinimum = decimal.RequireFromString("40")
)

// LineItem is a server-resolved cart line: price and stock were read from the
// catalog, never from the client.
type LineItem struct {
	VariantID int64
	ProductID int64
	BrandID   int64
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// BrandBreakdown reports the per-brand aggregate the discount was computed on.
type BrandBreakdown struct {
	BrandID  int64
	Quantity int
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	// Offer is the applied offer, nil when the brand had none eligible.
	Offer *offer.Offer
}

// Result carries the full pricing breakdown, including every intermediate
// value needed for auditing and invoice rendering.
type Result struct {
	Subtotal      decimal.Decimal
	TotalDiscount decimal.Decimal
	GSTAmount     decimal.Decimal
	ShippingFee   decimal.Decimal
	CODFee        decimal.Decimal
	GrandTotal    decimal.Decimal
	Brands        []BrandBreakdown
}

// Engine prices a resolved cart. Its only dependency is the offer resolver.
type Engine struct {
	offers offer.Resolver
}

// NewEngine creates an Engine using the given offer resolver.
func NewEngine(offers offer.Resolver) *Engine {
	return &Engine{offers: offers}
}

// Price computes the full breakdown for the given items and payment method.
// Rounding to 2 decimal places happens after each arithmetic stage, not only
// at the end; totals differ at the paisa level otherwise.
func (e *Engine) Price(ctx context.Context, items []LineItem, method PaymentMethod) (*Result, error) {
	brands, err := e.priceBrands(ctx, items)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	totalDiscount := decimal.Zero
	for _, b := range brands {
		subtotal = subtotal.Add(b.Subtotal)
		totalDiscount = totalDiscount.Add(b.Discount)
	}
	subtotal = subtotal.Round(2)
	totalDiscount = totalDiscount.Round(2)

	discounted := subtotal.Sub(totalDiscount).Round(2)
	gst := discounted.Mul(GSTRate).Round(2)
	preShipping := discounted.Add(gst).Round(2)

	shipping := decimal.Zero.Round(2)
	if preShipping.LessThan(FreeShippingThreshold) {
		shipping = ShippingFee.Round(2)
	}
	grand := preShipping.Add(shipping).Round(2)

	codFee := decimal.Zero.Round(2)
	if method == MethodCOD {
		codFee = grand.Mul(CODFeeRate).Round(2)
		if codFee.LessThan(CODFeeMinimum) {
			codFee = CODFeeMinimum.Round(2)
		}
		grand = grand.Add(codFee).Round(2)
	}

	return &Result{
		Subtotal:      subtotal,
		TotalDiscount: totalDiscount,
		GSTAmount:     gst,
		ShippingFee:   shipping,
		CODFee:        codFee,
		GrandTotal:    grand,
		Brands:        brands,
	}, nil
}

// priceBrands groups items into one aggregate per brand (first-appearance
// order, so output is deterministic) and applies the best eligible offer.
func (e *Engine) priceBrands(ctx context.Context, items []LineItem) ([]BrandBreakdown, error) {
	var order []int64
	byBrand := make(map[int64]*BrandBreakdown)
	for _, it := range items {
		agg, ok := byBrand[it.BrandID]
		if !ok {
			agg = &BrandBreakdown{BrandID: it.BrandID, Subtotal: decimal.Zero, Discount: decimal.Zero}
			byBrand[it.BrandID] = agg
			order = append(order, it.BrandID)
		}
		agg.Quantity += it.Quantity
		agg.Subtotal = agg.Subtotal.Add(it.Subtotal)
	}

	brands := make([]BrandBreakdown, 0, len(order))
	for _, id := range order {
		agg := byBrand[id]
		agg.Subtotal = agg.Subtotal.Round(2)

		best, err := e.offers.BestBrandOffer(ctx, id, agg.Quantity)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve offer for brand %d", id)
		}
		if best != nil {
			agg.Offer = best
			agg.Discount = discountFor(best, agg.Subtotal)
		}
		brands = append(brands, *agg)
	}
	return brands, nil
}

// discountFor computes the offer's discount on a brand subtotal. The result is
// clamped to the subtotal so a flat offer can never push an aggregate negative.
func discountFor(o *offer.Offer, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch o.DiscountType {
	case offer.TypePercentage:
		amount = subtotal.Mul(o.Value).Div(decimal.NewFromInt(100)).Round(2)
	case offer.TypeFixed:
		amount = o.Value.Round(2)
	default:
		return decimal.Zero
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}
