package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prathap331/GB-Backend/internal/domain/catalog"
	"github.com/Prathap331/GB-Backend/internal/domain/offer"
	"github.com/Prathap331/GB-Backend/internal/domain/pricing"
	"github.com/Prathap331/GB-Backend/internal/domain/profile"
	"github.com/Prathap331/GB-Backend/internal/payment"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

// fakeCatalog serves a fixed variant set and records stock mutations.
type fakeCatalog struct {
	catalog.Repository

	variants    map[int64]catalog.VariantDetail
	failDecOn   int64
	decremented []int64
	restocked   []int64
}

func (f *fakeCatalog) GetVariantsByIDs(_ context.Context, ids []int64) ([]catalog.VariantDetail, error) {
	var out []catalog.VariantDetail
	for _, id := range ids {
		if v, ok := f.variants[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeCatalog) DecrementStock(_ context.Context, variantID int64, _ int) error {
	if variantID == f.failDecOn {
		return catalog.ErrInsufficientStock
	}
	f.decremented = append(f.decremented, variantID)
	return nil
}

func (f *fakeCatalog) RestockVariant(_ context.Context, variantID int64, _ int) error {
	f.restocked = append(f.restocked, variantID)
	return nil
}

// fakeProfiles holds one profile per user.
type fakeProfiles struct {
	profiles map[uuid.UUID]*profile.Profile
	created  int
}

func (f *fakeProfiles) Get(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Create(_ context.Context, p *profile.Profile) error {
	f.profiles[p.ID] = p
	f.created++
	return nil
}

func (f *fakeProfiles) Update(_ context.Context, p *profile.Profile) error {
	f.profiles[p.ID] = p
	return nil
}

// fakeOrders is an in-memory order store with failure injection.
type fakeOrders struct {
	nextID int64

	header       *Order
	items        []Item
	luckyNumbers []string
	gatewayID    string
	paymentID    string
	completed    bool

	deleted      bool
	itemsDeleted bool

	failInsertItems bool
	conflictFirstN  int
	inserts         int
}

func (f *fakeOrders) CreateHeader(_ context.Context, o *Order) error {
	f.nextID++
	o.ID = f.nextID
	cp := *o
	f.header = &cp
	return nil
}

func (f *fakeOrders) InsertItems(_ context.Context, orderID int64, items []Item) error {
	if f.failInsertItems {
		return errors.New("insert items failed")
	}
	f.items = append([]Item(nil), items...)
	return nil
}

func (f *fakeOrders) DeleteItems(_ context.Context, _ int64) error {
	f.items = nil
	f.itemsDeleted = true
	return nil
}

func (f *fakeOrders) Delete(_ context.Context, _ int64) error {
	f.deleted = true
	return nil
}

func (f *fakeOrders) InsertLuckyNumber(_ context.Context, _ int64, _ uuid.UUID, number string) (bool, error) {
	f.inserts++
	if f.inserts <= f.conflictFirstN {
		return false, nil
	}
	f.luckyNumbers = append(f.luckyNumbers, number)
	return true, nil
}

func (f *fakeOrders) ListLuckyNumbers(_ context.Context) ([]string, error) {
	return f.luckyNumbers, nil
}

func (f *fakeOrders) SetGatewayOrder(_ context.Context, _ int64, gatewayOrderID string) error {
	f.gatewayID = gatewayOrderID
	return nil
}

func (f *fakeOrders) MarkPaymentCompleted(_ context.Context, _ int64, gatewayPaymentID string) error {
	f.paymentID = gatewayPaymentID
	f.completed = true
	return nil
}

func (f *fakeOrders) SetDeliveryOptOut(_ context.Context, _ int64, _ uuid.UUID, optOut bool) error {
	if f.header == nil {
		return ErrNotFound
	}
	f.header.OptOutDelivery = optOut
	return nil
}

func (f *fakeOrders) Get(_ context.Context, orderID int64, _ uuid.UUID) (*Order, error) {
	if f.header == nil || f.deleted || f.header.ID != orderID {
		return nil, ErrNotFound
	}
	cp := *f.header
	cp.Items = append([]Item(nil), f.items...)
	cp.LuckyNumbers = append([]string(nil), f.luckyNumbers...)
	if f.completed {
		cp.PaymentStatus = PaymentCompleted
		cp.Status = StatusConfirmed
	}
	cp.RazorpayOrderID = f.gatewayID
	return &cp, nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID uuid.UUID) ([]Order, error) {
	if f.header == nil {
		return nil, nil
	}
	o, err := f.Get(context.Background(), f.header.ID, userID)
	if err != nil {
		return nil, err
	}
	return []Order{*o}, nil
}

// fakeGateway records gateway calls and can fail order creation.
type fakeGateway struct {
	orderID string
	fail    bool
	secret  string
	calls   int
}

func (g *fakeGateway) CreateOrder(_ context.Context, req payment.OrderRequest) (string, error) {
	g.calls++
	if g.fail {
		return "", errors.New("gateway unavailable")
	}
	return g.orderID, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) error {
	if signature != g.secret {
		return payment.ErrInvalidSignature
	}
	return nil
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

// noOffers prices carts without discounts.
type noOffers struct{}

func (noOffers) BestBrandOffer(context.Context, int64, int) (*offer.Offer, error) { return nil, nil }

func variantDetail(variantID, productID, brandID int64, price string, stock int) catalog.VariantDetail {
	return catalog.VariantDetail{
		Variant: catalog.Variant{ID: variantID, ProductID: productID, Size: "M", Stock: stock},
		Product: catalog.Product{
			ID:       productID,
			BrandID:  brandID,
			Name:     "Test Product",
			Price:    ptr(dec(price)),
			IsActive: true,
		},
	}
}

type fixture struct {
	svc      *Service
	catalog  *fakeCatalog
	profiles *fakeProfiles
	orders   *fakeOrders
	gateway  *fakeGateway
	user     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	user := uuid.New()

	cat := &fakeCatalog{variants: map[int64]catalog.VariantDetail{
		10: variantDetail(10, 1, 1, "500", 5),
		20: variantDetail(20, 2, 2, "250", 5),
	}}
	profiles := &fakeProfiles{profiles: map[uuid.UUID]*profile.Profile{
		user: {
			ID: user, FullName: "Asha Rao", Email: "asha@example.com",
			AddressLine1: "12 MG Road", City: "Bengaluru", State: "KA",
			PostalCode: "560001", Country: "India", AccountStatus: "active",
		},
	}}
	orders := &fakeOrders{}
	gateway := &fakeGateway{orderID: "order_rzp123", secret: "valid-sig"}

	svc := NewService(profiles, cat, pricing.NewEngine(noOffers{}), orders, NewLuckyDraw(), gateway)
	return &fixture{svc: svc, catalog: cat, profiles: profiles, orders: orders, gateway: gateway, user: user}
}

func (f *fixture) create(t *testing.T, method pricing.PaymentMethod, items ...LineItemRequest) (*CreateResult, error) {
	t.Helper()
	if items == nil {
		items = []LineItemRequest{{VariantID: 10, Quantity: 2}}
	}
	return f.svc.CreateOrder(context.Background(), f.user, "asha@example.com", CreateRequest{
		Items:         items,
		PaymentMethod: method,
	})
}

func TestCreateOrder_CODSuccess(t *testing.T) {
	f := newFixture(t)

	// 2 x 500 = 1000, GST 50, free shipping, COD fee 40 => 1090, 1 lucky number.
	res, err := f.create(t, pricing.MethodCOD)
	require.NoError(t, err)

	assert.True(t, dec("1090").Equal(res.Order.TotalAmount), "total %s", res.Order.TotalAmount)
	assert.Equal(t, PaymentPending, res.Order.PaymentStatus)
	assert.Equal(t, StatusPending, res.Order.Status)
	assert.Len(t, res.Order.LuckyNumbers, 1)
	assert.Len(t, res.Order.Items, 1)
	assert.NotEmpty(t, res.Order.ContestID)
	assert.Contains(t, res.Order.DeliveryAddress, "12 MG Road")

	assert.Equal(t, []int64{10}, f.catalog.decremented)
	assert.Empty(t, f.catalog.restocked)
	assert.Equal(t, 0, f.gateway.calls, "COD must not touch the gateway")
	assert.Empty(t, res.RazorpayKeyID)

	// Item snapshot carries the catalog price, not client input.
	assert.True(t, dec("500").Equal(res.Order.Items[0].PricePerUnit))
	assert.True(t, dec("1000").Equal(res.Order.Items[0].Subtotal))
}

func TestCreateOrder_OnlineCreatesGatewayOrder(t *testing.T) {
	f := newFixture(t)

	res, err := f.create(t, pricing.MethodOnline)
	require.NoError(t, err)

	assert.Equal(t, 1, f.gateway.calls)
	assert.Equal(t, "order_rzp123", res.Order.RazorpayOrderID)
	assert.Equal(t, "order_rzp123", f.orders.gatewayID)
	assert.Equal(t, "rzp_test_key", res.RazorpayKeyID)
	assert.True(t, dec("1050").Equal(res.Order.TotalAmount), "total %s", res.Order.TotalAmount)
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), f.user, "asha@example.com", CreateRequest{
		PaymentMethod: pricing.MethodCOD,
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, f.orders.header, "nothing may be persisted")
}

func TestCreateOrder_IncompleteProfile(t *testing.T) {
	f := newFixture(t)
	f.profiles.profiles[f.user].AddressLine1 = ""
	f.profiles.profiles[f.user].PostalCode = ""

	_, err := f.create(t, pricing.MethodCOD)

	var incomplete *IncompleteProfileError
	require.ErrorAs(t, err, &incomplete)
	assert.ElementsMatch(t, []string{"address", "postal code"}, incomplete.Missing)
	assert.Nil(t, f.orders.header)
}

func TestCreateOrder_FirstOrderCreatesProfile(t *testing.T) {
	f := newFixture(t)
	delete(f.profiles.profiles, f.user)

	_, err := f.create(t, pricing.MethodCOD)

	// The lazily created profile has no address yet, so the order is refused,
	// but the profile row must exist afterwards.
	var incomplete *IncompleteProfileError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, 1, f.profiles.created)
	assert.Equal(t, "asha", f.profiles.profiles[f.user].FullName)
}

func TestCreateOrder_NonPositiveQuantity(t *testing.T) {
	f := newFixture(t)

	_, err := f.create(t, pricing.MethodCOD, LineItemRequest{VariantID: 10, Quantity: 0})

	var badQty *InvalidQuantityError
	require.ErrorAs(t, err, &badQty)
	assert.Equal(t, int64(10), badQty.VariantID)
	assert.Equal(t, 0, badQty.Quantity)

	var notFound *VariantNotFoundError
	assert.False(t, errors.As(err, &notFound), "a bad quantity is not a missing variant")
	assert.Nil(t, f.orders.header, "nothing persisted")
}

func TestCreateOrder_UnknownVariant(t *testing.T) {
	f := newFixture(t)

	_, err := f.create(t, pricing.MethodCOD, LineItemRequest{VariantID: 999, Quantity: 1})

	var notFound *VariantNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, int64(999), notFound.VariantID)
}

func TestCreateOrder_InactiveProduct(t *testing.T) {
	f := newFixture(t)
	v := f.catalog.variants[10]
	v.Product.IsActive = false
	f.catalog.variants[10] = v

	_, err := f.create(t, pricing.MethodCOD)

	var inactive *ProductInactiveError
	require.ErrorAs(t, err, &inactive)
}

func TestCreateOrder_MissingPrice(t *testing.T) {
	f := newFixture(t)
	v := f.catalog.variants[10]
	v.Product.Price = nil
	f.catalog.variants[10] = v

	_, err := f.create(t, pricing.MethodCOD)

	var missing *MissingPriceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, int64(1), missing.ProductID)
}

func TestCreateOrder_InsufficientStockPreflight(t *testing.T) {
	f := newFixture(t)

	_, err := f.create(t, pricing.MethodCOD, LineItemRequest{VariantID: 10, Quantity: 6})

	var noStock *InsufficientStockError
	require.ErrorAs(t, err, &noStock)
	assert.Equal(t, 6, noStock.Requested)
	assert.Equal(t, 5, noStock.Available)
	assert.Nil(t, f.orders.header, "preflight failure must precede the saga")
}

func TestCreateOrder_StockRaceCompensates(t *testing.T) {
	f := newFixture(t)
	// Both lines pass preflight; the conditional decrement loses the race on
	// the second variant.
	f.catalog.failDecOn = 20

	_, err := f.create(t, pricing.MethodCOD,
		LineItemRequest{VariantID: 10, Quantity: 1},
		LineItemRequest{VariantID: 20, Quantity: 1},
	)

	var noStock *InsufficientStockError
	require.ErrorAs(t, err, &noStock)
	assert.Equal(t, int64(20), noStock.VariantID)

	// Full rollback: first decrement restocked, items and header removed.
	assert.Equal(t, []int64{10}, f.catalog.decremented)
	assert.Equal(t, []int64{10}, f.catalog.restocked)
	assert.True(t, f.orders.itemsDeleted)
	assert.True(t, f.orders.deleted)
}

func TestCreateOrder_GatewayFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.gateway.fail = true

	_, err := f.create(t, pricing.MethodOnline)
	require.Error(t, err)

	assert.Empty(t, f.catalog.decremented, "stock step must not run after gateway failure")
	assert.True(t, f.orders.itemsDeleted)
	assert.True(t, f.orders.deleted)
}

func TestCreateOrder_ItemInsertFailureRemovesHeader(t *testing.T) {
	f := newFixture(t)
	f.orders.failInsertItems = true

	_, err := f.create(t, pricing.MethodCOD)
	require.Error(t, err)
	assert.True(t, f.orders.deleted)
}

func TestCreateOrder_LuckyNumbersPerThousand(t *testing.T) {
	f := newFixture(t)

	// 4 x 500 = 2000, GST 100, COD 42 => 2142: two lucky numbers.
	res, err := f.create(t, pricing.MethodCOD, LineItemRequest{VariantID: 10, Quantity: 4})
	require.NoError(t, err)

	assert.True(t, dec("2142").Equal(res.Order.TotalAmount), "total %s", res.Order.TotalAmount)
	require.Len(t, res.Order.LuckyNumbers, 2)
	for _, n := range res.Order.LuckyNumbers {
		assert.Len(t, n, 7)
	}
	assert.NotEqual(t, res.Order.LuckyNumbers[0], res.Order.LuckyNumbers[1])
}

func TestPreviewPricing_MatchesCreateOrder(t *testing.T) {
	f := newFixture(t)
	items := []LineItemRequest{{VariantID: 10, Quantity: 1}, {VariantID: 20, Quantity: 2}}

	preview, err := f.svc.PreviewPricing(context.Background(), items, pricing.MethodCOD)
	require.NoError(t, err)

	res, err := f.create(t, pricing.MethodCOD, items...)
	require.NoError(t, err)

	assert.True(t, preview.GrandTotal.Equal(res.Order.TotalAmount),
		"preview %s vs order %s", preview.GrandTotal, res.Order.TotalAmount)
	assert.True(t, preview.Subtotal.Equal(res.Order.Subtotal))
	assert.True(t, preview.CODFee.Equal(res.Order.CODFee))
}

func TestPreviewPricing_IgnoresStock(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.PreviewPricing(context.Background(),
		[]LineItemRequest{{VariantID: 10, Quantity: 50}}, pricing.MethodOnline)
	require.NoError(t, err, "preview must not enforce stock")
	assert.True(t, dec("25000").Equal(res.Subtotal), "subtotal %s", res.Subtotal)
}

func TestVerifyPayment_Success(t *testing.T) {
	f := newFixture(t)
	res, err := f.create(t, pricing.MethodOnline)
	require.NoError(t, err)

	err = f.svc.VerifyPayment(context.Background(), f.user, VerifyRequest{
		OrderID:           res.Order.ID,
		RazorpayOrderID:   "order_rzp123",
		RazorpayPaymentID: "pay_42",
		Signature:         "valid-sig",
	})
	require.NoError(t, err)
	assert.True(t, f.orders.completed)
	assert.Equal(t, "pay_42", f.orders.paymentID)
}

func TestVerifyPayment_Idempotent(t *testing.T) {
	f := newFixture(t)
	res, err := f.create(t, pricing.MethodOnline)
	require.NoError(t, err)

	req := VerifyRequest{
		OrderID:           res.Order.ID,
		RazorpayOrderID:   "order_rzp123",
		RazorpayPaymentID: "pay_42",
		Signature:         "valid-sig",
	}
	require.NoError(t, f.svc.VerifyPayment(context.Background(), f.user, req))

	// Second callback with a garbage signature still succeeds: the order is
	// already completed and is not re-verified.
	req.Signature = "garbage"
	assert.NoError(t, f.svc.VerifyPayment(context.Background(), f.user, req))
}

func TestVerifyPayment_MismatchedGatewayOrder(t *testing.T) {
	f := newFixture(t)
	res, err := f.create(t, pricing.MethodOnline)
	require.NoError(t, err)

	err = f.svc.VerifyPayment(context.Background(), f.user, VerifyRequest{
		OrderID:           res.Order.ID,
		RazorpayOrderID:   "order_someone_elses",
		RazorpayPaymentID: "pay_42",
		Signature:         "valid-sig",
	})
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	assert.False(t, f.orders.completed)
}

func TestVerifyPayment_BadSignature(t *testing.T) {
	f := newFixture(t)
	res, err := f.create(t, pricing.MethodOnline)
	require.NoError(t, err)

	err = f.svc.VerifyPayment(context.Background(), f.user, VerifyRequest{
		OrderID:           res.Order.ID,
		RazorpayOrderID:   "order_rzp123",
		RazorpayPaymentID: "pay_42",
		Signature:         "forged",
	})
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	assert.False(t, f.orders.completed)
}

func TestVerifyPayment_UnknownOrder(t *testing.T) {
	f := newFixture(t)

	err := f.svc.VerifyPayment(context.Background(), f.user, VerifyRequest{OrderID: 404})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetDeliveryOptOut(t *testing.T) {
	f := newFixture(t)
	res, err := f.create(t, pricing.MethodCOD)
	require.NoError(t, err)
	require.False(t, res.Order.OptOutDelivery)

	updated, err := f.svc.SetDeliveryOptOut(context.Background(), f.user, res.Order.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.OptOutDelivery)
}
