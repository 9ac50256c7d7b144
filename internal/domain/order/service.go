package order

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Prathap331/GB-Backend/internal/domain/catalog"
	"github.com/Prathap331/GB-Backend/internal/domain/pricing"
	"github.com/Prathap331/GB-Backend/internal/domain/profile"
	"github.com/Prathap331/GB-Backend/internal/payment"
)

// LineItemRequest is a client-supplied cart line. Quantity and variant id are
// the only trusted fields; price and stock come from the catalog.
type LineItemRequest struct {
	VariantID int64
	Quantity  int
}

// CreateRequest holds the input for placing an order.
type CreateRequest struct {
	Items          []LineItemRequest
	PaymentMethod  pricing.PaymentMethod
	OptOutDelivery bool
}

// CreateResult is the hydrated outcome of a successful order placement. The
// gateway fields are set only for online orders.
type CreateResult struct {
	Order         *Order
	Pricing       *pricing.Result
	RazorpayKeyID string
}

// VerifyRequest carries the gateway callback correlation ids for one order.
type VerifyRequest struct {
	OrderID           int64
	RazorpayOrderID   string
	RazorpayPaymentID string
	Signature         string
}

// Service coordinates order creation, pricing preview, and payment
// verification. Every store and gateway dependency is injected; there is no
// process-global client.
type Service struct {
	profiles profile.Repository
	catalog  catalog.Repository
	pricer   *pricing.Engine
	orders   Repository
	lucky    *LuckyDraw
	gateway  payment.Gateway
}

// NewService creates a Service with the required dependencies.
func NewService(
	profiles profile.Repository,
	cat catalog.Repository,
	pricer *pricing.Engine,
	orders Repository,
	lucky *LuckyDraw,
	gateway payment.Gateway,
) *Service {
	return &Service{
		profiles: profiles,
		catalog:  cat,
		pricer:   pricer,
		orders:   orders,
		lucky:    lucky,
		gateway:  gateway,
	}
}

// PreviewPricing resolves the cart against the live catalog and prices it.
// The stock guard is skipped: a preview must not fail because another order is
// racing for the same units. Output is identical to what CreateOrder computes
// for the same cart.
func (s *Service) PreviewPricing(ctx context.Context, items []LineItemRequest, method pricing.PaymentMethod) (*pricing.Result, error) {
	resolved, _, err := s.resolveItems(ctx, items, false)
	if err != nil {
		return nil, err
	}
	return s.pricer.Price(ctx, resolved, method)
}

// CreateOrder runs the full placement flow: profile precondition, all-or-
// nothing item resolution, pricing, then the persistence saga (header + lucky
// numbers, items, gateway order, stock deduction). Any step failure rolls back
// everything already committed before surfacing the error.
func (s *Service) CreateOrder(ctx context.Context, user uuid.UUID, email string, req CreateRequest) (*CreateResult, error) {
	prof, err := s.loadOrCreateProfile(ctx, user, email)
	if err != nil {
		return nil, err
	}
	if missing := prof.MissingForDelivery(); len(missing) > 0 {
		return nil, &IncompleteProfileError{Missing: missing}
	}

	resolved, items, err := s.resolveItems(ctx, req.Items, true)
	if err != nil {
		return nil, err
	}

	priced, err := s.pricer.Price(ctx, resolved, req.PaymentMethod)
	if err != nil {
		return nil, errors.Wrap(err, "price cart")
	}

	contestID := newContestID()
	o := &Order{
		UserID:          user,
		Subtotal:        priced.Subtotal,
		TotalDiscount:   priced.TotalDiscount,
		GSTAmount:       priced.GSTAmount,
		ShippingFee:     priced.ShippingFee,
		CODFee:          priced.CODFee,
		TotalAmount:     priced.GrandTotal,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   PaymentPending,
		Status:          StatusPending,
		DeliveryAddress: prof.DeliveryAddress(),
		ContestID:       contestID,
		OptOutDelivery:  req.OptOutDelivery,
	}

	if err := runSaga(ctx, s.creationSteps(o, items, req.PaymentMethod)); err != nil {
		return nil, err
	}

	hydrated, err := s.orders.Get(ctx, o.ID, user)
	if err != nil {
		return nil, errors.Wrap(err, "load created order")
	}
	// The gateway id is written inside the saga; the read above races with
	// nothing, but keep the in-memory value authoritative.
	hydrated.RazorpayOrderID = o.RazorpayOrderID

	res := &CreateResult{Order: hydrated, Pricing: priced}
	if req.PaymentMethod == pricing.MethodOnline {
		res.RazorpayKeyID = s.gateway.KeyID()
	}

	zctx.From(ctx).Info("order created",
		zap.Int64("order_id", o.ID),
		zap.String("payment_method", string(req.PaymentMethod)),
		zap.String("total", priced.GrandTotal.String()),
		zap.Int("lucky_numbers", len(o.LuckyNumbers)),
	)
	return res, nil
}

// creationSteps builds the saga for one order. Compensation runs items-first,
// header-last, so no header can survive without its items.
func (s *Service) creationSteps(o *Order, items []Item, method pricing.PaymentMethod) []sagaStep {
	steps := []sagaStep{
		{
			name: "insert order header",
			run: func(ctx context.Context) error {
				if err := s.orders.CreateHeader(ctx, o); err != nil {
					return errors.Wrap(err, "insert order header")
				}
				count := LuckyNumberCount(o.TotalAmount)
				numbers, err := s.lucky.Allocate(ctx, s.orders, o.ID, o.UserID, count)
				if err != nil {
					// The header is already in; let our own undo clean it up.
					if delErr := s.orders.Delete(ctx, o.ID); delErr != nil {
						zctx.From(ctx).Error("orphaned order header after lucky draw failure",
							zap.Int64("order_id", o.ID), zap.Error(delErr))
					}
					return errors.Wrap(err, "allocate lucky numbers")
				}
				o.LuckyNumbers = numbers
				return nil
			},
			undo: func(ctx context.Context) error {
				return s.orders.Delete(ctx, o.ID)
			},
		},
		{
			name: "insert order items",
			run: func(ctx context.Context) error {
				return s.orders.InsertItems(ctx, o.ID, items)
			},
			undo: func(ctx context.Context) error {
				return s.orders.DeleteItems(ctx, o.ID)
			},
		},
	}

	if method == pricing.MethodOnline {
		steps = append(steps, sagaStep{
			name: "create gateway order",
			run: func(ctx context.Context) error {
				gatewayID, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
					Amount:   o.TotalAmount.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
					Currency: "INR",
					Receipt:  fmt.Sprintf("order_rcptid_%d", o.ID),
					Notes: map[string]string{
						"internal_order_id": strconv.FormatInt(o.ID, 10),
						"user_id":           o.UserID.String(),
						"contest_id":        o.ContestID,
						"opt_out_delivery":  strconv.FormatBool(o.OptOutDelivery),
					},
				})
				if err != nil {
					return errors.Wrap(err, "create gateway order")
				}
				o.RazorpayOrderID = gatewayID
				return s.orders.SetGatewayOrder(ctx, o.ID, gatewayID)
			},
			// Gateway orders are inert until paid; nothing to undo remotely.
		})
	}

	steps = append(steps, sagaStep{
		name: "deduct stock",
		run: func(ctx context.Context) error {
			for i, it := range items {
				if err := s.catalog.DecrementStock(ctx, it.VariantID, it.Quantity); err != nil {
					// Restock what this step already took before failing.
					for _, prev := range items[:i] {
						if restockErr := s.catalog.RestockVariant(ctx, prev.VariantID, prev.Quantity); restockErr != nil {
							zctx.From(ctx).Error("restock failed during compensation",
								zap.Int64("variant_id", prev.VariantID), zap.Error(restockErr))
						}
					}
					if errors.Is(err, catalog.ErrInsufficientStock) {
						return &InsufficientStockError{
							VariantID:   it.VariantID,
							ProductName: it.ProductName,
							Requested:   it.Quantity,
						}
					}
					return errors.Wrapf(err, "deduct stock for variant %d", it.VariantID)
				}
			}
			return nil
		},
		undo: func(ctx context.Context) error {
			for _, it := range items {
				if err := s.catalog.RestockVariant(ctx, it.VariantID, it.Quantity); err != nil {
					return err
				}
			}
			return nil
		},
	})

	return steps
}

// GetOrder returns a hydrated order owned by the user.
func (s *Service) GetOrder(ctx context.Context, user uuid.UUID, orderID int64) (*Order, error) {
	return s.orders.Get(ctx, orderID, user)
}

// ListOrders returns the user's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, user uuid.UUID) ([]Order, error) {
	return s.orders.ListByUser(ctx, user)
}

// SetDeliveryOptOut updates the opt-out flag, the only field a caller may
// change after creation, and returns the refreshed order.
func (s *Service) SetDeliveryOptOut(ctx context.Context, user uuid.UUID, orderID int64, optOut bool) (*Order, error) {
	if err := s.orders.SetDeliveryOptOut(ctx, orderID, user, optOut); err != nil {
		return nil, err
	}
	return s.orders.Get(ctx, orderID, user)
}

// VerifyPayment validates a gateway callback and confirms the order.
// Safe under duplicate invocation: an already-completed order returns success
// without re-verification.
func (s *Service) VerifyPayment(ctx context.Context, user uuid.UUID, req VerifyRequest) error {
	o, err := s.orders.Get(ctx, req.OrderID, user)
	if err != nil {
		return err
	}

	if o.PaymentStatus == PaymentCompleted {
		return nil
	}

	// The callback must reference the gateway order we opened for this order.
	if o.RazorpayOrderID == "" || o.RazorpayOrderID != req.RazorpayOrderID {
		zctx.From(ctx).Warn("payment verification against mismatched gateway order",
			zap.Int64("order_id", req.OrderID))
		return payment.ErrInvalidSignature
	}

	if err := s.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.Signature); err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			zctx.From(ctx).Warn("invalid payment signature",
				zap.Int64("order_id", req.OrderID))
		}
		return err
	}

	if err := s.orders.MarkPaymentCompleted(ctx, req.OrderID, req.RazorpayPaymentID); err != nil {
		return errors.Wrap(err, "mark payment completed")
	}
	return nil
}

// loadOrCreateProfile fetches the delivery profile, lazily creating the
// default one for first-time users.
func (s *Service) loadOrCreateProfile(ctx context.Context, user uuid.UUID, email string) (*profile.Profile, error) {
	prof, err := s.profiles.Get(ctx, user)
	if err == nil {
		return prof, nil
	}
	if !errors.Is(err, profile.ErrNotFound) {
		return nil, errors.Wrap(err, "load profile")
	}

	prof = profile.NewDefault(user, email)
	if err := s.profiles.Create(ctx, prof); err != nil {
		return nil, errors.Wrap(err, "create profile")
	}
	return prof, nil
}

// resolveItems validates the whole cart against the live catalog before any
// mutation. A single bad line aborts the order. enforceStock is off for the
// preview path.
func (s *Service) resolveItems(ctx context.Context, reqs []LineItemRequest, enforceStock bool) ([]pricing.LineItem, []Item, error) {
	if len(reqs) == 0 {
		return nil, nil, ErrEmptyCart
	}

	ids := make([]int64, len(reqs))
	for i, r := range reqs {
		if r.Quantity <= 0 {
			return nil, nil, &InvalidQuantityError{VariantID: r.VariantID, Quantity: r.Quantity}
		}
		ids[i] = r.VariantID
	}

	fetched, err := s.catalog.GetVariantsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, errors.Wrap(err, "get variants")
	}
	byID := make(map[int64]catalog.VariantDetail, len(fetched))
	for _, v := range fetched {
		byID[v.ID] = v
	}

	resolved := make([]pricing.LineItem, 0, len(reqs))
	items := make([]Item, 0, len(reqs))
	for _, r := range reqs {
		v, ok := byID[r.VariantID]
		if !ok {
			return nil, nil, &VariantNotFoundError{VariantID: r.VariantID}
		}
		if !v.Product.IsActive {
			return nil, nil, &ProductInactiveError{ProductID: v.Product.ID}
		}
		if v.Product.Price == nil {
			return nil, nil, &MissingPriceError{ProductID: v.Product.ID}
		}
		if enforceStock && r.Quantity > v.Stock {
			return nil, nil, &InsufficientStockError{
				VariantID:   v.ID,
				ProductName: v.Product.Name,
				Requested:   r.Quantity,
				Available:   v.Stock,
			}
		}

		unit := v.Product.Price.Round(2)
		lineSubtotal := unit.Mul(decimal.NewFromInt(int64(r.Quantity))).Round(2)

		resolved = append(resolved, pricing.LineItem{
			VariantID: v.ID,
			ProductID: v.Product.ID,
			BrandID:   v.Product.BrandID,
			Quantity:  r.Quantity,
			UnitPrice: unit,
			Subtotal:  lineSubtotal,
		})
		items = append(items, Item{
			ProductID:         v.Product.ID,
			VariantID:         v.ID,
			Quantity:          r.Quantity,
			PricePerUnit:      unit,
			Subtotal:          lineSubtotal,
			SupplierID:        v.Product.SupplierID,
			SupplierProductID: v.Product.SupplierProductID,
			Size:              v.Size,
			Color:             v.Color,
			ProductName:       v.Product.Name,
			Category:          v.Product.Category,
			ImageURL:          v.Product.ImageURL,
		})
	}
	return resolved, items, nil
}

// newContestID returns an opaque 32-character hex token.
func newContestID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
