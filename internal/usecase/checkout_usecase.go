package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"shop/internal/domain/model"
	"shop/internal/infra/cache"
	repo "shop/internal/repository"
	"shop/internal/shipping"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShippingQuoter is the aggregator as the orchestrator sees it.
type ShippingQuoter interface {
	GetMethods(ctx context.Context, c shipping.Context) []shipping.MethodResult
}

// CheckoutUsecase is the single source of truth for an in-progress
// checkout: it accumulates the customer's selections, produces the
// composite checkout view and turns a complete checkout into an order.
type CheckoutUsecase struct {
	tx         repo.TransactionManager
	carts      repo.CartRepository
	cartItems  repo.CartItemRepository
	addresses  repo.AddressRepository
	products   repo.ProductRepository
	states     repo.CheckoutStateRepository
	quoter     ShippingQuoter
	quoteCache cache.QuoteCache
	machine    StatusChanger

	taxRateBP      int64
	paymentMethods []string
	log            *zap.Logger
}

// StatusChanger is the slice of the state machine the orchestrator
// needs: seeding a new order's initial status.
type StatusChanger interface {
	Initial(ctx context.Context, r repo.TxRepos, order model.Order, actor string) error
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	carts repo.CartRepository,
	cartItems repo.CartItemRepository,
	addresses repo.AddressRepository,
	products repo.ProductRepository,
	states repo.CheckoutStateRepository,
	quoter ShippingQuoter,
	quoteCache cache.QuoteCache,
	machine StatusChanger,
	taxRateBP int64,
	paymentMethods []string,
	log *zap.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:             tx,
		carts:          carts,
		cartItems:      cartItems,
		addresses:      addresses,
		products:       products,
		states:         states,
		quoter:         quoter,
		quoteCache:     quoteCache,
		machine:        machine,
		taxRateBP:      taxRateBP,
		paymentMethods: paymentMethods,
		log:            log,
	}
}

type CheckoutTotals struct {
	Subtotal    int64 `json:"subtotal"`
	ShippingFee int64 `json:"shipping_fee"`
	Tax         int64 `json:"tax"`
	GrandTotal  int64 `json:"grand_total"`
}

type CheckoutStateView struct {
	ShippingAddressID *int64 `json:"shipping_address_id,omitempty"`
	BillingAddressID  *int64 `json:"billing_address_id,omitempty"`
	ShippingMethod    string `json:"shipping_method,omitempty"`
	PaymentMethod     string `json:"payment_method,omitempty"`
}

// CheckoutResult is the composite the presentation layer renders.
type CheckoutResult struct {
	Cart            CartResponse            `json:"cart"`
	Addresses       []model.Address         `json:"addresses"`
	ShippingMethods []shipping.MethodResult `json:"shipping_methods"`
	PaymentMethods  []string                `json:"payment_methods"`
	State           CheckoutStateView       `json:"state"`
	Totals          CheckoutTotals          `json:"totals"`
}

// UpdateValuesInput is the recognized partial-update set. Nil fields are
// left untouched; unknown JSON keys are dropped at bind time.
type UpdateValuesInput struct {
	ShippingAddressID *int64  `json:"shipping_address_id"`
	BillingAddressID  *int64  `json:"billing_address_id"`
	ShippingMethod    *string `json:"shipping_method"`
	PaymentMethod     *string `json:"payment_method"`
	UseSameAddress    *bool   `json:"use_same_address"`
}

type ConfirmInput struct {
	IdempotencyKey string
}

// GetCheckoutResult builds the checkout view for the user's active cart.
// An empty or absent cart is ErrEmptyCart: the caller redirects to the
// cart page, it is not a fault.
func (u *CheckoutUsecase) GetCheckoutResult(ctx context.Context, userID int64) (CheckoutResult, error) {
	if userID <= 0 {
		return CheckoutResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, items, err := u.activeCartWithItems(ctx, userID)
	if err != nil {
		return CheckoutResult{}, err
	}

	state, err := u.loadOrInitState(ctx, userID, cart.ID)
	if err != nil {
		return CheckoutResult{}, err
	}

	addresses, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return CheckoutResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cartResp, err := u.buildCartResponse(ctx, items)
	if err != nil {
		return CheckoutResult{}, err
	}

	methods, err := u.methodsForState(ctx, userID, cart.ID, items, cartResp.Total, state)
	if err != nil {
		return CheckoutResult{}, err
	}

	// A saved method that fell out of the live quotes is cleared so the
	// customer reselects instead of seeing it priced at zero.
	if state.ShippingMethod != "" && !selectedFeeOK(methods, state.ShippingMethod) {
		state.ShippingMethod = ""
		if state, err = u.states.Save(ctx, state); err != nil {
			return CheckoutResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	fee := selectedFee(methods, state.ShippingMethod)
	totals := u.computeTotals(cartResp.Total, fee)

	return CheckoutResult{
		Cart:            cartResp,
		Addresses:       addresses,
		ShippingMethods: methods,
		PaymentMethods:  u.paymentMethods,
		State:           toStateView(state),
		Totals:          totals,
	}, nil
}

// UpdateValues applies a partial update to the checkout state. Repeating
// the same update is a no-op.
func (u *CheckoutUsecase) UpdateValues(ctx context.Context, userID int64, in UpdateValuesInput) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, items, err := u.activeCartWithItems(ctx, userID)
	if err != nil {
		return err
	}

	state, err := u.loadOrInitState(ctx, userID, cart.ID)
	if err != nil {
		return err
	}

	if in.ShippingAddressID != nil {
		if err := u.checkAddressOwned(ctx, *in.ShippingAddressID, userID, "shipping_address_id"); err != nil {
			return err
		}
		if state.ShippingAddressID == nil || *state.ShippingAddressID != *in.ShippingAddressID {
			// Old-address quotes are stale now. Invalidate before any
			// re-quote below so the fresh entry survives.
			if err := u.quoteCache.DeleteCart(ctx, cart.ID); err != nil {
				u.log.Warn("quote cache invalidation failed", zap.Int64("cart_id", cart.ID), zap.Error(err))
			}
		}
		state.ShippingAddressID = in.ShippingAddressID
	}

	if in.BillingAddressID != nil {
		if err := u.checkAddressOwned(ctx, *in.BillingAddressID, userID, "billing_address_id"); err != nil {
			return err
		}
		state.BillingAddressID = in.BillingAddressID
	}

	if in.UseSameAddress != nil && *in.UseSameAddress && state.ShippingAddressID != nil {
		state.BillingAddressID = state.ShippingAddressID
	}

	if in.ShippingMethod != nil {
		method := strings.TrimSpace(*in.ShippingMethod)
		if method == "" {
			return NewHTTPError(http.StatusBadRequest, "invalid shipping_method")
		}
		if state.ShippingAddressID == nil {
			return NewHTTPError(http.StatusBadRequest, "shipping address required")
		}

		subtotal := subtotalOf(items)
		methods, err := u.methodsFor(ctx, userID, cart.ID, items, subtotal, *state.ShippingAddressID)
		if err != nil {
			return err
		}
		if selectedFeeOK(methods, method) {
			state.ShippingMethod = method
		} else {
			return NewHTTPError(http.StatusBadRequest, "invalid shipping_method")
		}
	}

	if in.PaymentMethod != nil {
		method := strings.TrimSpace(*in.PaymentMethod)
		if !contains(u.paymentMethods, method) {
			return NewHTTPError(http.StatusBadRequest, "invalid payment_method")
		}
		state.PaymentMethod = method
	}

	if _, err := u.states.Save(ctx, state); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// Confirm turns a complete checkout into an order. Order creation, stock
// decrement, initial status, cart close and state cleanup are one
// transaction; a concurrent second confirm finds no active cart and gets
// ErrEmptyCart.
func (u *CheckoutUsecase) Confirm(ctx context.Context, userID int64, in ConfirmInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	var out OrderOutput
	var clearedCartID int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// Same key returns the same order.
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toOrderOutput(existing, items)
			return nil
		}

		cart, err := r.Carts().FindActiveByOwner(ctx, repo.OwnerForUser(userID))
		if errors.Is(err, repo.ErrNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return ErrEmptyCart
		}

		state, err := r.CheckoutStates().FindByCartID(ctx, cart.ID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrIncompleteCheckout
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !state.Complete() {
			return ErrIncompleteCheckout
		}

		shipAddr, err := r.Addresses().FindByID(ctx, *state.ShippingAddressID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// Re-check stock at confirmation time and take it.
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		var subtotal int64
		now := time.Now()

		for _, ci := range cartItems {
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}

			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}

			orderItems = append(orderItems, model.OrderItem{
				ProductID:           ci.ProductID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   ci.UnitPriceSnapshot,
				Quantity:            ci.Quantity,
				CreatedAt:           now,
			})
			subtotal += ci.UnitPriceSnapshot * ci.Quantity
		}

		// Price the chosen method against the live provider set.
		methods := u.quoter.GetMethods(ctx, shippingContext(userID, cart.ID, cartItems, subtotal, shipAddr))
		if !selectedFeeOK(methods, state.ShippingMethod) {
			return NewHTTPError(http.StatusBadRequest, "shipping method unavailable")
		}
		fee := selectedFee(methods, state.ShippingMethod)
		totals := u.computeTotals(subtotal, fee)

		order := model.Order{
			Number:            newOrderNumber(now),
			UserID:            userID,
			ShippingAddressID: *state.ShippingAddressID,
			BillingAddressID:  *state.BillingAddressID,
			ShippingMethod:    state.ShippingMethod,
			PaymentMethod:     state.PaymentMethod,
			Status:            model.OrderStatusUnpaid,
			Subtotal:          totals.Subtotal,
			ShippingFee:       totals.ShippingFee,
			Tax:               totals.Tax,
			TotalPrice:        totals.GrandTotal,
			IdempotencyKey:    key,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			// Concurrent submit with the same key: return the winner.
			ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err2 == nil && found2 {
				items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
				if err3 != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out = toOrderOutput(ex2, items2)
				return nil
			}
			return NewHTTPError(http.StatusBadRequest, "idempotency conflict")
		}
		order.ID = orderID

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := u.machine.Initial(ctx, r, order, "customer"); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// Close the cart so a second confirm sees no active cart.
		if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusCheckedOut); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.CheckoutStates().DeleteByCartID(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		clearedCartID = cart.ID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	if clearedCartID != 0 {
		// Best effort; entries also expire on their own.
		if err := u.quoteCache.DeleteCart(ctx, clearedCartID); err != nil {
			u.log.Warn("quote cache cleanup failed", zap.Int64("cart_id", clearedCartID), zap.Error(err))
		}
	}
	return out, nil
}

func (u *CheckoutUsecase) activeCartWithItems(ctx context.Context, userID int64) (model.Cart, []model.CartItem, error) {
	cart, err := u.carts.FindActiveByOwner(ctx, repo.OwnerForUser(userID))
	if errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, nil, ErrEmptyCart
	}
	if err != nil {
		return model.Cart{}, nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.cartItems.ListByCartID(ctx, cart.ID)
	if err != nil {
		return model.Cart{}, nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(items) == 0 {
		return model.Cart{}, nil, ErrEmptyCart
	}
	return cart, items, nil
}

// loadOrInitState returns the cart's checkout state, seeding a fresh one
// with the user's default address on the first checkout view.
func (u *CheckoutUsecase) loadOrInitState(ctx context.Context, userID, cartID int64) (model.CheckoutState, error) {
	state, err := u.states.FindByCartID(ctx, cartID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.CheckoutState{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	state = model.CheckoutState{CartID: cartID}
	addresses, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return model.CheckoutState{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	for i := range addresses {
		if addresses[i].IsDefault {
			id := addresses[i].ID
			state.ShippingAddressID = &id
			state.BillingAddressID = &id
			break
		}
	}

	saved, err := u.states.Save(ctx, state)
	if err != nil {
		return model.CheckoutState{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return saved, nil
}

func (u *CheckoutUsecase) checkAddressOwned(ctx context.Context, addressID, userID int64, field string) error {
	if addressID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid "+field)
	}
	owned, err := u.addresses.IsOwnedByUser(ctx, addressID, userID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return NewHTTPError(http.StatusBadRequest, "invalid "+field)
	}
	return nil
}

func (u *CheckoutUsecase) buildCartResponse(ctx context.Context, items []model.CartItem) (CartResponse, error) {
	respItems := make([]CartItemResponse, 0, len(items))
	var total int64

	for _, it := range items {
		p, err := u.products.FindByID(ctx, it.ProductID)
		if err != nil || !p.IsActive {
			continue
		}
		respItems = append(respItems, CartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      p.Name,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
		total += it.UnitPriceSnapshot * it.Quantity
	}

	return CartResponse{Items: respItems, Total: total}, nil
}

// methodsForState resolves quotes for the state's shipping address, or
// returns no methods when no address is selected yet.
func (u *CheckoutUsecase) methodsForState(ctx context.Context, userID, cartID int64, items []model.CartItem, subtotal int64, state model.CheckoutState) ([]shipping.MethodResult, error) {
	if state.ShippingAddressID == nil {
		return []shipping.MethodResult{}, nil
	}
	return u.methodsFor(ctx, userID, cartID, items, subtotal, *state.ShippingAddressID)
}

func (u *CheckoutUsecase) methodsFor(ctx context.Context, userID, cartID int64, items []model.CartItem, subtotal int64, addressID int64) ([]shipping.MethodResult, error) {
	if cached, err := u.quoteCache.Get(ctx, cartID, addressID); err == nil {
		return cached, nil
	}

	addr, err := u.addresses.FindByID(ctx, addressID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	methods := u.quoter.GetMethods(ctx, shippingContext(userID, cartID, items, subtotal, addr))

	if err := u.quoteCache.Set(ctx, cartID, addressID, methods); err != nil {
		u.log.Warn("quote cache write failed", zap.Int64("cart_id", cartID), zap.Error(err))
	}
	return methods, nil
}

func (u *CheckoutUsecase) computeTotals(subtotal, fee int64) CheckoutTotals {
	tax := subtotal * u.taxRateBP / 10000
	return CheckoutTotals{
		Subtotal:    subtotal,
		ShippingFee: fee,
		Tax:         tax,
		GrandTotal:  subtotal + fee + tax,
	}
}

func shippingContext(userID, cartID int64, items []model.CartItem, subtotal int64, addr model.Address) shipping.Context {
	ctxItems := make([]shipping.ContextItem, 0, len(items))
	for _, it := range items {
		ctxItems = append(ctxItems, shipping.ContextItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPriceSnapshot,
		})
	}
	return shipping.Context{
		UserID:   userID,
		CartID:   cartID,
		Items:    ctxItems,
		Subtotal: subtotal,
		Destination: shipping.Destination{
			PostalCode: addr.PostalCode,
			State:      addr.State,
			City:       addr.City,
		},
	}
}

func subtotalOf(items []model.CartItem) int64 {
	var total int64
	for _, it := range items {
		total += it.UnitPriceSnapshot * it.Quantity
	}
	return total
}

func selectedFee(methods []shipping.MethodResult, methodCode string) int64 {
	for _, m := range methods {
		for _, q := range m.Quotes {
			if q.Code == methodCode {
				return q.Price
			}
		}
	}
	return 0
}

func selectedFeeOK(methods []shipping.MethodResult, methodCode string) bool {
	for _, m := range methods {
		for _, q := range m.Quotes {
			if q.Code == methodCode {
				return true
			}
		}
	}
	return false
}

func toStateView(s model.CheckoutState) CheckoutStateView {
	return CheckoutStateView{
		ShippingAddressID: s.ShippingAddressID,
		BillingAddressID:  s.BillingAddressID,
		ShippingMethod:    s.ShippingMethod,
		PaymentMethod:     s.PaymentMethod,
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func newOrderNumber(now time.Time) string {
	return now.Format("20060102") + "-" + strings.ToUpper(uuid.NewString()[:8])
}
