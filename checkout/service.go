// Package checkout turns a session's cart into a pending order, hands the
// shopper off to Paystack and confirms the payment afterwards.
package checkout

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/apperrors"
	"github.com/junaidrashid-git/storefront-api/cart"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/orders"
)

// OrderStore is the part of the order repository checkout needs.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	OrderByReference(ctx context.Context, reference string) (*models.Order, error)
	RecordPayment(ctx context.Context, reference string, u orders.PaymentUpdate) error
}

// Carts resolves the cart of a session.
type Carts interface {
	Get(ctx context.Context, session string) *cart.Store
	Forget(session string)
}

// PaymentObserver is told about every gateway call.
type PaymentObserver interface {
	ObservePayment(step string, err error)
}

// OrderPlaced is dispatched once a payment is verified.
type OrderPlaced struct {
	Order models.Order `json:"order"`
}

func (OrderPlaced) Type() string { return "order.placed" }

type Config struct {
	Currency    string
	CallbackURL string
	PublicKey   string
}

// Handoff is returned to the client to open the hosted payment page.
type Handoff struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	PublicKey        string `json:"public_key"`
	AmountMinor      int64  `json:"amount"`
	Currency         string `json:"currency"`
}

type Confirmation struct {
	OrderID       uint                 `json:"order_id"`
	Reference     string               `json:"reference"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
}

type Service struct {
	carts      Carts
	orders     OrderStore
	gateway    Gateway
	dispatcher cart.Dispatcher
	observer   PaymentObserver
	logger     *zap.Logger
	cfg        Config
	now        func() time.Time
}

func NewService(carts Carts, store OrderStore, gateway Gateway, dispatcher cart.Dispatcher, observer PaymentObserver, logger *zap.Logger, cfg Config) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Currency == "" {
		cfg.Currency = "NGN"
	}
	return &Service{
		carts:      carts,
		orders:     store,
		gateway:    gateway,
		dispatcher: dispatcher,
		observer:   observer,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// ToMinorUnits converts a major-unit amount (naira) to minor units (kobo),
// rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Begin validates the request, records a pending order for the session's
// cart and initializes the payment. Validation problems and an empty cart
// are reported as validation errors; a gateway failure marks the order
// failed and is reported as an upstream error.
func (s *Service) Begin(ctx context.Context, session string, req Request) (*Handoff, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, &apperrors.AppError{Kind: apperrors.KindValidation, Message: "Invalid checkout details", Err: err}
	}

	lines := s.carts.Get(ctx, session).ForCheckout()
	if len(lines) == 0 {
		return nil, apperrors.Validation("Cart is empty")
	}

	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		price := decimal.NewFromFloat(l.Price)
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		items = append(items, models.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			SKU:       l.SKU,
			Image:     l.Image,
			Size:      l.Size,
			Color:     l.Color,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}
	amountMinor := ToMinorUnits(subtotal)
	if amountMinor <= 0 {
		return nil, apperrors.Validation("Order total must be greater than zero")
	}
	total, _ := subtotal.Float64()

	order := &models.Order{
		Reference: orders.NewReference(s.now()),
		SessionID: session,
		Email:     req.Email,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Notes:     req.Notes,
		Shipping: models.ShippingAddress{
			Address:    req.Address,
			City:       req.City,
			State:      req.State,
			Country:    req.Country,
			PostalCode: req.PostalCode,
		},
		Items:         items,
		Subtotal:      total,
		TotalAmount:   total,
		AmountMinor:   amountMinor,
		Currency:      s.cfg.Currency,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		PaymentMethod: "paystack",
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, apperrors.Internal("Failed to create order", err)
	}

	auth, err := s.gateway.Initialize(ctx, InitializeRequest{
		Email:       order.Email,
		AmountMinor: amountMinor,
		Currency:    order.Currency,
		Reference:   order.Reference,
		CallbackURL: s.cfg.CallbackURL,
		Metadata: map[string]any{
			"session_id": session,
			"full_name":  order.FullName,
			"items":      len(items),
		},
	})
	s.observe("initialize", err)
	if err != nil {
		s.logger.Error("payment initialization failed", zap.String("reference", order.Reference), zap.Error(err))
		if uerr := s.orders.RecordPayment(ctx, order.Reference, orders.PaymentUpdate{
			PaymentStatus:   models.PaymentStatusFailed,
			GatewayResponse: err.Error(),
		}); uerr != nil {
			s.logger.Error("failed to mark order as failed", zap.String("reference", order.Reference), zap.Error(uerr))
		}
		return nil, apperrors.Upstream("Payment initialization failed, please try again", err)
	}

	s.logger.Info("payment initialized",
		zap.String("reference", order.Reference),
		zap.Int64("amount", amountMinor),
		zap.String("session", session))

	return &Handoff{
		Reference:        order.Reference,
		AuthorizationURL: auth.AuthorizationURL,
		AccessCode:       auth.AccessCode,
		PublicKey:        s.cfg.PublicKey,
		AmountMinor:      amountMinor,
		Currency:         order.Currency,
	}, nil
}

// Confirm verifies the payment behind reference. On success the order is
// marked paid and confirmed, the cart of the session that placed it is
// cleared and OrderPlaced is dispatched. Confirming an order that is already
// paid is a no-op. A non-empty session must own the order.
func (s *Service) Confirm(ctx context.Context, session, reference string) (*Confirmation, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, apperrors.Validation("Payment reference is required")
	}

	order, err := s.orders.OrderByReference(ctx, reference)
	if errors.Is(err, orders.ErrOrderNotFound) {
		return nil, apperrors.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to load order", err)
	}
	if session != "" && order.SessionID != session {
		return nil, apperrors.NotFound("Order not found")
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return confirmation(order), nil
	}

	v, err := s.gateway.Verify(ctx, reference)
	s.observe("verify", err)
	if err != nil {
		return nil, apperrors.Upstream("Could not verify payment, please try again", err)
	}

	switch {
	case v.Status == "success" && v.AmountMinor == order.AmountMinor && strings.EqualFold(v.Currency, order.Currency):
	case v.Status == "success":
		s.logger.Warn("paid amount does not match order",
			zap.String("reference", reference),
			zap.Int64("expected", order.AmountMinor),
			zap.Int64("paid", v.AmountMinor),
			zap.String("currency", v.Currency))
		s.markFailed(ctx, reference, "amount mismatch: "+v.GatewayResponse)
		return nil, apperrors.Upstream("Payment amount does not match the order", nil)
	case v.Status == "failed" || v.Status == "abandoned" || v.Status == "reversed":
		s.markFailed(ctx, reference, v.GatewayResponse)
		return nil, apperrors.Upstream("Payment was not successful", nil)
	default:
		return nil, apperrors.Upstream("Payment is not complete yet", nil)
	}

	paidAt := s.now()
	if v.PaidAt != nil {
		paidAt = *v.PaidAt
	}
	update := orders.PaymentUpdate{
		PaymentStatus:   models.PaymentStatusPaid,
		Status:          models.OrderStatusConfirmed,
		PaymentMethod:   paymentMethod(v.Channel),
		GatewayResponse: v.GatewayResponse,
		PaidAt:          &paidAt,
	}
	err = s.orders.RecordPayment(ctx, reference, update)
	if errors.Is(err, orders.ErrAlreadyPaid) {
		// a concurrent confirmation (webhook or redirect) recorded it first
		current, lerr := s.orders.OrderByReference(ctx, reference)
		if lerr != nil {
			return nil, apperrors.Internal("Failed to load order", lerr)
		}
		return confirmation(current), nil
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to update order", err)
	}
	order.PaymentStatus = update.PaymentStatus
	order.Status = update.Status
	order.PaymentMethod = update.PaymentMethod
	order.GatewayResponse = update.GatewayResponse
	order.PaidAt = update.PaidAt

	if order.SessionID != "" {
		s.carts.Get(ctx, order.SessionID).Clear(ctx)
		s.carts.Forget(order.SessionID)
	}
	if s.dispatcher != nil {
		if err := s.dispatcher.Dispatch(OrderPlaced{Order: *order}); err != nil {
			s.logger.Warn("order event dispatch failed", zap.String("reference", reference), zap.Error(err))
		}
	}

	s.logger.Info("order confirmed", zap.String("reference", reference), zap.Uint("order_id", order.ID))
	return confirmation(order), nil
}

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

// HandleWebhook processes a signature-checked Paystack event. Only
// charge.success is acted on; the payment is re-verified against the API
// rather than trusting the payload.
func (s *Service) HandleWebhook(ctx context.Context, body []byte) error {
	var evt webhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return apperrors.Validation("Malformed webhook payload")
	}
	if evt.Event != "charge.success" {
		s.logger.Debug("ignoring paystack event", zap.String("event", evt.Event))
		return nil
	}
	_, err := s.Confirm(ctx, "", evt.Data.Reference)
	return err
}

func (s *Service) markFailed(ctx context.Context, reference, response string) {
	err := s.orders.RecordPayment(ctx, reference, orders.PaymentUpdate{
		PaymentStatus:   models.PaymentStatusFailed,
		GatewayResponse: response,
	})
	if errors.Is(err, orders.ErrAlreadyPaid) {
		s.logger.Warn("not marking a paid order as failed", zap.String("reference", reference))
		return
	}
	if err != nil {
		s.logger.Error("failed to mark order as failed", zap.String("reference", reference), zap.Error(err))
	}
}

func (s *Service) observe(step string, err error) {
	if s.observer != nil {
		s.observer.ObservePayment(step, err)
	}
}

func paymentMethod(channel string) string {
	if channel == "" {
		return "paystack"
	}
	return "paystack:" + channel
}

func confirmation(o *models.Order) *Confirmation {
	return &Confirmation{
		OrderID:       o.ID,
		Reference:     o.Reference,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
	}
}
