package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/apperrors"
	"github.com/junaidrashid-git/storefront-api/cart"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/orders"
)

type mockOrderStore struct {
	orders  map[string]*models.Order
	updates []orders.PaymentUpdate
	nextID  uint
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{orders: map[string]*models.Order{}}
}

func (m *mockOrderStore) CreateOrder(_ context.Context, order *models.Order) error {
	m.nextID++
	order.ID = m.nextID
	copied := *order
	m.orders[order.Reference] = &copied
	return nil
}

func (m *mockOrderStore) OrderByReference(_ context.Context, reference string) (*models.Order, error) {
	o, ok := m.orders[reference]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *mockOrderStore) RecordPayment(_ context.Context, reference string, u orders.PaymentUpdate) error {
	o, ok := m.orders[reference]
	if !ok {
		return orders.ErrOrderNotFound
	}
	if o.PaymentStatus == models.PaymentStatusPaid {
		return orders.ErrAlreadyPaid
	}
	m.updates = append(m.updates, u)
	o.PaymentStatus = u.PaymentStatus
	if u.Status != "" {
		o.Status = u.Status
	}
	o.GatewayResponse = u.GatewayResponse
	o.PaidAt = u.PaidAt
	return nil
}

type mockGateway struct {
	initErr      error
	verification *Verification
	verifyErr    error
	initialized  []InitializeRequest
	verified     []string
	// onVerify runs once, before the first Verify answers
	onVerify func()
}

func (m *mockGateway) Initialize(_ context.Context, req InitializeRequest) (*Authorization, error) {
	m.initialized = append(m.initialized, req)
	if m.initErr != nil {
		return nil, m.initErr
	}
	return &Authorization{
		AuthorizationURL: "https://checkout.paystack.com/abc",
		AccessCode:       "abc",
		Reference:        req.Reference,
	}, nil
}

func (m *mockGateway) Verify(_ context.Context, reference string) (*Verification, error) {
	m.verified = append(m.verified, reference)
	if hook := m.onVerify; hook != nil {
		m.onVerify = nil
		hook()
	}
	if m.verifyErr != nil {
		return nil, m.verifyErr
	}
	v := *m.verification
	v.Reference = reference
	return &v, nil
}

type mockDispatcher struct {
	events []cart.Event
}

func (m *mockDispatcher) Dispatch(event cart.Event) error {
	m.events = append(m.events, event)
	return nil
}

type fixture struct {
	service    *Service
	carts      *cart.Registry
	orders     *mockOrderStore
	gateway    *mockGateway
	dispatcher *mockDispatcher
}

func setup(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		carts:      cart.NewRegistry(cart.NewMemoryPersister(), nil, zap.NewNop()),
		orders:     newMockOrderStore(),
		gateway:    &mockGateway{},
		dispatcher: &mockDispatcher{},
	}
	f.service = NewService(f.carts, f.orders, f.gateway, f.dispatcher, nil, zap.NewNop(), Config{
		Currency:    "NGN",
		CallbackURL: "https://shop.example.com/checkout/complete",
		PublicKey:   "pk_test_123",
	})
	f.service.now = func() time.Time { return time.Date(2025, 9, 8, 13, 5, 0, 0, time.UTC) }
	return f
}

func validRequest() Request {
	return Request{
		Email:    " Ada@Example.com ",
		FullName: "Ada Obi",
		Phone:    "+2348012345678",
		Address:  "12 Admiralty Way",
		City:     "Lekki",
		State:    "Lagos",
		Country:  "Nigeria",
	}
}

func fillCart(ctx context.Context, f fixture, session string) {
	store := f.carts.Get(ctx, session)
	dress := models.Product{ID: "p1", Name: "Silk Slip Dress", Price: 5000.5}
	store.Add(ctx, dress, "M", "Red")
	store.Add(ctx, dress, "M", "Red")
	store.Add(ctx, models.Product{ID: "p2", Name: "Belt", Price: 1200, SKU: "BLT-1"}, "", "")
}

func TestBeginCreatesPendingOrderAndHandoff(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	fillCart(ctx, f, "s1")

	handoff, err := f.service.Begin(ctx, "s1", validRequest())
	require.NoError(t, err)

	assert.Regexp(t, `^ORD-20250908130500-[0-9A-F]{8}$`, handoff.Reference)
	assert.Equal(t, int64(1120100), handoff.AmountMinor)
	assert.Equal(t, "NGN", handoff.Currency)
	assert.Equal(t, "pk_test_123", handoff.PublicKey)
	assert.Equal(t, "https://checkout.paystack.com/abc", handoff.AuthorizationURL)

	order := f.orders.orders[handoff.Reference]
	require.NotNil(t, order)
	assert.Equal(t, "ada@example.com", order.Email)
	assert.Equal(t, "s1", order.SessionID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "SKU-P1", order.Items[0].SKU)
	assert.InDelta(t, 11201.0, order.TotalAmount, 0.001)

	require.Len(t, f.gateway.initialized, 1)
	assert.Equal(t, "https://shop.example.com/checkout/complete", f.gateway.initialized[0].CallbackURL)

	// the cart survives until the payment is confirmed
	assert.Equal(t, 3, f.carts.Get(ctx, "s1").TotalItems())
}

func TestBeginRejectsInvalidRequest(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	fillCart(ctx, f, "s1")

	req := validRequest()
	req.Email = "not-an-email"
	req.City = ""

	_, err := f.service.Begin(ctx, "s1", req)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "city")
	assert.Empty(t, f.orders.orders)
	assert.Empty(t, f.gateway.initialized)
}

func TestBeginRejectsEmptyCart(t *testing.T) {
	f := setup(t)
	_, err := f.service.Begin(context.Background(), "empty", validRequest())
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Empty(t, f.orders.orders)
}

func TestBeginGatewayFailureMarksOrderFailed(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	fillCart(ctx, f, "s1")
	f.gateway.initErr = errors.New("paystack: 503 Service Unavailable")

	_, err := f.service.Begin(ctx, "s1", validRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstream, apperrors.KindOf(err))
	assert.Equal(t, "Payment initialization failed, please try again", apperrors.Message(err))

	require.Len(t, f.orders.orders, 1)
	for _, o := range f.orders.orders {
		assert.Equal(t, models.PaymentStatusFailed, o.PaymentStatus)
	}
	assert.Equal(t, 3, f.carts.Get(ctx, "s1").TotalItems())
}

func beginPayment(t *testing.T, f fixture) string {
	t.Helper()
	ctx := context.Background()
	fillCart(ctx, f, "s1")
	handoff, err := f.service.Begin(ctx, "s1", validRequest())
	require.NoError(t, err)
	return handoff.Reference
}

func TestConfirmSuccessClearsCartAndDispatches(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ref := beginPayment(t, f)
	paidAt := time.Date(2025, 9, 8, 13, 7, 0, 0, time.UTC)
	f.gateway.verification = &Verification{Status: "success", AmountMinor: 1120100, Currency: "NGN", Channel: "card", GatewayResponse: "Approved", PaidAt: &paidAt}

	conf, err := f.service.Confirm(ctx, "s1", ref)
	require.NoError(t, err)
	assert.Equal(t, ref, conf.Reference)
	assert.Equal(t, models.OrderStatusConfirmed, conf.Status)
	assert.Equal(t, models.PaymentStatusPaid, conf.PaymentStatus)

	order := f.orders.orders[ref]
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	require.NotNil(t, order.PaidAt)
	assert.Equal(t, paidAt, *order.PaidAt)
	assert.Equal(t, 0, f.carts.Get(ctx, "s1").TotalItems())

	require.Len(t, f.dispatcher.events, 1)
	placed, ok := f.dispatcher.events[0].(OrderPlaced)
	require.True(t, ok)
	assert.Equal(t, ref, placed.Order.Reference)
	assert.Equal(t, "paystack:card", placed.Order.PaymentMethod)

	// a second confirmation does not hit the gateway again
	_, err = f.service.Confirm(ctx, "s1", ref)
	require.NoError(t, err)
	assert.Len(t, f.gateway.verified, 1)
	assert.Len(t, f.dispatcher.events, 1)
}

func TestConfirmRacingWebhookPlacesOrderOnce(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ref := beginPayment(t, f)
	f.gateway.verification = &Verification{Status: "success", AmountMinor: 1120100, Currency: "NGN"}

	// the webhook lands while the redirect verification is in flight, and
	// the shopper starts a new cart right after paying
	f.gateway.onVerify = func() {
		require.NoError(t, f.service.HandleWebhook(ctx, []byte(`{"event":"charge.success","data":{"reference":"`+ref+`"}}`)))
		scarf := models.Product{ID: "p9", Name: "Silk Scarf", Price: 1500}
		f.carts.Get(ctx, "s1").Add(ctx, scarf, "", "")
	}

	conf, err := f.service.Confirm(ctx, "s1", ref)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, conf.PaymentStatus)

	assert.Len(t, f.gateway.verified, 2)
	assert.Len(t, f.orders.updates, 1)
	assert.Len(t, f.dispatcher.events, 1)
	assert.Equal(t, 1, f.carts.Get(ctx, "s1").TotalItems())
}

func TestConfirmAmountMismatch(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ref := beginPayment(t, f)
	f.gateway.verification = &Verification{Status: "success", AmountMinor: 100, Currency: "NGN"}

	_, err := f.service.Confirm(ctx, "s1", ref)
	assert.Equal(t, apperrors.KindUpstream, apperrors.KindOf(err))
	assert.Equal(t, models.PaymentStatusFailed, f.orders.orders[ref].PaymentStatus)
	assert.Equal(t, 3, f.carts.Get(ctx, "s1").TotalItems())
	assert.Empty(t, f.dispatcher.events)
}

func TestConfirmFailedAndPendingPayments(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ref := beginPayment(t, f)

	f.gateway.verification = &Verification{Status: "ongoing"}
	_, err := f.service.Confirm(ctx, "s1", ref)
	assert.Equal(t, "Payment is not complete yet", apperrors.Message(err))
	assert.Equal(t, models.PaymentStatusPending, f.orders.orders[ref].PaymentStatus)

	f.gateway.verification = &Verification{Status: "failed", GatewayResponse: "Declined"}
	_, err = f.service.Confirm(ctx, "s1", ref)
	assert.Equal(t, "Payment was not successful", apperrors.Message(err))
	assert.Equal(t, models.PaymentStatusFailed, f.orders.orders[ref].PaymentStatus)
	assert.Equal(t, "Declined", f.orders.orders[ref].GatewayResponse)
}

func TestConfirmUnknownOrForeignReference(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ref := beginPayment(t, f)

	_, err := f.service.Confirm(ctx, "s1", "ORD-missing")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = f.service.Confirm(ctx, "someone-else", ref)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = f.service.Confirm(ctx, "s1", "  ")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Empty(t, f.gateway.verified)
}

func TestConfirmVerifyError(t *testing.T) {
	f := setup(t)
	ref := beginPayment(t, f)
	f.gateway.verifyErr = errors.New("timeout")

	_, err := f.service.Confirm(context.Background(), "s1", ref)
	assert.Equal(t, apperrors.KindUpstream, apperrors.KindOf(err))
	assert.Equal(t, models.PaymentStatusPending, f.orders.orders[ref].PaymentStatus)
}

func TestHandleWebhook(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ref := beginPayment(t, f)
	f.gateway.verification = &Verification{Status: "success", AmountMinor: 1120100, Currency: "ngn"}

	require.NoError(t, f.service.HandleWebhook(ctx, []byte(`{"event":"transfer.success","data":{"reference":"x"}}`)))
	assert.Empty(t, f.gateway.verified)

	require.NoError(t, f.service.HandleWebhook(ctx, []byte(`{"event":"charge.success","data":{"reference":"`+ref+`"}}`)))
	assert.Equal(t, models.PaymentStatusPaid, f.orders.orders[ref].PaymentStatus)
	assert.Equal(t, 0, f.carts.Get(ctx, "s1").TotalItems())

	err := f.service.HandleWebhook(ctx, []byte(`{not json`))
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1000000), ToMinorUnits(decimal.NewFromInt(10000)))
	assert.Equal(t, int64(1999), ToMinorUnits(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(1001), ToMinorUnits(decimal.RequireFromString("10.005")))
}
