// Package orders persists orders and their payment state.
package orders

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/storefront-api/models"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrAlreadyPaid          = errors.New("order already paid")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

// ParseStatus maps a case-insensitive status name to an OrderStatus.
func ParseStatus(status string) (models.OrderStatus, error) {
	switch s := models.OrderStatus(strings.ToLower(strings.TrimSpace(status))); s {
	case models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusReadyToShip,
		models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusReturned,
		models.OrderStatusCancelled:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// ParsePaymentStatus maps a case-insensitive name to a PaymentStatus.
func ParsePaymentStatus(status string) (models.PaymentStatus, error) {
	switch s := models.PaymentStatus(strings.ToLower(strings.TrimSpace(status))); s {
	case models.PaymentStatusPending, models.PaymentStatusPaid,
		models.PaymentStatusFailed, models.PaymentStatusRefunded:
		return s, nil
	default:
		return "", ErrInvalidPaymentStatus
	}
}

// NewReference returns a unique order reference such as
// ORD-20250908130500-1A2B3C4D.
func NewReference(now time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ORD-" + now.Format("20060102150405") + "-" + id[:8]
}

// PaymentUpdate is the outcome of a payment attempt. A zero Status leaves
// the order status unchanged.
type PaymentUpdate struct {
	PaymentStatus   models.PaymentStatus
	Status          models.OrderStatus
	PaymentMethod   string
	GatewayResponse string
	PaidAt          *time.Time
}

type Filter struct {
	SessionID     string
	Status        string
	PaymentStatus string
	Email         string
	Since         time.Time
	Limit         int
	Offset        int
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
	return errors.Wrap(err, "create order")
}

func (r *Repository) OrderByReference(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "reference = ?", reference).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load order")
	}
	return &order, nil
}

func (r *Repository) ListOrders(ctx context.Context, f Filter) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Items").Order("created_at DESC")
	if f.SessionID != "" {
		q = q.Where("session_id = ?", f.SessionID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.Email != "" {
		q = q.Where("LOWER(email) = LOWER(?)", f.Email)
	}
	if !f.Since.IsZero() {
		q = q.Where("created_at >= ?", f.Since)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var list []models.Order
	if err := q.Find(&list).Error; err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return list, nil
}

// RecordPayment stores the outcome of a gateway verification. An order that
// is already paid is never touched again: the update is conditional and
// ErrAlreadyPaid tells the caller another confirmation got there first.
func (r *Repository) RecordPayment(ctx context.Context, reference string, u PaymentUpdate) error {
	updates := map[string]any{
		"payment_status":   u.PaymentStatus,
		"gateway_response": u.GatewayResponse,
	}
	if u.Status != "" {
		updates["status"] = u.Status
	}
	if u.PaymentMethod != "" {
		updates["payment_method"] = u.PaymentMethod
	}
	if u.PaidAt != nil {
		updates["paid_at"] = *u.PaidAt
	}

	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("reference = ? AND payment_status <> ?", reference, models.PaymentStatusPaid).
		Updates(updates)
	if res.Error != nil {
		return errors.Wrap(res.Error, "record payment")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("reference = ?", reference).Count(&count).Error; err != nil {
		return errors.Wrap(err, "load order")
	}
	if count == 0 {
		return ErrOrderNotFound
	}
	return ErrAlreadyPaid
}

func (r *Repository) UpdateStatus(ctx context.Context, reference string, status models.OrderStatus) error {
	return r.update(ctx, reference, map[string]any{"status": status})
}

func (r *Repository) UpdatePaymentStatus(ctx context.Context, reference string, status models.PaymentStatus) error {
	return r.update(ctx, reference, map[string]any{"payment_status": status})
}

func (r *Repository) DeleteOrder(ctx context.Context, reference string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Select("id").First(&order, "reference = ?", reference).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return errors.Wrap(err, "load order")
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return errors.Wrap(err, "delete order items")
		}
		return errors.Wrap(tx.Delete(&models.Order{}, order.ID).Error, "delete order")
	})
}

func (r *Repository) update(ctx context.Context, reference string, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("reference = ?", reference).Updates(updates)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update order")
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
