package models

import "time"

type OrderStatus string
type PaymentStatus string

const (
	// Order statuses (typical e-commerce flow)
	OrderStatusPending     OrderStatus = "pending"       // Order placed, awaiting payment
	OrderStatusConfirmed   OrderStatus = "confirmed"     // Payment verified
	OrderStatusReadyToShip OrderStatus = "ready_to_ship" // Packed and ready for dispatch
	OrderStatusShipped     OrderStatus = "shipped"       // Out for delivery
	OrderStatusDelivered   OrderStatus = "delivered"     // Customer received the item
	OrderStatusReturned    OrderStatus = "returned"      // Customer returned the item
	OrderStatusCancelled   OrderStatus = "cancelled"     // Cancelled before shipping

	// Payment statuses
	PaymentStatusPending  PaymentStatus = "pending"  // Payment not completed yet
	PaymentStatusPaid     PaymentStatus = "paid"     // Payment completed successfully
	PaymentStatusFailed   PaymentStatus = "failed"   // Payment attempt failed
	PaymentStatusRefunded PaymentStatus = "refunded" // Money returned to customer
)

// ShippingAddress is embedded in Order.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Reference       string          `gorm:"uniqueIndex;not null" json:"reference"`
	SessionID       string          `gorm:"index" json:"session_id"`
	Email           string          `gorm:"index;not null" json:"email"`
	FullName        string          `json:"full_name"`
	Phone           string          `json:"phone"`
	Notes           string          `json:"notes"`
	Shipping        ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal        float64         `json:"subtotal"`
	ShippingCost    float64         `json:"shipping_cost"`
	TotalAmount     float64         `json:"total_amount"`
	AmountMinor     int64           `json:"amount_minor"`
	Currency        string          `gorm:"type:VARCHAR(8)" json:"currency"`
	Status          OrderStatus     `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	PaymentMethod   string          `json:"payment_method"`
	GatewayResponse string          `json:"gateway_response,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"index" json:"order_id"`
	ProductID string  `gorm:"type:varchar(64);index" json:"product_id"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Image     string  `json:"image"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// LineTotal is price times quantity for the item.
func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}
