package model

import "time"

// OrderStatus is a step of the order lifecycle
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusProcessing     OrderStatus = "processing"
	StatusShipped        OrderStatus = "shipped"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// FulfillmentFlow lists the forward lifecycle in order. Cancelled is not part of it.
var FulfillmentFlow = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusOutForDelivery,
	StatusDelivered,
}

// IsValidStatus reports whether status is a known order status
func IsValidStatus(status OrderStatus) bool {
	return status == StatusCancelled || status.Step() >= 0
}

// Step returns the position of status in FulfillmentFlow, or -1
func (s OrderStatus) Step() int {
	for i, st := range FulfillmentFlow {
		if st == s {
			return i
		}
	}
	return -1
}

// Cancellable reports whether an order in this status may still be cancelled
func (s OrderStatus) Cancellable() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is possible
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// PaymentMethod of an order
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
	PaymentUPI    PaymentMethod = "upi"
)

// IsValidPaymentMethod reports whether m is a known payment method
func IsValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCOD, PaymentOnline, PaymentUPI:
		return true
	default:
		return false
	}
}

// PaymentStatus of an order
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// IsValidPaymentStatus reports whether s is a known payment status
func IsValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	default:
		return false
	}
}

// Address is a shipping address
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// OrderItem is a frozen snapshot of a product at order time
type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// StatusChange is one entry of an order's status history
type StatusChange struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note,omitempty"`
}

// Order is a customer purchase record
type Order struct {
	ID                string         `json:"id"`
	UserID            string         `json:"userId"`
	UserEmail         string         `json:"userEmail"`
	UserName          string         `json:"userName"`
	UserPhone         string         `json:"userPhone,omitempty"`
	Items             []OrderItem    `json:"items"`
	TotalAmount       int64          `json:"totalAmount"`
	ShippingAddress   Address        `json:"shippingAddress"`
	Status            OrderStatus    `json:"status"`
	PaymentMethod     PaymentMethod  `json:"paymentMethod"`
	PaymentStatus     PaymentStatus  `json:"paymentStatus"`
	TrackingNumber    string         `json:"trackingNumber,omitempty"`
	EstimatedDelivery string         `json:"estimatedDelivery,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	StatusHistory     []StatusChange `json:"statusHistory"`
}

// Clone returns a deep copy of the order
func (o Order) Clone() Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	o.StatusHistory = append([]StatusChange(nil), o.StatusHistory...)
	return o
}

// OrderDraft is an order before the store assigns id, timestamps and history
type OrderDraft struct {
	UserID            string        `json:"userId"`
	UserEmail         string        `json:"userEmail"`
	UserName          string        `json:"userName"`
	UserPhone         string        `json:"userPhone,omitempty"`
	Items             []OrderItem   `json:"items"`
	TotalAmount       int64         `json:"totalAmount"`
	ShippingAddress   Address       `json:"shippingAddress"`
	Status            OrderStatus   `json:"status"`
	PaymentMethod     PaymentMethod `json:"paymentMethod"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	TrackingNumber    string        `json:"trackingNumber,omitempty"`
	EstimatedDelivery string        `json:"estimatedDelivery,omitempty"`
}

// ItemsTotal returns Σ price·quantity over the draft's items
func (d OrderDraft) ItemsTotal() int64 {
	var total int64
	for _, it := range d.Items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}
