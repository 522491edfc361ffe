package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Storage metrics
var (
	StorageOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_storage_operation_duration_seconds",
			Help:    "Duration of persistent store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "backend"}, // operation can be "get", "set", "remove"
	)

	StorageErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_storage_errors_total",
			Help: "Total number of failed persistent store operations",
		},
		[]string{"operation", "reason"}, // reason can be "quota_exceeded", "unavailable"
	)

	CrossTabEventCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cross_tab_events_total",
			Help: "Total number of storage change events applied by tabs",
		},
		[]string{"key"},
	)

	EventStreamSubscribersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_event_stream_subscribers",
			Help: "Number of clients connected to the storage event stream",
		},
	)
)

// Auth metrics
var (
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_admin_login_total",
			Help: "Total number of admin login attempts",
		},
	)

	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type can be "invalid_credential", "wrong_current_password", "invalid_token"
	)

	AuthOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_auth_operations_total",
			Help: "Total number of authentication operations",
		},
		[]string{"operation"}, // operation can be "login", "logout", "password_change", "session_expired"
	)
)

// Catalog metrics
var (
	CatalogOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_operations_total",
			Help: "Total number of catalog operations",
		},
		[]string{"operation"},
	)

	ProductInventoryGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_product_inventory",
			Help: "Current inventory level for products",
		},
		[]string{"product_id", "category"},
	)
)

// Order metrics
var (
	OrdersCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Total number of orders created",
		},
	)

	OrderTransitionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_transitions_total",
			Help: "Total number of order status transitions by target status",
		},
		[]string{"status"},
	)

	OrderRejectionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_rejections_total",
			Help: "Total number of rejected order mutations",
		},
		[]string{"reason"},
	)

	CheckoutCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_handoffs_total",
			Help: "Total number of checkout hand-offs by outcome",
		},
		[]string{"outcome"}, // outcome can be "copied", "clipboard_denied", "invalid"
	)
)

func init() {
	prometheus.MustRegister(StorageOperationDuration)
	prometheus.MustRegister(StorageErrorCounter)
	prometheus.MustRegister(CrossTabEventCounter)
	prometheus.MustRegister(EventStreamSubscribersGauge)

	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(AuthOperationCounter)

	prometheus.MustRegister(CatalogOperationsCounter)
	prometheus.MustRegister(ProductInventoryGauge)

	prometheus.MustRegister(OrdersCreatedCounter)
	prometheus.MustRegister(OrderTransitionCounter)
	prometheus.MustRegister(OrderRejectionCounter)
	prometheus.MustRegister(CheckoutCounter)
}

// TrackStorageOperation measures persistent store operation durations
func TrackStorageOperation(operation, backend string) func(time.Time) {
	return func(startTime time.Time) {
		StorageOperationDuration.With(prometheus.Labels{
			"operation": operation,
			"backend":   backend,
		}).Observe(time.Since(startTime).Seconds())
	}
}

// RecordStorageError records a failed store operation
func RecordStorageError(operation, reason string) {
	StorageErrorCounter.With(prometheus.Labels{"operation": operation, "reason": reason}).Inc()
}

// RecordCrossTabEvent records a change event applied by a tab
func RecordCrossTabEvent(key string) {
	CrossTabEventCounter.With(prometheus.Labels{"key": key}).Inc()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordAuthOperation records an authentication operation by type
func RecordAuthOperation(operation string) {
	AuthOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordCatalogOperation increments the counter for catalog operations
func RecordCatalogOperation(operation string) {
	CatalogOperationsCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// UpdateProductInventory updates the gauge for product inventory
func UpdateProductInventory(productID, category string, stock int) {
	ProductInventoryGauge.With(prometheus.Labels{
		"product_id": productID,
		"category":   category,
	}).Set(float64(stock))
}

// RemoveProductInventory drops the inventory series of a deleted product
func RemoveProductInventory(productID, category string) {
	ProductInventoryGauge.Delete(prometheus.Labels{
		"product_id": productID,
		"category":   category,
	})
}

// RecordOrderTransition records an order moving to status
func RecordOrderTransition(status string) {
	OrderTransitionCounter.With(prometheus.Labels{"status": status}).Inc()
}

// RecordOrderRejection records a rejected order mutation
func RecordOrderRejection(reason string) {
	OrderRejectionCounter.With(prometheus.Labels{"reason": reason}).Inc()
}

// RecordCheckout records a checkout hand-off outcome
func RecordCheckout(outcome string) {
	CheckoutCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}
