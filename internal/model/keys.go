package model

// Persisted keys
const (
	ProductsKey      = "drcuber-products"
	OrdersKey        = "drcuber-orders"
	AdminSessionKey  = "drcuber-admin-session"
	AdminPasswordKey = "drcuber-admin-password"
)

// Same-tab topics emitted after local writes
const (
	ProductsUpdatedTopic = "drcuber-products-updated"
	OrdersUpdatedTopic   = "drcuber-orders-updated"
)
