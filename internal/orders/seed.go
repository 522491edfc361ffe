package orders

import (
	"time"

	"github.com/sahilkr01/drcuberstore/internal/model"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.January, day, hour, minute, 0, 0, time.UTC)
}

// SampleOrders returns the demo order written when the store has no orders yet
func SampleOrders() []model.Order {
	return []model.Order{
		{
			ID:        "ORD-2024-001",
			UserID:    "user-1",
			UserEmail: "demo@example.com",
			UserName:  "Demo User",
			UserPhone: "+91 98765 43210",
			Items: []model.OrderItem{
				{
					ProductID: "1",
					Name:      "GAN 356 XS",
					Image:     "https://images.unsplash.com/photo-1591991564021-0662a8573199?w=400&h=400&fit=crop",
					Price:     2999,
					Quantity:  1,
				},
			},
			TotalAmount: 2999,
			ShippingAddress: model.Address{
				Street:  "123 Main Street",
				City:    "Mumbai",
				State:   "Maharashtra",
				ZipCode: "400001",
				Country: "India",
			},
			Status:            model.StatusDelivered,
			PaymentMethod:     model.PaymentOnline,
			PaymentStatus:     model.PaymentPaid,
			TrackingNumber:    "IND123456789",
			EstimatedDelivery: "2024-01-15",
			CreatedAt:         at(10, 10, 0),
			UpdatedAt:         at(15, 14, 0),
			StatusHistory: []model.StatusChange{
				{Status: model.StatusPending, Timestamp: at(10, 10, 0)},
				{Status: model.StatusConfirmed, Timestamp: at(10, 10, 30)},
				{Status: model.StatusProcessing, Timestamp: at(11, 9, 0)},
				{Status: model.StatusShipped, Timestamp: at(12, 11, 0), Note: "Dispatched from warehouse"},
				{Status: model.StatusOutForDelivery, Timestamp: at(15, 8, 0)},
				{Status: model.StatusDelivered, Timestamp: at(15, 14, 0), Note: "Delivered to customer"},
			},
		},
	}
}
