package orders

import (
	"sort"
	"strings"
	"time"

	"github.com/sahilkr01/drcuberstore/internal/model"
)

// Filter returns the orders with status (all when empty) whose id, customer name or
// email contains term, newest first.
func (s *Store) Filter(status model.OrderStatus, term string) []model.Order {
	term = strings.ToLower(strings.TrimSpace(term))

	matched := []model.Order{}
	for _, o := range s.List() {
		if status != "" && o.Status != status {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(o.ID), term) &&
			!strings.Contains(strings.ToLower(o.UserName), term) &&
			!strings.Contains(strings.ToLower(o.UserEmail), term) {
			continue
		}
		matched = append(matched, o)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched
}

// MatchesContact reports whether contact is the email or the phone the order was placed with.
// Emails compare case-insensitively; phones compare by their digits.
func MatchesContact(o model.Order, contact string) bool {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return false
	}
	if o.UserEmail != "" && strings.EqualFold(contact, strings.TrimSpace(o.UserEmail)) {
		return true
	}
	digits := onlyDigits(contact)
	return len(digits) >= 6 && digits == onlyDigits(o.UserPhone)
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CountByStatus returns the number of orders per status
func (s *Store) CountByStatus() map[model.OrderStatus]int {
	counts := make(map[model.OrderStatus]int)
	for _, o := range s.List() {
		counts[o.Status]++
	}
	return counts
}

// TimelineStep is one step of the tracking view
type TimelineStep struct {
	Status      model.OrderStatus `json:"status"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Completed   bool              `json:"completed"`
	Current     bool              `json:"current"`
	Timestamp   *time.Time        `json:"timestamp,omitempty"`
	Note        string            `json:"note,omitempty"`
}

// Timeline is what a customer sees when tracking an order
type Timeline struct {
	OrderID    string            `json:"orderId"`
	Status     model.OrderStatus `json:"status"`
	Cancelled  bool              `json:"cancelled"`
	CancelNote string            `json:"cancelNote,omitempty"`
	Steps      []TimelineStep    `json:"steps"`
}

var stepText = map[model.OrderStatus][2]string{
	model.StatusPending:        {"Order Placed", "Your order has been received"},
	model.StatusConfirmed:      {"Order Confirmed", "Seller has confirmed your order"},
	model.StatusProcessing:     {"Processing", "Your order is being prepared"},
	model.StatusShipped:        {"Shipped", "Your order is on the way"},
	model.StatusOutForDelivery: {"Out for Delivery", "Your order will arrive today"},
	model.StatusDelivered:      {"Delivered", "Your order has been delivered"},
}

// BuildTimeline lays the order's history over the fulfillment flow
func BuildTimeline(o model.Order) Timeline {
	tl := Timeline{OrderID: o.ID, Status: o.Status, Steps: []TimelineStep{}}

	if o.Status == model.StatusCancelled {
		tl.Cancelled = true
		tl.CancelNote = "This order has been cancelled"
		for _, h := range o.StatusHistory {
			if h.Status == model.StatusCancelled && h.Note != "" {
				tl.CancelNote = h.Note
				break
			}
		}
		return tl
	}

	current := o.Status.Step()
	for i, status := range model.FulfillmentFlow {
		text := stepText[status]
		step := TimelineStep{
			Status:      status,
			Title:       text[0],
			Description: text[1],
			Completed:   i <= current,
			Current:     i == current,
		}
		for _, h := range o.StatusHistory {
			if h.Status == status {
				ts := h.Timestamp
				step.Timestamp = &ts
				step.Note = h.Note
				break
			}
		}
		tl.Steps = append(tl.Steps, step)
	}
	return tl
}
