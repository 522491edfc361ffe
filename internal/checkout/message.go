package checkout

import (
	"strconv"
	"strings"

	"github.com/sahilkr01/drcuberstore/internal/cart"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amounts = message.NewPrinter(language.English)

func rupees(v int64) string {
	return amounts.Sprintf("₹%d", v)
}

// ComposeMessage renders the order summary the customer pastes into the Instagram chat.
// orderID is included when the order was recorded.
func ComposeMessage(lines []cart.Line, total int64, d DeliveryDetails, orderID string) string {
	var b strings.Builder
	b.WriteString("Hi! I'd like to order:\n\n")
	for i, l := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(l.Name + " x " + strconv.Itoa(l.Quantity) + " - " + rupees(l.Total()))
	}
	b.WriteString("\n\nTotal: ")
	b.WriteString(rupees(total))
	if orderID != "" {
		b.WriteString("\nOrder ID: ")
		b.WriteString(orderID)
	}
	b.WriteString("\n\nDelivery Details:\n")
	b.WriteString("Name: " + d.Name + "\n")
	b.WriteString("Phone: " + d.Phone + "\n")
	b.WriteString("Address: " + d.Address + ", " + d.City + ", " + d.State + " " + d.ZipCode)
	return b.String()
}
