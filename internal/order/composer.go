// Package order derives the human-readable order text handed off to an
// external messaging channel. Everything here is a pure function: composing
// and encoding a message observes nothing and mutates nothing.
package order

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jishudas/mobilestore/internal/domain"
)

// Total sums selling price × quantity over the cart.
func Total(items []domain.CartItem) float64 {
	sum := 0.0
	for _, it := range items {
		sum += it.Subtotal()
	}
	return sum
}

// BulkMessage renders the whole cart as a numbered order summary whose stated
// total equals the sum of the line subtotals.
func BulkMessage(items []domain.CartItem) string {
	var b strings.Builder
	b.WriteString("Hello! I would like to place an order for the following items:\n\n")
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, it.Name)
		fmt.Fprintf(&b, "   - Color: %s\n", it.SelectedColor)
		fmt.Fprintf(&b, "   - Qty: %d\n", it.Quantity)
		fmt.Fprintf(&b, "   - Price: ₹%s\n", amount(it.SellingPrice))
		fmt.Fprintf(&b, "   - Subtotal: ₹%s\n\n", amount(it.Subtotal()))
	}
	b.WriteString("--------------------------\n")
	fmt.Fprintf(&b, "Total Amount: ₹%s", amount(Total(items)))
	return b.String()
}

// SingleMessage renders a one-product order from the detail screen.
func SingleMessage(p domain.Product, quantity int, color string) string {
	if quantity < 1 {
		quantity = 1
	}
	var b strings.Builder
	b.WriteString("Hello! I would like to order:\n")
	fmt.Fprintf(&b, "- Product: %s\n", p.Name)
	fmt.Fprintf(&b, "- Detail: %s\n", p.Description)
	fmt.Fprintf(&b, "- Color: %s\n", color)
	fmt.Fprintf(&b, "- Quantity: %d\n", quantity)
	fmt.Fprintf(&b, "- Price: ₹%s\n", amount(p.SellingPrice))
	fmt.Fprintf(&b, "- Total: ₹%s", amount(p.SellingPrice*float64(quantity)))
	return b.String()
}

// WhatsAppLink builds the chat-prefill deep link for the store's phone.
func WhatsAppLink(phone, text string) string {
	return "https://wa.me/" + phone + "?text=" + url.QueryEscape(text)
}

// SMSLink builds the SMS-prefill deep link for the store's phone.
func SMSLink(phone, text string) string {
	return "sms:" + phone + "?body=" + url.QueryEscape(text)
}

// amount renders prices the way the storefront shows them: no trailing
// zeros for whole-rupee values.
func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
