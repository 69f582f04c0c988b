package order

import (
	"strings"
	"testing"

	"github.com/jishudas/mobilestore/internal/domain"
)

func cartFixture() []domain.CartItem {
	return []domain.CartItem{
		{Product: domain.Product{ID: "a", Name: "Galaxy Case"}, Quantity: 2, SelectedColor: "Red"},
		{Product: domain.Product{ID: "b", Name: "USB Cable"}, Quantity: 3, SelectedColor: "White"},
	}
}

func TestTotal(t *testing.T) {
	cart := cartFixture()
	cart[0].SellingPrice = 100
	cart[1].SellingPrice = 50

	if got := Total(cart); got != 350 {
		t.Fatalf("Total = %v, want 350", got)
	}
	if got := Total(nil); got != 0 {
		t.Fatalf("Total(empty) = %v, want 0", got)
	}
}

func TestBulkMessage_StatedTotalMatchesSum(t *testing.T) {
	cart := cartFixture()
	cart[0].SellingPrice = 100
	cart[1].SellingPrice = 50

	msg := BulkMessage(cart)

	if !strings.HasPrefix(msg, "Hello! I would like to place an order") {
		t.Fatalf("unexpected greeting: %q", msg)
	}
	for _, want := range []string{
		"1. Galaxy Case",
		"   - Color: Red",
		"   - Qty: 2",
		"   - Subtotal: ₹200",
		"2. USB Cable",
		"   - Subtotal: ₹150",
		"Total Amount: ₹350",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestSingleMessage(t *testing.T) {
	p := domain.Product{Name: "Pixel", Description: "128GB", SellingPrice: 250}

	msg := SingleMessage(p, 2, "Black")

	for _, want := range []string{
		"- Product: Pixel",
		"- Detail: 128GB",
		"- Color: Black",
		"- Quantity: 2",
		"- Price: ₹250",
		"- Total: ₹500",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}

	if got := SingleMessage(p, 0, "Black"); !strings.Contains(got, "- Quantity: 1") {
		t.Fatalf("quantity below 1 not clamped:\n%s", got)
	}
}

func TestDeepLinks(t *testing.T) {
	wa := WhatsAppLink("9679683228", "hello world & more")
	if wa != "https://wa.me/9679683228?text=hello+world+%26+more" {
		t.Fatalf("WhatsAppLink = %q", wa)
	}
	sms := SMSLink("9679683228", "hi")
	if sms != "sms:9679683228?body=hi" {
		t.Fatalf("SMSLink = %q", sms)
	}
}
