package domain

// CartItem is a product the shopper intends to buy. Lines are keyed by
// (ProductID, SelectedColor): the same product in two colors is two lines, the
// same product+color is always a single line with a summed quantity.
type CartItem struct {
	Product
	Quantity      int    `json:"quantity"`
	SelectedColor string `json:"selectedColor"`
}

func (i CartItem) Subtotal() float64 {
	return i.SellingPrice * float64(i.Quantity)
}

// UserListStore is per-device persistence for the shopper's cart and wishlist.
// Loads happen once at startup and tolerate absent or corrupt data by
// returning empty lists; saves are a projection of current state.
type UserListStore interface {
	LoadCart() []CartItem
	LoadWishlist() []Product
	SaveLists(cart []CartItem, wishlist []Product) error
}
