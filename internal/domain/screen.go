package domain

type ScreenKind string

const (
	ScreenHome          ScreenKind = "home"
	ScreenCart          ScreenKind = "cart"
	ScreenWishlist      ScreenKind = "wishlist"
	ScreenAdmin         ScreenKind = "admin"
	ScreenProductDetail ScreenKind = "product-detail"
)

// Screen is the active view as a tagged variant: the product-detail variant
// carries its selection inline, so a detail screen without a product cannot be
// built. The zero value is the home screen.
type Screen struct {
	kind    ScreenKind
	product *Product
}

func HomeScreen() Screen     { return Screen{kind: ScreenHome} }
func CartScreen() Screen     { return Screen{kind: ScreenCart} }
func WishlistScreen() Screen { return Screen{kind: ScreenWishlist} }
func AdminScreen() Screen    { return Screen{kind: ScreenAdmin} }

func ProductDetailScreen(p Product) Screen {
	return Screen{kind: ScreenProductDetail, product: &p}
}

func (s Screen) Kind() ScreenKind {
	if s.kind == "" {
		return ScreenHome
	}
	return s.kind
}

// Product returns the selected product when the screen is the detail variant.
func (s Screen) Product() (Product, bool) {
	if s.kind != ScreenProductDetail || s.product == nil {
		return Product{}, false
	}
	return *s.product, true
}
