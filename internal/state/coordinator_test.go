package state

import (
	"context"
	"errors"
	"testing"

	"github.com/jishudas/mobilestore/internal/domain"
)

type fakeCatalog struct {
	failInsert bool
	categories []domain.Category
	products   []domain.Product
}

func (f *fakeCatalog) InsertCategory(_ context.Context, c *domain.Category) error {
	if f.failInsert {
		return errors.New("store rejected write")
	}
	c.ID = "cat-1"
	f.categories = append(f.categories, *c)
	return nil
}

func (f *fakeCatalog) InsertProduct(_ context.Context, p *domain.Product) error {
	if f.failInsert {
		return errors.New("store rejected write")
	}
	p.ID = "prod-1"
	f.products = append(f.products, *p)
	return nil
}

func (f *fakeCatalog) Subscribe(ctx context.Context, _ domain.CatalogSink) error {
	<-ctx.Done()
	return ctx.Err()
}

type fakeLists struct {
	cart     []domain.CartItem
	wishlist []domain.Product
	saves    int
}

func (f *fakeLists) LoadCart() []domain.CartItem    { return f.cart }
func (f *fakeLists) LoadWishlist() []domain.Product { return f.wishlist }

func (f *fakeLists) SaveLists(cart []domain.CartItem, wishlist []domain.Product) error {
	f.cart = append([]domain.CartItem(nil), cart...)
	f.wishlist = append([]domain.Product(nil), wishlist...)
	f.saves++
	return nil
}

func product(id string) domain.Product {
	return domain.Product{ID: id, Name: "Phone " + id, SellingPrice: 100, OriginalPrice: 150, Colors: []string{"Red", "Blue"}}
}

func newTest() (*Coordinator, *fakeCatalog, *fakeLists) {
	cat := &fakeCatalog{}
	lists := &fakeLists{}
	return New(cat, lists), cat, lists
}

func TestAddToCart_MergesSameProductAndColor(t *testing.T) {
	c, _, _ := newTest()
	p := product("p1")

	c.AddToCart(p, 2, "Red")
	c.AddToCart(p, 3, "Red")

	cart := c.Snapshot().Cart
	if len(cart) != 1 {
		t.Fatalf("cart lines = %d, want 1", len(cart))
	}
	if cart[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", cart[0].Quantity)
	}

	c.AddToCart(p, 1, "Blue")
	cart = c.Snapshot().Cart
	if len(cart) != 2 {
		t.Fatalf("cart lines after second color = %d, want 2", len(cart))
	}
}

func TestUpdateCartQuantity_ClampsAtOne(t *testing.T) {
	c, _, _ := newTest()
	p := product("p1")
	c.AddToCart(p, 1, "Red")

	c.UpdateCartQuantity("p1", "Red", -5)

	cart := c.Snapshot().Cart
	if len(cart) != 1 {
		t.Fatalf("cart lines = %d, want 1 (clamp must never remove)", len(cart))
	}
	if cart[0].Quantity != 1 {
		t.Fatalf("quantity = %d, want 1", cart[0].Quantity)
	}
}

func TestUpdateCartQuantity_NoOpOnMiss(t *testing.T) {
	c, _, lists := newTest()
	p := product("p1")
	c.AddToCart(p, 2, "Red")
	before := lists.saves

	c.UpdateCartQuantity("p1", "Blue", 1)
	c.UpdateCartQuantity("p2", "Red", 1)

	cart := c.Snapshot().Cart
	if len(cart) != 1 || cart[0].Quantity != 2 {
		t.Fatalf("cart changed on miss: %+v", cart)
	}
	if lists.saves != before {
		t.Fatalf("persisted on a no-op update")
	}
}

func TestRemoveFromCart_Unconditional(t *testing.T) {
	c, _, _ := newTest()
	p := product("p1")
	c.AddToCart(p, 7, "Red")
	c.AddToCart(p, 1, "Blue")

	c.RemoveFromCart("p1", "Red")

	for _, it := range c.Snapshot().Cart {
		if it.ID == "p1" && it.SelectedColor == "Red" {
			t.Fatalf("entry (p1, Red) still present after removal")
		}
	}
	if len(c.Snapshot().Cart) != 1 {
		t.Fatalf("other color line must survive removal")
	}
}

func TestToggleWishlist_Idempotent(t *testing.T) {
	c, _, _ := newTest()
	p := product("p1")

	c.ToggleWishlist(p)
	if !c.Wishlisted("p1") {
		t.Fatalf("product not wishlisted after first toggle")
	}
	c.ToggleWishlist(p)
	if c.Wishlisted("p1") {
		t.Fatalf("product still wishlisted after second toggle")
	}
	if len(c.Snapshot().Wishlist) != 0 {
		t.Fatalf("wishlist not back to original membership")
	}
}

func TestOnProducts_ReplacesWholesale(t *testing.T) {
	c, _, _ := newTest()
	if !c.Snapshot().Loading {
		t.Fatalf("coordinator must start loading")
	}

	c.OnProducts([]domain.Product{product("a"), product("b")})
	if c.Snapshot().Loading {
		t.Fatalf("loading flag not cleared by first products snapshot")
	}

	c.OnProducts([]domain.Product{product("b"), product("c")})
	prods := c.Snapshot().Products
	if len(prods) != 2 {
		t.Fatalf("products = %d, want 2", len(prods))
	}
	for _, p := range prods {
		if p.ID == "a" {
			t.Fatalf("stale product %q survived snapshot replacement", p.ID)
		}
	}
}

func TestMutations_PersistBothLists(t *testing.T) {
	c, _, lists := newTest()
	p := product("p1")

	c.AddToCart(p, 1, "Red")
	if lists.saves != 1 {
		t.Fatalf("saves = %d after AddToCart, want 1", lists.saves)
	}
	c.ToggleWishlist(p)
	if lists.saves != 2 {
		t.Fatalf("saves = %d after ToggleWishlist, want 2", lists.saves)
	}
	// Cart mutation projects both lists: the wishlist copy must be current.
	c.RemoveFromCart("p1", "Red")
	if lists.saves != 3 {
		t.Fatalf("saves = %d after RemoveFromCart, want 3", lists.saves)
	}
	if len(lists.wishlist) != 1 {
		t.Fatalf("wishlist projection lost on cart mutation")
	}
}

func TestNew_RehydratesFromStore(t *testing.T) {
	lists := &fakeLists{
		cart:     []domain.CartItem{{Product: product("p1"), Quantity: 2, SelectedColor: "Red"}},
		wishlist: []domain.Product{product("p2")},
	}
	c := New(&fakeCatalog{}, lists)

	snap := c.Snapshot()
	if len(snap.Cart) != 1 || snap.Cart[0].Quantity != 2 {
		t.Fatalf("cart not rehydrated: %+v", snap.Cart)
	}
	if len(snap.Wishlist) != 1 || snap.Wishlist[0].ID != "p2" {
		t.Fatalf("wishlist not rehydrated: %+v", snap.Wishlist)
	}
}

func TestAddCategory_Validation(t *testing.T) {
	c, cat, _ := newTest()

	err := c.AddCategory(context.Background(), domain.CategoryDraft{Name: "Cases", Photo: ""})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(cat.categories) != 0 {
		t.Fatalf("invalid category reached the store")
	}

	if err := c.AddCategory(context.Background(), domain.CategoryDraft{Name: "Cases", Photo: "p.png"}); err != nil {
		t.Fatalf("valid category rejected: %v", err)
	}
}

func TestAddProduct_RejectsSellingAboveOriginal(t *testing.T) {
	c, cat, _ := newTest()
	d := domain.ProductDraft{
		CategoryID:    "c1",
		Name:          "Phone",
		Photo:         "p.png",
		OriginalPrice: 100,
		SellingPrice:  150,
		Colors:        []string{"Red"},
		Description:   "nice",
	}
	err := c.AddProduct(context.Background(), d)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation for selling > original", err)
	}
	if len(cat.products) != 0 {
		t.Fatalf("invalid product reached the store")
	}
}

func TestAddProduct_StoreFailureLeavesStateUnchanged(t *testing.T) {
	c, cat, lists := newTest()
	cat.failInsert = true
	c.OnProducts([]domain.Product{product("a")})
	saves := lists.saves

	d := domain.ProductDraft{
		CategoryID:    "c1",
		Name:          "Phone",
		Photo:         "p.png",
		OriginalPrice: 150,
		SellingPrice:  100,
		Colors:        []string{"Red"},
		Description:   "nice",
	}
	if err := c.AddProduct(context.Background(), d); err == nil {
		t.Fatalf("store failure not surfaced")
	}
	snap := c.Snapshot()
	if len(snap.Products) != 1 {
		t.Fatalf("local catalog mutated on store failure")
	}
	if lists.saves != saves {
		t.Fatalf("user lists persisted on a catalog write")
	}
}

func TestSelectProduct_EntersDetailWithSelection(t *testing.T) {
	c, _, _ := newTest()
	p := product("p1")

	c.SelectProduct(p)
	snap := c.Snapshot()
	if snap.Screen.Kind() != domain.ScreenProductDetail {
		t.Fatalf("screen = %q, want product-detail", snap.Screen.Kind())
	}
	got, ok := snap.Screen.Product()
	if !ok || got.ID != "p1" {
		t.Fatalf("detail screen lost its selection")
	}

	c.Navigate(domain.HomeScreen())
	if _, ok := c.Snapshot().Screen.Product(); ok {
		t.Fatalf("home screen must not carry a selection")
	}
}
