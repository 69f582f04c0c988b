package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/jishudas/mobilestore/internal/domain"
)

// Coordinator is the single owner of all mutable session state: the synced
// catalog snapshots, the shopper's cart and wishlist, and the active screen.
// Catalog pushes arrive on the subscriber goroutine while user intents arrive
// on request goroutines, so every operation is one short critical section.
//
// The catalog slices and the user lists deliberately have different write
// paths: the catalog is replaced wholesale by store pushes and is never
// written locally, while cart and wishlist are mutated locally and projected
// to the list store after every change.
type Coordinator struct {
	mu sync.Mutex

	catalog  domain.CatalogStore
	lists    domain.UserListStore
	validate *validator.Validate

	categories []domain.Category
	products   []domain.Product
	cart       []domain.CartItem
	wishlist   []domain.Product
	screen     domain.Screen
	loading    bool
}

// Snapshot is a read-only copy of the coordinator's state for rendering.
type Snapshot struct {
	Categories []domain.Category
	Products   []domain.Product
	Cart       []domain.CartItem
	Wishlist   []domain.Product
	Screen     domain.Screen
	Loading    bool
}

// New rehydrates the cart and wishlist from the list store. The catalog
// starts empty and loading until the first products push arrives.
func New(catalog domain.CatalogStore, lists domain.UserListStore) *Coordinator {
	return &Coordinator{
		catalog:  catalog,
		lists:    lists,
		validate: validator.New(),
		cart:     lists.LoadCart(),
		wishlist: lists.LoadWishlist(),
		screen:   domain.HomeScreen(),
		loading:  true,
	}
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Categories: append([]domain.Category(nil), c.categories...),
		Products:   append([]domain.Product(nil), c.products...),
		Cart:       append([]domain.CartItem(nil), c.cart...),
		Wishlist:   append([]domain.Product(nil), c.wishlist...),
		Screen:     c.screen,
		Loading:    c.loading,
	}
}

// OnCategories replaces the category snapshot wholesale.
func (c *Coordinator) OnCategories(cats []domain.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = append([]domain.Category(nil), cats...)
}

// OnProducts replaces the product snapshot wholesale. The first push clears
// the loading gate; the whole catalog is gated as one unit.
func (c *Coordinator) OnProducts(prods []domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = append([]domain.Product(nil), prods...)
	c.loading = false
}

// SelectProduct records the selection and moves to the detail screen.
func (c *Coordinator) SelectProduct(p domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.screen = domain.ProductDetailScreen(p)
}

func (c *Coordinator) Navigate(s domain.Screen) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.screen = s
}

// ProductByID looks a product up in the current catalog snapshot.
func (c *Coordinator) ProductByID(id string) (domain.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// AddToCart merges into an existing (id, color) line by summing quantities,
// or appends a new line.
func (c *Coordinator) AddToCart(p domain.Product, quantity int, color string) {
	if quantity < 1 {
		quantity = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.cart {
		if c.cart[i].ID == p.ID && c.cart[i].SelectedColor == color {
			c.cart[i].Quantity += quantity
			c.persistLocked()
			return
		}
	}
	c.cart = append(c.cart, domain.CartItem{Product: p, Quantity: quantity, SelectedColor: color})
	c.persistLocked()
}

// UpdateCartQuantity applies delta to the matching line, clamping at 1.
// It never removes a line and is a no-op when no line matches.
func (c *Coordinator) UpdateCartQuantity(id, color string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.cart {
		if c.cart[i].ID == id && c.cart[i].SelectedColor == color {
			q := c.cart[i].Quantity + delta
			if q < 1 {
				q = 1
			}
			c.cart[i].Quantity = q
			c.persistLocked()
			return
		}
	}
}

// RemoveFromCart deletes the matching line regardless of quantity.
func (c *Coordinator) RemoveFromCart(id, color string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.cart[:0]
	for _, it := range c.cart {
		if !(it.ID == id && it.SelectedColor == color) {
			kept = append(kept, it)
		}
	}
	c.cart = kept
	c.persistLocked()
}

// ToggleWishlist removes the product when present by id, else appends it.
func (c *Coordinator) ToggleWishlist(p domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, w := range c.wishlist {
		if w.ID == p.ID {
			c.wishlist = append(c.wishlist[:i], c.wishlist[i+1:]...)
			c.persistLocked()
			return
		}
	}
	c.wishlist = append(c.wishlist, p)
	c.persistLocked()
}

func (c *Coordinator) Wishlisted(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, w := range c.wishlist {
		if w.ID == id {
			return true
		}
	}
	return false
}

// AddCategory validates the draft and writes it through to the catalog store.
// Nothing is inserted locally: the item becomes visible only via the store's
// own push. On store failure local state is unchanged.
func (c *Coordinator) AddCategory(ctx context.Context, d domain.CategoryDraft) error {
	d.Name = strings.TrimSpace(d.Name)
	d.Photo = strings.TrimSpace(d.Photo)
	if err := c.validate.Struct(d); err != nil {
		return fmt.Errorf("%w: name and photo are required", domain.ErrValidation)
	}
	return c.catalog.InsertCategory(ctx, &domain.Category{Name: d.Name, Photo: d.Photo})
}

// AddProduct is the product counterpart of AddCategory. All seven fields are
// required and a selling price above the original price is rejected.
func (c *Coordinator) AddProduct(ctx context.Context, d domain.ProductDraft) error {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	if err := c.validate.Struct(d); err != nil {
		if hasTag(err, "ltefield") {
			return fmt.Errorf("%w: selling price cannot exceed original price", domain.ErrValidation)
		}
		return fmt.Errorf("%w: all fields are required", domain.ErrValidation)
	}
	p := &domain.Product{
		CategoryID:    d.CategoryID,
		Name:          d.Name,
		Photo:         d.Photo,
		OriginalPrice: d.OriginalPrice,
		SellingPrice:  d.SellingPrice,
		Colors:        d.Colors,
		Description:   d.Description,
	}
	return c.catalog.InsertProduct(ctx, p)
}

func hasTag(err error, tag string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}

// persistLocked projects BOTH lists to the store after any mutation of
// either. Persistence failure is logged, never surfaced to the shopper.
func (c *Coordinator) persistLocked() {
	if err := c.lists.SaveLists(c.cart, c.wishlist); err != nil {
		log.Warn().Err(err).Msg("persist user lists")
	}
}
