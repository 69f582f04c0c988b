package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/jishudas/mobilestore/internal/domain"
)

const (
	cartFile     = "user_cart.json"
	wishlistFile = "user_wishlist.json"
)

// Store persists the shopper's cart and wishlist as JSON files under a data
// directory. A file that is missing or does not decode reads as an empty list.
type Store struct {
	dir string
}

func New(dir string) *Store {
	_ = os.MkdirAll(dir, 0755)
	return &Store{dir: dir}
}

func (s *Store) LoadCart() []domain.CartItem {
	var items []domain.CartItem
	if !s.load(cartFile, &items) {
		return nil
	}
	return items
}

func (s *Store) LoadWishlist() []domain.Product {
	var items []domain.Product
	if !s.load(wishlistFile, &items) {
		return nil
	}
	return items
}

func (s *Store) load(name string, out any) bool {
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		log.Warn().Err(err).Str("file", name).Msg("discarding corrupt saved list")
		return false
	}
	return true
}

func (s *Store) SaveLists(cart []domain.CartItem, wishlist []domain.Product) error {
	if err := s.write(cartFile, cart); err != nil {
		return err
	}
	return s.write(wishlistFile, wishlist)
}

func (s *Store) write(name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
