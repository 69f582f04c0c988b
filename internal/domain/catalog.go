package domain

import (
	"context"
	"time"
)

// Collection names the two catalog collections kept in the store.
type Collection string

const (
	CollectionCategories Collection = "categories"
	CollectionProducts   Collection = "products"
)

type Category struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	Name      string `gorm:"size:140" json:"name"`
	Photo     string `gorm:"type:text" json:"photo"`
	CreatedAt time.Time
}

type Product struct {
	ID            string   `gorm:"primaryKey;size:36" json:"id"`
	CategoryID    string   `gorm:"size:36;index" json:"categoryId"`
	Name          string   `gorm:"size:180" json:"name"`
	Photo         string   `gorm:"type:text" json:"photo"`
	OriginalPrice float64  `gorm:"type:decimal(12,2)" json:"originalPrice"`
	SellingPrice  float64  `gorm:"type:decimal(12,2)" json:"sellingPrice"`
	Colors        []string `gorm:"type:jsonb;serializer:json" json:"colors"`
	Description   string   `gorm:"type:text" json:"description"`
	CreatedAt     time.Time
}

// CatalogSink receives whole-collection snapshots from the store. Every
// delivery carries the full current set, never a delta.
type CatalogSink interface {
	OnCategories([]Category)
	OnProducts([]Product)
}

// CatalogStore is the remote document store holding the catalog. Inserts are
// append-only and the store assigns ids; Subscribe blocks, delivering an
// initial snapshot of both collections and then one on every change until the
// context is cancelled.
type CatalogStore interface {
	InsertCategory(ctx context.Context, c *Category) error
	InsertProduct(ctx context.Context, p *Product) error
	Subscribe(ctx context.Context, sink CatalogSink) error
}
