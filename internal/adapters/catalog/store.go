package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/jishudas/mobilestore/internal/domain"
)

const notifyChannel = "catalog_changed"

// Store keeps the two catalog collections in Postgres and turns row changes
// into whole-collection snapshots via LISTEN/NOTIFY.
type Store struct {
	db  *gorm.DB
	dsn string
}

func New(db *gorm.DB, dsn string) *Store { return &Store{db: db, dsn: dsn} }

func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&domain.Category{}, &domain.Product{}); err != nil {
		return err
	}

	if err := s.db.Exec(`
		CREATE OR REPLACE FUNCTION catalog_notify() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('` + notifyChannel + `', TG_TABLE_NAME);
			RETURN NULL;
		END;
		$$ LANGUAGE plpgsql`).Error; err != nil {
		return err
	}
	for _, table := range []string{"categories", "products"} {
		_ = s.db.Exec("DROP TRIGGER IF EXISTS " + table + "_notify ON " + table).Error
		if err := s.db.Exec("CREATE TRIGGER " + table + "_notify AFTER INSERT OR UPDATE OR DELETE ON " + table +
			" FOR EACH STATEMENT EXECUTE FUNCTION catalog_notify()").Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) InsertCategory(ctx context.Context, c *domain.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *Store) InsertProduct(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *Store) Categories(ctx context.Context) ([]domain.Category, error) {
	var list []domain.Category
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) Products(ctx context.Context) ([]domain.Product, error) {
	var list []domain.Product
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Subscribe delivers the current snapshot of both collections, then listens
// for change notifications and re-delivers the touched collection in full.
// It blocks until ctx is cancelled; a dropped connection is retried and the
// snapshot on the sink simply stays stale in the meantime.
func (s *Store) Subscribe(ctx context.Context, sink domain.CatalogSink) error {
	s.deliver(ctx, sink, "categories")
	s.deliver(ctx, sink, "products")

	for {
		if err := s.listen(ctx, sink); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("catalog listener lost, reconnecting")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
}

func (s *Store) listen(ctx context.Context, sink domain.CatalogSink) error {
	conn, err := pgx.Connect(ctx, s.dsn)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}

	// Re-deliver after (re)connect: anything that changed while the
	// listener was down is picked up here.
	s.deliver(ctx, sink, "categories")
	s.deliver(ctx, sink, "products")

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		s.deliver(ctx, sink, n.Payload)
	}
}

func (s *Store) deliver(ctx context.Context, sink domain.CatalogSink, table string) {
	switch table {
	case "categories":
		cats, err := s.Categories(ctx)
		if err != nil {
			log.Error().Err(err).Msg("read categories snapshot")
			return
		}
		sink.OnCategories(cats)
	case "products":
		prods, err := s.Products(ctx)
		if err != nil {
			log.Error().Err(err).Msg("read products snapshot")
			return
		}
		sink.OnProducts(prods)
	}
}
