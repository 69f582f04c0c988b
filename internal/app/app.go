package app

import (
	"context"
	"html/template"
	"net/http"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/jishudas/mobilestore/internal/adapters/catalog"
	"github.com/jishudas/mobilestore/internal/adapters/httpserver"
	"github.com/jishudas/mobilestore/internal/adapters/localstore"
	"github.com/jishudas/mobilestore/internal/state"
	"github.com/jishudas/mobilestore/internal/views"
)

type App struct {
	DB      *gorm.DB
	Tmpl    *template.Template
	Catalog *catalog.Store
	Coord   *state.Coordinator
}

func NewApp(db *gorm.DB, dsn string) (*App, error) {
	store := catalog.New(db, dsn)

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	lists := localstore.New(dataDir)

	coord := state.New(store, lists)

	appEnv := strings.ToLower(os.Getenv("APP_ENV"))
	isDev := appEnv == "" || appEnv == "development" || appEnv == "dev"

	var tmpl *template.Template
	var err error
	if isDev {
		tmpl, err = template.New("layout").Funcs(views.FuncMap()).ParseGlob("internal/views/*.html")
		if err != nil {
			tmpl, err = views.Templates()
		}
	} else {
		tmpl, err = views.Templates()
	}
	if err != nil {
		return nil, err
	}

	return &App{DB: db, Tmpl: tmpl, Catalog: store, Coord: coord}, nil
}

func (a *App) Migrate() error {
	return a.Catalog.Migrate()
}

// StartSync runs the catalog subscription until ctx is cancelled. The
// coordinator is the sink: every push replaces its snapshot wholesale.
func (a *App) StartSync(ctx context.Context) {
	go func() { _ = a.Catalog.Subscribe(ctx, a.Coord) }()
}

func (a *App) HTTPHandler() http.Handler {
	phone := os.Getenv("STORE_PHONE")
	if phone == "" {
		phone = "9679683228"
	}
	return httpserver.New(a.Tmpl, a.Coord, httpserver.Config{
		Phone:      phone,
		AdminPass:  os.Getenv("ADMIN_PASS"),
		SessionKey: os.Getenv("SESSION_KEY"),
	})
}
