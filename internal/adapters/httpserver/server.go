package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/jishudas/mobilestore/internal/domain"
	"github.com/jishudas/mobilestore/internal/order"
	"github.com/jishudas/mobilestore/internal/state"
)

type Config struct {
	// Phone is the destination for the WhatsApp/SMS order hand-off.
	Phone string
	// AdminPass is the shared admin passphrase, compared in-process.
	// A gate, not a security boundary.
	AdminPass string
	// SessionKey signs the admin cookie.
	SessionKey string
}

type Server struct {
	mux   *http.ServeMux
	tmpl  *template.Template
	coord *state.Coordinator
	cfg   Config
}

func New(t *template.Template, coord *state.Coordinator, cfg Config) http.Handler {
	if cfg.AdminPass == "" {
		cfg.AdminPass = "admin123"
	}
	if cfg.SessionKey == "" {
		cfg.SessionKey = "dev-insecure"
	}
	s := &Server{mux: http.NewServeMux(), tmpl: t, coord: coord, cfg: cfg}
	s.routes()
	return Chain(s.mux,
		RateLimit(120),
		SecurityHeaders,
		Gzip,
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleHome)
	s.mux.HandleFunc("/select", s.handleSelect)
	s.mux.HandleFunc("/product", s.handleProduct)
	s.mux.HandleFunc("/back", s.handleBack)

	s.mux.HandleFunc("/cart", s.handleCart)
	s.mux.HandleFunc("/cart/add", s.handleCartAdd)
	s.mux.HandleFunc("/cart/update", s.handleCartUpdate)
	s.mux.HandleFunc("/cart/remove", s.handleCartRemove)

	s.mux.HandleFunc("/wishlist", s.handleWishlist)
	s.mux.HandleFunc("/wishlist/toggle", s.handleWishlistToggle)

	s.mux.HandleFunc("/order", s.handleOrder)

	s.mux.HandleFunc("/admin", s.handleAdmin)
	s.mux.HandleFunc("/admin/auth", s.handleAdminAuth)
	s.mux.HandleFunc("/admin/logout", s.handleAdminLogout)
	s.mux.HandleFunc("/admin/category", s.handleAdminCategory)
	s.mux.HandleFunc("/admin/product", s.handleAdminProduct)
	s.mux.HandleFunc("/admin/export", s.handleAdminExport)

	s.mux.HandleFunc("/api/catalog", s.apiCatalog)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.coord.Navigate(domain.HomeScreen())
	snap := s.coord.Snapshot()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	catID := r.URL.Query().Get("cat")
	filtered := filterProducts(snap.Products, query, catID)
	// Search that matches nothing falls back to the full list.
	if len(filtered) == 0 && query != "" {
		filtered = snap.Products
	}

	s.render(w, "home.html", map[string]any{
		"Active":           "home",
		"Loading":          snap.Loading,
		"Categories":       snap.Categories,
		"Products":         filtered,
		"Query":            query,
		"SelectedCategory": catID,
		"CartCount":        len(snap.Cart),
	})
}

func filterProducts(prods []domain.Product, query, catID string) []domain.Product {
	out := []domain.Product{}
	q := strings.ToLower(query)
	for _, p := range prods {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		if catID != "" && p.CategoryID != catID {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	p, ok := s.coord.ProductByID(r.FormValue("id"))
	if !ok {
		http.Redirect(w, r, "/", 302)
		return
	}
	s.coord.SelectProduct(p)
	http.Redirect(w, r, "/product", 302)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	snap := s.coord.Snapshot()
	p, ok := snap.Screen.Product()
	if !ok {
		// Detail is only reachable through a selection.
		http.Redirect(w, r, "/", 302)
		return
	}
	s.render(w, "product.html", map[string]any{
		"Active":     "home",
		"Product":    p,
		"Wishlisted": s.coord.Wishlisted(p.ID),
		"CartCount":  len(snap.Cart),
	})
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.coord.Navigate(domain.HomeScreen())
	http.Redirect(w, r, "/", 302)
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	s.coord.Navigate(domain.CartScreen())
	snap := s.coord.Snapshot()
	s.render(w, "cart.html", map[string]any{
		"Active":    "cart",
		"Cart":      snap.Cart,
		"Total":     order.Total(snap.Cart),
		"CartCount": len(snap.Cart),
	})
}

func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	p, ok := s.coord.ProductByID(r.FormValue("id"))
	if !ok {
		http.Redirect(w, r, "/", 302)
		return
	}
	qty, _ := strconv.Atoi(r.FormValue("qty"))
	if qty < 1 {
		qty = 1
	}
	color := strings.TrimSpace(r.FormValue("color"))
	if color == "" {
		if len(p.Colors) > 0 {
			color = p.Colors[0]
		} else {
			color = "Default"
		}
	}
	s.coord.AddToCart(p, qty, color)
	http.Redirect(w, r, "/cart", 302)
}

func (s *Server) handleCartUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	delta := 1
	if r.FormValue("op") == "dec" {
		delta = -1
	}
	s.coord.UpdateCartQuantity(r.FormValue("id"), r.FormValue("color"), delta)
	http.Redirect(w, r, "/cart", 302)
}

func (s *Server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	s.coord.RemoveFromCart(r.FormValue("id"), r.FormValue("color"))
	http.Redirect(w, r, "/cart", 302)
}

func (s *Server) handleWishlist(w http.ResponseWriter, r *http.Request) {
	s.coord.Navigate(domain.WishlistScreen())
	snap := s.coord.Snapshot()
	s.render(w, "wishlist.html", map[string]any{
		"Active":    "wishlist",
		"Wishlist":  snap.Wishlist,
		"CartCount": len(snap.Cart),
	})
}

func (s *Server) handleWishlistToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	p, ok := s.coord.ProductByID(r.FormValue("id"))
	if !ok {
		http.Redirect(w, r, "/", 302)
		return
	}
	s.coord.ToggleWishlist(p)
	http.Redirect(w, r, "/product", 302)
}

// handleOrder composes the order text and hands the browser off to the chosen
// messaging deep link. Fire and forget: nothing observable comes back.
func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var text string
	switch r.FormValue("scope") {
	case "single":
		p, ok := s.coord.ProductByID(r.FormValue("id"))
		if !ok {
			http.Redirect(w, r, "/", 302)
			return
		}
		qty, _ := strconv.Atoi(r.FormValue("qty"))
		text = order.SingleMessage(p, qty, r.FormValue("color"))
	default:
		snap := s.coord.Snapshot()
		if len(snap.Cart) == 0 {
			http.Redirect(w, r, "/cart", 302)
			return
		}
		text = order.BulkMessage(snap.Cart)
	}
	var link string
	if r.FormValue("via") == "sms" {
		link = order.SMSLink(s.cfg.Phone, text)
	} else {
		link = order.WhatsAppLink(s.cfg.Phone, text)
	}
	http.Redirect(w, r, link, 302)
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	s.coord.Navigate(domain.AdminScreen())
	snap := s.coord.Snapshot()
	s.render(w, "admin.html", map[string]any{
		"Active":     "admin",
		"Authed":     s.isAdminSession(r),
		"Categories": snap.Categories,
		"CartCount":  len(snap.Cart),
		"Err":        r.URL.Query().Get("err"),
		"Msg":        r.URL.Query().Get("msg"),
	})
}

func (s *Server) handleAdminAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	pass := strings.TrimSpace(r.FormValue("pass"))
	if !secureCompare(pass, s.cfg.AdminPass) {
		http.Redirect(w, r, "/admin?err="+url.QueryEscape("Incorrect password"), 302)
		return
	}
	tok := s.issueAdminToken(6 * time.Hour)
	http.SetCookie(w, &http.Cookie{Name: "admin_token", Value: tok, Path: "/", MaxAge: 60 * 60 * 6, HttpOnly: true, SameSite: http.SameSiteStrictMode})
	http.Redirect(w, r, "/admin", 302)
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: "admin_token", Value: "", Path: "/", MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteStrictMode})
	http.Redirect(w, r, "/admin", 302)
}

func (s *Server) handleAdminCategory(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	d := domain.CategoryDraft{
		Name:  r.FormValue("name"),
		Photo: r.FormValue("photo"),
	}
	if err := s.coord.AddCategory(r.Context(), d); err != nil {
		log.Error().Err(err).Msg("publish category")
		http.Redirect(w, r, "/admin?err="+url.QueryEscape(publishNotice(err)), 302)
		return
	}
	http.Redirect(w, r, "/admin?msg="+url.QueryEscape("Category published to cloud"), 302)
}

func (s *Server) handleAdminProduct(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	orig, _ := strconv.ParseFloat(r.FormValue("originalPrice"), 64)
	sell, _ := strconv.ParseFloat(r.FormValue("sellingPrice"), 64)
	d := domain.ProductDraft{
		CategoryID:    r.FormValue("categoryId"),
		Name:          r.FormValue("name"),
		Photo:         r.FormValue("photo"),
		OriginalPrice: orig,
		SellingPrice:  sell,
		Colors:        splitColors(r.FormValue("colors")),
		Description:   r.FormValue("description"),
	}
	if err := s.coord.AddProduct(r.Context(), d); err != nil {
		log.Error().Err(err).Msg("publish product")
		http.Redirect(w, r, "/admin?err="+url.QueryEscape(publishNotice(err)), 302)
		return
	}
	http.Redirect(w, r, "/admin?msg="+url.QueryEscape("Product published to cloud"), 302)
}

func splitColors(raw string) []string {
	out := []string{}
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func publishNotice(err error) string {
	if errors.Is(err, domain.ErrValidation) {
		return err.Error()
	}
	return "Cloud store rejected the write, nothing was published"
}

func (s *Server) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	snap := s.coord.Snapshot()
	f := excelize.NewFile()
	sheet := "Products"
	_ = f.SetSheetName("Sheet1", sheet)
	headers := []string{"ID", "Category", "Name", "Original Price", "Selling Price", "Colors", "Description"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	catNames := map[string]string{}
	for _, c := range snap.Categories {
		catNames[c.ID] = c.Name
	}
	for row, p := range snap.Products {
		vals := []any{p.ID, catNames[p.CategoryID], p.Name, p.OriginalPrice, p.SellingPrice, strings.Join(p.Colors, ", "), p.Description}
		for col, v := range vals {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="catalog.xlsx"`)
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("export catalog")
	}
}

func (s *Server) apiCatalog(w http.ResponseWriter, r *http.Request) {
	snap := s.coord.Snapshot()
	writeJSON(w, 200, map[string]any{
		"categories": snap.Categories,
		"products":   snap.Products,
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("tpl", name).Msg("render")
		http.Error(w, "tpl", 500)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// --- admin session ---

func (s *Server) issueAdminToken(dur time.Duration) string {
	payload := strconv.FormatInt(time.Now().Add(dur).Unix(), 10)
	mac := hmac.New(sha256.New, []byte(s.cfg.SessionKey))
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString([]byte(payload)) + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (s *Server) verifyAdminToken(tok string) bool {
	parts := strings.SplitN(tok, ".", 2)
	if len(parts) != 2 {
		return false
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.cfg.SessionKey))
	mac.Write(payload)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return false
	}
	exp, err := strconv.ParseInt(string(payload), 10, 64)
	if err != nil {
		return false
	}
	return time.Now().Unix() < exp
}

func (s *Server) isAdminSession(r *http.Request) bool {
	c, err := r.Cookie("admin_token")
	if err != nil || c.Value == "" {
		return false
	}
	return s.verifyAdminToken(c.Value)
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !s.isAdminSession(r) {
		http.Redirect(w, r, "/admin?err="+url.QueryEscape("Admin is locked"), 302)
		return false
	}
	return true
}

func secureCompare(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return hmac.Equal(ha[:], hb[:])
}
