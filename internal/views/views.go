package views

import (
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
)

//go:embed *.html
var FS embed.FS

// FuncMap is shared by the embedded and on-disk template parse paths.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"inr": func(v float64) string {
			s := strconv.FormatFloat(v, 'f', -1, 64)
			frac := ""
			if i := strings.IndexByte(s, '.'); i >= 0 {
				frac = s[i:]
				s = s[:i]
			}
			neg := false
			if strings.HasPrefix(s, "-") {
				neg = true
				s = s[1:]
			}
			// Indian grouping: last three digits, then pairs.
			if len(s) > 3 {
				head, tail := s[:len(s)-3], s[len(s)-3:]
				var parts []string
				for len(head) > 2 {
					parts = append([]string{head[len(head)-2:]}, parts...)
					head = head[:len(head)-2]
				}
				if head != "" {
					parts = append([]string{head}, parts...)
				}
				s = strings.Join(append(parts, tail), ",")
			}
			if neg {
				s = "-" + s
			}
			return "₹" + s + frac
		},
		"discount": func(orig, sell float64) int {
			if orig <= 0 || sell >= orig {
				return 0
			}
			return int((orig - sell) / orig * 100)
		},
		"colorhex": func(s string) string {
			v := strings.TrimSpace(strings.ToLower(s))
			if v == "" {
				return "#334155"
			}
			if strings.HasPrefix(v, "#") {
				return v
			}
			m := map[string]string{
				"black":  "#111827",
				"white":  "#ffffff",
				"blue":   "#3b82f6",
				"green":  "#10b981",
				"yellow": "#f59e0b",
				"red":    "#ef4444",
				"purple": "#8b5cf6",
				"pink":   "#ec4899",
				"grey":   "#64748b",
				"gray":   "#64748b",
				"gold":   "#eab308",
				"silver": "#cbd5e1",
			}
			if hex, ok := m[v]; ok {
				return hex
			}
			return "#334155"
		},
		"img": func(u string) string {
			s := strings.TrimSpace(u)
			if s == "" {
				return s
			}
			if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") && !strings.HasPrefix(s, "data:") && !strings.HasPrefix(s, "/") {
				s = "/" + s
			}
			return strings.ReplaceAll(s, " ", "%20")
		},
	}
}

// Templates parses the embedded view set.
func Templates() (*template.Template, error) {
	t, err := template.New("layout").Funcs(FuncMap()).ParseFS(FS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse views: %w", err)
	}
	return t, nil
}
