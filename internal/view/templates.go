package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/spf13/cast"

	"github.com/sipertani/sipertani/internal/farm"
	"github.com/sipertani/sipertani/internal/shared"
	"github.com/sipertani/sipertani/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	User        *farm.User
	Theme       string
	Data        any
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	tpl, err := template.New("root").Funcs(FuncMap()).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// FuncMap lists the helpers available to templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"rupiah":  func(v any) string { return farm.Rupiah(number(v)) },
		"kg":      func(v any) string { return farm.Kg(number(v)) },
		"decimal": func(v any) string { return farm.Decimal(number(v)) },
		"label":   func(v any) string { return farm.Label(fmt.Sprint(v)) },
		"formatDate": func(v any) string {
			t := timeOf(v)
			if t.IsZero() {
				return "-"
			}
			return t.Format("02/01/2006")
		},
		"formatStamp": func(v any) string {
			t := timeOf(v)
			if t.IsZero() {
				return "-"
			}
			return t.Format("02/01/2006 15:04")
		},
		"isRole": func(u *farm.User, role string) bool {
			return u != nil && string(u.Role) == role
		},
	}
}

// Render executes a named template with TemplateData. The page is rendered
// into a buffer first so a failing template never leaves a half-written
// response.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus is Render with an explicit status code.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func number(v any) float64 {
	switch n := v.(type) {
	case farm.Number:
		return n.Float()
	case *farm.Number:
		if n == nil {
			return 0
		}
		return n.Float()
	default:
		return cast.ToFloat64(v)
	}
}

func timeOf(v any) time.Time {
	switch t := v.(type) {
	case farm.Date:
		return t.Time
	case farm.Stamp:
		return t.Time
	case time.Time:
		return t
	case *time.Time:
		if t == nil {
			return time.Time{}
		}
		return *t
	default:
		return time.Time{}
	}
}
