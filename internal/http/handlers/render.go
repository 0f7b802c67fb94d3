package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageLogin     = "login.html"
	pageVerifyOTP = "verify_otp.html"
	pageDashboard = "dashboard.html"
)

// pageData is what every page template renders from
type pageData struct {
	Title string
	Alert string
	Email string
}

// Pages renders the embedded HTML pages
type Pages struct {
	templates map[string]*template.Template
}

// NewPages parses the embedded templates
func NewPages() *Pages {
	p := &Pages{templates: make(map[string]*template.Template)}
	for _, name := range []string{pageLogin, pageVerifyOTP, pageDashboard} {
		p.templates[name] = template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/"+name))
	}
	return p
}

func (p *Pages) render(w http.ResponseWriter, statusCode int, name string, data pageData) {
	tmpl, ok := p.templates[name]
	if !ok {
		http.Error(w, "page not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		slog.Error("failed to render page", "page", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	_, _ = buf.WriteTo(w)
}
