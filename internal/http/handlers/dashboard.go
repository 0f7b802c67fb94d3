package handlers

import (
	"net/http"

	"github.com/signalix/otplogin/internal/middleware"
)

// DashboardHandler renders the page behind the session gate
type DashboardHandler struct {
	pages *Pages
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(pages *Pages) *DashboardHandler {
	return &DashboardHandler{pages: pages}
}

// ServeHTTP handles GET /dashboard
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}
	h.pages.render(w, http.StatusOK, pageDashboard, pageData{Title: "Dashboard", Email: user.Email})
}
