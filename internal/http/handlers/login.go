package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/signalix/otplogin/internal/auth"
	"github.com/signalix/otplogin/internal/middleware"
	"github.com/signalix/otplogin/internal/pending"
)

const (
	pathVerifyOTP = "/verify-otp"
	pathDashboard = "/dashboard"

	alertEmailRequired = "Please enter email"
	alertCodeRequired  = "Enter OTP"
	alertEmailMissing  = "Email missing"
	alertBadForm       = "Invalid form submission"
	alertUnavailable   = "Could not reach the sign-in service, please try again"
	alertStoreFailed   = "Could not continue sign-in, please try again"
)

// LoginHandler serves the two-step email OTP login pages
type LoginHandler struct {
	service       *auth.LoginService
	store         pending.Store
	pages         *Pages
	secureCookies bool
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(service *auth.LoginService, store pending.Store, pages *Pages, secureCookies bool) *LoginHandler {
	return &LoginHandler{
		service:       service,
		store:         store,
		pages:         pages,
		secureCookies: secureCookies,
	}
}

// ShowLogin handles GET /login
func (h *LoginHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, http.StatusOK, pageLogin, pageData{Title: "Sign in"})
}

// HandleSendOTP handles POST /send-otp
func (h *LoginHandler) HandleSendOTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.pages.render(w, http.StatusBadRequest, pageLogin, pageData{Title: "Sign in", Alert: alertBadForm})
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	data := pageData{Title: "Sign in", Email: email}

	if err := h.service.RequestOTP(r.Context(), email); err != nil {
		if errors.Is(err, auth.ErrEmailRequired) {
			data.Alert = alertEmailRequired
			h.pages.render(w, http.StatusBadRequest, pageLogin, data)
			return
		}
		status, msg := providerAlert(err)
		data.Alert = msg
		h.pages.render(w, status, pageLogin, data)
		return
	}

	if err := h.store.Save(w, r, email); err != nil {
		slog.ErrorContext(r.Context(), "failed to save pending login", "email", auth.MaskEmail(email), "error", err)
		data.Alert = alertStoreFailed
		h.pages.render(w, http.StatusInternalServerError, pageLogin, data)
		return
	}

	http.Redirect(w, r, pathVerifyOTP, http.StatusSeeOther)
}

// ShowVerifyOTP handles GET /verify-otp
func (h *LoginHandler) ShowVerifyOTP(w http.ResponseWriter, r *http.Request) {
	email, err := h.store.Load(r)
	if err != nil && !errors.Is(err, pending.ErrNotFound) {
		slog.WarnContext(r.Context(), "failed to load pending login", "error", err)
	}
	h.pages.render(w, http.StatusOK, pageVerifyOTP, pageData{Title: "Verify code", Email: email})
}

// HandleVerifyOTP handles POST /verify-otp
func (h *LoginHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Verify code"}
	if err := r.ParseForm(); err != nil {
		data.Alert = alertBadForm
		h.pages.render(w, http.StatusBadRequest, pageVerifyOTP, data)
		return
	}

	email, err := h.store.Load(r)
	if err != nil && !errors.Is(err, pending.ErrNotFound) {
		slog.ErrorContext(r.Context(), "failed to load pending login", "error", err)
		data.Alert = alertStoreFailed
		h.pages.render(w, http.StatusInternalServerError, pageVerifyOTP, data)
		return
	}
	data.Email = email

	session, err := h.service.VerifyOTP(r.Context(), email, r.PostFormValue("otp"))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrCodeRequired):
			data.Alert = alertCodeRequired
			h.pages.render(w, http.StatusBadRequest, pageVerifyOTP, data)
		case errors.Is(err, auth.ErrEmailMissing):
			data.Alert = alertEmailMissing
			h.pages.render(w, http.StatusBadRequest, pageVerifyOTP, data)
		default:
			status, msg := providerAlert(err)
			data.Alert = msg
			h.pages.render(w, status, pageVerifyOTP, data)
		}
		return
	}

	if err := h.store.Clear(w, r); err != nil {
		// the login already succeeded; a leftover entry expires on its own
		slog.WarnContext(r.Context(), "failed to clear pending login", "email", auth.MaskEmail(email), "error", err)
	}
	middleware.SetSessionCookie(w, session, h.secureCookies)

	http.Redirect(w, r, pathDashboard, http.StatusSeeOther)
}

// HandleLogout handles POST /logout
func (h *LoginHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), middleware.SessionToken(r)); err != nil {
		slog.WarnContext(r.Context(), "provider logout failed", "error", err)
	}
	middleware.ClearSessionCookie(w, h.secureCookies)
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

// providerAlert maps a provider failure to a status code and the message shown to the user.
func providerAlert(err error) (int, string) {
	var perr *auth.ProviderError
	if errors.As(err, &perr) {
		return perr.HTTPStatus(), perr.Message
	}
	return http.StatusBadGateway, alertUnavailable
}
