package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Raiyan-S/GP-Dashboard/internal/pkg/validate"
	authsvc "github.com/Raiyan-S/GP-Dashboard/internal/services/auth"
	"github.com/Raiyan-S/GP-Dashboard/internal/transport/http/dto"
	httperrors "github.com/Raiyan-S/GP-Dashboard/internal/transport/http/errors"
)

// CookieConfig describes the session cookie the login and logout
// endpoints manage.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

type AuthHandler struct {
	service *authsvc.Service
	cookie  CookieConfig
}

func NewAuthHandler(service *authsvc.Service, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "session_token"
	}
	return &AuthHandler{service: service, cookie: cookie}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w)
		return
	}

	username, password, ok := credentialsForm(w, r)
	if !ok {
		return
	}

	if !validate.Email(username) {
		httperrors.WriteDetail(w, http.StatusUnprocessableEntity, "Username must be a valid email address")
		return
	}
	if !validate.Password(password) {
		httperrors.WriteDetail(w, http.StatusBadRequest, "Password must be at least 8 characters and contain a letter and a digit")
		return
	}

	if err := h.service.Register(r.Context(), username, password); err != nil {
		switch {
		case errors.Is(err, authsvc.ErrDuplicateUser):
			httperrors.WriteDetail(w, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, authsvc.ErrInvalidInput):
			httperrors.WriteDetail(w, http.StatusUnprocessableEntity, "Username and password are required")
		default:
			writeInternal(w)
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MessageResponse{Message: "User registered successfully"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w)
		return
	}

	username, password, ok := credentialsForm(w, r)
	if !ok {
		return
	}

	res, err := h.service.Login(r.Context(), username, password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidCredentials), errors.Is(err, authsvc.ErrInvalidInput):
			httperrors.WriteDetail(w, http.StatusUnauthorized, "Invalid credentials")
		default:
			writeInternal(w)
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    res.Token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL / time.Second),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})

	httperrors.Write(w, http.StatusOK, dto.LoginResponse{
		Message: "Login successful",
		Role:    string(res.User.Role),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w)
		return
	}

	if cookie, err := r.Cookie(h.cookie.Name); err == nil {
		if err := h.service.RevokeSession(r.Context(), cookie.Value); err != nil {
			writeInternal(w)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})

	httperrors.Write(w, http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}

func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		httperrors.WriteDetail(w, http.StatusUnauthorized, "Session expired or invalid")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.VerifyTokenResponse{
		Message:  "Session is valid.",
		Username: identity.Username,
		Role:     string(identity.Role),
	})
}

// Page gates. Role enforcement sits in the router middleware; these only
// confirm access for the frontend's route guards.

func (h *AuthHandler) Dashboard(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, dto.MessageResponse{Message: "Welcome to the dashboard"})
}

func (h *AuthHandler) Clients(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, dto.MessageResponse{Message: "Welcome to the clients page"})
}

func (h *AuthHandler) ModelTrial(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, dto.MessageResponse{Message: "Welcome to the model trial page"})
}

// credentialsForm reads the username/password form pair, answering 422
// when either is missing.
func credentialsForm(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	if err := r.ParseForm(); err != nil {
		httperrors.WriteDetail(w, http.StatusUnprocessableEntity, "Invalid form payload")
		return "", "", false
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		httperrors.WriteDetail(w, http.StatusUnprocessableEntity, "Username and password are required")
		return "", "", false
	}

	return username, password, true
}

func writeInternal(w http.ResponseWriter) {
	httperrors.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
}
