package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openmart/mini-commerce/apperrors"
	"github.com/openmart/mini-commerce/services"
)

// AccountProvider is the slice of the account service the handler needs.
type AccountProvider interface {
	Register(ctx context.Context, username, email, password string) (*services.UserSummary, error)
	Login(ctx context.Context, usernameOrEmail, password string) (*services.LoginResult, error)
}

type AccountHandler struct {
	service AccountProvider
}

func NewAccountHandler(s AccountProvider) *AccountHandler {
	return &AccountHandler{service: s}
}

// HandleRegister serves POST /api/accounts/register.
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user, err := h.service.Register(r.Context(), input.Username, input.Email, input.Password)
	if err != nil {
		switch {
		case apperrors.IsValidation(err):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, apperrors.ErrConflict):
			writeError(w, http.StatusConflict, "Username or email already taken")
		default:
			writeError(w, http.StatusInternalServerError, "Registration failed")
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Registration successful",
		"user":    user,
	})
}

// HandleLogin serves POST /api/accounts/login. The login field accepts a
// username or an email address.
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := h.service.Login(r.Context(), input.Login, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": result.Token,
		"type":  "Bearer",
		"user":  result.User,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
