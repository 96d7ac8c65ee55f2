package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fintrack-app/apiserver/internal/auth"
	"github.com/fintrack-app/apiserver/internal/services"
)

// AuthHandler provides the registration, login and current-user endpoints.
type AuthHandler struct {
	userService *services.UserService
	tokens      *auth.TokenService
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
	}
}

// AuthRouter registers auth routes on the given router. Register and
// login are public; /me is gated by the RequireUser policy.
func AuthRouter(r chi.Router, userService *services.UserService, tokens *auth.TokenService) {
	handler := NewAuthHandler(userService, tokens)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.With(RequireUser).Get("/me", handler.Me)
}

// Register creates a new user account and returns a bearer token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	userID, err := h.userService.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		var svcErr *services.Error
		if errors.As(err, &svcErr) {
			writeError(w, http.StatusBadRequest, svcErr.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	token, err := h.tokens.Issue(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		UserID:  userID,
		Token:   token,
		Message: "user registered successfully",
	})
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var svcErr *services.Error
		if errors.As(err, &svcErr) {
			// Missing fields and bad credentials both answer 401 here;
			// the login surface never explains itself further.
			writeError(w, http.StatusUnauthorized, svcErr.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName(),
		Token:    token,
		Message:  "login successful",
	})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		var svcErr *services.Error
		if errors.As(err, &svcErr) && svcErr.Kind == services.KindNotFound {
			// Token outlived the account.
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, MeResponse{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type RegisterResponse struct {
	UserID  int    `json:"user_id"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	UserID   int    `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Token    string `json:"token"`
	Message  string `json:"message"`
}

type MeResponse struct {
	UserID    int    `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
