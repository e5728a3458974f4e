package api

import (
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/service"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService  service.AuthService
	cookieMaxAge int
	cookieDomain string
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler. cookieDomain and cookieSecure are
// stamped on the auth_token cookie.
func NewAuthHandler(authService service.AuthService, tokenLifetime time.Duration, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieMaxAge: int(tokenLifetime.Seconds()),
		cookieDomain: cookieDomain,
		cookieSecure: cookieSecure,
	}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse excludes sensitive info like the password hash.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// --- Handler Methods ---

// Register creates a new account with the "user" role.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithFields(c, http.StatusBadRequest, "validation_error", "invalid registration payload", bindingFields(err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			abortWithError(c, http.StatusConflict, "email_exists", err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "internal_error", "could not process registration")
		}
		return
	}

	c.JSON(http.StatusCreated, mapUserToResponse(user))
}

// Login authenticates the user, returning the JWT both in the response body
// and as the auth_token cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithFields(c, http.StatusBadRequest, "validation_error", "invalid login payload", bindingFields(err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "invalid email or password")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not process login")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookieName, token, h.cookieMaxAge, "/", h.cookieDomain, h.cookieSecure, true)
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: mapUserToResponse(user)})
}

// Logout clears the auth cookie. The token itself stays valid until expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(AuthCookieName, "", -1, "/", h.cookieDomain, h.cookieSecure, true)
	c.Status(http.StatusNoContent)
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "account no longer exists")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not load account")
		return
	}

	c.JSON(http.StatusOK, mapUserToResponse(user))
}

// mapUserToResponse converts a domain User to its DTO.
func mapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
