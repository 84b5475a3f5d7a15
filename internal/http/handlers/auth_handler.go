// Auth HTTP handlers.
//
// This file exposes the account lifecycle endpoints:
//   - POST   /auth/register  (create unverified account, dispatch OTP mail)
//   - POST   /auth/verify    (redeem OTP, activate, seed starting credits)
//   - POST   /auth/login     (issue bearer token)
//   - GET    /me             (profile, balances, unlocks)
//   - DELETE /me             (delete account and all owned data)
//
// Handlers are transport-thin: they validate input, call the auth service,
// and translate service errors into the stable error-code taxonomy.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kawanlabs/kawan-backend/internal/domain"
	"github.com/kawanlabs/kawan-backend/internal/http/middleware"
	"github.com/kawanlabs/kawan-backend/internal/services"
)

// AuthService defines account lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AuthService interface {
	// Register creates an unverified account and dispatches the OTP mail.
	Register(ctx context.Context, email, username, password string) (*domain.User, error)
	// Verify redeems an OTP code and activates the account.
	Verify(ctx context.Context, email, code string) (*domain.User, error)
	// Login checks credentials and returns a signed bearer token.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// Profile returns the account record for userID.
	Profile(ctx context.Context, userID string) (*domain.User, error)
	// DeleteAccount removes the user and every resource they own.
	DeleteAccount(ctx context.Context, userID string) error
}

// AuthHandlers groups the account lifecycle endpoints.
type AuthHandlers struct {
	svc AuthService
}

// NewAuth constructs AuthHandlers bound to the given service.
func NewAuth(svc AuthService) *AuthHandlers {
	return &AuthHandlers{svc: svc}
}

//
// DTOs
//

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Email    string `json:"email"    binding:"required" example:"ayu@example.com"`
	Username string `json:"username" binding:"required,min=1,max=64" example:"ayu"`
	// Password must be at least 8 characters.
	Password string `json:"password" binding:"required,min=8" example:"correct horse battery"`
}

// VerifyRequest is the JSON payload for redeeming an OTP code.
type VerifyRequest struct {
	Email string `json:"email" binding:"required" example:"ayu@example.com"`
	Code  string `json:"code"  binding:"required" example:"482913"`
}

// LoginRequest is the JSON payload for obtaining a bearer token.
type LoginRequest struct {
	Email    string `json:"email"    binding:"required" example:"ayu@example.com"`
	Password string `json:"password" binding:"required" example:"correct horse battery"`
}

// LoginResponse carries the issued token and the account snapshot.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

//
// Handlers
//

// Register godoc
// @ID          register
// @Summary     Create an account
// @Description Creates an unverified account and sends a one-time code to the email address.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Registration payload"
//
// @Success     201  {object} domain.User
// @Failure     400  {object} handlers.ErrorResponse "Validation failure"
// @Failure     409  {object} handlers.ErrorResponse "Email already registered"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /auth/register [post]
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email, username, and a password of 8+ chars required")
		return
	}

	u, err := h.svc.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			fail(c, http.StatusConflict, ErrCodeEmailTaken, "email already registered")
		case errors.Is(err, services.ErrInvalidCredentials):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, u)
}

// Verify godoc
// @ID          verifyAccount
// @Summary     Activate an account with a one-time code
// @Description Redeems the emailed OTP, marks the account verified, and seeds the starting credit grant.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.VerifyRequest  true  "Verification payload"
//
// @Success     200  {object} domain.User
// @Failure     400  {object} handlers.ErrorResponse "Invalid or expired code"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /auth/verify [post]
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and code required")
		return
	}

	u, err := h.svc.Verify(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidOTP), errors.Is(err, services.ErrUserNotFound):
			// A wrong email and a wrong code are indistinguishable on purpose.
			fail(c, http.StatusBadRequest, ErrCodeInvalidOTP, "invalid or expired code")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, u)
}

// Login godoc
// @ID          login
// @Summary     Obtain a bearer token
// @Description Checks credentials and returns a signed JWT for the Authorization header.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Login payload"
//
// @Success     200  {object} handlers.LoginResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Invalid credentials or unverified account"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /auth/login [post]
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}

	token, u, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			fail(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid email or password")
		case errors.Is(err, services.ErrNotVerified):
			fail(c, http.StatusUnauthorized, ErrCodeNotVerified, "account not verified")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, LoginResponse{Token: token, User: u})
}

// Me godoc
// @ID          me
// @Summary     Current account profile
// @Description Returns the authenticated user's profile, balances, progression, and unlocks.
// @Tags        Auth
// @Produce     json
//
// @Security    BearerAuth
//
// @Success     200  {object} domain.User
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /me [get]
func (h *AuthHandlers) Me(c *gin.Context) {
	u, err := h.svc.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "account no longer exists")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, u)
}

// DeleteMe godoc
// @ID          deleteMe
// @Summary     Delete the current account
// @Description Permanently removes the account, its projects, messages, and custom modes.
// @Tags        Auth
// @Produce     json
//
// @Security    BearerAuth
//
// @Success     204  {string} string "No Content"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /me [delete]
func (h *AuthHandlers) DeleteMe(c *gin.Context) {
	if err := h.svc.DeleteAccount(c.Request.Context(), middleware.UserID(c)); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
