// Economy HTTP handlers.
//
// This file exposes the gamification endpoints:
//   - GET  /achievements          (achievement catalog)
//   - POST /gacha/draw            (coin-funded weighted prize draw)
//   - GET  /modes                 (presets + owned custom modes)
//   - POST /modes                 (purchase a custom personality mode)
//   - POST /themes/{name}/unlock  (purchase a UI theme)
//
// Handlers are transport-thin: they validate input, call the gacha and
// store services, and map the service error taxonomy to stable HTTP codes.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kawanlabs/kawan-backend/internal/economy"
	"github.com/kawanlabs/kawan-backend/internal/http/middleware"
	"github.com/kawanlabs/kawan-backend/internal/services"
)

// GachaService defines the draw operation consumed by HTTP handlers.
type GachaService interface {
	// Draw debits the draw cost, samples one prize, and credits it.
	Draw(ctx context.Context, userID string) (*services.DrawResult, error)
}

// StoreService defines one-time unlock purchases consumed by HTTP handlers.
type StoreService interface {
	// PurchaseCustomMode debits the price and creates the custom mode.
	PurchaseCustomMode(ctx context.Context, userID, name, prompt string) (*services.PurchasedMode, error)
	// UnlockTheme debits the price and adds the theme to the user's set.
	UnlockTheme(ctx context.Context, userID, name string) (*services.UnlockedTheme, error)
	// ListModes returns presets followed by the user's custom modes.
	ListModes(ctx context.Context, userID string) ([]services.ModeInfo, error)
}

// EconomyHandlers groups the gamification endpoints.
type EconomyHandlers struct {
	gacha GachaService
	store StoreService
}

// NewEconomy constructs EconomyHandlers bound to the given services.
func NewEconomy(gacha GachaService, store StoreService) *EconomyHandlers {
	return &EconomyHandlers{gacha: gacha, store: store}
}

//
// DTOs
//

// PurchaseModeRequest is the JSON payload for buying a custom mode.
type PurchaseModeRequest struct {
	// Name labels the mode in listings (1–64 chars).
	Name string `json:"name" binding:"required,min=1,max=64" example:"Pirate"`
	// Prompt is the system instruction used verbatim for this mode.
	Prompt string `json:"prompt" binding:"required,min=1" example:"You answer like a 17th century pirate."`
}

// AchievementsResponse lists every achievement id the rule set can grant.
type AchievementsResponse struct {
	Achievements []string `json:"achievements"`
}

// ListModesResponse wraps the modes listing.
type ListModesResponse struct {
	Modes []services.ModeInfo `json:"modes"`
}

//
// Handlers
//

// ListAchievements godoc
// @ID          listAchievements
// @Summary     Achievement catalog
// @Description Returns the stable ids of every achievement the rule set can grant.
// @Tags        Economy
// @Produce     json
//
// @Success     200  {object} handlers.AchievementsResponse
// @Router      /achievements [get]
func (h *EconomyHandlers) ListAchievements(c *gin.Context) {
	ok(c, http.StatusOK, AchievementsResponse{Achievements: economy.Catalog()})
}

// DrawGacha godoc
// @ID          drawGacha
// @Summary     Draw a gacha prize
// @Description Debits the draw cost in coins, samples one prize from the weighted table, and
// @Description credits it atomically. With insufficient coins nothing is drawn or debited.
// @Tags        Economy
// @Produce     json
//
// @Security    BearerAuth
//
// @Success     200  {object} services.DrawResult
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Insufficient coins"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /gacha/draw [post]
func (h *EconomyHandlers) DrawGacha(c *gin.Context) {
	res, err := h.gacha.Draw(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, services.ErrInsufficientCoins) {
			fail(c, http.StatusForbidden, ErrCodeInsufficientCoins, "not enough coins for a draw")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, res)
}

// ListModes godoc
// @ID          listModes
// @Summary     List personality modes
// @Description Returns the preset catalog followed by the user's purchased custom modes in creation order.
// @Tags        Economy
// @Produce     json
//
// @Security    BearerAuth
//
// @Success     200  {object} handlers.ListModesResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /modes [get]
func (h *EconomyHandlers) ListModes(c *gin.Context) {
	modes, err := h.store.ListModes(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListModesResponse{Modes: modes})
}

// PurchaseMode godoc
// @ID          purchaseMode
// @Summary     Purchase a custom personality mode
// @Description Debits the one-time price in credits and creates a custom mode usable in chat turns.
// @Description A failed validation or insufficient balance leaves the account untouched.
// @Tags        Economy
// @Accept      json
// @Produce     json
//
// @Security    BearerAuth
//
// @Param       body  body  handlers.PurchaseModeRequest  true  "Mode payload"
//
// @Success     201  {object} services.PurchasedMode
// @Failure     400  {object} handlers.ErrorResponse "Empty name or prompt"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Insufficient credits"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /modes [post]
func (h *EconomyHandlers) PurchaseMode(c *gin.Context) {
	var req PurchaseModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name and prompt required")
		return
	}

	res, err := h.store.PurchaseCustomMode(c.Request.Context(), middleware.UserID(c), req.Name, req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyModeName), errors.Is(err, services.ErrEmptyModePrompt):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrInsufficientCredits):
			fail(c, http.StatusForbidden, ErrCodeInsufficientCredits, "not enough credits for a custom mode")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, res)
}

// UnlockTheme godoc
// @ID          unlockTheme
// @Summary     Unlock a UI theme
// @Description Debits the theme price in credits and permanently adds the theme to the user's
// @Description unlocked set. Theme names come from a closed catalog; re-unlocking is rejected.
// @Tags        Economy
// @Produce     json
//
// @Security    BearerAuth
//
// @Param       name  path  string  true  "Theme name"  Enums(midnight, sakura, matrix, sunset, ocean)
//
// @Success     200  {object} services.UnlockedTheme
// @Failure     400  {object} handlers.ErrorResponse "Unknown or already unlocked theme"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Insufficient credits"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /themes/{name}/unlock [post]
func (h *EconomyHandlers) UnlockTheme(c *gin.Context) {
	res, err := h.store.UnlockTheme(c.Request.Context(), middleware.UserID(c), c.Param("name"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTheme):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown theme")
		case errors.Is(err, services.ErrThemeAlreadyUnlocked):
			fail(c, http.StatusBadRequest, ErrCodeThemeAlreadyUnlocked, "theme already unlocked")
		case errors.Is(err, services.ErrInsufficientCredits):
			fail(c, http.StatusForbidden, ErrCodeInsufficientCredits, "not enough credits for a theme")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, res)
}
