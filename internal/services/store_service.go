package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/kawanlabs/kawan-backend/internal/domain"
	"github.com/kawanlabs/kawan-backend/internal/economy"
	"github.com/kawanlabs/kawan-backend/internal/modes"
	"github.com/kawanlabs/kawan-backend/internal/repo"
)

// Themes is the closed catalog of purchasable UI themes. Theme names are
// validated against this list; there is no dynamic theme registry.
var Themes = []string{"midnight", "sakura", "matrix", "sunset", "ocean"}

// ValidTheme reports whether name is in the theme catalog.
func ValidTheme(name string) bool {
	for _, t := range Themes {
		if t == name {
			return true
		}
	}
	return false
}

// StoreService sells one-time unlocks: custom personality modes (credits)
// and UI themes (credits).
type StoreService struct {
	DB    *gorm.DB
	Locks *economy.UserLocks
}

// NewStoreService constructs a StoreService.
func NewStoreService(db *gorm.DB, locks *economy.UserLocks) *StoreService {
	return &StoreService{DB: db, Locks: locks}
}

// PurchasedMode reports a completed custom-mode purchase.
type PurchasedMode struct {
	Mode    *domain.CustomMode `json:"mode"`
	Credits int64              `json:"credits"`
}

// PurchaseCustomMode validates, debits the one-time price, and creates the
// custom mode, atomically. A failed validation or admission check leaves
// the user untouched.
func (s *StoreService) PurchaseCustomMode(ctx context.Context, userID, name, prompt string) (*PurchasedMode, error) {
	name = strings.TrimSpace(name)
	prompt = strings.TrimSpace(prompt)
	if name == "" {
		return nil, ErrEmptyModeName
	}
	if prompt == "" {
		return nil, ErrEmptyModePrompt
	}

	unlock := s.Locks.Lock(userID)
	defer unlock()

	var (
		created *domain.CustomMode
		credits int64
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := mutateUser(ctx, tx, userID, func(u *domain.User) error {
			if u.Credits < economy.CustomModeCost {
				return ErrInsufficientCredits
			}
			u.Credits -= economy.CustomModeCost
			u.CreditsSpent += economy.CustomModeCost
			return nil
		})
		if err != nil {
			return err
		}
		credits = u.Credits

		created, err = repo.CreateCustomMode(ctx, tx, userID, name, prompt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &PurchasedMode{Mode: created, Credits: credits}, nil
}

// UnlockedTheme reports a completed theme unlock.
type UnlockedTheme struct {
	Theme   string   `json:"theme"`
	Themes  []string `json:"unlocked_themes"`
	Credits int64    `json:"credits"`
}

// UnlockTheme debits the theme price and adds name to the user's unlocked
// set. Unlocking is permanent and cannot be repeated for the same theme.
func (s *StoreService) UnlockTheme(ctx context.Context, userID, name string) (*UnlockedTheme, error) {
	if !ValidTheme(name) {
		return nil, ErrInvalidTheme
	}

	unlock := s.Locks.Lock(userID)
	defer unlock()

	u, err := mutateUser(ctx, s.DB, userID, func(u *domain.User) error {
		if u.UnlockedThemes.Has(name) {
			return ErrThemeAlreadyUnlocked
		}
		if u.Credits < economy.ThemeUnlockCost {
			return ErrInsufficientCredits
		}
		u.Credits -= economy.ThemeUnlockCost
		u.CreditsSpent += economy.ThemeUnlockCost
		u.UnlockedThemes = u.UnlockedThemes.Add(name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &UnlockedTheme{Theme: name, Themes: u.UnlockedThemes, Credits: u.Credits}, nil
}

// ModeInfo is one entry in the modes listing.
type ModeInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Billable bool   `json:"billable"`
	Custom   bool   `json:"custom"`
}

// ListModes returns the preset catalog followed by the user's custom
// modes in creation order.
func (s *StoreService) ListModes(ctx context.Context, userID string) ([]ModeInfo, error) {
	out := make([]ModeInfo, 0, 8)
	for _, id := range modes.Presets() {
		r := modes.Resolve(id, nil)
		out = append(out, ModeInfo{ID: id, Billable: r.Billable})
	}

	custom, err := repo.ListCustomModes(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	for _, cm := range custom {
		out = append(out, ModeInfo{ID: cm.ID, Name: cm.Name, Custom: true})
	}
	return out, nil
}
