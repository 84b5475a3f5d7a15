package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/kawanlabs/kawan-backend/internal/domain"
	"github.com/kawanlabs/kawan-backend/internal/economy"
)

// GachaService runs coin-funded random prize draws.
type GachaService struct {
	DB    *gorm.DB
	Locks *economy.UserLocks
	Table economy.PrizeTable
}

// NewGachaService constructs a GachaService with the default prize table.
func NewGachaService(db *gorm.DB, locks *economy.UserLocks) *GachaService {
	return &GachaService{DB: db, Locks: locks, Table: economy.DefaultPrizeTable()}
}

// DrawResult reports the sampled prize and the user's post-draw state.
type DrawResult struct {
	Prize economy.Prize `json:"prize"`

	Credits      int64 `json:"credits"`
	Coins        int64 `json:"coins"`
	Exp          int64 `json:"exp"`
	Level        int   `json:"level"`
	NextLevelExp int64 `json:"next_level_exp"`
	LeveledUp    bool  `json:"leveled_up"`
}

// Draw debits the draw cost, samples one prize, and credits it, as a
// single atomic transaction on the user document. With insufficient coins
// nothing is mutated and no prize is sampled.
func (s *GachaService) Draw(ctx context.Context, userID string) (*DrawResult, error) {
	unlock := s.Locks.Lock(userID)
	defer unlock()

	var (
		prize   economy.Prize
		leveled bool
	)
	u, err := mutateUser(ctx, s.DB, userID, func(u *domain.User) error {
		if u.Coins < economy.GachaDrawCost {
			return ErrInsufficientCoins
		}
		u.Coins -= economy.GachaDrawCost

		p := s.Table.Draw()
		prize = p

		switch p.Kind {
		case economy.PrizeCoins:
			u.Coins += p.Amount
		case economy.PrizeExp:
			prog := economy.Progress{Exp: u.Exp, Level: u.Level, NextLevelExp: u.NextLevelExp}
			leveled = prog.GrantExp(p.Amount) > 0
			u.Exp, u.Level, u.NextLevelExp = prog.Exp, prog.Level, prog.NextLevelExp
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &DrawResult{
		Prize:        prize,
		Credits:      u.Credits,
		Coins:        u.Coins,
		Exp:          u.Exp,
		Level:        u.Level,
		NextLevelExp: u.NextLevelExp,
		LeveledUp:    leveled,
	}, nil
}
