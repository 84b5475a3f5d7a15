// Package economy implements the pure economic rules of the product:
// leveling math, per-turn rewards, the achievement rule set, the gacha
// prize table, and the per-user mutual exclusion used to keep the
// admission-check → debit → persist window free of check-then-act races.
//
// Everything here is deterministic and side-effect free except for the
// random draw in gacha.go; persistence belongs to the repo layer and
// orchestration to the services layer.
package economy

import "math"

// Per-turn progression grants and store/turn prices. Prices are fixed
// product constants, not configuration.
const (
	ExpPerTurn   int64 = 5
	CoinsPerTurn int64 = 3

	ProTurnCost     int64 = 1
	CustomModeCost  int64 = 150
	ThemeUnlockCost int64 = 40
	GachaDrawCost   int64 = 20

	// StartingCredits is seeded when an account is activated.
	StartingCredits int64 = 25
)

// NextLevelExp returns the experience threshold for advancing past level:
// floor(50 * 1.85^(level-1)). Levels below 1 are treated as 1.
func NextLevelExp(level int) int64 {
	if level < 1 {
		level = 1
	}
	return int64(math.Floor(50 * math.Pow(1.85, float64(level-1))))
}

// Progress holds the mutable progression triple of a user.
type Progress struct {
	Exp          int64
	Level        int
	NextLevelExp int64
}

// GrantExp adds amount to p.Exp and resolves any level-ups: while the
// threshold is reached the level increments, the threshold is subtracted
// from exp (the remainder carries over, it is not reset to zero), and the
// next threshold is recomputed. A single large grant may cross several
// levels. After resolution exp < nextLevelExp holds.
//
// The number of levels gained is returned.
func (p *Progress) GrantExp(amount int64) int {
	if amount < 0 {
		amount = 0
	}
	p.Exp += amount
	if p.Level < 1 {
		p.Level = 1
	}
	if p.NextLevelExp <= 0 {
		p.NextLevelExp = NextLevelExp(p.Level)
	}

	gained := 0
	for p.Exp >= p.NextLevelExp {
		p.Exp -= p.NextLevelExp
		p.Level++
		p.NextLevelExp = NextLevelExp(p.Level)
		gained++
	}
	return gained
}
