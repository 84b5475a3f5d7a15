package economy

import (
	"crypto/rand"
	"math/big"
)

// PrizeKind discriminates what a gacha prize credits.
type PrizeKind string

const (
	PrizeExp   PrizeKind = "exp"
	PrizeCoins PrizeKind = "coins"
)

// Prize is one weighted outcome in a gacha table.
type Prize struct {
	Kind        PrizeKind `json:"kind"`
	Amount      int64     `json:"amount"`
	Probability float64   `json:"probability"` // 0.0 - 1.0
}

// PrizeTable is an ordered list of prizes whose probabilities sum to at
// most 1. The final entry doubles as the fallback for any residual
// probability mass left by floating-point accumulation, so a draw always
// resolves.
type PrizeTable []Prize

// DefaultPrizeTable returns the production gacha configuration.
func DefaultPrizeTable() PrizeTable {
	return PrizeTable{
		{Kind: PrizeExp, Amount: 5, Probability: 0.40},
		{Kind: PrizeCoins, Amount: 10, Probability: 0.30},
		{Kind: PrizeExp, Amount: 20, Probability: 0.15},
		{Kind: PrizeCoins, Amount: 30, Probability: 0.10},
		{Kind: PrizeExp, Amount: 100, Probability: 0.04},
		{Kind: PrizeCoins, Amount: 150, Probability: 0.01},
	}
}

// drawPrecision is the resolution of the uniform sample (one millionth).
var drawPrecision = big.NewInt(1_000_000)

// Draw selects a prize by cumulative-probability sampling: the first entry
// whose cumulative probability exceeds a uniform sample in [0,1) wins. If
// the sample lands in residual mass beyond the table's total probability,
// the last entry is returned as the documented fallback. Draw never fails
// to pick a prize on a non-empty table.
func (t PrizeTable) Draw() Prize {
	return t.drawAt(uniformSample())
}

// drawAt resolves a draw for a known sample value. Split out for tests.
func (t PrizeTable) drawAt(sample float64) Prize {
	if len(t) == 0 {
		return Prize{}
	}
	cumulative := 0.0
	for _, p := range t {
		cumulative += p.Probability
		if sample < cumulative {
			return p
		}
	}
	return t[len(t)-1]
}

// uniformSample returns a cryptographically sourced value in [0,1).
func uniformSample() float64 {
	n, err := rand.Int(rand.Reader, drawPrecision)
	if err != nil {
		// rand.Reader failing is effectively unreachable; pick the middle
		// of the distribution rather than panicking mid-transaction.
		return 0.5
	}
	return float64(n.Int64()) / float64(drawPrecision.Int64())
}
