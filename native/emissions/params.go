package emissions

import (
	"errors"
	"fmt"
	"math/big"
)

const (
	// ScalingFactor preserves precision through the repeated divide in the
	// geometric decay. Amounts are carried scaled and divided back once.
	ScalingFactor = 1_000_000
	// PercentDenominator is the denominator for whole-percent decay rates.
	PercentDenominator = 100
	// TreasuryPercentDenominator scales the treasury percentage by 100 so
	// sub-1% allocations remain expressible (1000 == 10%).
	TreasuryPercentDenominator = 10_000
)

// Params captures the emission schedule knobs. Decay rates are whole percents,
// periods are cycle counts, and the treasury percentage uses the x100 scale.
type Params struct {
	InitialXAllocation     *big.Int
	XAllocationDecayRate   uint64
	XAllocationDecayPeriod uint64
	Vote2EarnDecayRate     uint64
	Vote2EarnDecayPeriod   uint64
	MaxVote2EarnDecay      uint64
	TreasuryPercentage     uint64
	CycleDuration          uint64
	MigrationAmount        *big.Int
}

// DefaultParams mirrors the launch emission schedule: bi-weekly-ish cycles with
// 4% xAllocation decay every 12 cycles and 20% vote2Earn decay every 50 cycles,
// capped at 80%.
func DefaultParams() Params {
	initial, _ := new(big.Int).SetString("2000000000000000000000000", 10)
	migration, _ := new(big.Int).SetString("3750000000000000000000000", 10)
	return Params{
		InitialXAllocation:     initial,
		XAllocationDecayRate:   4,
		XAllocationDecayPeriod: 12,
		Vote2EarnDecayRate:     20,
		Vote2EarnDecayPeriod:   50,
		MaxVote2EarnDecay:      80,
		TreasuryPercentage:     2500,
		CycleDuration:          60 * 60 * 24 / 10, // one day of 10s blocks
		MigrationAmount:        migration,
	}
}

// Validate bounds every percentage and requires the periods and duration to be
// positive so the decay schedule is well defined.
func (p Params) Validate() error {
	if p.InitialXAllocation == nil || p.InitialXAllocation.Sign() <= 0 {
		return errors.New("emissions: initial xAllocation must be positive")
	}
	if p.XAllocationDecayRate > PercentDenominator {
		return fmt.Errorf("emissions: xAllocation decay rate %d exceeds 100", p.XAllocationDecayRate)
	}
	if p.Vote2EarnDecayRate > PercentDenominator {
		return fmt.Errorf("emissions: vote2Earn decay rate %d exceeds 100", p.Vote2EarnDecayRate)
	}
	if p.MaxVote2EarnDecay > PercentDenominator {
		return fmt.Errorf("emissions: max vote2Earn decay %d exceeds 100", p.MaxVote2EarnDecay)
	}
	if p.TreasuryPercentage > TreasuryPercentDenominator {
		return fmt.Errorf("emissions: treasury percentage %d exceeds %d", p.TreasuryPercentage, TreasuryPercentDenominator)
	}
	if p.XAllocationDecayPeriod == 0 {
		return errors.New("emissions: xAllocation decay period must be positive")
	}
	if p.Vote2EarnDecayPeriod == 0 {
		return errors.New("emissions: vote2Earn decay period must be positive")
	}
	if p.CycleDuration == 0 {
		return errors.New("emissions: cycle duration must be positive")
	}
	if p.MigrationAmount != nil && p.MigrationAmount.Sign() < 0 {
		return errors.New("emissions: migration amount cannot be negative")
	}
	return nil
}
