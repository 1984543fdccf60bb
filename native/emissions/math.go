package emissions

import "math/big"

var (
	scalingFactorBig = big.NewInt(ScalingFactor)
	percentDenomBig  = big.NewInt(PercentDenominator)
	treasuryDenomBig = big.NewInt(TreasuryPercentDenominator)
)

// XAllocationAmount computes the xAllocations emission for a cycle as a pure
// function of the schedule. The decay fires once per XAllocationDecayPeriod
// cycles: cycle c has floor((c-1)/period) decays applied, so cycle 1 always
// carries the initial amount. The amount stays scaled by ScalingFactor through
// every divide and is divided back exactly once at the end.
func XAllocationAmount(p Params, cycle uint64) *big.Int {
	if cycle == 0 || p.InitialXAllocation == nil {
		return big.NewInt(0)
	}
	scaled := new(big.Int).Mul(p.InitialXAllocation, scalingFactorBig)
	if cycle >= 2 && p.XAllocationDecayPeriod > 0 {
		retained := big.NewInt(int64(PercentDenominator - p.XAllocationDecayRate))
		decays := (cycle - 1) / p.XAllocationDecayPeriod
		for i := uint64(0); i < decays; i++ {
			scaled.Mul(scaled, retained)
			scaled.Quo(scaled, percentDenomBig)
		}
	}
	return scaled.Quo(scaled, scalingFactorBig)
}

// Vote2EarnAmount computes the vote2Earn emission for a cycle. The decay is a
// single multiplier of decayRate per elapsed Vote2EarnDecayPeriod, capped at
// MaxVote2EarnDecay, applied to the cycle's xAllocations amount.
func Vote2EarnAmount(p Params, cycle uint64) *big.Int {
	if cycle == 0 {
		return big.NewInt(0)
	}
	decay := uint64(0)
	if p.Vote2EarnDecayPeriod > 0 {
		decay = p.Vote2EarnDecayRate * ((cycle - 1) / p.Vote2EarnDecayPeriod)
	}
	if decay > p.MaxVote2EarnDecay {
		decay = p.MaxVote2EarnDecay
	}
	base := XAllocationAmount(p, cycle)
	scaled := new(big.Int).Mul(base, scalingFactorBig)
	scaled.Mul(scaled, big.NewInt(int64(PercentDenominator-decay)))
	scaled.Quo(scaled, percentDenomBig)
	return scaled.Quo(scaled, scalingFactorBig)
}

// TreasuryAmount computes the treasury emission for a cycle as the configured
// x100-scaled percentage of the combined xAllocations and vote2Earn amounts.
func TreasuryAmount(p Params, cycle uint64) *big.Int {
	if cycle == 0 {
		return big.NewInt(0)
	}
	combined := new(big.Int).Add(XAllocationAmount(p, cycle), Vote2EarnAmount(p, cycle))
	combined.Mul(combined, new(big.Int).SetUint64(p.TreasuryPercentage))
	return combined.Quo(combined, treasuryDenomBig)
}
