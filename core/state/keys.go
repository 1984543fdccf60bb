package state

import "strconv"

func uintBytes(n uint64) []byte {
	return []byte(strconv.FormatUint(n, 10))
}

var (
	emissionsNextCycleKey = []byte("emissions/next-cycle")
	emissionsLastBlockKey = []byte("emissions/last-block")
	emissionsTotalKey     = []byte("emissions/total")
	emissionsCyclePrefix  = []byte("emissions/cycle")

	allocationRoundCountKey   = []byte("allocation/round-count")
	allocationRoundPrefix     = []byte("allocation/round")
	allocationAppVotesPrefix  = []byte("allocation/app-votes")
	allocationTotalsPrefix    = []byte("allocation/totals")
	allocationVotedPrefix     = []byte("allocation/voted")
	allocationFinalizedPrefix = []byte("allocation/finalized")
	allocationQuorumKey       = []byte("allocation/quorum")

	governorProposalPrefix = []byte("governor/proposal")
	governorVotesPrefix    = []byte("governor/votes")
	governorVotedPrefix    = []byte("governor/voted")
	governorDepositPrefix  = []byte("governor/deposit")
	governorQuadraticKey   = []byte("governor/quadratic-voting")
	governorQuorumKey      = []byte("governor/quorum")

	rewardsCycleTotalPrefix = []byte("rewards/cycle-total")
	rewardsVoterPrefix      = []byte("rewards/voter-total")
	rewardsTokenVotedPrefix = []byte("rewards/token-voted")
	rewardsNodeVotedPrefix  = []byte("rewards/node-voted")
	rewardsQuadraticKey     = []byte("rewards/quadratic-rewarding")

	appsRecordPrefix   = []byte("apps/record")
	appsIndexKey       = []byte("apps/index")
	appsEligiblePrefix = []byte("apps/eligible")

	tokenBalancePrefix = []byte("token/balance")
	tokenVotesPrefix   = []byte("token/votes")
	tokenSupplyKey     = []byte("token/supply")

	allocpoolClaimedPrefix = []byte("allocpool/claimed")

	identityPersonPrefix = []byte("identity/person")
	identityReasonPrefix = []byte("identity/reason")
	galaxySelectedPrefix = []byte("galaxy/selected")
	galaxyLevelPrefix    = []byte("galaxy/level")
	galaxyNodePrefix     = []byte("galaxy/node")

	timelockOpPrefix = []byte("timelock/operation")

	authPermissionPrefix = []byte("auth/permission")

	chainHeightKey = []byte("chain/height")
)
