package rpc

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
)

type roundResult struct {
	RoundID uint64 `json:"roundId"`
}

func (s *Server) handleAllocationStartRound(w http.ResponseWriter, req *RPCRequest) {
	var params callerParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := addressParam("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := s.node.StartRound(caller)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, roundResult{RoundID: id})
}

func (s *Server) handleAllocationCurrentRound(w http.ResponseWriter, req *RPCRequest) {
	id, err := s.node.CurrentRoundID()
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, roundResult{RoundID: id})
}

type roundParams struct {
	RoundID uint64 `json:"roundId"`
}

type roundDetailResult struct {
	RoundID                  uint64   `json:"roundId"`
	Proposer                 string   `json:"proposer"`
	VoteStart                uint64   `json:"voteStart"`
	VoteEnd                  uint64   `json:"voteEnd"`
	EligibleApps             []string `json:"eligibleApps"`
	AppSharesCap             uint64   `json:"appSharesCap"`
	BaseAllocationPercentage uint64   `json:"baseAllocationPercentage"`
	State                    string   `json:"state"`
}

func (s *Server) handleAllocationGetRound(w http.ResponseWriter, req *RPCRequest) {
	var params roundParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	round, err := s.node.GetRound(params.RoundID)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	state, err := s.node.RoundState(params.RoundID)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	appIDs := make([]string, 0, len(round.EligibleApps))
	for _, id := range round.EligibleApps {
		appIDs = append(appIDs, id.Hex())
	}
	writeResult(w, req.ID, roundDetailResult{
		RoundID:                  round.ID,
		Proposer:                 round.Proposer.Hex(),
		VoteStart:                round.VoteStart,
		VoteEnd:                  round.VoteEnd(),
		EligibleApps:             appIDs,
		AppSharesCap:             round.AppSharesCap,
		BaseAllocationPercentage: round.BaseAllocationPercentage,
		State:                    state.String(),
	})
}

type roundStateResult struct {
	RoundID uint64 `json:"roundId"`
	State   string `json:"state"`
}

func (s *Server) handleAllocationRoundState(w http.ResponseWriter, req *RPCRequest) {
	var params roundParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	state, err := s.node.RoundState(params.RoundID)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, roundStateResult{RoundID: params.RoundID, State: state.String()})
}

type castVotesParams struct {
	RoundID uint64   `json:"roundId"`
	Voter   string   `json:"voter"`
	Apps    []string `json:"apps"`
	Weights []string `json:"weights"`
}

func (s *Server) handleAllocationCastVotes(w http.ResponseWriter, req *RPCRequest) {
	var params castVotesParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	voter, err := addressParam("voter", params.Voter)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	appIDs := make([]common.Hash, 0, len(params.Apps))
	for _, raw := range params.Apps {
		id, err := hashParam("apps", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
			return
		}
		appIDs = append(appIDs, id)
	}
	weights := make([]*big.Int, 0, len(params.Weights))
	for _, raw := range params.Weights {
		weight, err := amountParam("weights", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
			return
		}
		weights = append(weights, weight)
	}
	if err := s.node.CastAllocationVotes(params.RoundID, voter, appIDs, weights); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	s.metrics.RecordAllocationVote()
	writeResult(w, req.ID, true)
}

type appVotesParams struct {
	RoundID uint64 `json:"roundId"`
	AppID   string `json:"appId"`
}

type appVotesResult struct {
	RoundID uint64 `json:"roundId"`
	AppID   string `json:"appId"`
	Votes   string `json:"votes"`
	VotesQF string `json:"votesQF"`
}

func (s *Server) handleAllocationAppVotes(w http.ResponseWriter, req *RPCRequest) {
	var params appVotesParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	appID, err := hashParam("appId", params.AppID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	votes, err := s.node.RoundAppVotes(params.RoundID, appID)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, appVotesResult{
		RoundID: params.RoundID,
		AppID:   appID.Hex(),
		Votes:   bigString(votes.Votes),
		VotesQF: bigString(votes.VotesQF),
	})
}

type roundTotalsResult struct {
	RoundID      uint64 `json:"roundId"`
	TotalVotes   string `json:"totalVotes"`
	TotalVotesQF string `json:"totalVotesQF"`
}

func (s *Server) handleAllocationRoundTotals(w http.ResponseWriter, req *RPCRequest) {
	var params roundParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	totalVotes, totalQF, err := s.node.RoundTotals(params.RoundID)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, roundTotalsResult{
		RoundID:      params.RoundID,
		TotalVotes:   bigString(totalVotes),
		TotalVotesQF: bigString(totalQF),
	})
}

type hasVotedParams struct {
	RoundID uint64 `json:"roundId"`
	Voter   string `json:"voter"`
}

func (s *Server) handleAllocationHasVoted(w http.ResponseWriter, req *RPCRequest) {
	var params hasVotedParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	voter, err := addressParam("voter", params.Voter)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	voted, err := s.node.HasVotedInRound(params.RoundID, voter)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, voted)
}

type quorumParams struct {
	Caller    string `json:"caller"`
	Numerator uint64 `json:"numerator"`
}

func (s *Server) handleAllocationUpdateQuorum(w http.ResponseWriter, req *RPCRequest) {
	var params quorumParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := addressParam("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.UpdateAllocationQuorum(caller, params.Numerator); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}
