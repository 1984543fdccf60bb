package rpc

import "net/http"

type earningsParams struct {
	RoundID uint64 `json:"roundId"`
	AppID   string `json:"appId"`
}

type earningsResult struct {
	RoundID           uint64 `json:"roundId"`
	AppID             string `json:"appId"`
	TotalAmount       string `json:"totalAmount"`
	TeamAmount        string `json:"teamAmount"`
	PoolAmount        string `json:"poolAmount"`
	UnallocatedAmount string `json:"unallocatedAmount"`
}

func (s *Server) handlePoolEarnings(w http.ResponseWriter, req *RPCRequest) {
	var params earningsParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	appID, err := hashParam("appId", params.AppID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	earnings, err := s.node.AppEarnings(params.RoundID, appID)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, earningsResult{
		RoundID:           params.RoundID,
		AppID:             appID.Hex(),
		TotalAmount:       bigString(earnings.TotalAmount),
		TeamAmount:        bigString(earnings.TeamAmount),
		PoolAmount:        bigString(earnings.PoolAmount),
		UnallocatedAmount: bigString(earnings.UnallocatedAmount),
	})
}

func (s *Server) handlePoolClaim(w http.ResponseWriter, req *RPCRequest) {
	var params earningsParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	appID, err := hashParam("appId", params.AppID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	earnings, err := s.node.ClaimAppEarnings(params.RoundID, appID)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	s.metrics.RecordClaim("app_earnings")
	writeResult(w, req.ID, earningsResult{
		RoundID:           params.RoundID,
		AppID:             appID.Hex(),
		TotalAmount:       bigString(earnings.TotalAmount),
		TeamAmount:        bigString(earnings.TeamAmount),
		PoolAmount:        bigString(earnings.PoolAmount),
		UnallocatedAmount: bigString(earnings.UnallocatedAmount),
	})
}

func (s *Server) handlePoolClaimed(w http.ResponseWriter, req *RPCRequest) {
	var params earningsParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	appID, err := hashParam("appId", params.AppID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	claimed, err := s.node.AppEarningsClaimed(params.RoundID, appID)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, claimed)
}

type voterRewardParams struct {
	Cycle uint64 `json:"cycle"`
	Voter string `json:"voter"`
}

type voterRewardResult struct {
	Cycle  uint64 `json:"cycle"`
	Voter  string `json:"voter"`
	Amount string `json:"amount"`
}

func (s *Server) handleRewardsAmount(w http.ResponseWriter, req *RPCRequest) {
	var params voterRewardParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	voter, err := addressParam("voter", params.Voter)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	amount, err := s.node.VoterRewardAmount(params.Cycle, voter)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, voterRewardResult{Cycle: params.Cycle, Voter: voter.Hex(), Amount: bigString(amount)})
}

func (s *Server) handleRewardsClaim(w http.ResponseWriter, req *RPCRequest) {
	var params voterRewardParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	voter, err := addressParam("voter", params.Voter)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	amount, err := s.node.ClaimVoterReward(params.Cycle, voter)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	s.metrics.RecordClaim("voter_reward")
	writeResult(w, req.ID, voterRewardResult{Cycle: params.Cycle, Voter: voter.Hex(), Amount: bigString(amount)})
}

func (s *Server) handleRewardsToggleQuadratic(w http.ResponseWriter, req *RPCRequest) {
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
	enabled, err := s.node.ToggleQuadraticRewarding(caller)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, toggleResult{Enabled: enabled})
}
