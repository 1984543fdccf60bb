package rpc

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"vebetterdao/native/governance"
)

type proposeParams struct {
	Proposer    string   `json:"proposer"`
	Targets     []string `json:"targets"`
	Values      []string `json:"values"`
	Calldatas   []string `json:"calldatas"`
	Description string   `json:"description"`
	StartRound  uint64   `json:"startRound"`
}

type proposalIDResult struct {
	ProposalID string `json:"proposalId"`
}

func (s *Server) handleGovPropose(w http.ResponseWriter, req *RPCRequest) {
	var params proposeParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	proposer, err := addressParam("proposer", params.Proposer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	targets := make([]common.Address, 0, len(params.Targets))
	for _, raw := range params.Targets {
		target, err := addressParam("targets", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
			return
		}
		targets = append(targets, target)
	}
	values := make([]*big.Int, 0, len(params.Values))
	for _, raw := range params.Values {
		value, err := amountParam("values", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
			return
		}
		values = append(values, value)
	}
	calldatas := make([][]byte, 0, len(params.Calldatas))
	for _, raw := range params.Calldatas {
		data, err := hexutil.Decode(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "calldatas: "+err.Error(), nil)
			return
		}
		calldatas = append(calldatas, data)
	}
	id, err := s.node.Propose(proposer, targets, values, calldatas, params.Description, params.StartRound)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, proposalIDResult{ProposalID: id.Hex()})
}

type depositParams struct {
	ProposalID string `json:"proposalId"`
	Depositor  string `json:"depositor"`
	Amount     string `json:"amount"`
}

func (s *Server) handleGovDeposit(w http.ResponseWriter, req *RPCRequest) {
	var params depositParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := hashParam("proposalId", params.ProposalID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	depositor, err := addressParam("depositor", params.Depositor)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	amount, err := amountParam("amount", params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.DepositForProposal(id, depositor, amount); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

type withdrawParams struct {
	ProposalID string `json:"proposalId"`
	Depositor  string `json:"depositor"`
}

type withdrawResult struct {
	Amount string `json:"amount"`
}

func (s *Server) handleGovWithdrawDeposit(w http.ResponseWriter, req *RPCRequest) {
	var params withdrawParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := hashParam("proposalId", params.ProposalID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	depositor, err := addressParam("depositor", params.Depositor)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	amount, err := s.node.WithdrawProposalDeposit(id, depositor)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	s.metrics.RecordClaim("deposit_withdrawal")
	writeResult(w, req.ID, withdrawResult{Amount: bigString(amount)})
}

type castVoteParams struct {
	ProposalID string `json:"proposalId"`
	Voter      string `json:"voter"`
	Support    uint8  `json:"support"`
	Reason     string `json:"reason"`
}

type castVoteResult struct {
	Weight string `json:"weight"`
}

func (s *Server) handleGovCastVote(w http.ResponseWriter, req *RPCRequest) {
	var params castVoteParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := hashParam("proposalId", params.ProposalID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	voter, err := addressParam("voter", params.Voter)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	support := governance.VoteSupport(params.Support)
	if !support.Valid() {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "support must be 0 (against), 1 (for) or 2 (abstain)", nil)
		return
	}
	weight, err := s.node.CastGovernanceVote(id, voter, support, params.Reason)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	s.metrics.RecordGovernanceVote()
	writeResult(w, req.ID, castVoteResult{Weight: bigString(weight)})
}

type proposalParams struct {
	ProposalID string `json:"proposalId"`
}

type proposalStateResult struct {
	ProposalID string `json:"proposalId"`
	State      string `json:"state"`
}

func (s *Server) handleGovState(w http.ResponseWriter, req *RPCRequest) {
	var params proposalParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := hashParam("proposalId", params.ProposalID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	state, err := s.node.ProposalState(id)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, proposalStateResult{ProposalID: id.Hex(), State: state.String()})
}

type proposalDetailResult struct {
	ProposalID       string   `json:"proposalId"`
	Proposer         string   `json:"proposer"`
	Targets          []string `json:"targets"`
	Values           []string `json:"values"`
	Calldatas        []string `json:"calldatas"`
	DescriptionHash  string   `json:"descriptionHash"`
	StartRound       uint64   `json:"startRound"`
	DepositThreshold string   `json:"depositThreshold"`
	DepositTotal     string   `json:"depositTotal"`
	State            string   `json:"state"`
}

func (s *Server) handleGovGetProposal(w http.ResponseWriter, req *RPCRequest) {
	var params proposalParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := hashParam("proposalId", params.ProposalID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	proposal, err := s.node.GetProposal(id)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	state, err := s.node.ProposalState(id)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	targets := make([]string, 0, len(proposal.Targets))
	for _, target := range proposal.Targets {
		targets = append(targets, target.Hex())
	}
	values := make([]string, 0, len(proposal.Values))
	for _, value := range proposal.Values {
		values = append(values, bigString(value))
	}
	calldatas := make([]string, 0, len(proposal.Calldatas))
	for _, data := range proposal.Calldatas {
		calldatas = append(calldatas, hexutil.Encode(data))
	}
	writeResult(w, req.ID, proposalDetailResult{
		ProposalID:       proposal.ID.Hex(),
		Proposer:         proposal.Proposer.Hex(),
		Targets:          targets,
		Values:           values,
		Calldatas:        calldatas,
		DescriptionHash:  proposal.DescriptionHash.Hex(),
		StartRound:       proposal.StartRound,
		DepositThreshold: bigString(proposal.DepositThreshold),
		DepositTotal:     bigString(proposal.DepositTotal),
		State:            state.String(),
	})
}

type proposalVotesResult struct {
	ProposalID string `json:"proposalId"`
	Against    string `json:"against"`
	For        string `json:"for"`
	Abstain    string `json:"abstain"`
}

func (s *Server) handleGovVotes(w http.ResponseWriter, req *RPCRequest) {
	var params proposalParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := hashParam("proposalId", params.ProposalID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	votes, err := s.node.ProposalVotes(id)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, proposalVotesResult{
		ProposalID: id.Hex(),
		Against:    bigString(votes.Against),
		For:        bigString(votes.For),
		Abstain:    bigString(votes.Abstain),
	})
}

func (s *Server) handleGovQueue(w http.ResponseWriter, req *RPCRequest) {
	var params proposalParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := hashParam("proposalId", params.ProposalID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.QueueProposal(id); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleGovExecute(w http.ResponseWriter, req *RPCRequest) {
	var params proposalParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := hashParam("proposalId", params.ProposalID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.ExecuteProposal(id); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

type cancelParams struct {
	ProposalID string `json:"proposalId"`
	Caller     string `json:"caller"`
}

func (s *Server) handleGovCancel(w http.ResponseWriter, req *RPCRequest) {
	var params cancelParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := hashParam("proposalId", params.ProposalID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := addressParam("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.CancelProposal(id, caller); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

type toggleResult struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleGovToggleQuadraticVoting(w http.ResponseWriter, req *RPCRequest) {
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
	enabled, err := s.node.ToggleQuadraticVoting(caller)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, toggleResult{Enabled: enabled})
}

func (s *Server) handleGovUpdateQuorum(w http.ResponseWriter, req *RPCRequest) {
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
	if err := s.node.UpdateGovernanceQuorum(caller, params.Numerator); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}
