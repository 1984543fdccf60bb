package rpc

import (
	"net/http"

	"vebetterdao/core/journal"
)

type callerParams struct {
	Caller string `json:"caller"`
}

type heightResult struct {
	Height uint64 `json:"height"`
}

func (s *Server) handleChainHeight(w http.ResponseWriter, req *RPCRequest) {
	writeResult(w, req.ID, heightResult{Height: s.node.Height()})
}

func (s *Server) handleAdvanceBlock(w http.ResponseWriter, req *RPCRequest) {
	height, err := s.node.AdvanceBlock()
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, heightResult{Height: height})
}

type chainEventsParams struct {
	From  uint64 `json:"from"`
	Limit uint64 `json:"limit"`
}

type chainEventsResult struct {
	Total   uint64          `json:"total"`
	Entries []journal.Entry `json:"entries"`
}

func (s *Server) handleChainEvents(w http.ResponseWriter, req *RPCRequest) {
	if s.journal == nil {
		writeError(w, http.StatusOK, req.ID, codeServerError, "event journal not enabled", nil)
		return
	}
	params := chainEventsParams{Limit: 100}
	if err := parseOptionalParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if params.Limit == 0 || params.Limit > 1000 {
		params.Limit = 100
	}
	entries, err := s.journal.Read(params.From, params.Limit)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, chainEventsResult{Total: s.journal.Len(), Entries: entries})
}

func (s *Server) handleEmissionsBootstrap(w http.ResponseWriter, req *RPCRequest) {
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
	if err := s.node.BootstrapEmissions(caller); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleEmissionsStart(w http.ResponseWriter, req *RPCRequest) {
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
	if err := s.node.StartEmissions(caller); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

type cycleResult struct {
	Cycle uint64 `json:"cycle"`
}

func (s *Server) handleEmissionsDistribute(w http.ResponseWriter, req *RPCRequest) {
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
	cycle, err := s.node.DistributeEmissions(caller)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, cycleResult{Cycle: cycle})
}

func (s *Server) handleEmissionsCurrentCycle(w http.ResponseWriter, req *RPCRequest) {
	cycle, err := s.node.CurrentCycle()
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, cycleResult{Cycle: cycle})
}

type cycleParams struct {
	Cycle uint64 `json:"cycle"`
}

type cycleAmountsResult struct {
	Cycle        uint64 `json:"cycle"`
	XAllocations string `json:"xAllocations"`
	Vote2Earn    string `json:"vote2Earn"`
	Treasury     string `json:"treasury"`
	StartBlock   uint64 `json:"startBlock"`
}

func (s *Server) handleEmissionsCycleAmounts(w http.ResponseWriter, req *RPCRequest) {
	var params cycleParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	amounts, err := s.node.CycleAmounts(params.Cycle)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, cycleAmountsResult{
		Cycle:        params.Cycle,
		XAllocations: bigString(amounts.XAllocations),
		Vote2Earn:    bigString(amounts.Vote2Earn),
		Treasury:     bigString(amounts.Treasury),
		StartBlock:   amounts.StartBlock,
	})
}

type totalResult struct {
	Total string `json:"total"`
}

func (s *Server) handleEmissionsTotal(w http.ResponseWriter, req *RPCRequest) {
	total, err := s.node.TotalEmissions()
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, totalResult{Total: bigString(total)})
}
