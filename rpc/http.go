package rpc

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"vebetterdao/core"
	"vebetterdao/core/journal"
	"vebetterdao/native/auth"
	"vebetterdao/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
	writeRatePerSec = 5
	writeRateBurst  = 10
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codeRateLimited    = -32020
)

// Server exposes the node over JSON-RPC plus a websocket event stream.
type Server struct {
	node    *core.Node
	metrics *observability.Metrics
	journal *journal.Journal

	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	authToken string
}

// NewServer wires a server around the node. An empty authToken disables every
// mutating method.
func NewServer(node *core.Node, authToken string) *Server {
	return &Server{
		node:      node,
		metrics:   observability.Protocol(),
		limiters:  make(map[string]*rate.Limiter),
		authToken: strings.TrimSpace(authToken),
	}
}

// SetJournal enables the chain_events history method.
func (s *Server) SetJournal(j *journal.Journal) { s.journal = j }

// Handler returns the HTTP mux serving "/" for JSON-RPC and "/ws/events" for
// the event stream.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	mux.HandleFunc("/ws/events", s.handleEventsWS)
	return mux
}

// Start serves until the listener fails.
func (s *Server) Start(addr string) error {
	slog.Info("starting JSON-RPC server", "addr", addr)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeNodeError maps engine failures onto JSON-RPC error codes.
func writeNodeError(w http.ResponseWriter, id interface{}, err error) {
	code := codeServerError
	status := http.StatusOK
	if errors.Is(err, auth.ErrUnauthorized) {
		code = codeUnauthorized
		status = http.StatusForbidden
	}
	writeError(w, status, id, code, err.Error(), nil)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	handler, mutating := s.route(req.Method)
	if handler == nil {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method not found", req.Method)
		s.metrics.RecordRPC(req.Method, "not_found", time.Since(started))
		return
	}
	if mutating {
		if authErr := s.requireAuth(r); authErr != nil {
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			s.metrics.RecordRPC(req.Method, "unauthorized", time.Since(started))
			return
		}
		if !s.allowSource(clientSource(r)) {
			writeError(w, http.StatusTooManyRequests, req.ID, codeRateLimited, "rate limit exceeded", nil)
			s.metrics.RecordRPC(req.Method, "rate_limited", time.Since(started))
			return
		}
	}
	handler(w, req)
	s.metrics.RecordRPC(req.Method, "ok", time.Since(started))
}

type handlerFunc func(http.ResponseWriter, *RPCRequest)

// route maps a method name onto its handler and whether it mutates state.
func (s *Server) route(method string) (handlerFunc, bool) {
	switch method {
	case "chain_height":
		return s.handleChainHeight, false
	case "chain_advanceBlock":
		return s.handleAdvanceBlock, true
	case "chain_events":
		return s.handleChainEvents, false
	case "emissions_bootstrap":
		return s.handleEmissionsBootstrap, true
	case "emissions_start":
		return s.handleEmissionsStart, true
	case "emissions_distribute":
		return s.handleEmissionsDistribute, true
	case "emissions_currentCycle":
		return s.handleEmissionsCurrentCycle, false
	case "emissions_cycleAmounts":
		return s.handleEmissionsCycleAmounts, false
	case "emissions_total":
		return s.handleEmissionsTotal, false
	case "allocation_startRound":
		return s.handleAllocationStartRound, true
	case "allocation_currentRound":
		return s.handleAllocationCurrentRound, false
	case "allocation_getRound":
		return s.handleAllocationGetRound, false
	case "allocation_roundState":
		return s.handleAllocationRoundState, false
	case "allocation_castVotes":
		return s.handleAllocationCastVotes, true
	case "allocation_appVotes":
		return s.handleAllocationAppVotes, false
	case "allocation_roundTotals":
		return s.handleAllocationRoundTotals, false
	case "allocation_hasVoted":
		return s.handleAllocationHasVoted, false
	case "allocation_updateQuorum":
		return s.handleAllocationUpdateQuorum, true
	case "gov_propose":
		return s.handleGovPropose, true
	case "gov_deposit":
		return s.handleGovDeposit, true
	case "gov_withdrawDeposit":
		return s.handleGovWithdrawDeposit, true
	case "gov_castVote":
		return s.handleGovCastVote, true
	case "gov_state":
		return s.handleGovState, false
	case "gov_getProposal":
		return s.handleGovGetProposal, false
	case "gov_votes":
		return s.handleGovVotes, false
	case "gov_queue":
		return s.handleGovQueue, true
	case "gov_execute":
		return s.handleGovExecute, true
	case "gov_cancel":
		return s.handleGovCancel, true
	case "gov_toggleQuadraticVoting":
		return s.handleGovToggleQuadraticVoting, true
	case "gov_updateQuorum":
		return s.handleGovUpdateQuorum, true
	case "pool_earnings":
		return s.handlePoolEarnings, false
	case "pool_claim":
		return s.handlePoolClaim, true
	case "pool_claimed":
		return s.handlePoolClaimed, false
	case "rewards_amount":
		return s.handleRewardsAmount, false
	case "rewards_claim":
		return s.handleRewardsClaim, true
	case "rewards_toggleQuadratic":
		return s.handleRewardsToggleQuadratic, true
	case "apps_register":
		return s.handleAppsRegister, true
	case "apps_setEligibility":
		return s.handleAppsSetEligibility, true
	case "apps_setTeamWallet":
		return s.handleAppsSetTeamWallet, true
	case "apps_setTeamPercentage":
		return s.handleAppsSetTeamPercentage, true
	case "apps_get":
		return s.handleAppsGet, false
	case "apps_eligible":
		return s.handleAppsEligible, false
	case "identity_attest":
		return s.handleIdentityAttest, true
	case "identity_revoke":
		return s.handleIdentityRevoke, true
	case "identity_isPerson":
		return s.handleIdentityIsPerson, false
	case "galaxy_selectToken":
		return s.handleGalaxySelectToken, true
	case "galaxy_setLevel":
		return s.handleGalaxySetLevel, true
	case "galaxy_attachNode":
		return s.handleGalaxyAttachNode, true
	case "auth_grant":
		return s.handleAuthGrant, true
	case "auth_revoke":
		return s.handleAuthRevoke, true
	case "auth_has":
		return s.handleAuthHas, false
	case "token_transfer":
		return s.handleTokenTransfer, true
	case "token_balanceOf":
		return s.handleTokenBalanceOf, false
	case "token_totalSupply":
		return s.handleTokenTotalSupply, false
	case "token_votingPower":
		return s.handleTokenVotingPower, false
	}
	return nil, false
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return &RPCError{Code: codeUnauthorized, Message: "RPC authentication token not configured"}
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing Authorization header"}
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return &RPCError{Code: codeUnauthorized, Message: "Authorization header must use Bearer scheme"}
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing bearer token"}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "invalid RPC credentials"}
	}
	return nil
}

func clientSource(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) allowSource(source string) bool {
	if source == "" {
		source = "unknown"
	}
	s.mu.Lock()
	limiter, ok := s.limiters[source]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(writeRatePerSec), writeRateBurst)
		s.limiters[source] = limiter
	}
	s.mu.Unlock()
	return limiter.Allow()
}
