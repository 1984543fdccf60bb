package rpc

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"vebetterdao/core"
	"vebetterdao/core/events"
	"vebetterdao/core/journal"
	"vebetterdao/native/allocation"
	"vebetterdao/native/emissions"
	"vebetterdao/native/governance"
	"vebetterdao/storage"
)

const testToken = "test-rpc-token"

var (
	rpcOwner = common.BytesToAddress([]byte("owner"))
	rpcVoter = common.BytesToAddress([]byte("voter"))
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db := storage.NewMemoryStateDB()
	t.Cleanup(db.Close)
	node, err := core.NewNode(db, nil, core.Config{
		Owner:    rpcOwner,
		TokenCap: big.NewInt(1_000_000),
		InitialBalances: map[common.Address]*big.Int{
			rpcVoter: big.NewInt(10_000),
		},
		Emissions: emissions.Params{
			InitialXAllocation:     big.NewInt(1000),
			XAllocationDecayPeriod: 1,
			Vote2EarnDecayPeriod:   1,
			CycleDuration:          10,
			MigrationAmount:        big.NewInt(0),
		},
		Allocation: allocation.Params{
			VotingPeriod:    5,
			VotingThreshold: big.NewInt(1),
			AppSharesCap:    100,
		},
		Governance: governance.Params{
			VotingThreshold: big.NewInt(1),
			TimelockDelay:   2,
		},
	})
	require.NoError(t, err)
	return NewServer(node, testToken)
}

type rawResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

func rpcCall(t *testing.T, s *Server, token, method string, params interface{}) (*rawResponse, int) {
	t.Helper()
	req := map[string]interface{}{
		"jsonrpc": jsonRPCVersion,
		"method":  method,
		"id":      1,
	}
	if params != nil {
		req["params"] = []interface{}{params}
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)

	httpReq := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	s.Handler().ServeHTTP(recorder, httpReq)

	resp := &rawResponse{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), resp))
	return resp, recorder.Code
}

func TestHandleRejectsUnknownMethod(t *testing.T) {
	s := newTestServer(t)
	resp, status := rpcCall(t, s, "", "dao_unknown", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestHandleRejectsEmptyBody(t *testing.T) {
	s := newTestServer(t)
	httpReq := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(nil))
	recorder := httptest.NewRecorder()
	s.Handler().ServeHTTP(recorder, httpReq)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestMutatingMethodsRequireBearerToken(t *testing.T) {
	s := newTestServer(t)

	resp, status := rpcCall(t, s, "", "emissions_bootstrap", map[string]string{"caller": rpcOwner.Hex()})
	require.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeUnauthorized, resp.Error.Code)

	resp, status = rpcCall(t, s, "wrong-token", "emissions_bootstrap", map[string]string{"caller": rpcOwner.Hex()})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, codeUnauthorized, resp.Error.Code)
}

func TestQueryMethodsNeedNoAuth(t *testing.T) {
	s := newTestServer(t)

	resp, status := rpcCall(t, s, "", "token_balanceOf", map[string]string{"address": rpcVoter.Hex()})
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, resp.Error)

	var result balanceResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Equal(t, "10000", result.Balance)
}

func TestInvalidAddressParamRejected(t *testing.T) {
	s := newTestServer(t)
	resp, _ := rpcCall(t, s, "", "token_balanceOf", map[string]string{"address": "not-an-address"})
	require.NotNil(t, resp.Error)
	require.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestEmissionLifecycleOverRPC(t *testing.T) {
	s := newTestServer(t)

	resp, _ := rpcCall(t, s, testToken, "apps_register", map[string]interface{}{
		"caller":      rpcOwner.Hex(),
		"name":        "cleanify",
		"admin":       rpcOwner.Hex(),
		"teamWallet":  rpcOwner.Hex(),
		"metadataUri": "ipfs://cleanify",
	})
	require.Nil(t, resp.Error)
	var registered appIDResult
	require.NoError(t, json.Unmarshal(resp.Result, &registered))

	resp, _ = rpcCall(t, s, testToken, "chain_advanceBlock", nil)
	require.Nil(t, resp.Error)

	resp, _ = rpcCall(t, s, testToken, "emissions_bootstrap", map[string]string{"caller": rpcOwner.Hex()})
	require.Nil(t, resp.Error)
	resp, _ = rpcCall(t, s, testToken, "emissions_start", map[string]string{"caller": rpcOwner.Hex()})
	require.Nil(t, resp.Error)

	resp, _ = rpcCall(t, s, "", "allocation_currentRound", nil)
	require.Nil(t, resp.Error)
	var round roundResult
	require.NoError(t, json.Unmarshal(resp.Result, &round))
	require.Equal(t, uint64(1), round.RoundID)

	resp, _ = rpcCall(t, s, testToken, "chain_advanceBlock", nil)
	require.Nil(t, resp.Error)
	resp, _ = rpcCall(t, s, testToken, "allocation_castVotes", map[string]interface{}{
		"roundId": 1,
		"voter":   rpcVoter.Hex(),
		"apps":    []string{registered.AppID},
		"weights": []string{"100"},
	})
	require.Nil(t, resp.Error)

	resp, _ = rpcCall(t, s, "", "allocation_appVotes", map[string]interface{}{
		"roundId": 1,
		"appId":   registered.AppID,
	})
	require.Nil(t, resp.Error)
	var votes appVotesResult
	require.NoError(t, json.Unmarshal(resp.Result, &votes))
	require.Equal(t, "100", votes.Votes)
	require.Equal(t, "10", votes.VotesQF)

	resp, _ = rpcCall(t, s, "", "emissions_cycleAmounts", map[string]interface{}{"cycle": 1})
	require.Nil(t, resp.Error)
	var amounts cycleAmountsResult
	require.NoError(t, json.Unmarshal(resp.Result, &amounts))
	require.Equal(t, "1000", amounts.XAllocations)
}

func TestChainEventsServedFromJournal(t *testing.T) {
	s := newTestServer(t)

	resp, _ := rpcCall(t, s, "", "chain_events", nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeServerError, resp.Error.Code)

	j, err := journal.Open(storage.NewMemDB())
	require.NoError(t, err)
	require.NoError(t, j.Append(events.RoundCreated{Round: 1, VoteStart: 5, VoteEnd: 10}))
	s.SetJournal(j)

	resp, _ = rpcCall(t, s, "", "chain_events", nil)
	require.Nil(t, resp.Error)
	var result chainEventsResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Equal(t, uint64(1), result.Total)
	require.Len(t, result.Entries, 1)
	require.Equal(t, "allocation.round_created", result.Entries[0].Type)
}

func TestUnauthorizedNodeCallSurfacesErrorCode(t *testing.T) {
	s := newTestServer(t)

	// The voter holds no emissions.admin permission.
	resp, status := rpcCall(t, s, testToken, "emissions_bootstrap", map[string]string{"caller": rpcVoter.Hex()})
	require.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeUnauthorized, resp.Error.Code)
}
