package rpc

import (
	"net/http"

	"vebetterdao/native/auth"
)

type attestParams struct {
	Caller  string `json:"caller"`
	Subject string `json:"subject"`
}

func (s *Server) handleIdentityAttest(w http.ResponseWriter, req *RPCRequest) {
	var params attestParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := addressParam("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	subject, err := addressParam("subject", params.Subject)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.Attest(caller, subject); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

type revokeParams struct {
	Caller  string `json:"caller"`
	Subject string `json:"subject"`
	Reason  string `json:"reason"`
}

func (s *Server) handleIdentityRevoke(w http.ResponseWriter, req *RPCRequest) {
	var params revokeParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := addressParam("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	subject, err := addressParam("subject", params.Subject)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.RevokeAttestation(caller, subject, params.Reason); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

type isPersonParams struct {
	Subject string `json:"subject"`
}

type isPersonResult struct {
	Subject string `json:"subject"`
	Person  bool   `json:"person"`
	Reason  string `json:"reason,omitempty"`
}

func (s *Server) handleIdentityIsPerson(w http.ResponseWriter, req *RPCRequest) {
	var params isPersonParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	subject, err := addressParam("subject", params.Subject)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	person, reason, err := s.node.IsPerson(subject)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, isPersonResult{Subject: subject.Hex(), Person: person, Reason: reason})
}

type selectTokenParams struct {
	Owner   string `json:"owner"`
	TokenID uint64 `json:"tokenId"`
}

func (s *Server) handleGalaxySelectToken(w http.ResponseWriter, req *RPCRequest) {
	var params selectTokenParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	owner, err := addressParam("owner", params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.SelectGalaxyToken(owner, params.TokenID); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

type tokenLevelParams struct {
	Caller  string `json:"caller"`
	TokenID uint64 `json:"tokenId"`
	Level   uint64 `json:"level"`
}

func (s *Server) handleGalaxySetLevel(w http.ResponseWriter, req *RPCRequest) {
	var params tokenLevelParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := addressParam("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.SetGalaxyTokenLevel(caller, params.TokenID, params.Level); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

type attachNodeParams struct {
	Caller  string `json:"caller"`
	TokenID uint64 `json:"tokenId"`
	NodeID  uint64 `json:"nodeId"`
}

func (s *Server) handleGalaxyAttachNode(w http.ResponseWriter, req *RPCRequest) {
	var params attachNodeParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := addressParam("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.AttachGalaxyNode(caller, params.TokenID, params.NodeID); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

type permissionParams struct {
	Caller     string `json:"caller"`
	Permission string `json:"permission"`
	Address    string `json:"address"`
}

func (s *Server) handleAuthGrant(w http.ResponseWriter, req *RPCRequest) {
	var params permissionParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := addressParam("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	addr, err := addressParam("address", params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	permission := auth.Permission(params.Permission)
	if !permission.Valid() {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "unknown permission "+params.Permission, nil)
		return
	}
	if err := s.node.GrantPermission(caller, permission, addr); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleAuthRevoke(w http.ResponseWriter, req *RPCRequest) {
	var params permissionParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := addressParam("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	addr, err := addressParam("address", params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	permission := auth.Permission(params.Permission)
	if !permission.Valid() {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "unknown permission "+params.Permission, nil)
		return
	}
	if err := s.node.RevokePermission(caller, permission, addr); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

type hasPermissionParams struct {
	Permission string `json:"permission"`
	Address    string `json:"address"`
}

func (s *Server) handleAuthHas(w http.ResponseWriter, req *RPCRequest) {
	var params hasPermissionParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	addr, err := addressParam("address", params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	granted, err := s.node.HasPermission(auth.Permission(params.Permission), addr)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, granted)
}
