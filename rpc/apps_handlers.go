package rpc

import "net/http"

type registerAppParams struct {
	Caller      string `json:"caller"`
	Name        string `json:"name"`
	Admin       string `json:"admin"`
	TeamWallet  string `json:"teamWallet"`
	MetadataURI string `json:"metadataUri"`
}

type appIDResult struct {
	AppID string `json:"appId"`
}

func (s *Server) handleAppsRegister(w http.ResponseWriter, req *RPCRequest) {
	var params registerAppParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := addressParam("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	admin, err := addressParam("admin", params.Admin)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	teamWallet, err := addressParam("teamWallet", params.TeamWallet)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := s.node.RegisterApp(caller, params.Name, admin, teamWallet, params.MetadataURI)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, appIDResult{AppID: id.Hex()})
}

type appEligibilityParams struct {
	Caller   string `json:"caller"`
	AppID    string `json:"appId"`
	Eligible bool   `json:"eligible"`
}

func (s *Server) handleAppsSetEligibility(w http.ResponseWriter, req *RPCRequest) {
	var params appEligibilityParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := addressParam("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := hashParam("appId", params.AppID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.SetAppEligibility(caller, id, params.Eligible); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

type appTeamWalletParams struct {
	Caller string `json:"caller"`
	AppID  string `json:"appId"`
	Wallet string `json:"wallet"`
}

func (s *Server) handleAppsSetTeamWallet(w http.ResponseWriter, req *RPCRequest) {
	var params appTeamWalletParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := addressParam("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := hashParam("appId", params.AppID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	wallet, err := addressParam("wallet", params.Wallet)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.SetAppTeamWallet(caller, id, wallet); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

type appTeamPercentageParams struct {
	Caller     string `json:"caller"`
	AppID      string `json:"appId"`
	Percentage uint64 `json:"percentage"`
}

func (s *Server) handleAppsSetTeamPercentage(w http.ResponseWriter, req *RPCRequest) {
	var params appTeamPercentageParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := addressParam("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := hashParam("appId", params.AppID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.SetAppTeamPercentage(caller, id, params.Percentage); err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

type appParams struct {
	AppID string `json:"appId"`
}

type appResult struct {
	AppID                    string `json:"appId"`
	Name                     string `json:"name"`
	Admin                    string `json:"admin"`
	TeamWallet               string `json:"teamWallet"`
	TeamAllocationPercentage uint64 `json:"teamAllocationPercentage"`
	MetadataURI              string `json:"metadataUri"`
	CreatedAtBlock           uint64 `json:"createdAtBlock"`
}

func (s *Server) handleAppsGet(w http.ResponseWriter, req *RPCRequest) {
	var params appParams
	if err := parseParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := hashParam("appId", params.AppID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	app, err := s.node.GetApp(id)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, appResult{
		AppID:                    app.ID.Hex(),
		Name:                     app.Name,
		Admin:                    app.Admin.Hex(),
		TeamWallet:               app.TeamWallet.Hex(),
		TeamAllocationPercentage: app.TeamAllocationPercentage,
		MetadataURI:              app.MetadataURI,
		CreatedAtBlock:           app.CreatedAtBlock,
	})
}

type eligibleAppsParams struct {
	Timepoint uint64 `json:"timepoint"`
}

type eligibleAppsResult struct {
	Timepoint uint64   `json:"timepoint"`
	Apps      []string `json:"apps"`
}

func (s *Server) handleAppsEligible(w http.ResponseWriter, req *RPCRequest) {
	params := eligibleAppsParams{Timepoint: s.node.Height()}
	if err := parseOptionalParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	ids, err := s.node.EligibleApps(params.Timepoint)
	if err != nil {
		writeNodeError(w, req.ID, err)
		return
	}
	apps := make([]string, 0, len(ids))
	for _, id := range ids {
		apps = append(apps, id.Hex())
	}
	writeResult(w, req.ID, eligibleAppsResult{Timepoint: params.Timepoint, Apps: apps})
}
