package rpc

import (
	"math/big"
	"net/http"

	"paycore/native/distributor"
)

type serviceParams struct {
	Service string `json:"service"`
}

type beneficiaryParams struct {
	Service        string `json:"service"`
	Name           string `json:"name"`
	Percentage     uint32 `json:"percentage"`
	Address        string `json:"address"`
	IsContractCall bool   `json:"isContractCall"`
}

type distributeParams struct {
	Service string   `json:"service"`
	Amount  *big.Int `json:"amount"`
}

type beneficiaryResult struct {
	Name           string `json:"name"`
	Percentage     uint32 `json:"percentage"`
	Address        string `json:"address"`
	IsContractCall bool   `json:"isContractCall"`
}

type serviceResult struct {
	Name            string              `json:"name"`
	TotalPercentage uint32              `json:"totalPercentage"`
	Beneficiaries   []beneficiaryResult `json:"beneficiaries"`
}

func (s *Server) handleAddService(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	caller, ok := s.caller(w, r, req)
	if !ok {
		return
	}
	var params serviceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	if err := s.distributorEngine.AddService(caller, params.Service); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleUpdateBeneficiary(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	caller, ok := s.caller(w, r, req)
	if !ok {
		return
	}
	var params beneficiaryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	if err := s.distributorEngine.UpdateBeneficiary(caller, params.Service, params.Name, params.Percentage, addr, params.IsContractCall); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleSetCharityBeneficiary(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	caller, ok := s.caller(w, r, req)
	if !ok {
		return
	}
	var params addressParam
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	if err := s.distributorEngine.SetCharityBeneficiary(caller, addr); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleCharityBeneficiary(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	charity, err := s.distributorEngine.CharityBeneficiary()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, renderAddress(charity))
}

func (s *Server) handleGetService(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params serviceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	svc, err := s.distributorEngine.Service(params.Service)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, newServiceResult(svc))
}

func (s *Server) handleDistribute(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	caller, ok := s.caller(w, r, req)
	if !ok {
		return
	}
	var params distributeParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	if err := s.distributorEngine.Distribute(caller, params.Service, params.Amount); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func newServiceResult(svc *distributor.Service) serviceResult {
	result := serviceResult{
		Name:            svc.Name,
		TotalPercentage: svc.TotalPercentage,
		Beneficiaries:   make([]beneficiaryResult, 0, len(svc.Beneficiaries)),
	}
	for _, b := range svc.Beneficiaries {
		result.Beneficiaries = append(result.Beneficiaries, beneficiaryResult{
			Name:           b.Name,
			Percentage:     b.Percentage,
			Address:        renderAddress(b.Address),
			IsContractCall: b.IsContractCall,
		})
	}
	return result
}
