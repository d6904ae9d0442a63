package rpc

import (
	"encoding/hex"
	"math/big"
	"net/http"

	"paycore/native/gateway"
)

type merchantParams struct {
	MerchantID     string `json:"merchantId"`
	Beneficiary    string `json:"beneficiary"`
	FeesPercentage uint32 `json:"feesPercentage"`
	Enabled        bool   `json:"enabled"`
}

type payParams struct {
	MerchantID    string   `json:"merchantId"`
	TransactionID string   `json:"transactionId"`
	Amount        *big.Int `json:"amount"`
	Payer         string   `json:"payer"`
	Deadline      int64    `json:"deadline"`
	Signature     string   `json:"signature"`
}

type transactionParams struct {
	MerchantID    string `json:"merchantId"`
	TransactionID string `json:"transactionId"`
}

type transactionResult struct {
	MerchantID    string   `json:"merchantId"`
	TransactionID string   `json:"transactionId"`
	Date          int64    `json:"date"`
	Amount        *big.Int `json:"amount"`
	Fees          *big.Int `json:"fees"`
	Payer         string   `json:"payer"`
	Paid          bool     `json:"paid"`
}

func newTransactionResult(tx *gateway.Transaction) transactionResult {
	result := transactionResult{
		MerchantID:    tx.MerchantID,
		TransactionID: tx.ID,
		Date:          tx.Date,
		Amount:        tx.Amount,
		Fees:          tx.Fees,
		Paid:          !tx.IsEmpty(),
	}
	if tx.Payer != ([20]byte{}) {
		result.Payer = renderAddress(tx.Payer)
	}
	return result
}

func (s *Server) handleAddMerchant(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	caller, ok := s.caller(w, r, req)
	if !ok {
		return
	}
	var params merchantParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	beneficiary, err := parseAddress(params.Beneficiary)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid beneficiary", err.Error())
		return
	}
	if err := s.gatewayEngine.AddMerchant(caller, params.MerchantID, beneficiary, params.FeesPercentage); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleChangeMerchantStatus(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	caller, ok := s.caller(w, r, req)
	if !ok {
		return
	}
	var params merchantParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	if err := s.gatewayEngine.ChangeMerchantStatus(caller, params.MerchantID, params.Enabled); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleChangeMerchantBeneficiary(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	caller, ok := s.caller(w, r, req)
	if !ok {
		return
	}
	var params merchantParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	beneficiary, err := parseAddress(params.Beneficiary)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid beneficiary", err.Error())
		return
	}
	if err := s.gatewayEngine.ChangeMerchantBeneficiary(caller, params.MerchantID, beneficiary); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleChangeMerchantFeesPercentage(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	caller, ok := s.caller(w, r, req)
	if !ok {
		return
	}
	var params merchantParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	if err := s.gatewayEngine.ChangeMerchantFeesPercentage(caller, params.MerchantID, params.FeesPercentage); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleChangeFeesDistributor(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
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
	if s.distributorFactory == nil {
		writeError(w, http.StatusServiceUnavailable, req.ID, codeServerError, "distributor factory not configured", nil)
		return
	}
	if err := s.gatewayEngine.ChangeFeesDistributor(caller, s.distributorFactory(addr)); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handlePay(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params payParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	payer, err := parseAddress(params.Payer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid payer", err.Error())
		return
	}
	sig, err := hex.DecodeString(params.Signature)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid signature encoding", err.Error())
		return
	}
	tx, err := s.gatewayEngine.Pay(params.MerchantID, params.TransactionID, params.Amount, payer, params.Deadline, sig)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, newTransactionResult(tx))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params transactionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	tx, err := s.gatewayEngine.GetTransaction(params.MerchantID, params.TransactionID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, newTransactionResult(tx))
}

type paymentEventResult struct {
	MerchantID    string `json:"merchantId"`
	TransactionID string `json:"transactionId"`
	Date          string `json:"date"`
	Amount        string `json:"amount"`
	Fees          string `json:"fees"`
	Payer         string `json:"payer"`
}

// handleListPayments filters recorded payment events by merchant id alone.
func (s *Server) handleListPayments(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params transactionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	results := make([]paymentEventResult, 0)
	if s.recorder != nil {
		for _, recorded := range s.recorder.Snapshot() {
			attrs := eventAttributes(recorded)
			if attrs == nil || recorded.EventType() != gateway.EventTypePaymentMade {
				continue
			}
			if params.MerchantID != "" && attrs["merchantId"] != params.MerchantID {
				continue
			}
			results = append(results, paymentEventResult{
				MerchantID:    attrs["merchantId"],
				TransactionID: attrs["transactionId"],
				Date:          attrs["date"],
				Amount:        attrs["amount"],
				Fees:          attrs["fees"],
				Payer:         attrs["payer"],
			})
		}
	}
	writeResult(w, req.ID, results)
}
