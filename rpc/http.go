package rpc

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"paycore/core/events"
	"paycore/native/distributor"
	"paycore/native/gateway"
	"paycore/token"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
)

// Server exposes the ledger and both engines over JSON-RPC 2.0.
type Server struct {
	log                *slog.Logger
	ledger             *token.Ledger
	gatewayEngine      *gateway.Engine
	distributorEngine  *distributor.Engine
	recorder           *events.Recorder
	auth               *Authenticator
	distributorFactory func(addr [20]byte) gateway.FeesDistributor

	handlers map[string]func(http.ResponseWriter, *http.Request, *RPCRequest)
}

// NewServer wires the RPC surface. The recorder may be nil; payment queries
// then return empty results.
func NewServer(log *slog.Logger, ledger *token.Ledger, gw *gateway.Engine, dist *distributor.Engine, recorder *events.Recorder, auth *Authenticator) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		log:               log,
		ledger:            ledger,
		gatewayEngine:     gw,
		distributorEngine: dist,
		recorder:          recorder,
		auth:              auth,
	}
	s.handlers = map[string]func(http.ResponseWriter, *http.Request, *RPCRequest){
		"token_balanceOf":                      s.handleTokenBalanceOf,
		"token_totalSupply":                    s.handleTokenTotalSupply,
		"token_nonce":                          s.handleTokenNonce,
		"token_allowance":                      s.handleTokenAllowance,
		"gateway_addMerchant":                  s.handleAddMerchant,
		"gateway_changeMerchantStatus":         s.handleChangeMerchantStatus,
		"gateway_changeMerchantBeneficiary":    s.handleChangeMerchantBeneficiary,
		"gateway_changeMerchantFeesPercentage": s.handleChangeMerchantFeesPercentage,
		"gateway_changeFeesDistributor":        s.handleChangeFeesDistributor,
		"gateway_pay":                          s.handlePay,
		"gateway_getTransaction":               s.handleGetTransaction,
		"gateway_listPayments":                 s.handleListPayments,
		"distributor_addService":               s.handleAddService,
		"distributor_updateBeneficiary":        s.handleUpdateBeneficiary,
		"distributor_setCharityBeneficiary":    s.handleSetCharityBeneficiary,
		"distributor_charityBeneficiary":       s.handleCharityBeneficiary,
		"distributor_getService":               s.handleGetService,
		"distributor_distribute":               s.handleDistribute,
	}
	return s
}

// SetDistributorFactory installs the builder used when the administrator
// swaps the fee-receiving target at runtime.
func (s *Server) SetDistributorFactory(factory func(addr [20]byte) gateway.FeesDistributor) {
	s.distributorFactory = factory
}

// Router assembles the HTTP surface: the RPC endpoint, health and metrics.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Post("/", s.handle)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start serves the router until the listener fails.
func (s *Server) Start(addr string) error {
	s.log.Info("starting JSON-RPC server", slog.String("addr", addr))
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
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

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req RPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "failed to parse request", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", nil)
		return
	}
	handler, ok := s.handlers[req.Method]
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method not found", req.Method)
		return
	}

	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	handler(rec, r, &req)
	outcome := "ok"
	if rec.status >= http.StatusBadRequest {
		outcome = "error"
	}
	observeRequest(req.Method, outcome, time.Since(start).Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// caller resolves the authenticated ledger account for guarded methods.
func (s *Server) caller(w http.ResponseWriter, r *http.Request, req *RPCRequest) ([20]byte, bool) {
	if s.auth == nil || !s.auth.Enabled() {
		writeError(w, http.StatusUnauthorized, req.ID, codeUnauthorized, "authentication not configured", nil)
		return [20]byte{}, false
	}
	addr, err := s.auth.Caller(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, req.ID, codeUnauthorized, "unauthorized", err.Error())
		return [20]byte{}, false
	}
	return addr, true
}

func decodeParams(req *RPCRequest, v interface{}) error {
	if len(req.Params) == 0 {
		return json.Unmarshal([]byte("{}"), v)
	}
	return json.Unmarshal(req.Params[0], v)
}
