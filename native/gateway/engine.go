package gateway

import (
	"errors"
	"math/big"
	"strings"
	"time"

	"paycore/core/events"
	"paycore/core/types"
)

var (
	errNilState       = errors.New("gateway engine: state not configured")
	errNilToken       = errors.New("gateway engine: token ledger not configured")
	errNilDistributor = errors.New("gateway engine: fees distributor not configured")
)

// Token is the slice of the token ledger the gateway needs: permit
// verification, the authorized pull, merchant payout and the fee allowance
// handed to the distribution engine.
type Token interface {
	Permit(owner, spender [20]byte, value *big.Int, deadline int64, sig []byte, now int64) error
	Transfer(from, to [20]byte, amount *big.Int) error
	TransferFrom(spender, owner, to [20]byte, amount *big.Int) error
	Approve(owner, spender [20]byte, amount *big.Int) error
}

// FeesDistributor is the fee-receiving target. Fees are forwarded under the
// fixed ServiceName; Address is the ledger account the distributor pulls
// from.
type FeesDistributor interface {
	Address() [20]byte
	Distribute(caller [20]byte, service string, amount *big.Int) error
}

type engineState interface {
	MerchantPut(*Merchant) error
	MerchantGet(id string) (*Merchant, bool, error)
	TransactionPut(*Transaction) error
	TransactionGet(merchantID, txID string) (*Transaction, bool, error)
}

type gatewayEvent struct {
	evt *types.Event
}

func (e gatewayEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e gatewayEvent) Event() *types.Event { return e.evt }

// Engine owns the merchant registry and the idempotent transaction ledger,
// and drives the permit-authorized payment pipeline: pull gross from the
// payer, pay the merchant net, forward the fee to the distribution engine.
type Engine struct {
	admin       [20]byte
	self        [20]byte
	state       engineState
	token       Token
	distributor FeesDistributor
	emitter     events.Emitter
	nowFn       func() int64
}

// NewEngine creates a gateway engine bound to its administrator and its own
// ledger address (the account payments pass through).
func NewEngine(admin, self [20]byte) *Engine {
	return &Engine{
		admin:   admin,
		self:    self,
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// Admin returns the administrator address.
func (e *Engine) Admin() [20]byte { return e.admin }

// Address returns the gateway's own ledger address.
func (e *Engine) Address() [20]byte { return e.self }

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetToken configures the token ledger used by the payment pipeline.
func (e *Engine) SetToken(token Token) { e.token = token }

// FeesDistributorTarget returns the currently configured distributor.
func (e *Engine) FeesDistributorTarget() FeesDistributor { return e.distributor }

// SetFeesDistributor installs the initial distribution target at wiring
// time. Runtime changes go through ChangeFeesDistributor.
func (e *Engine) SetFeesDistributor(d FeesDistributor) { e.distributor = d }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for transaction dates and permit
// deadlines. Primarily intended for tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(gatewayEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

// ChangeFeesDistributor swaps the fee-receiving target. Admin only; the new
// target must be a different, non-zero address.
func (e *Engine) ChangeFeesDistributor(caller [20]byte, d FeesDistributor) error {
	if caller != e.admin {
		return ErrNotOwner
	}
	if d == nil || d.Address() == ([20]byte{}) {
		return ErrInvalidDistributor
	}
	var oldAddr [20]byte
	if e.distributor != nil {
		oldAddr = e.distributor.Address()
	}
	if oldAddr == d.Address() {
		return ErrSameDistributor
	}
	e.distributor = d
	e.emit(NewFeesDistributorChangedEvent(oldAddr, d.Address()))
	return nil
}

// AddMerchant registers a new merchant, enabled by default. Admin only.
func (e *Engine) AddMerchant(caller [20]byte, id string, beneficiary [20]byte, feesPercentage uint32) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if caller != e.admin {
		return ErrNotOwner
	}
	if strings.TrimSpace(id) == "" {
		return ErrMerchantIDEmpty
	}
	_, exists, err := e.state.MerchantGet(id)
	if err != nil {
		return err
	}
	if exists {
		return ErrMerchantExists
	}
	if beneficiary == ([20]byte{}) {
		return ErrInvalidBeneficiary
	}
	if feesPercentage > MaxFeesPercentage {
		return ErrInvalidFeesPercentage
	}
	merchant := &Merchant{
		ID:             id,
		Beneficiary:    beneficiary,
		FeesPercentage: feesPercentage,
		Enabled:        true,
	}
	if err := e.state.MerchantPut(merchant); err != nil {
		return err
	}
	e.emit(NewMerchantAddedEvent(merchant))
	return nil
}

// Merchant returns the registered merchant record.
func (e *Engine) Merchant(id string) (*Merchant, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	merchant, ok, err := e.state.MerchantGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMerchantNotFound
	}
	return merchant, nil
}

// ChangeMerchantStatus toggles a merchant. Admin only; writing the current
// value is rejected to keep change events meaningful.
func (e *Engine) ChangeMerchantStatus(caller [20]byte, id string, enabled bool) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if caller != e.admin {
		return ErrNotOwner
	}
	merchant, err := e.Merchant(id)
	if err != nil {
		return err
	}
	if merchant.Enabled == enabled {
		return ErrSameStatus
	}
	merchant.Enabled = enabled
	if err := e.state.MerchantPut(merchant); err != nil {
		return err
	}
	e.emit(NewMerchantStatusChangedEvent(id, enabled))
	return nil
}

// ChangeMerchantBeneficiary updates the payout address. Authorized to the
// administrator or the merchant's current beneficiary, evaluated fresh
// against current state.
func (e *Engine) ChangeMerchantBeneficiary(caller [20]byte, id string, beneficiary [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	merchant, err := e.Merchant(id)
	if err != nil {
		return err
	}
	if caller != e.admin && caller != merchant.Beneficiary {
		return ErrNotBeneficiaryNorOwner
	}
	if beneficiary == ([20]byte{}) {
		return ErrInvalidBeneficiary
	}
	if merchant.Beneficiary == beneficiary {
		return ErrSameBeneficiary
	}
	oldAddr := merchant.Beneficiary
	merchant.Beneficiary = beneficiary
	if err := e.state.MerchantPut(merchant); err != nil {
		return err
	}
	e.emit(NewMerchantBeneficiaryChangedEvent(id, oldAddr, beneficiary))
	return nil
}

// ChangeMerchantFeesPercentage updates the merchant fee. Admin only.
func (e *Engine) ChangeMerchantFeesPercentage(caller [20]byte, id string, feesPercentage uint32) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if caller != e.admin {
		return ErrNotOwner
	}
	merchant, err := e.Merchant(id)
	if err != nil {
		return err
	}
	if feesPercentage > MaxFeesPercentage {
		return ErrInvalidFeesPercentage
	}
	if merchant.FeesPercentage == feesPercentage {
		return ErrSameFeesPercentage
	}
	oldFees := merchant.FeesPercentage
	merchant.FeesPercentage = feesPercentage
	if err := e.state.MerchantPut(merchant); err != nil {
		return err
	}
	e.emit(NewMerchantFeesChangedEvent(id, oldFees, feesPercentage))
	return nil
}

// Pay executes one permit-authorized payment. The gross amount is pulled
// from the payer, the merchant receives gross minus fee, and the fee is
// forwarded into the distribution engine under the Gateway service. The
// (merchant, transaction) pair is recorded exactly once; replays fail.
func (e *Engine) Pay(merchantID, transactionID string, amount *big.Int, payer [20]byte, deadline int64, sig []byte) (*Transaction, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.token == nil {
		return nil, errNilToken
	}
	merchant, err := e.Merchant(merchantID)
	if err != nil {
		return nil, err
	}
	if !merchant.Enabled {
		return nil, ErrMerchantDisabled
	}
	if strings.TrimSpace(transactionID) == "" {
		return nil, ErrTransactionIDEmpty
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	_, exists, err := e.state.TransactionGet(merchantID, transactionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyPaid
	}

	now := e.now()
	gross := new(big.Int).Set(amount)

	// Permit verification doubles as the payer's authorization: it consumes
	// the signed nonce and grants the gateway the exact pull allowance.
	if err := e.token.Permit(payer, e.self, gross, deadline, sig, now); err != nil {
		return nil, err
	}
	if err := e.token.TransferFrom(e.self, payer, e.self, gross); err != nil {
		return nil, err
	}

	// fee = amount * bps / 10000, truncating; fee <= amount by the
	// percentage bound, so the merchant net never underflows.
	fee := new(big.Int).Mul(gross, big.NewInt(int64(merchant.FeesPercentage)))
	fee.Div(fee, big.NewInt(MaxFeesPercentage))
	net := new(big.Int).Sub(gross, fee)

	if net.Sign() > 0 {
		if err := e.token.Transfer(e.self, merchant.Beneficiary, net); err != nil {
			return nil, err
		}
	}
	if fee.Sign() > 0 {
		if e.distributor == nil {
			return nil, errNilDistributor
		}
		if err := e.token.Approve(e.self, e.distributor.Address(), fee); err != nil {
			return nil, err
		}
		if err := e.distributor.Distribute(e.self, ServiceName, fee); err != nil {
			return nil, err
		}
	}

	tx := &Transaction{
		MerchantID: merchantID,
		ID:         transactionID,
		Date:       now,
		Amount:     gross,
		Fees:       fee,
		Payer:      payer,
	}
	if err := e.state.TransactionPut(tx); err != nil {
		return nil, err
	}
	e.emit(NewPaymentMadeEvent(tx))
	return tx, nil
}

// GetTransaction returns the recorded transaction for the pair, or the empty
// sentinel when the pair has not been paid. Unknown merchants are an error.
func (e *Engine) GetTransaction(merchantID, transactionID string) (*Transaction, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if _, err := e.Merchant(merchantID); err != nil {
		return nil, err
	}
	tx, ok, err := e.state.TransactionGet(merchantID, transactionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return EmptyTransaction(), nil
	}
	return tx, nil
}
