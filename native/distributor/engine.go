package distributor

import (
	"errors"
	"math/big"
	"strings"

	"paycore/core/events"
	"paycore/core/types"
)

var (
	errNilState = errors.New("distributor engine: state not configured")
	errNilToken = errors.New("distributor engine: token ledger not configured")
)

// Token is the slice of the token ledger the engine needs: pulling the
// distributed amount from the funding source and paying beneficiaries out,
// either plainly or through a guarded notify call.
type Token interface {
	Transfer(from, to [20]byte, amount *big.Int) error
	TransferFrom(spender, owner, to [20]byte, amount *big.Int) error
	TransferAndNotify(from, to [20]byte, amount *big.Int, notify func() error) error
}

// FeeReceiver reacts to a contract-call payout. Implementations run inside a
// guarded boundary: an error or panic cancels only that beneficiary's cut.
type FeeReceiver interface {
	OnFeesReceived(service, beneficiary string, amount *big.Int) error
}

// engineState is the persistence surface for the service registry and the
// process-wide charity beneficiary.
type engineState interface {
	ServicePut(*Service) error
	ServiceGet(name string) (*Service, bool, error)
	CharityGet() ([20]byte, bool, error)
	CharityPut(addr [20]byte) error
}

type distributorEvent struct {
	evt *types.Event
}

func (e distributorEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e distributorEvent) Event() *types.Event { return e.evt }

// Engine owns the named services, their percentage-bounded beneficiary
// tables and the charity remainder recipient. Every operation executes as a
// single step under the hosting environment's total order; the only
// sub-step allowed to fail without aborting is the contract-call payout in
// Distribute.
type Engine struct {
	admin      [20]byte
	self       [20]byte
	state      engineState
	token      Token
	emitter    events.Emitter
	receivers  map[[20]byte]FeeReceiver
	authorized map[[20]byte]bool
}

// NewEngine creates a distribution engine bound to its administrator and its
// own ledger address (the account distributed funds pass through).
func NewEngine(admin, self [20]byte) *Engine {
	return &Engine{
		admin:      admin,
		self:       self,
		emitter:    events.NoopEmitter{},
		receivers:  make(map[[20]byte]FeeReceiver),
		authorized: make(map[[20]byte]bool),
	}
}

// Admin returns the administrator address.
func (e *Engine) Admin() [20]byte { return e.admin }

// Address returns the engine's own ledger address.
func (e *Engine) Address() [20]byte { return e.self }

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetToken configures the token ledger used for payouts.
func (e *Engine) SetToken(token Token) { e.token = token }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// RegisterFeeReceiver wires the in-process hook invoked for contract-call
// beneficiaries at the given address. Hooks are process wiring, not state.
func (e *Engine) RegisterFeeReceiver(addr [20]byte, receiver FeeReceiver) {
	if receiver == nil {
		delete(e.receivers, addr)
		return
	}
	e.receivers[addr] = receiver
}

// AuthorizeSource allows an additional funding source (such as the payment
// gateway) to call Distribute. Admin only.
func (e *Engine) AuthorizeSource(caller, source [20]byte) error {
	if caller != e.admin {
		return ErrNotOwner
	}
	e.authorized[source] = true
	return nil
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(distributorEvent{evt: event})
}

// Bootstrap installs the initial charity beneficiary. It only writes when no
// charity is configured yet, so restarts cannot clobber a handover.
func (e *Engine) Bootstrap(charity [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if charity == ([20]byte{}) {
		return ErrInvalidCharity
	}
	_, ok, err := e.state.CharityGet()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return e.state.CharityPut(charity)
}

// CharityBeneficiary returns the current charity remainder recipient.
func (e *Engine) CharityBeneficiary() ([20]byte, error) {
	if e == nil || e.state == nil {
		return [20]byte{}, errNilState
	}
	charity, ok, err := e.state.CharityGet()
	if err != nil {
		return [20]byte{}, err
	}
	if !ok {
		return [20]byte{}, ErrCharityNotSet
	}
	return charity, nil
}

// SetCharityBeneficiary changes the charity recipient. Authorized to the
// administrator or the current charity beneficiary (self-service handover);
// the predicate is evaluated fresh against current state.
func (e *Engine) SetCharityBeneficiary(caller, addr [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if addr == ([20]byte{}) {
		return ErrInvalidCharity
	}
	current, err := e.CharityBeneficiary()
	if err != nil {
		return err
	}
	if caller != e.admin && caller != current {
		return ErrNotCharityNorOwner
	}
	if addr == current {
		return ErrSameCharity
	}
	if err := e.state.CharityPut(addr); err != nil {
		return err
	}
	e.emit(NewCharityChangedEvent(current, addr))
	return nil
}

// AddService registers a new, empty service. Admin only; names are unique
// and non-empty.
func (e *Engine) AddService(caller [20]byte, name string) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if caller != e.admin {
		return ErrNotOwner
	}
	if strings.TrimSpace(name) == "" {
		return ErrServiceNameEmpty
	}
	_, exists, err := e.state.ServiceGet(name)
	if err != nil {
		return err
	}
	if exists {
		return ErrServiceExists
	}
	svc := &Service{Name: name, Beneficiaries: make([]Beneficiary, 0)}
	if err := e.state.ServicePut(svc); err != nil {
		return err
	}
	e.emit(NewServiceAddedEvent(name))
	return nil
}

// Service returns a copy of the named service table.
func (e *Engine) Service(name string) (*Service, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	svc, ok, err := e.state.ServiceGet(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrServiceNotFound
	}
	return svc, nil
}

// UpdateBeneficiary creates or re-parameterizes a beneficiary of a service.
// The new service total, computed against the other members' current
// percentages, must stay within MaxPercentage; a violating update leaves the
// table untouched.
func (e *Engine) UpdateBeneficiary(caller [20]byte, service, name string, percentage uint32, addr [20]byte, isContractCall bool) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if caller != e.admin {
		return ErrNotOwner
	}
	if strings.TrimSpace(name) == "" {
		return ErrBeneficiaryNameEmpty
	}
	if percentage > MaxPercentage {
		return ErrPercentageTooHigh
	}
	if addr == ([20]byte{}) {
		return ErrInvalidBeneficiary
	}
	svc, ok, err := e.state.ServiceGet(service)
	if err != nil {
		return err
	}
	if !ok {
		return ErrServiceNotFound
	}

	var previous uint32
	idx := svc.beneficiaryIndex(name)
	if idx >= 0 {
		previous = svc.Beneficiaries[idx].Percentage
	}
	newTotal := svc.TotalPercentage - previous + percentage
	if newTotal > MaxPercentage {
		return ErrPercentageExceedsRemaining
	}

	entry := Beneficiary{Name: name, Percentage: percentage, Address: addr, IsContractCall: isContractCall}
	if idx >= 0 {
		svc.Beneficiaries[idx] = entry
	} else {
		svc.Beneficiaries = append(svc.Beneficiaries, entry)
	}
	svc.TotalPercentage = newTotal
	if err := e.state.ServicePut(svc); err != nil {
		return err
	}
	e.emit(NewBeneficiariesUpdatedEvent(service, entry))
	return nil
}

// Distribute pulls amount from the caller and splits it across the service's
// beneficiaries in registration order; the unallocated remainder goes to the
// charity beneficiary. A failing contract-call payout is converted into a
// beneficiary_call_failed event and its cut stays in the remainder - it never
// aborts the distribution.
func (e *Engine) Distribute(caller [20]byte, service string, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.token == nil {
		return errNilToken
	}
	if caller != e.admin && !e.authorized[caller] {
		return ErrNotOwner
	}
	svc, ok, err := e.state.ServiceGet(service)
	if err != nil {
		return err
	}
	if !ok {
		return ErrServiceNotFound
	}
	charity, err := e.CharityBeneficiary()
	if err != nil {
		return err
	}
	amt := new(big.Int)
	if amount != nil {
		amt.Set(amount)
	}
	if amt.Sign() <= 0 {
		return nil
	}

	// Pull the full amount from the funding source first; an insufficient
	// balance or allowance aborts the whole operation.
	if err := e.token.TransferFrom(e.self, caller, e.self, amt); err != nil {
		return err
	}

	distributed := new(big.Int)
	for _, b := range svc.Beneficiaries {
		if b.Percentage == 0 {
			continue
		}
		cut := new(big.Int).Mul(amt, big.NewInt(int64(b.Percentage)))
		cut.Div(cut, big.NewInt(MaxPercentage))
		if cut.Sign() == 0 {
			continue
		}
		if b.IsContractCall {
			if err := e.payWithNotify(service, b, cut); err != nil {
				e.emit(NewBeneficiaryCallFailedEvent(b.Name, b.Address, cut))
				continue
			}
		} else {
			if err := e.token.Transfer(e.self, b.Address, cut); err != nil {
				return err
			}
		}
		distributed.Add(distributed, cut)
	}

	remainder := new(big.Int).Sub(amt, distributed)
	if remainder.Sign() > 0 {
		if err := e.token.Transfer(e.self, charity, remainder); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) payWithNotify(service string, b Beneficiary, cut *big.Int) error {
	receiver := e.receivers[b.Address]
	var notify func() error
	if receiver != nil {
		notify = func() error {
			return receiver.OnFeesReceived(service, b.Name, new(big.Int).Set(cut))
		}
	}
	return e.token.TransferAndNotify(e.self, b.Address, cut, notify)
}
