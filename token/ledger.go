package token

import (
	"errors"
	"fmt"
	"math/big"

	"paycore/core/events"
	"paycore/core/types"
)

// DefaultName is the ledger name mixed into permit digests.
const DefaultName = "JMZ"

// GenesisSupply is the fixed amount minted to the administrator at genesis:
// eight billion whole units at 18 decimals.
var GenesisSupply = new(big.Int).Mul(big.NewInt(8_000_000_000), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

var (
	errNilState = errors.New("token ledger: state not configured")
)

// State is the persistence surface the ledger requires. Balances, allowances
// and permit nonces live behind it so the ledger itself stays deterministic.
type State interface {
	BalanceGet(addr [20]byte) (*big.Int, error)
	BalancePut(addr [20]byte, amount *big.Int) error
	AllowanceGet(owner, spender [20]byte) (*big.Int, error)
	AllowancePut(owner, spender [20]byte, amount *big.Int) error
	NonceGet(addr [20]byte) (uint64, error)
	NoncePut(addr [20]byte, nonce uint64) error
	SupplyGet() (*big.Int, error)
	SupplyPut(amount *big.Int) error
}

type ledgerEvent struct {
	evt *types.Event
}

func (e ledgerEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e ledgerEvent) Event() *types.Event { return e.evt }

// Ledger implements the fungible token: owner-authorized transfers, delegated
// transfers gated by allowances, and signature-based one-shot allowance
// grants (permits).
type Ledger struct {
	name    string
	chainID int64
	state   State
	emitter events.Emitter
}

// NewLedger creates a ledger with a no-op emitter. Callers can override the
// emitter via SetEmitter.
func NewLedger(name string, chainID int64) *Ledger {
	if name == "" {
		name = DefaultName
	}
	return &Ledger{
		name:    name,
		chainID: chainID,
		emitter: events.NoopEmitter{},
	}
}

// Name returns the ledger name used in permit digests.
func (l *Ledger) Name() string { return l.name }

// ChainID returns the chain identifier mixed into permit digests.
func (l *Ledger) ChainID() int64 { return l.chainID }

// SetState configures the state backend used by the ledger.
func (l *Ledger) SetState(state State) { l.state = state }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

func (l *Ledger) emit(event *types.Event) {
	if l == nil || l.emitter == nil || event == nil {
		return
	}
	l.emitter.Emit(ledgerEvent{evt: event})
}

// Mint credits freshly created supply to the given account. It is invoked
// once at genesis by the daemon; there is no burn counterpart.
func (l *Ledger) Mint(to [20]byte, amount *big.Int) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	if to == ([20]byte{}) {
		return ErrZeroAddress
	}
	amt, err := normalizeAmount(amount)
	if err != nil {
		return err
	}
	supply, err := l.state.SupplyGet()
	if err != nil {
		return err
	}
	if err := l.state.SupplyPut(new(big.Int).Add(supply, amt)); err != nil {
		return err
	}
	if err := l.credit(to, amt); err != nil {
		return err
	}
	l.emit(NewTransferEvent([20]byte{}, to, amt))
	return nil
}

// BalanceOf returns the current balance of the account.
func (l *Ledger) BalanceOf(addr [20]byte) (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	return l.state.BalanceGet(addr)
}

// TotalSupply returns the amount of tokens in existence.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	return l.state.SupplyGet()
}

// Allowance returns the remaining amount the spender may pull from the owner.
func (l *Ledger) Allowance(owner, spender [20]byte) (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	return l.state.AllowanceGet(owner, spender)
}

// Nonce returns the next permit nonce expected for the account.
func (l *Ledger) Nonce(addr [20]byte) (uint64, error) {
	if l == nil || l.state == nil {
		return 0, errNilState
	}
	return l.state.NonceGet(addr)
}

// Transfer moves amount from the caller's balance to the recipient.
func (l *Ledger) Transfer(from, to [20]byte, amount *big.Int) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	if to == ([20]byte{}) {
		return ErrZeroAddress
	}
	amt, err := normalizeAmount(amount)
	if err != nil {
		return err
	}
	if err := l.move(from, to, amt); err != nil {
		return err
	}
	l.emit(NewTransferEvent(from, to, amt))
	return nil
}

// TransferFrom moves amount from the owner to the recipient on behalf of the
// spender, consuming the spender's allowance.
func (l *Ledger) TransferFrom(spender, owner, to [20]byte, amount *big.Int) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	if to == ([20]byte{}) {
		return ErrZeroAddress
	}
	amt, err := normalizeAmount(amount)
	if err != nil {
		return err
	}
	allowance, err := l.state.AllowanceGet(owner, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amt) < 0 {
		return ErrInsufficientAllowance
	}
	if err := l.move(owner, to, amt); err != nil {
		return err
	}
	if err := l.state.AllowancePut(owner, spender, new(big.Int).Sub(allowance, amt)); err != nil {
		return err
	}
	l.emit(NewTransferEvent(owner, to, amt))
	return nil
}

// Approve sets the allowance the spender may pull from the owner.
func (l *Ledger) Approve(owner, spender [20]byte, amount *big.Int) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	if spender == ([20]byte{}) {
		return ErrZeroAddress
	}
	amt, err := normalizeAmount(amount)
	if err != nil {
		return err
	}
	if err := l.state.AllowancePut(owner, spender, amt); err != nil {
		return err
	}
	l.emit(NewApprovalEvent(owner, spender, amt, false))
	return nil
}

// TransferAndNotify moves amount to the recipient and then invokes the
// supplied hook. A hook error or panic rolls the transfer back and is
// returned to the caller, so a misbehaving recipient never keeps the funds.
func (l *Ledger) TransferAndNotify(from, to [20]byte, amount *big.Int, notify func() error) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	if to == ([20]byte{}) {
		return ErrZeroAddress
	}
	amt, err := normalizeAmount(amount)
	if err != nil {
		return err
	}
	if err := l.move(from, to, amt); err != nil {
		return err
	}
	if err := runGuarded(notify); err != nil {
		if rbErr := l.move(to, from, amt); rbErr != nil {
			return fmt.Errorf("rollback failed after notify error %v: %w", err, rbErr)
		}
		return err
	}
	l.emit(NewTransferEvent(from, to, amt))
	return nil
}

func runGuarded(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recipient hook panicked: %v", r)
		}
	}()
	if fn == nil {
		return errors.New("recipient hook not registered")
	}
	return fn()
}

func (l *Ledger) move(from, to [20]byte, amount *big.Int) error {
	balance, err := l.state.BalanceGet(from)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := l.state.BalancePut(from, new(big.Int).Sub(balance, amount)); err != nil {
		return err
	}
	return l.credit(to, amount)
}

func (l *Ledger) credit(to [20]byte, amount *big.Int) error {
	balance, err := l.state.BalanceGet(to)
	if err != nil {
		return err
	}
	return l.state.BalancePut(to, new(big.Int).Add(balance, amount))
}

func normalizeAmount(amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	return new(big.Int).Set(amount), nil
}
