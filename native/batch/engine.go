// Package batch implements the bulk transfer utility: one allowance, up to a
// hundred transfers, and an administrative sweep for tokens parked on the
// utility address.
package batch

import (
	"errors"
	"math/big"
)

// MaxRecipients bounds a single batch.
const MaxRecipients = 100

var (
	// ErrNotOwner is returned when Drain is attempted by a non-admin.
	ErrNotOwner = errors.New("batch: caller is not the owner")
	// ErrTooManyRecipients rejects batches above MaxRecipients.
	ErrTooManyRecipients = errors.New("batch: maximum 100 recipients")
	// ErrLengthMismatch rejects recipient/amount lists of different lengths.
	ErrLengthMismatch = errors.New("batch: invalid input parameters")
	// ErrEmptyBatch rejects a batch with no recipients.
	ErrEmptyBatch = errors.New("batch: no recipients")
)

var errNilToken = errors.New("batch engine: token ledger not configured")

// Token is the slice of the token ledger the utility needs.
type Token interface {
	BalanceOf(addr [20]byte) (*big.Int, error)
	Transfer(from, to [20]byte, amount *big.Int) error
	TransferFrom(spender, owner, to [20]byte, amount *big.Int) error
}

// Engine executes batched transfers funded by the caller's allowance.
type Engine struct {
	admin [20]byte
	self  [20]byte
	token Token
}

// NewEngine creates a batch transfer utility bound to its administrator and
// its own ledger address.
func NewEngine(admin, self [20]byte) *Engine {
	return &Engine{admin: admin, self: self}
}

// Admin returns the administrator address.
func (e *Engine) Admin() [20]byte { return e.admin }

// Address returns the utility's own ledger address.
func (e *Engine) Address() [20]byte { return e.self }

// SetToken configures the token ledger.
func (e *Engine) SetToken(token Token) { e.token = token }

// BatchTransfer moves amounts[i] from the caller to recipients[i] for every
// entry, consuming the caller's allowance. Any failing pull aborts the whole
// batch.
func (e *Engine) BatchTransfer(caller [20]byte, recipients [][20]byte, amounts []*big.Int) error {
	if e == nil || e.token == nil {
		return errNilToken
	}
	if len(recipients) == 0 {
		return ErrEmptyBatch
	}
	if len(recipients) > MaxRecipients {
		return ErrTooManyRecipients
	}
	if len(recipients) != len(amounts) {
		return ErrLengthMismatch
	}
	for i := range recipients {
		if err := e.token.TransferFrom(e.self, caller, recipients[i], amounts[i]); err != nil {
			return err
		}
	}
	return nil
}

// Drain sweeps any balance parked on the utility address back to the
// administrator. Admin only.
func (e *Engine) Drain(caller [20]byte) error {
	if e == nil || e.token == nil {
		return errNilToken
	}
	if caller != e.admin {
		return ErrNotOwner
	}
	balance, err := e.token.BalanceOf(e.self)
	if err != nil {
		return err
	}
	if balance.Sign() == 0 {
		return nil
	}
	return e.token.Transfer(e.self, e.admin, balance)
}
