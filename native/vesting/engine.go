// Package vesting implements a graded vesting schedule: a fixed grant
// unlocked in cumulative percentage steps at fixed timestamps, collected by
// the grant beneficiary from a pre-funded pool address.
package vesting

import (
	"errors"
	"math/big"
	"time"
)

var (
	// ErrNotBeneficiary is returned when someone else tries to collect.
	ErrNotBeneficiary = errors.New("vesting: caller is not the beneficiary")
	// ErrPoolEmpty is returned when the vesting pool holds no tokens.
	ErrPoolEmpty = errors.New("vesting: this contract does not have any token")
	// ErrNothingToCollect is returned when no new step has unlocked.
	ErrNothingToCollect = errors.New("vesting: nothing to collect")
	// ErrInvalidSchedule rejects a malformed schedule at construction.
	ErrInvalidSchedule = errors.New("vesting: invalid schedule")
)

var (
	errNilToken = errors.New("vesting engine: token ledger not configured")
	errNilState = errors.New("vesting engine: state not configured")
)

// Step is one unlock point. Percentage is cumulative: the share of the total
// grant unlocked once Timestamp has passed.
type Step struct {
	Timestamp  int64  `json:"timestamp"`
	Percentage uint32 `json:"percentage"`
}

// Token is the slice of the token ledger the schedule needs.
type Token interface {
	BalanceOf(addr [20]byte) (*big.Int, error)
	Transfer(from, to [20]byte, amount *big.Int) error
}

type engineState interface {
	CollectedGet() (*big.Int, error)
	CollectedPut(amount *big.Int) error
}

// Engine releases a fixed grant along the configured schedule. Multiple
// elapsed steps collapse into a single collection.
type Engine struct {
	beneficiary [20]byte
	self        [20]byte
	total       *big.Int
	steps       []Step
	token       Token
	state       engineState
	nowFn       func() int64
}

// NewEngine validates the schedule and builds the vesting engine. Timestamps
// must be strictly ascending, percentages strictly increasing, and the final
// percentage must be exactly 100.
func NewEngine(beneficiary, self [20]byte, total *big.Int, steps []Step) (*Engine, error) {
	if total == nil || total.Sign() <= 0 {
		return nil, ErrInvalidSchedule
	}
	if len(steps) == 0 || steps[len(steps)-1].Percentage != 100 {
		return nil, ErrInvalidSchedule
	}
	for i := range steps {
		if steps[i].Percentage == 0 || steps[i].Percentage > 100 {
			return nil, ErrInvalidSchedule
		}
		if i > 0 && (steps[i].Timestamp <= steps[i-1].Timestamp || steps[i].Percentage <= steps[i-1].Percentage) {
			return nil, ErrInvalidSchedule
		}
	}
	out := make([]Step, len(steps))
	copy(out, steps)
	return &Engine{
		beneficiary: beneficiary,
		self:        self,
		total:       new(big.Int).Set(total),
		steps:       out,
		nowFn:       func() int64 { return time.Now().Unix() },
	}, nil
}

// Address returns the pool address the grant is funded on.
func (e *Engine) Address() [20]byte { return e.self }

// Beneficiary returns the grant recipient.
func (e *Engine) Beneficiary() [20]byte { return e.beneficiary }

// Schedules returns a copy of the unlock schedule.
func (e *Engine) Schedules() []Step {
	out := make([]Step, len(e.steps))
	copy(out, e.steps)
	return out
}

// SetToken configures the token ledger.
func (e *Engine) SetToken(token Token) { e.token = token }

// SetState configures the state backend tracking collected amounts.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetNowFunc overrides the time source. Primarily intended for tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// Collectible returns the amount the beneficiary could collect right now.
func (e *Engine) Collectible() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	collected, err := e.state.CollectedGet()
	if err != nil {
		return nil, err
	}
	unlocked := e.unlockedPercentage(e.nowFn())
	entitled := new(big.Int).Mul(e.total, big.NewInt(int64(unlocked)))
	entitled.Div(entitled, big.NewInt(100))
	releasable := new(big.Int).Sub(entitled, collected)
	if releasable.Sign() < 0 {
		releasable.SetInt64(0)
	}
	return releasable, nil
}

// Collect releases every unlocked, not-yet-collected portion of the grant to
// the beneficiary. Beneficiary only.
func (e *Engine) Collect(caller [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.token == nil {
		return nil, errNilToken
	}
	if caller != e.beneficiary {
		return nil, ErrNotBeneficiary
	}
	balance, err := e.token.BalanceOf(e.self)
	if err != nil {
		return nil, err
	}
	if balance.Sign() == 0 {
		return nil, ErrPoolEmpty
	}
	releasable, err := e.Collectible()
	if err != nil {
		return nil, err
	}
	if releasable.Sign() == 0 {
		return nil, ErrNothingToCollect
	}
	if releasable.Cmp(balance) > 0 {
		releasable = balance
	}
	collected, err := e.state.CollectedGet()
	if err != nil {
		return nil, err
	}
	if err := e.state.CollectedPut(new(big.Int).Add(collected, releasable)); err != nil {
		return nil, err
	}
	if err := e.token.Transfer(e.self, e.beneficiary, releasable); err != nil {
		return nil, err
	}
	return releasable, nil
}

func (e *Engine) unlockedPercentage(now int64) uint32 {
	var pct uint32
	for _, step := range e.steps {
		if step.Timestamp > now {
			break
		}
		pct = step.Percentage
	}
	return pct
}
