// Package staking implements a fixed-term staking campaign: stakes lock for
// a configured period and earn a flat percentage paid from a pre-funded
// reward pool on the campaign address.
package staking

import (
	"errors"
	"math/big"
	"time"
)

var (
	// ErrNotOwner is returned when SetOpen is attempted by a non-admin.
	ErrNotOwner = errors.New("staking: caller is not the owner")
	// ErrClosed rejects stakes while the campaign is closed.
	ErrClosed = errors.New("staking: campaign is currently closed")
	// ErrZeroStake rejects empty stakes.
	ErrZeroStake = errors.New("staking: you need to stake more than 0")
	// ErrRewardPoolExhausted is returned when the pool cannot cover the
	// rewards a new stake would earn.
	ErrRewardPoolExhausted = errors.New("staking: reward pool cannot cover this stake")
	// ErrNothingToCollect is returned when no stake has matured.
	ErrNothingToCollect = errors.New("staking: nothing to collect")
)

var (
	errNilToken = errors.New("staking engine: token ledger not configured")
	errNilState = errors.New("staking engine: state not configured")
)

// Stake is one locked deposit. Rewards are fixed at stake time and released
// together with the principal once ReleaseTime passes.
type Stake struct {
	Amount      *big.Int `json:"amount"`
	Rewards     *big.Int `json:"rewards"`
	ReleaseTime int64    `json:"releaseTime"`
}

// Token is the slice of the token ledger the campaign needs.
type Token interface {
	BalanceOf(addr [20]byte) (*big.Int, error)
	Transfer(from, to [20]byte, amount *big.Int) error
	TransferFrom(spender, owner, to [20]byte, amount *big.Int) error
}

type engineState interface {
	OpenGet() (bool, bool, error)
	OpenPut(open bool) error
	StakesGet(addr [20]byte) ([]Stake, error)
	StakesPut(addr [20]byte, stakes []Stake) error
	LockedGet() (*big.Int, error)
	LockedPut(amount *big.Int) error
}

// Engine runs one campaign with a flat rewards percentage and a fixed lockup.
type Engine struct {
	admin             [20]byte
	self              [20]byte
	rewardsPercentage uint32
	lockupSeconds     int64
	token             Token
	state             engineState
	nowFn             func() int64
}

// NewEngine creates a campaign engine. Campaigns start open.
func NewEngine(admin, self [20]byte, rewardsPercentage uint32, lockupSeconds int64) *Engine {
	return &Engine{
		admin:             admin,
		self:              self,
		rewardsPercentage: rewardsPercentage,
		lockupSeconds:     lockupSeconds,
		nowFn:             func() int64 { return time.Now().Unix() },
	}
}

// Admin returns the administrator address.
func (e *Engine) Admin() [20]byte { return e.admin }

// Address returns the campaign pool address.
func (e *Engine) Address() [20]byte { return e.self }

// RewardsPercentage returns the flat reward rate in whole percent.
func (e *Engine) RewardsPercentage() uint32 { return e.rewardsPercentage }

// LockupSeconds returns the stake lock duration.
func (e *Engine) LockupSeconds() int64 { return e.lockupSeconds }

// SetToken configures the token ledger.
func (e *Engine) SetToken(token Token) { e.token = token }

// SetState configures the state backend.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetNowFunc overrides the time source. Primarily intended for tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// Open reports whether the campaign accepts new stakes. Campaigns that have
// never been toggled are open.
func (e *Engine) Open() (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	open, set, err := e.state.OpenGet()
	if err != nil {
		return false, err
	}
	if !set {
		return true, nil
	}
	return open, nil
}

// SetOpen toggles the campaign. Admin only.
func (e *Engine) SetOpen(caller [20]byte, open bool) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if caller != e.admin {
		return ErrNotOwner
	}
	return e.state.OpenPut(open)
}

// Stake pulls amount from the caller, locks it for the lockup period and
// reserves the matching rewards from the campaign pool.
func (e *Engine) Stake(caller [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.token == nil {
		return errNilToken
	}
	open, err := e.Open()
	if err != nil {
		return err
	}
	if !open {
		return ErrClosed
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroStake
	}

	rewards := new(big.Int).Mul(amount, big.NewInt(int64(e.rewardsPercentage)))
	rewards.Div(rewards, big.NewInt(100))

	// The pool must be able to cover rewards for every outstanding stake
	// plus this one before the principal arrives.
	balance, err := e.token.BalanceOf(e.self)
	if err != nil {
		return err
	}
	locked, err := e.state.LockedGet()
	if err != nil {
		return err
	}
	available := new(big.Int).Sub(balance, locked)
	if available.Cmp(rewards) < 0 {
		return ErrRewardPoolExhausted
	}

	if err := e.token.TransferFrom(e.self, caller, e.self, amount); err != nil {
		return err
	}

	stakes, err := e.state.StakesGet(caller)
	if err != nil {
		return err
	}
	stakes = append(stakes, Stake{
		Amount:      new(big.Int).Set(amount),
		Rewards:     rewards,
		ReleaseTime: e.nowFn() + e.lockupSeconds,
	})
	if err := e.state.StakesPut(caller, stakes); err != nil {
		return err
	}
	total := new(big.Int).Add(locked, amount)
	total.Add(total, rewards)
	return e.state.LockedPut(total)
}

// HasStake reports whether the address has outstanding stakes and the total
// principal currently locked for it.
func (e *Engine) HasStake(addr [20]byte) (bool, *big.Int, error) {
	if e == nil || e.state == nil {
		return false, nil, errNilState
	}
	stakes, err := e.state.StakesGet(addr)
	if err != nil {
		return false, nil, err
	}
	total := new(big.Int)
	for _, s := range stakes {
		total.Add(total, s.Amount)
	}
	return len(stakes) > 0, total, nil
}

// Collect pays out every matured stake (principal plus rewards) and keeps
// the rest locked.
func (e *Engine) Collect(caller [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.token == nil {
		return nil, errNilToken
	}
	stakes, err := e.state.StakesGet(caller)
	if err != nil {
		return nil, err
	}
	now := e.nowFn()
	payout := new(big.Int)
	remaining := make([]Stake, 0, len(stakes))
	for _, s := range stakes {
		if s.ReleaseTime <= now {
			payout.Add(payout, s.Amount)
			payout.Add(payout, s.Rewards)
			continue
		}
		remaining = append(remaining, s)
	}
	if payout.Sign() == 0 {
		return nil, ErrNothingToCollect
	}
	if err := e.state.StakesPut(caller, remaining); err != nil {
		return nil, err
	}
	locked, err := e.state.LockedGet()
	if err != nil {
		return nil, err
	}
	if err := e.state.LockedPut(new(big.Int).Sub(locked, payout)); err != nil {
		return nil, err
	}
	if err := e.token.Transfer(e.self, caller, payout); err != nil {
		return nil, err
	}
	return payout, nil
}
