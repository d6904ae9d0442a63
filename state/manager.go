// Package state persists ledger and engine records as prefixed JSON entries
// in a key-value store. One Manager serves every engine; each engine only
// sees the narrow interface it declares.
package state

import (
	"encoding/json"
	"errors"
	"math/big"

	"paycore/native/distributor"
	"paycore/native/gateway"
	"paycore/native/staking"
	"paycore/storage"
)

// Manager is the single state backend for the token ledger and all native
// engines.
type Manager struct {
	db storage.Database
}

// NewManager wraps a key-value store.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func (m *Manager) putJSON(key []byte, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.db.Put(key, raw)
}

func (m *Manager) getJSON(key []byte, v interface{}) (bool, error) {
	raw, err := m.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, v)
}

func (m *Manager) getBigInt(key []byte) (*big.Int, error) {
	value := new(big.Int)
	ok, err := m.getJSON(key, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return value, nil
}

// --- token.State ---

func (m *Manager) BalanceGet(addr [20]byte) (*big.Int, error) {
	return m.getBigInt(balanceKey(addr))
}

func (m *Manager) BalancePut(addr [20]byte, amount *big.Int) error {
	return m.putJSON(balanceKey(addr), amount)
}

func (m *Manager) AllowanceGet(owner, spender [20]byte) (*big.Int, error) {
	return m.getBigInt(allowanceKey(owner, spender))
}

func (m *Manager) AllowancePut(owner, spender [20]byte, amount *big.Int) error {
	return m.putJSON(allowanceKey(owner, spender), amount)
}

func (m *Manager) NonceGet(addr [20]byte) (uint64, error) {
	var nonce uint64
	if _, err := m.getJSON(nonceKey(addr), &nonce); err != nil {
		return 0, err
	}
	return nonce, nil
}

func (m *Manager) NoncePut(addr [20]byte, nonce uint64) error {
	return m.putJSON(nonceKey(addr), nonce)
}

func (m *Manager) SupplyGet() (*big.Int, error) {
	return m.getBigInt(supplyKey())
}

func (m *Manager) SupplyPut(amount *big.Int) error {
	return m.putJSON(supplyKey(), amount)
}

// --- distributor state ---

func (m *Manager) ServicePut(svc *distributor.Service) error {
	return m.putJSON(serviceKey(svc.Name), svc)
}

func (m *Manager) ServiceGet(name string) (*distributor.Service, bool, error) {
	svc := new(distributor.Service)
	ok, err := m.getJSON(serviceKey(name), svc)
	if err != nil || !ok {
		return nil, false, err
	}
	return svc, true, nil
}

func (m *Manager) CharityGet() ([20]byte, bool, error) {
	var raw []byte
	ok, err := m.getJSON(charityKey(), &raw)
	if err != nil || !ok {
		return [20]byte{}, false, err
	}
	var addr [20]byte
	copy(addr[:], raw)
	return addr, true, nil
}

func (m *Manager) CharityPut(addr [20]byte) error {
	return m.putJSON(charityKey(), addr[:])
}

// --- gateway state ---

func (m *Manager) MerchantPut(merchant *gateway.Merchant) error {
	return m.putJSON(merchantKey(merchant.ID), merchant)
}

func (m *Manager) MerchantGet(id string) (*gateway.Merchant, bool, error) {
	merchant := new(gateway.Merchant)
	ok, err := m.getJSON(merchantKey(id), merchant)
	if err != nil || !ok {
		return nil, false, err
	}
	return merchant, true, nil
}

func (m *Manager) TransactionPut(tx *gateway.Transaction) error {
	return m.putJSON(transactionKey(tx.MerchantID, tx.ID), tx)
}

func (m *Manager) TransactionGet(merchantID, txID string) (*gateway.Transaction, bool, error) {
	tx := new(gateway.Transaction)
	ok, err := m.getJSON(transactionKey(merchantID, txID), tx)
	if err != nil || !ok {
		return nil, false, err
	}
	return tx, true, nil
}

// --- vesting state (per pool address) ---

// VestingState scopes collected-amount tracking to one vesting pool.
type VestingState struct {
	m    *Manager
	pool [20]byte
}

// VestingState returns the state slice for the given vesting pool.
func (m *Manager) VestingState(pool [20]byte) *VestingState {
	return &VestingState{m: m, pool: pool}
}

func (s *VestingState) CollectedGet() (*big.Int, error) {
	return s.m.getBigInt(vestingCollectedKey(s.pool))
}

func (s *VestingState) CollectedPut(amount *big.Int) error {
	return s.m.putJSON(vestingCollectedKey(s.pool), amount)
}

// --- staking state (per campaign address) ---

// StakingState scopes campaign bookkeeping to one pool address.
type StakingState struct {
	m    *Manager
	pool [20]byte
}

// StakingState returns the state slice for the given campaign pool.
func (m *Manager) StakingState(pool [20]byte) *StakingState {
	return &StakingState{m: m, pool: pool}
}

func (s *StakingState) OpenGet() (bool, bool, error) {
	var open bool
	ok, err := s.m.getJSON(stakingOpenKey(s.pool), &open)
	if err != nil {
		return false, false, err
	}
	return open, ok, nil
}

func (s *StakingState) OpenPut(open bool) error {
	return s.m.putJSON(stakingOpenKey(s.pool), open)
}

func (s *StakingState) StakesGet(addr [20]byte) ([]staking.Stake, error) {
	var stakes []staking.Stake
	if _, err := s.m.getJSON(stakingStakesKey(s.pool, addr), &stakes); err != nil {
		return nil, err
	}
	return stakes, nil
}

func (s *StakingState) StakesPut(addr [20]byte, stakes []staking.Stake) error {
	return s.m.putJSON(stakingStakesKey(s.pool, addr), stakes)
}

func (s *StakingState) LockedGet() (*big.Int, error) {
	return s.m.getBigInt(stakingLockedKey(s.pool))
}

func (s *StakingState) LockedPut(amount *big.Int) error {
	return s.m.putJSON(stakingLockedKey(s.pool), amount)
}
