package token

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	paycrypto "paycore/crypto"
)

// PermitMessage is the structured payload a payer signs to grant a one-shot
// allowance without a separate approve transaction. The digest is domain
// separated by ledger name and chain id and replay protected by the owner
// nonce.
type PermitMessage struct {
	Ledger   string
	ChainID  int64
	Owner    [20]byte
	Spender  [20]byte
	Value    *big.Int
	Nonce    uint64
	Deadline int64
}

// Hash returns the keccak digest the payer signs.
func (m PermitMessage) Hash() []byte {
	value := "0"
	if m.Value != nil {
		value = m.Value.String()
	}
	payload := fmt.Sprintf("permit|ledger=%s|chain=%d|owner=%s|spender=%s|value=%s|nonce=%d|deadline=%d",
		strings.TrimSpace(m.Ledger),
		m.ChainID,
		hex.EncodeToString(m.Owner[:]),
		hex.EncodeToString(m.Spender[:]),
		value,
		m.Nonce,
		m.Deadline,
	)
	return ethcrypto.Keccak256([]byte(payload))
}

// SignPermit signs the permit digest with the owner key. Exposed for tests
// and client tooling.
func SignPermit(m PermitMessage, key *paycrypto.PrivateKey) ([]byte, error) {
	if key == nil {
		return nil, fmt.Errorf("nil private key")
	}
	sig, err := ethcrypto.Sign(m.Hash(), key.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("sign permit: %w", err)
	}
	return sig, nil
}

// RecoverPermitSigner recovers the address that signed the permit digest.
func RecoverPermitSigner(m PermitMessage, sig []byte) ([20]byte, error) {
	pub, err := ethcrypto.SigToPub(m.Hash(), sig)
	if err != nil {
		return [20]byte{}, fmt.Errorf("recover pubkey: %w", err)
	}
	var addr [20]byte
	copy(addr[:], ethcrypto.PubkeyToAddress(*pub).Bytes())
	return addr, nil
}

// Permit verifies a signed allowance grant and applies it. The owner nonce is
// consumed and the spender allowance set to value in one step. Expired
// deadlines, replayed nonces and foreign signatures are all rejected before
// any state is touched.
func (l *Ledger) Permit(owner, spender [20]byte, value *big.Int, deadline int64, sig []byte, now int64) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	if spender == ([20]byte{}) || owner == ([20]byte{}) {
		return ErrZeroAddress
	}
	amt, err := normalizeAmount(value)
	if err != nil {
		return err
	}
	if deadline < now {
		return ErrPermitExpired
	}
	nonce, err := l.state.NonceGet(owner)
	if err != nil {
		return err
	}
	msg := PermitMessage{
		Ledger:   l.name,
		ChainID:  l.chainID,
		Owner:    owner,
		Spender:  spender,
		Value:    amt,
		Nonce:    nonce,
		Deadline: deadline,
	}
	signer, err := RecoverPermitSigner(msg, sig)
	if err != nil {
		return ErrPermitInvalid
	}
	if signer != owner {
		return ErrPermitInvalid
	}
	if err := l.state.NoncePut(owner, nonce+1); err != nil {
		return err
	}
	if err := l.state.AllowancePut(owner, spender, amt); err != nil {
		return err
	}
	l.emit(NewApprovalEvent(owner, spender, amt, true))
	return nil
}
