package token

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"paycore/core/types"
)

const (
	// EventTypeTransfer marks a balance movement between two accounts.
	EventTypeTransfer = "token.transfer"
	// EventTypeApproval marks an allowance update, including permits.
	EventTypeApproval = "token.approval"
)

// NewTransferEvent returns the canonical payload for a balance movement.
func NewTransferEvent(from, to [20]byte, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeTransfer, Attributes: map[string]string{
		"from":   hex.EncodeToString(from[:]),
		"to":     hex.EncodeToString(to[:]),
		"amount": amountString(amount),
	}}
}

// NewApprovalEvent returns the canonical payload for an allowance update.
func NewApprovalEvent(owner, spender [20]byte, amount *big.Int, viaPermit bool) *types.Event {
	return &types.Event{Type: EventTypeApproval, Attributes: map[string]string{
		"owner":   hex.EncodeToString(owner[:]),
		"spender": hex.EncodeToString(spender[:]),
		"amount":  amountString(amount),
		"permit":  strconv.FormatBool(viaPermit),
	}}
}

func amountString(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}
