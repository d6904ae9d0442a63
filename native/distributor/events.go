package distributor

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"paycore/core/types"
)

const (
	EventTypeServiceAdded          = "distributor.service_added"
	EventTypeBeneficiariesUpdated  = "distributor.beneficiaries_updated"
	EventTypeCharityChanged        = "distributor.charity_changed"
	EventTypeBeneficiaryCallFailed = "distributor.beneficiary_call_failed"
)

// NewServiceAddedEvent returns the canonical payload for a new service.
func NewServiceAddedEvent(name string) *types.Event {
	return &types.Event{Type: EventTypeServiceAdded, Attributes: map[string]string{
		"service": name,
	}}
}

// NewBeneficiariesUpdatedEvent returns the payload emitted after a
// beneficiary is created or re-parameterized.
func NewBeneficiariesUpdatedEvent(service string, b Beneficiary) *types.Event {
	return &types.Event{Type: EventTypeBeneficiariesUpdated, Attributes: map[string]string{
		"service":        service,
		"beneficiary":    b.Name,
		"percentage":     strconv.FormatUint(uint64(b.Percentage), 10),
		"address":        hex.EncodeToString(b.Address[:]),
		"isContractCall": strconv.FormatBool(b.IsContractCall),
	}}
}

// NewCharityChangedEvent carries both the old and the new charity address.
func NewCharityChangedEvent(oldAddr, newAddr [20]byte) *types.Event {
	return &types.Event{Type: EventTypeCharityChanged, Attributes: map[string]string{
		"oldBeneficiary": hex.EncodeToString(oldAddr[:]),
		"newBeneficiary": hex.EncodeToString(newAddr[:]),
	}}
}

// NewBeneficiaryCallFailedEvent records an isolated payout failure: the
// beneficiary hook rejected the cut and the amount was routed to charity
// instead.
func NewBeneficiaryCallFailedEvent(name string, addr [20]byte, cut *big.Int) *types.Event {
	amount := "0"
	if cut != nil {
		amount = cut.String()
	}
	return &types.Event{Type: EventTypeBeneficiaryCallFailed, Attributes: map[string]string{
		"beneficiary": name,
		"address":     hex.EncodeToString(addr[:]),
		"amount":      amount,
	}}
}
