package gateway

import (
	"encoding/hex"
	"strconv"

	"paycore/core/types"
)

const (
	EventTypeMerchantAdded              = "gateway.merchant_added"
	EventTypeMerchantStatusChanged      = "gateway.merchant_status_changed"
	EventTypeMerchantBeneficiaryChanged = "gateway.merchant_beneficiary_changed"
	EventTypeMerchantFeesChanged        = "gateway.merchant_fees_changed"
	EventTypePaymentMade                = "gateway.payment_made"
	EventTypeFeesDistributorChanged     = "gateway.fees_distributor_changed"
)

// NewMerchantAddedEvent returns the canonical payload for a new merchant.
func NewMerchantAddedEvent(m *Merchant) *types.Event {
	attrs := make(map[string]string)
	if m != nil {
		attrs["merchantId"] = m.ID
		attrs["beneficiary"] = hex.EncodeToString(m.Beneficiary[:])
		attrs["feesPercentage"] = strconv.FormatUint(uint64(m.FeesPercentage), 10)
	}
	return &types.Event{Type: EventTypeMerchantAdded, Attributes: attrs}
}

// NewMerchantStatusChangedEvent carries the merchant id and the new status.
func NewMerchantStatusChangedEvent(merchantID string, enabled bool) *types.Event {
	return &types.Event{Type: EventTypeMerchantStatusChanged, Attributes: map[string]string{
		"merchantId": merchantID,
		"enabled":    strconv.FormatBool(enabled),
	}}
}

// NewMerchantBeneficiaryChangedEvent carries the old and new payout address.
func NewMerchantBeneficiaryChangedEvent(merchantID string, oldAddr, newAddr [20]byte) *types.Event {
	return &types.Event{Type: EventTypeMerchantBeneficiaryChanged, Attributes: map[string]string{
		"merchantId":     merchantID,
		"oldBeneficiary": hex.EncodeToString(oldAddr[:]),
		"newBeneficiary": hex.EncodeToString(newAddr[:]),
	}}
}

// NewMerchantFeesChangedEvent carries the old and new fee in basis points.
func NewMerchantFeesChangedEvent(merchantID string, oldFees, newFees uint32) *types.Event {
	return &types.Event{Type: EventTypeMerchantFeesChanged, Attributes: map[string]string{
		"merchantId": merchantID,
		"oldFees":    strconv.FormatUint(uint64(oldFees), 10),
		"newFees":    strconv.FormatUint(uint64(newFees), 10),
	}}
}

// NewPaymentMadeEvent carries the full transaction record. The merchant id
// is a first-class attribute so emitted payments can be filtered by merchant
// alone.
func NewPaymentMadeEvent(tx *Transaction) *types.Event {
	attrs := make(map[string]string)
	if tx != nil {
		attrs["merchantId"] = tx.MerchantID
		attrs["transactionId"] = tx.ID
		attrs["date"] = strconv.FormatInt(tx.Date, 10)
		attrs["payer"] = hex.EncodeToString(tx.Payer[:])
		if tx.Amount != nil {
			attrs["amount"] = tx.Amount.String()
		}
		if tx.Fees != nil {
			attrs["fees"] = tx.Fees.String()
		}
	}
	return &types.Event{Type: EventTypePaymentMade, Attributes: attrs}
}

// NewFeesDistributorChangedEvent carries the old and new distributor target.
func NewFeesDistributorChangedEvent(oldAddr, newAddr [20]byte) *types.Event {
	return &types.Event{Type: EventTypeFeesDistributorChanged, Attributes: map[string]string{
		"oldDistributor": hex.EncodeToString(oldAddr[:]),
		"newDistributor": hex.EncodeToString(newAddr[:]),
	}}
}
