package gateway

import "errors"

var (
	// ErrNotOwner is returned when an admin-only operation is attempted by
	// someone else.
	ErrNotOwner = errors.New("gateway: caller is not the owner")
	// ErrNotBeneficiaryNorOwner guards the merchant beneficiary handover
	// predicate.
	ErrNotBeneficiaryNorOwner = errors.New("gateway: caller is not the merchant beneficiary, nor the owner")
	// ErrMerchantIDEmpty rejects the empty merchant id.
	ErrMerchantIDEmpty = errors.New("gateway: merchantId cannot be empty")
	// ErrMerchantExists is returned when the merchant id is already taken.
	ErrMerchantExists = errors.New("gateway: merchant already exists")
	// ErrMerchantNotFound is returned when the merchant id was never
	// registered.
	ErrMerchantNotFound = errors.New("gateway: merchant does not exist")
	// ErrMerchantDisabled rejects payments to a disabled merchant.
	ErrMerchantDisabled = errors.New("gateway: merchant is disabled")
	// ErrInvalidBeneficiary rejects the zero payout address.
	ErrInvalidBeneficiary = errors.New("gateway: beneficiary address is not valid")
	// ErrInvalidFeesPercentage rejects a fee above 10000 basis points.
	ErrInvalidFeesPercentage = errors.New("gateway: fees percentage is not valid")
	// ErrSameStatus rejects a status write equal to the current value.
	ErrSameStatus = errors.New("gateway: merchant status is already set to this value")
	// ErrSameBeneficiary rejects a beneficiary write equal to the current
	// value.
	ErrSameBeneficiary = errors.New("gateway: merchant beneficiary is already set to this value")
	// ErrSameFeesPercentage rejects a fee write equal to the current value.
	ErrSameFeesPercentage = errors.New("gateway: merchant fees percentage is already set to this value")
	// ErrTransactionIDEmpty rejects the empty transaction id.
	ErrTransactionIDEmpty = errors.New("gateway: transactionId cannot be empty")
	// ErrAlreadyPaid enforces the exactly-once ledger: a (merchant,
	// transaction) pair is paid at most once.
	ErrAlreadyPaid = errors.New("gateway: this transaction has already been paid")
	// ErrInvalidAmount rejects a nil or non-positive payment amount.
	ErrInvalidAmount = errors.New("gateway: amount is not valid")
	// ErrInvalidDistributor rejects the zero distributor target.
	ErrInvalidDistributor = errors.New("gateway: feesDistributor address is not valid")
	// ErrSameDistributor rejects a distributor write equal to the current
	// target.
	ErrSameDistributor = errors.New("gateway: fees distributor cannot be the same as the old one")
)
