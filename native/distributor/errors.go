package distributor

import "errors"

var (
	// ErrNotOwner is returned when an admin-only operation is attempted by
	// someone else.
	ErrNotOwner = errors.New("distributor: caller is not the owner")
	// ErrNotCharityNorOwner guards the charity handover predicate.
	ErrNotCharityNorOwner = errors.New("distributor: caller is not the charity beneficiary, nor the owner")
	// ErrServiceExists is returned when adding a service whose name is taken.
	ErrServiceExists = errors.New("distributor: service already exists")
	// ErrServiceNotFound is returned when the named service was never added.
	ErrServiceNotFound = errors.New("distributor: service does not exist")
	// ErrServiceNameEmpty rejects the empty service name.
	ErrServiceNameEmpty = errors.New("distributor: service name cannot be empty")
	// ErrBeneficiaryNameEmpty rejects the empty beneficiary name.
	ErrBeneficiaryNameEmpty = errors.New("distributor: beneficiary name cannot be empty")
	// ErrPercentageTooHigh rejects a single percentage above 10000.
	ErrPercentageTooHigh = errors.New("distributor: percentage should not exceed 10000")
	// ErrInvalidBeneficiary rejects the zero payout address.
	ErrInvalidBeneficiary = errors.New("distributor: beneficiary address is not valid")
	// ErrPercentageExceedsRemaining is returned when an update would push the
	// service total past 100% relative to the other beneficiaries.
	ErrPercentageExceedsRemaining = errors.New("distributor: the percentage exceeds the remaining percentage on this service")
	// ErrInvalidCharity rejects the zero charity address.
	ErrInvalidCharity = errors.New("distributor: charity beneficiary address is not valid")
	// ErrSameCharity rejects a charity update to the current value.
	ErrSameCharity = errors.New("distributor: charity beneficiary cannot be the same as the old one")
	// ErrCharityNotSet is returned when distributing before bootstrap.
	ErrCharityNotSet = errors.New("distributor: charity beneficiary not configured")
)
