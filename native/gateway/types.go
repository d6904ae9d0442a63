package gateway

import "math/big"

// MaxFeesPercentage is the basis-point ceiling for merchant fees.
const MaxFeesPercentage = 10000

// ServiceName is the distribution engine service every gateway fee is
// forwarded to.
const ServiceName = "Gateway"

// Merchant is a registered payee. The id is immutable once created;
// merchants are never deleted, only disabled.
type Merchant struct {
	ID             string   `json:"id"`
	Beneficiary    [20]byte `json:"beneficiary"`
	FeesPercentage uint32   `json:"feesPercentage"`
	Enabled        bool     `json:"enabled"`
}

// Transaction is the immutable record of one successful payment, keyed by
// (merchant id, transaction id). The zero value is the empty sentinel
// returned for unpaid pairs: recorded transactions always carry non-empty
// ids and a non-zero date.
type Transaction struct {
	MerchantID string   `json:"merchantId"`
	ID         string   `json:"id"`
	Date       int64    `json:"date"`
	Amount     *big.Int `json:"amount"`
	Fees       *big.Int `json:"fees"`
	Payer      [20]byte `json:"payer"`
}

// IsEmpty reports whether the record is the unpaid sentinel.
func (t *Transaction) IsEmpty() bool {
	return t == nil || (t.MerchantID == "" && t.ID == "" && t.Date == 0)
}

// EmptyTransaction returns the sentinel record for an unpaid pair.
func EmptyTransaction() *Transaction {
	return &Transaction{Amount: big.NewInt(0), Fees: big.NewInt(0)}
}
