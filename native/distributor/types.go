package distributor

// MaxPercentage is the basis-point ceiling: 10000 = 100%.
const MaxPercentage = 10000

// Beneficiary is a named, percentage-weighted payout recipient within a
// service. Beneficiaries are never removed; re-parameterize with a zero
// percentage to mute one.
type Beneficiary struct {
	Name           string   `json:"name"`
	Percentage     uint32   `json:"percentage"`
	Address        [20]byte `json:"address"`
	IsContractCall bool     `json:"isContractCall"`
}

// Service is a named fee-distribution bucket. Beneficiaries keep their
// registration order; TotalPercentage is the running sum of member
// percentages and never exceeds MaxPercentage.
type Service struct {
	Name            string        `json:"name"`
	Beneficiaries   []Beneficiary `json:"beneficiaries"`
	TotalPercentage uint32        `json:"totalPercentage"`
}

func (s *Service) beneficiaryIndex(name string) int {
	for i := range s.Beneficiaries {
		if s.Beneficiaries[i].Name == name {
			return i
		}
	}
	return -1
}
