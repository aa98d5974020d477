package enums

// InvestorStatus reflects whether an investor profile still accepts profit.
type InvestorStatus string

const (
	InvestorStatusActive    InvestorStatus = "active"
	InvestorStatusCompleted InvestorStatus = "completed"
	InvestorStatusInactive  InvestorStatus = "inactive"
)

func (s InvestorStatus) String() string {
	return string(s)
}

func (s InvestorStatus) IsValid() bool {
	switch s {
	case InvestorStatusActive, InvestorStatusCompleted, InvestorStatusInactive:
		return true
	default:
		return false
	}
}
