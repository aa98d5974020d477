package enums

import "fmt"

// ConfirmationStatus is the optional pre-delivery QA gate, independent of
// the shipment lifecycle.
type ConfirmationStatus string

const (
	ConfirmationStatusPending   ConfirmationStatus = "pending"
	ConfirmationStatusConfirmed ConfirmationStatus = "confirmed"
	ConfirmationStatusCancelled ConfirmationStatus = "cancelled"
)

var validConfirmationStatuses = []ConfirmationStatus{
	ConfirmationStatusPending,
	ConfirmationStatusConfirmed,
	ConfirmationStatusCancelled,
}

func (c ConfirmationStatus) String() string {
	return string(c)
}

func (c ConfirmationStatus) IsValid() bool {
	for _, candidate := range validConfirmationStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

func ParseConfirmationStatus(value string) (ConfirmationStatus, error) {
	for _, candidate := range validConfirmationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid confirmation status %q", value)
}
