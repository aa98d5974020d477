package errors

import "fmt"

// InsufficientStock builds the conflict error returned when a reservation
// asks for more units than a ledger row holds. Callers always see both sides
// of the shortfall.
func InsufficientStock(available, requested int) *Error {
	return New(CodeConflict, fmt.Sprintf("insufficient stock: %d available, %d requested", available, requested)).
		WithDetails(map[string]any{
			"available": available,
			"requested": requested,
		})
}

// CountryMismatch is returned when an assignee's country does not match the
// order's canonicalized country.
func CountryMismatch(assigneeCountry, orderCountry string) *Error {
	return New(CodeValidation, "assignee country does not match order country").
		WithDetails(map[string]any{
			"assignee_country": assigneeCountry,
			"order_country":    orderCountry,
		})
}

// CityMismatch is returned for user-role driver assignment when driver city
// and order city differ.
func CityMismatch(driverCity, orderCity string) *Error {
	return New(CodeValidation, "driver city does not match order city").
		WithDetails(map[string]any{
			"driver_city": driverCity,
			"order_city":  orderCity,
		})
}

// NotAllowed is a role/ownership guard failure.
func NotAllowed(action string) *Error {
	return New(CodeForbidden, fmt.Sprintf("not allowed to %s", action))
}

// InvalidTransition is returned for terminal-state or role-forbidden moves.
func InvalidTransition(from, to string) *Error {
	return New(CodeStateConflict, fmt.Sprintf("cannot transition from %s to %s", from, to)).
		WithDetails(map[string]any{
			"from": from,
			"to":   to,
		})
}
