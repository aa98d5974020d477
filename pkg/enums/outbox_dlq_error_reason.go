package enums

import "fmt"

// OutboxDLQErrorReason captures why an outbox event was parked in the DLQ.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
)

var validOutboxDLQReasons = []OutboxDLQErrorReason{
	OutboxDLQReasonNonRetryable,
	OutboxDLQReasonMaxAttempts,
}

func (r OutboxDLQErrorReason) IsValid() bool {
	for _, candidate := range validOutboxDLQReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

func ParseOutboxDLQErrorReason(value string) (OutboxDLQErrorReason, error) {
	for _, candidate := range validOutboxDLQReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dlq error reason %q", value)
}
