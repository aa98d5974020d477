package types

// SuccessEnvelope is the uniform success body returned by the API.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error representation.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is the uniform error body returned by the API.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
