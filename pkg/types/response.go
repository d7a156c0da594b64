package types

import "github.com/atino-shop/atino-backend/pkg/pagination"

// SuccessEnvelope is the uniform shape for all successful responses.
type SuccessEnvelope struct {
	Success    bool             `json:"success"`
	Data       any              `json:"data,omitempty"`
	Message    string           `json:"message,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

// APIError carries the machine-readable error code and optional details.
type APIError struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is the uniform shape for all failed responses.
type ErrorEnvelope struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Error   *APIError `json:"error,omitempty"`
}
