package handler

import "github.com/erp/receivables/internal/interfaces/http/dto"

// APIResponse documents the success envelope with a typed data field.
// Handlers write dto.Response; this type only feeds the OpenAPI schema.
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse documents the failure envelope
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}
