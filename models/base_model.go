package models

import "github.com/finternet/finternet-backend/utils"

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Version string      `json:"version"`
}

type ErrorResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
	Version string   `json:"version"`
}

func NewError(msg string) *ErrorResponse {
	return &ErrorResponse{
		Status:  "failed",
		Message: msg,
		Version: utils.REVISION,
	}
}

// NewErrorWithDetails carries field level problems, e.g. binding failures.
func NewErrorWithDetails(msg string, details ...string) *ErrorResponse {
	e := NewError(msg)
	e.Errors = details
	return e
}

func NewSuccess(msg string, data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Status:  "successful",
		Message: msg,
		Data:    data,
		Version: utils.REVISION,
	}
}

// HealthResponse is what GET /health answers with.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func NewHealth(service string) *HealthResponse {
	return &HealthResponse{
		Status:  "ok",
		Service: service,
	}
}
