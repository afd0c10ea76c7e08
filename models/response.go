package models

import "time"

// Response statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse is the envelope every endpoint replies with
type APIResponse struct {
	Status    string       `json:"status"`
	Data      interface{}  `json:"data,omitempty"`
	Message   string       `json:"message"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// ErrorDetail describes a failed request
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Success wraps data in a success envelope
func Success(data interface{}, message string) APIResponse {
	return APIResponse{
		Status:    StatusSuccess,
		Data:      data,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Failure builds an error envelope
func Failure(code, message, details string) APIResponse {
	return APIResponse{
		Status:  StatusError,
		Message: message,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now(),
	}
}
