package api

// Response represents a generic API response for success or error messages.
type Response struct {
	Success   bool   `json:"success" example:"true"`                     // Indicates if the operation was successful.
	Message   string `json:"message,omitempty" example:"record created"` // Optional success message.
	Error     string `json:"error,omitempty" example:"record not found"` // Optional error message.
	RequestID string `json:"request_id,omitempty"`                       // Set on error responses.
	Data      any    `json:"data,omitempty"`                             // Optional payload, e.g. the affected city.
}
