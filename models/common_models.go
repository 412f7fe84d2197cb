// models/common_models.go
package models

// Client-facing error messages. Upstream details are only logged.
const (
	ErrMsgURLRequired      = "URL parameter is required."
	ErrMsgProcessingFailed = "Failed to process request."
)

// ErrorResponse is the JSON body of every failed parse or resolve request.
type ErrorResponse struct {
	Error string `json:"error"`
}
