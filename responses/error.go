package responses

import (
	"fmt"
)

// Error codes, one per failure class. Stable across releases, clients
// switch on these rather than on messages.
const (
	CodeBackendUnavailable = 1
	CodeNotFound           = 2
	CodeMalformedSnapshot  = 3
	CodeMalformedInput     = 4
	CodeIndexOutOfRange    = 5
	CodeWriteFailed        = 6
	CodeNoChange           = 7
	CodeUnknownRoute       = 8
	CodeBadRequest         = 9
)

// Error describes an error for humans and machines
type Error struct {
	Status  int    `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return fmt.Sprintf("status:%d, code:%d, message:%q", e.Status, e.Code, e.Message)
}

// NewError - a brand new error
func NewError(code int, message string) *Error {
	return &Error{
		Status:  500,
		Code:    code,
		Message: message,
	}
}
