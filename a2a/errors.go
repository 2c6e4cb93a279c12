package a2a

import "fmt"

// JSON-RPC 2.0 standard error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// A2A-specific error codes in the protocol's reserved range.
const (
	CodeTaskNotFound                 = -32001
	CodeTaskNotCancelable            = -32002
	CodePushNotificationNotSupported = -32003
	CodeUnsupportedVersion           = -32004
	CodeContentTypeNotSupported      = -32005
	CodeAuthenticationRequired       = -32006
	CodeAuthorizationFailed          = -32007
	CodeRateLimited                  = -32008
)

// Error is a JSON-RPC error object. Only code, message, and optional
// structured data cross the wire; internal causes never do.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("a2a: error %d: %s", e.Code, e.Message)
}

// NewError creates a protocol error with the given code and message.
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a protocol error with a formatted message.
func Errorf(code int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
