package session

import "fmt"

// Parse error codes (E200-E299)
const (
	ErrMissingName     = "E200" // sequence name expected
	ErrMissingAssign   = "E201" // '=' expected after sequence name
	ErrDuplicateName   = "E202" // sequence name defined twice
	ErrMalformedInput  = "E203" // unexpected character or early end of input
	ErrEmptyPath       = "E204" // path or path component is empty
	ErrBadValue        = "E205" // value must start with E, F or D
	ErrTrailingContent = "E206" // E and D values carry no content
)

// ParseError reports a syntax error with its byte offset in the input.
type ParseError struct {
	Offset  int    `json:"offset"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("[%s] offset %d: %s", e.Code, e.Offset, e.Message)
}
