package auth

import "strings"

// Code is a closed set of identity-provider failure classes. Provider
// specific error strings are mapped to a Code once, at the adapter
// boundary; nothing downstream inspects raw provider errors.
type Code string

const (
	CodeEmailInUse         Code = "email-already-in-use"
	CodeWeakPassword       Code = "weak-password"
	CodeInvalidEmail       Code = "invalid-email"
	CodeInvalidCredentials Code = "invalid-credentials"
	CodeInvalidToken       Code = "invalid-token"
	CodeUnknown            Code = "unknown"
)

// Error is an identity-provider failure tagged with a Code
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the human-readable text shown to users for this failure
func (e *Error) Message() string {
	switch e.Code {
	case CodeEmailInUse:
		return "This email is already registered"
	case CodeWeakPassword:
		return "Password should be at least 6 characters"
	case CodeInvalidEmail:
		return "Invalid email address"
	case CodeInvalidCredentials:
		return "Invalid email or password"
	case CodeInvalidToken:
		return "Your session has expired. Please sign in again"
	default:
		return "An error occurred. Please try again"
	}
}

// classify maps a raw provider error message to a Code. The REST layer of
// the provider reports machine codes inside the message text.
func classify(err error) Code {
	msg := strings.ToUpper(err.Error())
	switch {
	case strings.Contains(msg, "EMAIL_EXISTS") || strings.Contains(msg, "EMAIL-ALREADY"):
		return CodeEmailInUse
	case strings.Contains(msg, "WEAK_PASSWORD") || strings.Contains(msg, "PASSWORD MUST BE"):
		return CodeWeakPassword
	case strings.Contains(msg, "INVALID_EMAIL") || strings.Contains(msg, "MALFORMED EMAIL"):
		return CodeInvalidEmail
	case strings.Contains(msg, "EMAIL_NOT_FOUND") || strings.Contains(msg, "INVALID_PASSWORD") || strings.Contains(msg, "USER_NOT_FOUND"):
		return CodeInvalidCredentials
	default:
		return CodeUnknown
	}
}
