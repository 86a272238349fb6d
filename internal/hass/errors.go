package hass

import "fmt"

// AuthError is returned when the server rejects the access token.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication rejected"
	}
	return fmt.Sprintf("authentication rejected: %s", e.Message)
}

// ResultError is a failed service call reported by the server.
type ResultError struct {
	Code    string
	Message string
}

func (e *ResultError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
