package session

import "fmt"

// Kind distinguishes startup failures.
type Kind int

const (
	KindConnect Kind = iota + 1
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "Config Error"
	case KindAuth:
		return "Auth Error"
	default:
		return "Session Error"
	}
}

// Error is a failed Establish.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s\n%v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
