package config

import "fmt"

// ErrorKind classifies config store failures.
type ErrorKind int

const (
	Corrupt ErrorKind = iota + 1
	Invalid
	IOFailure
)

func (k ErrorKind) String() string {
	switch k {
	case Corrupt:
		return "corrupt"
	case Invalid:
		return "invalid"
	case IOFailure:
		return "io failure"
	default:
		return "unknown"
	}
}

// Error is returned by every Store operation that fails.
type Error struct {
	Kind  ErrorKind
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config %s: %s: %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
