package usage

import "fmt"

// ParseErrorKind classifies why a usage document was rejected.
type ParseErrorKind int

const (
	MalformedXML ParseErrorKind = iota + 1
	MissingField
	OutOfRange
)

func (k ParseErrorKind) String() string {
	switch k {
	case MalformedXML:
		return "malformed xml"
	case MissingField:
		return "missing field"
	case OutOfRange:
		return "out of range"
	default:
		return "unknown"
	}
}

// ParseError reports a document that did not yield a complete Reading.
type ParseError struct {
	Kind  ParseErrorKind
	Field string
	Value int
	Err   error
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case MalformedXML:
		return fmt.Sprintf("parse usage document: malformed xml: %v", e.Err)
	case MissingField:
		return fmt.Sprintf("parse usage document: no candidate matched field %s", e.Field)
	case OutOfRange:
		if e.Value < 0 {
			return fmt.Sprintf("parse usage document: %s=%d is negative", e.Field, e.Value)
		}
		return fmt.Sprintf("parse usage document: %s=%d outside 0-100", e.Field, e.Value)
	default:
		return "parse usage document: unknown error"
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
