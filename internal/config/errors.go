package config

import "fmt"

// ErrorKind classifies configuration failures. All of them are fatal at
// startup; the daemon never runs on a half-resolved configuration.
type ErrorKind string

const (
	// MissingRequired means a required key is absent from every source.
	MissingRequired ErrorKind = "missing_required"
	// InvalidValue means a source supplied a value that does not coerce
	// to the key's type. Bad values fail loudly, never silently default.
	InvalidValue ErrorKind = "invalid_value"
)

// Error is a fatal configuration error.
type Error struct {
	Kind ErrorKind
	Key  string
	Raw  string
}

func (e *Error) Error() string {
	switch e.Kind {
	case MissingRequired:
		return fmt.Sprintf("config: required key %q is not set in any source", e.Key)
	case InvalidValue:
		return fmt.Sprintf("config: key %q has invalid value %q", e.Key, e.Raw)
	default:
		return fmt.Sprintf("config: error on key %q", e.Key)
	}
}

func missingRequired(key string) *Error {
	return &Error{Kind: MissingRequired, Key: key}
}

func invalidValue(key, raw string) *Error {
	return &Error{Kind: InvalidValue, Key: key, Raw: raw}
}
