package emath

import "github.com/pkg/errors"

// The two failure classes every stage reports. Callers wrap these with
// context (errors.Wrapf) and test for them with errors.Is.
var(
	ErrInvalidInput  = errors.New("invalid input")
	ErrConfiguration = errors.New("invalid configuration")
)

// InvalidInputf wraps ErrInvalidInput with a formatted message.
func InvalidInputf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}

// Configurationf wraps ErrConfiguration with a formatted message.
func Configurationf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}
