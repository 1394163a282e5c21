// Package options provides shared helpers for functional options and
// option validation across packages.
package options

import "github.com/erraggy/resmerge/reserrors"

// Apply runs opts against cfg in order and stops at the first error.
func Apply[T any, O ~func(*T) error](cfg *T, opts ...O) error {
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSingleInputSource ensures exactly one input source is specified.
// sources is a variadic list of booleans indicating whether each source is set.
// noSourceMsg is the error message when no source is specified.
// multiSourceMsg is the error message when multiple sources are specified.
// Failures are reported as *reserrors.ConfigError for option.
func ValidateSingleInputSource(option, noSourceMsg, multiSourceMsg string, sources ...bool) error {
	sourceCount := 0
	for _, hasSource := range sources {
		if hasSource {
			sourceCount++
		}
	}

	switch {
	case sourceCount == 0:
		return &reserrors.ConfigError{Option: option, Message: noSourceMsg}
	case sourceCount > 1:
		return &reserrors.ConfigError{Option: option, Message: multiSourceMsg}
	}
	return nil
}
