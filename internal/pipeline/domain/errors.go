package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownServiceType is returned when a job's service type has no
// registered formatter variant.
var ErrUnknownServiceType = errors.New("unknown service type")

// ConfigError marks a required tenant configuration lookup that failed.
// Structural: the pipeline cannot proceed without the mapping, so it always
// aborts the stage.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("required configuration %q: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
