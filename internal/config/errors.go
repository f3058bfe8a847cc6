package config

import "errors"

// ErrConfigInvalid is returned when the merged configuration fails
// schema validation (spec.md §7: ConfigInvalid).
var ErrConfigInvalid = errors.New("config invalid")
