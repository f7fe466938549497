package config

import "fmt"

func errMissing(field, backend string) error {
	return fmt.Errorf("%s is required for the %q storage backend", field, backend)
}

func errInvalid(field string, value interface{}) error {
	return fmt.Errorf("invalid value for %s: %v", field, value)
}
