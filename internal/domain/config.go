package domain

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

var ErrConfigInvalid = errors.New("invalid driver config")

// DriverConfig is the opaque configuration of an extractor or loader,
// stored as JSONB. The "type" key selects the concrete driver.
type DriverConfig map[string]any

// Type returns the driver discriminator, or "" when absent.
func (c DriverConfig) Type() string {
	s, _ := c["type"].(string)
	return s
}

// String returns the named field as a string, or an ErrConfigInvalid error
// when the field is missing or not a string.
func (c DriverConfig) String(key string) (string, error) {
	v, ok := c[key]
	if !ok {
		return "", fmt.Errorf("%w: missing field %q", ErrConfigInvalid, key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: field %q must be a non-empty string", ErrConfigInvalid, key)
	}
	return s, nil
}

// MarshalConfig and UnmarshalConfig round-trip a config through its JSON
// wire form.
func MarshalConfig(c DriverConfig) ([]byte, error) {
	return json.Marshal(c)
}

func UnmarshalConfig(b []byte) (DriverConfig, error) {
	var c DriverConfig
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return c, nil
}
