// Package yamlutil decodes the two YAML documents md2cv reads: config files,
// which reject unknown keys, and resume front matter, which must be a
// mapping but may carry keys md2cv does not know.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize bounds a document in bytes.
var MaxInputSize = 1 << 20

var (
	ErrNilDestination = errors.New("yaml: nil destination")
	ErrInputTooLarge  = errors.New("yaml: document too large")
	ErrNotMapping     = errors.New("yaml: document is not a mapping")
	ErrSyntax         = errors.New("yaml: invalid document")
)

func checkInput(data []byte, v any) error {
	if v == nil {
		return ErrNilDestination
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	return nil
}

// syntaxError wraps a decoder error as ErrSyntax, keeping goccy's
// "[line:column] message" without the source excerpt.
func syntaxError(err error) error {
	return fmt.Errorf("%w: %s", ErrSyntax, yaml.FormatError(err, false, false))
}

// DecodeStrict decodes data into v and fails on keys v does not declare.
// Empty data leaves v untouched.
func DecodeStrict(data []byte, v any) error {
	if err := checkInput(data, v); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return syntaxError(err)
	}
	return nil
}

// DecodeMapping decodes a document whose top level must be a mapping.
// A document of whitespace or comments leaves v untouched and reports
// empty.
func DecodeMapping(data []byte, v any) (empty bool, err error) {
	if err := checkInput(data, v); err != nil {
		return false, err
	}
	if len(data) == 0 {
		return true, nil
	}

	var top any
	if err := yaml.Unmarshal(data, &top); err != nil {
		return false, syntaxError(err)
	}
	switch top.(type) {
	case nil:
		return true, nil
	case map[string]any, map[any]any:
	default:
		return false, fmt.Errorf("%w: got %T", ErrNotMapping, top)
	}

	if err := yaml.Unmarshal(data, v); err != nil {
		return false, syntaxError(err)
	}
	return false, nil
}
