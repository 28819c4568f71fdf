package translate

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrInvalidComplexity = errors.New("invalid complexity digit")
	ErrInvalidRingIndex  = errors.New("invalid ring index")
	ErrUnknownColor      = errors.New("unknown color")
)

// TranslationError reports the item (and option, if any) that could not be
// translated.
type TranslationError struct {
	Item   int    // Index of the offending item
	Option int    // Index of the offending option, -1 if the item itself is at fault
	Model  string // Model code of the item
	Name   string // Option name, empty when Option is -1
	Value  string // Option value, empty when Option is -1
	Err    error
}

func (e *TranslationError) Error() string {
	if e.Option < 0 {
		return fmt.Sprintf("item %d (model %q): %v", e.Item, e.Model, e.Err)
	}
	return fmt.Sprintf("item %d (model %q) option %d (%s=%s): %v",
		e.Item, e.Model, e.Option, e.Name, e.Value, e.Err)
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}
