package table

import "errors"

// Sentinel errors for column validation.
var (
	ErrEmptyProp     = errors.New("column prop is empty")
	ErrDuplicateProp = errors.New("duplicate column prop")
)
