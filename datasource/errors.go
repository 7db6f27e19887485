package datasource

import (
	"errors"

	"github.com/magpierre/jasondata/internal/filter"
)

// Common errors returned by the datasource package.
var (
	// ErrInvalidFilter is returned when a filter expression is invalid.
	ErrInvalidFilter = filter.ErrInvalidFilter

	// ErrInvalidSymbol is returned for a clause symbol with no evaluator.
	ErrInvalidSymbol = filter.ErrInvalidSymbol

	// ErrInvalidLogicOp is returned for an unknown logical connective.
	ErrInvalidLogicOp = filter.ErrInvalidLogicOp

	// ErrTypeMismatch is carried by warnings for incompatible comparisons.
	ErrTypeMismatch = errors.New("type mismatch in comparison")

	// ErrFieldNotFound is carried by warnings for missing fields.
	ErrFieldNotFound = errors.New("field not found")
)
