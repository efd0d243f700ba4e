package transfer

import "errors"

// Sentinel errors for model construction and training.
// Use errors.Is() to check for specific error conditions.
var (
	// ErrInvalidHead indicates the classification head or the base model
	// handed to New is unusable.
	ErrInvalidHead = errors.New("transfer: invalid classification head")

	// ErrInvalidFitConfig indicates a FitConfig value is out of range.
	ErrInvalidFitConfig = errors.New("transfer: invalid fit configuration")

	// ErrClassMismatch indicates an image set does not carry the classes the
	// model was built for.
	ErrClassMismatch = errors.New("transfer: class mismatch")
)
