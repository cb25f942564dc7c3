package payments

import "errors"

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMissingRef       = errors.New("missing transaction ref")
)
