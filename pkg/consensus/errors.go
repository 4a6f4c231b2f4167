package consensus

import "errors"

var (
	// ErrNoObservations indicates that no usable source vectors were provided.
	ErrNoObservations = errors.New("no usable observations")
	// ErrDimensionMismatch indicates that source vectors disagree on the number of bins.
	ErrDimensionMismatch = errors.New("observation dimension mismatch")
)
