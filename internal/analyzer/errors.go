package analyzer

import "errors"

// ErrInsufficientData flags a parsed series shorter than the minimum
// window an analyzer needs. Parse failures keep textparse.ErrNoData.
var ErrInsufficientData = errors.New("insufficient data")
