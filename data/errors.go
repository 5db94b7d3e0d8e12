package data

import "errors"

// ErrInvalidBlock reports a RowBlock whose slices violate the compressed-row
// invariants.
var ErrInvalidBlock = errors.New("data: invalid row block")
