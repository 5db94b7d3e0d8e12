package loss

import "errors"

var (
	// ErrBadParam reports a parameter list with the wrong cardinality or a
	// missing required entry.
	ErrBadParam = errors.New("loss: invalid parameter list")

	// ErrNoLabel reports a gradient request on a block without labels.
	ErrNoLabel = errors.New("loss: row block carries no labels")

	// ErrUnknownLoss reports a Create call for an unregistered variant.
	ErrUnknownLoss = errors.New("loss: unknown loss variant")
)
