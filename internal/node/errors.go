package node

import "errors"

var (
	// ErrInvalidLength is returned by Parse when the input is not
	// exactly 78 bytes.
	ErrInvalidLength = errors.New("node: serialized extended key must be 78 bytes")
)
