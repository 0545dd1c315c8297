package txwire

import "errors"

// ErrUnsupportedVersion is returned by Parse for any transaction
// version other than 1.
var ErrUnsupportedVersion = errors.New("txwire: unsupported transaction version")
