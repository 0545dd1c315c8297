package dispatch

import "errors"

// Error codes, per spec.md §6. Negative by convention; 0 (absent from a
// reply) means success.
const (
	errKDFOrRNGFailure         = -1
	errCheckDecryptionFailed   = -2
	errCheckVerificationFailed = -3
	errInternalKeyDecryption   = -4
	errReencryptionFailed      = -5
	// errPrecondition covers the malformed-input/derivation family from
	// spec.md §7 item 1 and item 3 that spec.md §6's table does not
	// enumerate a specific code for.
	errPrecondition      = -6
	errInsufficientFunds = -7
	errKeyNotFound        = -8
	errUnknownMethod      = -999
)

// ErrInvalidInput is returned for malformed or missing request fields —
// bad hex, bad base58check, a path that doesn't parse, a count that
// isn't a number.
var ErrInvalidInput = errors.New("dispatch: invalid input")

// ErrInternalKeyDecryption is returned by set-passphrase's
// change-passphrase path when the previously-wrapped ephemeral key
// fails to decrypt under the caller-supplied key.
var ErrInternalKeyDecryption = errors.New("dispatch: internal key decryption failed")
