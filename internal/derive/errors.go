package derive

import "errors"

var (
	// ErrWantsPrivate is returned when hardened derivation is requested
	// from a public-only parent node.
	ErrWantsPrivate = errors.New("derive: hardened child requires a private parent")
	// ErrInvalidChild covers the BIP-32 edge cases where the derived
	// child would be invalid (IL >= curve order, zero private scalar,
	// or point at infinity). The caller may retry at i+1.
	ErrInvalidChild = errors.New("derive: invalid child at this index")
	// ErrInvalidPath is returned for a malformed derivation path string.
	ErrInvalidPath = errors.New("derive: malformed path")
	// ErrInvalidSeed is returned by NewMasterNode when the seed is
	// shorter than the 16-byte minimum, or when IL interpreted as an
	// integer is zero or >= the curve order.
	ErrInvalidSeed = errors.New("derive: invalid seed")
)
