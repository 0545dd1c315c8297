package signer

import "errors"

var (
	// ErrNotEnoughFunds is returned when the unspent output set cannot
	// cover the requested value plus fee.
	ErrNotEnoughFunds = errors.New("signer: not enough funds to cover value and fee")
	// ErrKeyNotFound is returned when the KeyProvider cannot produce a
	// signing key for one of the selected inputs.
	ErrKeyNotFound = errors.New("signer: no signing key for input address")
	// ErrUnrecognizedScript is returned when a selected unspent output's
	// script is not a standard P2PKH or P2SH script.
	ErrUnrecognizedScript = errors.New("signer: unspent output script not recognized")
)
