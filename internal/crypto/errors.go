package crypto

import "errors"

var (
	// ErrRNGFailure is returned when the system CSPRNG cannot fill a
	// buffer.
	ErrRNGFailure = errors.New("crypto: random source failure")
	// ErrDecryptFailure is returned when AES-CBC decryption finds invalid
	// PKCS#7 padding, or the ciphertext is too short to contain an IV.
	ErrDecryptFailure = errors.New("crypto: decryption failed")
)
