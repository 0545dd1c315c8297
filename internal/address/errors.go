package address

import "errors"

var (
	// ErrInvalidHashLength is returned by Decode when the decoded
	// payload is not exactly 20 bytes.
	ErrInvalidHashLength = errors.New("address: decoded payload is not a 20-byte hash160")
	// ErrInvalidWIFLength is returned by DecodeWIF when the decoded
	// payload is neither 32 nor 33 bytes.
	ErrInvalidWIFLength = errors.New("address: decoded WIF payload has unexpected length")
)
