// Package base58 implements Bitcoin's base58 and base58check encodings,
// plus the raw-payload checksum variant BIP-32 extended keys use.
package base58

import (
	"bytes"
	"errors"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/happynine-wallet/hdwallet/internal/crypto"
)

// ErrChecksumMismatch is returned by DecodeCheck when the trailing 4-byte
// checksum does not match the double-SHA-256 of the payload.
var ErrChecksumMismatch = errors.New("base58: checksum mismatch")

// ErrInvalidFormat is returned by DecodeCheck when the input is too short
// to contain a version byte and checksum.
var ErrInvalidFormat = errors.New("base58: input too short for version and checksum")

// Alphabet is Bitcoin's base58 digit alphabet, exposed for callers that
// need to perform the same base conversion directly.
const Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// Encode base58-encodes b, with one leading '1' digit per leading zero
// byte of the input.
func Encode(b []byte) string {
	return base58.Encode(b)
}

// Decode reverses Encode.
func Decode(s string) []byte {
	return base58.Decode(s)
}

// EncodeCheck prefixes payload with version, appends the first 4 bytes of
// double-SHA-256(version||payload), and base58-encodes the result.
func EncodeCheck(version byte, payload []byte) string {
	return base58.CheckEncode(payload, version)
}

// DecodeCheck reverses EncodeCheck, verifying the checksum.
func DecodeCheck(s string) (version byte, payload []byte, err error) {
	payload, version, err = base58.CheckDecode(s)
	if err != nil {
		if errors.Is(err, base58.ErrChecksum) {
			return 0, nil, ErrChecksumMismatch
		}
		return 0, nil, ErrInvalidFormat
	}
	return version, payload, nil
}

// EncodeCheckRaw appends the first 4 bytes of double-SHA-256(data) to
// data and base58-encodes the result, without splitting off a separate
// version byte. This is the encoding BIP-32 extended keys use, where
// the version word is already embedded in the serialized payload.
func EncodeCheckRaw(data []byte) string {
	checksum := crypto.DoubleSHA256(data)
	return base58.Encode(append(append([]byte(nil), data...), checksum[:4]...))
}

// DecodeCheckRaw reverses EncodeCheckRaw, verifying the trailing 4-byte
// checksum.
func DecodeCheckRaw(s string) ([]byte, error) {
	decoded := base58.Decode(s)
	if len(decoded) < 4 {
		return nil, ErrInvalidFormat
	}
	data := decoded[:len(decoded)-4]
	checksum := decoded[len(decoded)-4:]
	want := crypto.DoubleSHA256(data)
	if !bytes.Equal(checksum, want[:4]) {
		return nil, ErrChecksumMismatch
	}
	return data, nil
}
