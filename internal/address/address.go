// Package address implements P2PKH/P2SH address encoding, WIF private
// key encoding, and standard script construction/recognition.
package address

import (
	"github.com/happynine-wallet/hdwallet/internal/base58"
	"github.com/happynine-wallet/hdwallet/internal/crypto"
)

// FromPublicKey returns hash160(publicKey): RIPEMD-160(SHA-256(publicKey)).
func FromPublicKey(publicKey []byte) [20]byte {
	return crypto.Hash160(publicKey)
}

// Encode returns the Base58Check P2PKH/P2SH address for a hash160 under
// the given version byte (0x00 for mainnet P2PKH).
func Encode(version byte, hash160 []byte) string {
	return base58.EncodeCheck(version, hash160)
}

// Decode reverses Encode, returning the version byte and the 20-byte
// hash160.
func Decode(addr string) (version byte, hash160 []byte, err error) {
	version, hash160, err = base58.DecodeCheck(addr)
	if err != nil {
		return 0, nil, err
	}
	if len(hash160) != 20 {
		return 0, nil, ErrInvalidHashLength
	}
	return version, hash160, nil
}

// EncodeWIF returns the Wallet Import Format encoding of a 32-byte
// private key: version||key||0x01 (compressed-point marker),
// Base58Check-encoded.
func EncodeWIF(version byte, privateKey []byte) string {
	payload := make([]byte, 0, 33)
	payload = append(payload, privateKey...)
	payload = append(payload, 0x01)
	return base58.EncodeCheck(version, payload)
}

// DecodeWIF reverses EncodeWIF, returning the 32-byte private key.
func DecodeWIF(wif string) (version byte, privateKey []byte, err error) {
	version, payload, err := base58.DecodeCheck(wif)
	if err != nil {
		return 0, nil, err
	}
	if len(payload) == 33 && payload[32] == 0x01 {
		return version, payload[:32], nil
	}
	if len(payload) == 32 {
		return version, payload, nil
	}
	return 0, nil, ErrInvalidWIFLength
}
