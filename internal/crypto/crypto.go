// Package crypto collects the low-level cryptographic primitives the
// derivation engine, signer, and credentials layer build on: hashing,
// HMAC, scrypt, AES-CBC, and secp256k1 point/scalar operations.
package crypto

import (
	"bytes"
	cryptorand "crypto/rand"
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // RIPEMD-160 is required by Hash160

	stdaes "crypto/aes"
	stdcipher "crypto/cipher"
	stdhmac "crypto/hmac"
	stdsha512 "crypto/sha512"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/scrypt"
)

// RandomBytes fills a buffer of n bytes from the system CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := cryptorand.Read(b); err != nil {
		return nil, ErrRNGFailure
	}
	return b, nil
}

// DoubleSHA256 returns SHA-256(SHA-256(b)).
func DoubleSHA256(b []byte) [32]byte {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}

// Hash160 returns RIPEMD-160(SHA-256(b)).
func Hash160(b []byte) [20]byte {
	sha := sha256.Sum256(b)
	h := ripemd160.New()
	h.Write(sha[:])
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HMACSHA512 returns HMAC-SHA-512(key, data).
func HMACSHA512(key, data []byte) [64]byte {
	mac := stdhmac.New(stdsha512.New, key)
	mac.Write(data)
	var out [64]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// ScryptParams bundles the cost parameters for the Scrypt KDF.
type ScryptParams struct {
	N, R, P, DKLen int
}

// DefaultScryptParams are the parameters spec.md §4.3 names.
var DefaultScryptParams = ScryptParams{N: 16384, R: 8, P: 8, DKLen: 32}

// Scrypt derives a key from passphrase and salt using the given params.
func Scrypt(passphrase, salt []byte, params ScryptParams) ([]byte, error) {
	return scrypt.Key(passphrase, salt, params.N, params.R, params.P, params.DKLen)
}

// AESCBCEncrypt generates a random 16-byte IV, PKCS#7-pads plaintext, and
// returns IV||ciphertext.
func AESCBCEncrypt(key, plaintext []byte) ([]byte, error) {
	block, err := stdaes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	iv, err := RandomBytes(stdaes.BlockSize)
	if err != nil {
		return nil, err
	}
	padded := pkcs7Pad(plaintext, stdaes.BlockSize)
	ciphertext := make([]byte, len(padded))
	stdcipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return append(iv, ciphertext...), nil
}

// AESCBCDecrypt reverses AESCBCEncrypt, validating PKCS#7 padding.
func AESCBCDecrypt(key, ivAndCiphertext []byte) ([]byte, error) {
	block, err := stdaes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ivAndCiphertext) < stdaes.BlockSize || (len(ivAndCiphertext)-stdaes.BlockSize)%stdaes.BlockSize != 0 {
		return nil, ErrDecryptFailure
	}
	iv := ivAndCiphertext[:stdaes.BlockSize]
	ciphertext := ivAndCiphertext[stdaes.BlockSize:]
	if len(ciphertext) == 0 {
		return nil, ErrDecryptFailure
	}
	plaintext := make([]byte, len(ciphertext))
	stdcipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)
	return pkcs7Unpad(plaintext)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(append([]byte{}, data...), padding...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrDecryptFailure
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) {
		return nil, ErrDecryptFailure
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrDecryptFailure
		}
	}
	return data[:len(data)-padLen], nil
}

// ECDSASignSecp256k1 signs digest with privateKey using RFC 6979
// deterministic-k and returns a DER-encoded signature.
func ECDSASignSecp256k1(privateKey, digest []byte) ([]byte, error) {
	priv, _ := btcec.PrivKeyFromBytes(privateKey)
	sig := ecdsa.Sign(priv, digest)
	return sig.Serialize(), nil
}

// CompressedPubKeyFromPrivate returns the compressed secp256k1 public key
// for privateKey (i.e. serialize_compressed(G * privateKey)).
func CompressedPubKeyFromPrivate(privateKey []byte) []byte {
	_, pub := btcec.PrivKeyFromBytes(privateKey)
	return pub.SerializeCompressed()
}

// ErrPointAtInfinity is returned by GeneratorMulAndAdd when the resulting
// point is the identity element.
var ErrPointAtInfinity = newPointAtInfinityError()

func newPointAtInfinityError() error {
	return errPointAtInfinity{}
}

type errPointAtInfinity struct{}

func (errPointAtInfinity) Error() string { return "crypto: point at infinity" }

// GeneratorMulAndAdd computes compressed(G*scalar + parsePoint(basePubKey)),
// the CKDpub public-parent derivation step.
func GeneratorMulAndAdd(scalar []byte, basePubKey []byte) ([]byte, error) {
	var k secp256k1.ModNScalar
	k.SetByteSlice(scalar)

	var term secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&k, &term)

	base, err := secp256k1.ParsePubKey(basePubKey)
	if err != nil {
		return nil, err
	}
	var baseJ, sum secp256k1.JacobianPoint
	base.AsJacobian(&baseJ)

	secp256k1.AddNonConst(&term, &baseJ, &sum)
	sum.ToAffine()
	if sum.X.IsZero() && sum.Y.IsZero() {
		return nil, ErrPointAtInfinity
	}
	result := secp256k1.NewPublicKey(&sum.X, &sum.Y)
	return result.SerializeCompressed(), nil
}

// AddModN returns (a + b) mod n as a 32-byte big-endian scalar, whether
// either a or b overflowed the curve order, and whether the sum is zero.
func AddModN(a, b []byte) (sum [32]byte, overflowed bool, isZero bool) {
	var sa, sb secp256k1.ModNScalar
	oa := sa.SetByteSlice(a)
	ob := sb.SetByteSlice(b)
	sa.Add(&sb)
	return sa.Bytes(), oa || ob, sa.IsZero()
}

// ScalarLessThanN reports whether the given 32-byte big-endian scalar is a
// valid non-overflowing element of Z_n (i.e. strictly less than the curve
// order).
func ScalarLessThanN(scalar []byte) bool {
	var s secp256k1.ModNScalar
	overflow := s.SetByteSlice(scalar)
	return !overflow
}
