// Package credentials implements the passphrase-gated ephemeral-key
// scheme used to wrap extended private keys at rest: scrypt derives a
// key-encryption key from the passphrase and a random salt, a fixed
// plaintext check value proves the passphrase is correct without ever
// storing it, and the session's ephemeral key (wrapped by the KEK) is
// the key actually used to encrypt and decrypt stored items.
package credentials

import (
	"bytes"
	"fmt"

	"github.com/happynine-wallet/hdwallet/internal/crypto"
)

const keySize = 32

// passphraseCheck is double-SHA256("Happynine wallet core"), a fixed
// plaintext whose successful decryption under a derived key proves the
// passphrase is correct.
var passphraseCheck = func() []byte {
	sum := crypto.DoubleSHA256([]byte("Happynine wallet core"))
	return sum[:]
}()

// Credentials holds the on-disk passphrase envelope (salt, check,
// wrapped ephemeral key) and, once unlocked, the in-memory ephemeral
// key used to encrypt and decrypt stored items. The zero value is an
// unconfigured Credentials with no passphrase set.
type Credentials struct {
	params           crypto.ScryptParams
	salt             []byte
	check            []byte
	encryptedEphemeral []byte
	ephemeral        []byte
}

// New returns a Credentials using the given scrypt cost parameters.
func New(params crypto.ScryptParams) *Credentials {
	return &Credentials{params: params}
}

// Load restores a Credentials from its serialized envelope, e.g. after
// a restart. The wallet remains locked until Unlock is called.
func Load(params crypto.ScryptParams, salt, check, encryptedEphemeral []byte) *Credentials {
	return &Credentials{
		params:             params,
		salt:               append([]byte(nil), salt...),
		check:              append([]byte(nil), check...),
		encryptedEphemeral: append([]byte(nil), encryptedEphemeral...),
	}
}

// LoadUnlocked returns a Credentials already holding ephemeral in
// memory, for callers (such as the dispatch package) that have already
// authenticated a session and recovered the ephemeral key by some other
// means — e.g. decrypting it under a previously-derived key-encryption
// key rather than re-deriving one from a passphrase.
func LoadUnlocked(params crypto.ScryptParams, ephemeral []byte) *Credentials {
	return &Credentials{
		params:    params,
		ephemeral: append([]byte(nil), ephemeral...),
	}
}

// IsLocked reports whether the ephemeral key is not currently held in
// memory.
func (c *Credentials) IsLocked() bool { return len(c.ephemeral) == 0 }

// IsPassphraseSet reports whether a passphrase envelope has been
// established.
func (c *Credentials) IsPassphraseSet() bool { return len(c.check) != 0 }

// SetPassphrase establishes a new passphrase (generating a fresh
// ephemeral key) or, if a passphrase is already set, re-wraps the
// existing ephemeral key under a new passphrase and salt — the
// ephemeral key itself, and therefore every item already encrypted
// under it, is left unchanged. Changing the passphrase while locked is
// an error: SetPassphrase needs the current ephemeral key in memory to
// re-wrap it.
//
// Returns the new salt, check value, and encrypted ephemeral key,
// which the caller persists.
func (c *Credentials) SetPassphrase(passphrase string) (salt, check, encryptedEphemeral []byte, err error) {
	if c.IsLocked() {
		if c.IsPassphraseSet() {
			return nil, nil, nil, ErrLocked
		}
		ephemeral, err := crypto.RandomBytes(keySize)
		if err != nil {
			return nil, nil, nil, err
		}
		c.ephemeral = ephemeral
	}

	newSalt, err := crypto.RandomBytes(keySize)
	if err != nil {
		return nil, nil, nil, err
	}

	key, err := crypto.Scrypt([]byte(passphrase), newSalt, c.params)
	if err != nil {
		return nil, nil, nil, err
	}

	newCheck, err := crypto.AESCBCEncrypt(key, passphraseCheck)
	if err != nil {
		return nil, nil, nil, err
	}

	newEncryptedEphemeral, err := crypto.AESCBCEncrypt(key, c.ephemeral)
	if err != nil {
		return nil, nil, nil, err
	}

	c.salt = newSalt
	c.check = newCheck
	c.encryptedEphemeral = newEncryptedEphemeral

	return newSalt, newCheck, newEncryptedEphemeral, nil
}

// Unlock derives the key-encryption key from passphrase and the stored
// salt, verifies it against the stored check value, and if it matches,
// decrypts and holds the ephemeral key in memory.
func (c *Credentials) Unlock(passphrase string) error {
	if !c.IsLocked() {
		return ErrAlreadyUnlocked
	}

	key, err := crypto.Scrypt([]byte(passphrase), c.salt, c.params)
	if err != nil {
		return err
	}

	decryptedCheck, err := crypto.AESCBCDecrypt(key, c.check)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrongPassphrase, ErrCheckDecryptionFailed)
	}
	if !bytes.Equal(decryptedCheck, passphraseCheck) {
		return fmt.Errorf("%w: %w", ErrWrongPassphrase, ErrCheckMismatch)
	}

	ephemeral, err := crypto.AESCBCDecrypt(key, c.encryptedEphemeral)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrongPassphrase, ErrCheckDecryptionFailed)
	}

	c.ephemeral = ephemeral
	return nil
}

// Lock discards the in-memory ephemeral key.
func (c *Credentials) Lock() {
	c.ephemeral = nil
}

// EncryptItem encrypts plaintext under the unlocked ephemeral key.
func (c *Credentials) EncryptItem(plaintext []byte) ([]byte, error) {
	if c.IsLocked() {
		return nil, ErrLocked
	}
	return crypto.AESCBCEncrypt(c.ephemeral, plaintext)
}

// DecryptItem decrypts ciphertext under the unlocked ephemeral key.
func (c *Credentials) DecryptItem(ciphertext []byte) ([]byte, error) {
	if c.IsLocked() {
		return nil, ErrLocked
	}
	return crypto.AESCBCDecrypt(c.ephemeral, ciphertext)
}

// Ephemeral returns the in-memory ephemeral key, or nil if locked.
// Exposed for tests and for callers that compare ephemeral keys across
// a passphrase change.
func (c *Credentials) Ephemeral() []byte {
	if c.ephemeral == nil {
		return nil
	}
	return append([]byte(nil), c.ephemeral...)
}
