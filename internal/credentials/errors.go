package credentials

import "errors"

var (
	// ErrLocked is returned by operations that require the ephemeral
	// key to already be in memory.
	ErrLocked = errors.New("credentials: wallet is locked")
	// ErrAlreadyUnlocked is returned by Unlock when the ephemeral key is
	// already held in memory.
	ErrAlreadyUnlocked = errors.New("credentials: wallet is already unlocked")
	// ErrCheckDecryptionFailed is returned by Unlock when the derived key
	// fails to decrypt the stored check value (bad PKCS#7 padding) — the
	// common case for a wrong passphrase. Unlock also returns it when the
	// check verifies but the wrapped ephemeral key fails to decrypt.
	ErrCheckDecryptionFailed = errors.New("credentials: check decryption failed")
	// ErrCheckMismatch is returned by Unlock when the derived key
	// decrypts the check value but it does not match the expected
	// plaintext — a wrong passphrase that happened to produce valid
	// padding.
	ErrCheckMismatch = errors.New("credentials: check verification failed")
)

// ErrWrongPassphrase is returned by Unlock for any wrong-passphrase
// outcome, decryption failure or verification mismatch alike. Callers
// that only care whether the passphrase was wrong can compare against
// this; callers that need to distinguish the two (e.g. the dispatch
// package's distinct error codes) should use errors.Is against
// ErrCheckDecryptionFailed or ErrCheckMismatch instead, since the error
// Unlock returns wraps ErrWrongPassphrase together with one of them.
var ErrWrongPassphrase = errors.New("credentials: wrong passphrase")
