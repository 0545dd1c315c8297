// Package dispatch implements the request/reply surface spec.md §6
// describes: a method-name table translating hex/JSON request fields
// into calls against the core wallet components and back into reply
// fields. It mirrors the teacher's dispatcher in spirit — a plain
// function, not a network handler; actual request framing and
// transport remain out of scope.
package dispatch

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/happynine-wallet/hdwallet/internal/address"
	"github.com/happynine-wallet/hdwallet/internal/base58"
	"github.com/happynine-wallet/hdwallet/internal/config"
	"github.com/happynine-wallet/hdwallet/internal/credentials"
	"github.com/happynine-wallet/hdwallet/internal/crypto"
	"github.com/happynine-wallet/hdwallet/internal/derive"
	"github.com/happynine-wallet/hdwallet/internal/node"
	"github.com/happynine-wallet/hdwallet/internal/signer"
)

// Dispatch routes method to the matching core operation, translating
// params into calls against the node/derive/credentials/signer
// packages and the result (or failure) into a reply map. Bytes in
// params and in the reply are lowercase hex strings, per spec.md §6.
func Dispatch(cfg config.Config, method string, params map[string]string) map[string]string {
	var (
		reply map[string]string
		err   error
	)

	switch method {
	case "create-node":
		reply, err = createNode(cfg, params)
	case "get-node":
		reply, err = getNode(cfg, params)
	case "get-addresses":
		reply, err = getAddresses(cfg, params)
	case "set-passphrase":
		reply, err = setPassphrase(cfg, params)
	case "unlock-wallet":
		reply, err = unlockWallet(cfg, params)
	case "encrypt-item":
		reply, err = encryptItem(cfg, params)
	case "decrypt-item":
		reply, err = decryptItem(cfg, params)
	case "get-signed-transaction":
		reply, err = getSignedTransaction(cfg, params)
	default:
		return errorReply(errUnknownMethod, fmt.Errorf("unknown method %q", method))
	}

	if err != nil {
		return errorReply(codeForError(err), err)
	}
	return reply
}

func errorReply(code int, err error) map[string]string {
	return map[string]string{
		"error_code":    strconv.Itoa(code),
		"error_message": err.Error(),
	}
}

// codeForError maps a core error to the numeric error_code spec.md §6
// specifies, falling back to the KDF/RNG-failure code (-1) for anything
// not explicitly enumerated below.
func codeForError(err error) int {
	switch {
	case errors.Is(err, credentials.ErrCheckDecryptionFailed):
		return errCheckDecryptionFailed
	case errors.Is(err, credentials.ErrCheckMismatch):
		return errCheckVerificationFailed
	case errors.Is(err, ErrInternalKeyDecryption):
		return errInternalKeyDecryption
	case errors.Is(err, signer.ErrNotEnoughFunds):
		return errInsufficientFunds
	case errors.Is(err, signer.ErrKeyNotFound):
		return errKeyNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, derive.ErrInvalidSeed), errors.Is(err, derive.ErrInvalidPath), errors.Is(err, derive.ErrWantsPrivate),
		errors.Is(err, derive.ErrInvalidChild), errors.Is(err, node.ErrInvalidLength):
		return errPrecondition
	default:
		return errKDFOrRNGFailure
	}
}

func hexEncode(b []byte) string { return hex.EncodeToString(b) }

func hexDecode(s string) ([]byte, error) { return hex.DecodeString(s) }

// resolveNode interprets input as a seed (any length other than 78
// bytes once hex-decoded), a raw 78-byte extended key, or a
// Base58Check-encoded extended key, per the "seed hex OR 78-byte ext
// key OR base58check ext key" inputs spec.md §6 describes for
// get-node/get-addresses.
func resolveNode(cfg config.Config, input string) (*node.Node, error) {
	if raw, err := hexDecode(input); err == nil {
		if len(raw) == 78 {
			return node.Parse(raw, cfg.ExtendedPrivateVersion(), cfg.ExtendedPublicVersion())
		}
		if len(raw) > 0 {
			return derive.NewMasterNode(raw, cfg.ExtendedPrivateVersion(), cfg.ExtendedPublicVersion())
		}
	}

	decoded, err := base58.DecodeCheckRaw(input)
	if err != nil {
		return nil, ErrInvalidInput
	}
	return node.Parse(decoded, cfg.ExtendedPrivateVersion(), cfg.ExtendedPublicVersion())
}

// nodeReply builds the success fields spec.md §6 lists for
// create-node/get-node: hex_id, fingerprint, address, public_key,
// chain_code, ext_pub_hex, ext_pub_b58, plus the private forms when n
// holds a private key.
func nodeReply(cfg config.Config, n *node.Node) map[string]string {
	hash160 := address.FromPublicKey(n.PublicKey())

	reply := map[string]string{
		"hex_id":      hexEncode(hash160[:]),
		"fingerprint": fmt.Sprintf("%08x", n.Fingerprint()),
		"address":     address.Encode(cfg.AddressVersion(), hash160[:]),
		"public_key":  hexEncode(n.PublicKey()),
		"chain_code":  hexEncode(n.ChainCode()),
		"ext_pub_hex": hexEncode(n.SerializePublic()),
		"ext_pub_b58": base58.EncodeCheckRaw(n.SerializePublic()),
	}

	if n.IsPrivate() {
		reply["ext_prv_hex"] = hexEncode(n.SerializePrivate())
		reply["ext_prv_b58"] = base58.EncodeCheckRaw(n.SerializePrivate())
		reply["private_key"] = hexEncode(n.SecretKey())
	}

	return reply
}

func createNode(cfg config.Config, params map[string]string) (map[string]string, error) {
	var seed []byte
	if seedHex, ok := params["seed"]; ok && seedHex != "" {
		s, err := hexDecode(seedHex)
		if err != nil {
			return nil, ErrInvalidInput
		}
		seed = s
	} else {
		s, err := crypto.RandomBytes(32)
		if err != nil {
			return nil, err
		}
		seed = s
	}
	master, err := derive.NewMasterNode(seed, cfg.ExtendedPrivateVersion(), cfg.ExtendedPublicVersion())
	if err != nil {
		return nil, err
	}
	return nodeReply(cfg, master), nil
}

func getNode(cfg config.Config, params map[string]string) (map[string]string, error) {
	input, ok := params["seed"]
	if !ok || input == "" {
		input, ok = params["ext_key"]
	}
	if !ok || input == "" {
		return nil, ErrInvalidInput
	}

	base, err := resolveNode(cfg, input)
	if err != nil {
		return nil, err
	}

	path := params["path"]
	if path == "" {
		path = "m"
	}
	n, err := derive.DerivePath(base, path)
	if err != nil {
		return nil, err
	}

	return nodeReply(cfg, n), nil
}

func getAddresses(cfg config.Config, params map[string]string) (map[string]string, error) {
	input, ok := params["seed"]
	if !ok || input == "" {
		input, ok = params["ext_key"]
	}
	if !ok || input == "" {
		return nil, ErrInvalidInput
	}

	base, err := resolveNode(cfg, input)
	if err != nil {
		return nil, err
	}

	start, err := strconv.ParseUint(params["start"], 10, 32)
	if err != nil {
		return nil, ErrInvalidInput
	}
	count, err := strconv.ParseUint(params["count"], 10, 32)
	if err != nil {
		return nil, ErrInvalidInput
	}
	pathPrefix := params["path"]
	if pathPrefix == "" {
		pathPrefix = "m"
	}

	type addressEntry struct {
		Index   uint32 `json:"index"`
		Path    string `json:"path"`
		Address string `json:"address"`
		Key     string `json:"key,omitempty"`
	}

	entries := make([]addressEntry, 0, count)
	for i := uint32(start); i < uint32(start)+uint32(count); i++ {
		childPath := fmt.Sprintf("%s/%d", pathPrefix, i)
		child, err := derive.DerivePath(base, childPath)
		if err != nil {
			return nil, err
		}
		hash160 := address.FromPublicKey(child.PublicKey())
		entry := addressEntry{
			Index:   i,
			Path:    childPath,
			Address: address.Encode(cfg.AddressVersion(), hash160[:]),
		}
		if child.IsPrivate() {
			entry.Key = hexEncode(child.SecretKey())
		} else {
			entry.Key = hexEncode(child.PublicKey())
		}
		entries = append(entries, entry)
	}

	encoded, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	return map[string]string{"addresses": string(encoded)}, nil
}

func setPassphrase(cfg config.Config, params map[string]string) (map[string]string, error) {
	newPassphrase, ok := params["new_passphrase"]
	if !ok || newPassphrase == "" {
		return nil, ErrInvalidInput
	}

	var creds *credentials.Credentials
	if keyHex, ok := params["key"]; ok && keyHex != "" {
		key, err := hexDecode(keyHex)
		if err != nil {
			return nil, ErrInvalidInput
		}
		encEphemeral, err := hexDecode(params["internal_key_encrypted"])
		if err != nil {
			return nil, ErrInvalidInput
		}
		ephemeral, err := crypto.AESCBCDecrypt(key, encEphemeral)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInternalKeyDecryption, err)
		}
		creds = credentials.LoadUnlocked(cfg.Scrypt, ephemeral)
	} else {
		creds = credentials.New(cfg.Scrypt)
	}

	salt, check, encryptedEphemeral, err := creds.SetPassphrase(newPassphrase)
	if err != nil {
		return nil, err
	}

	key, err := crypto.Scrypt([]byte(newPassphrase), salt, cfg.Scrypt)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"salt":                   hexEncode(salt),
		"key":                    hexEncode(key),
		"check":                  hexEncode(check),
		"internal_key":           hexEncode(creds.Ephemeral()),
		"internal_key_encrypted": hexEncode(encryptedEphemeral),
	}, nil
}

func unlockWallet(cfg config.Config, params map[string]string) (map[string]string, error) {
	salt, err := hexDecode(params["salt"])
	if err != nil {
		return nil, ErrInvalidInput
	}
	check, err := hexDecode(params["check"])
	if err != nil {
		return nil, ErrInvalidInput
	}
	encEphemeral, err := hexDecode(params["internal_key_encrypted"])
	if err != nil {
		return nil, ErrInvalidInput
	}
	passphrase := params["passphrase"]

	creds := credentials.Load(cfg.Scrypt, salt, check, encEphemeral)
	if err := creds.Unlock(passphrase); err != nil {
		return nil, err
	}

	key, err := crypto.Scrypt([]byte(passphrase), salt, cfg.Scrypt)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"key":          hexEncode(key),
		"internal_key": hexEncode(creds.Ephemeral()),
	}, nil
}

func encryptItem(cfg config.Config, params map[string]string) (map[string]string, error) {
	ephemeral, err := hexDecode(params["internal_key"])
	if err != nil {
		return nil, ErrInvalidInput
	}
	creds := credentials.LoadUnlocked(cfg.Scrypt, ephemeral)

	ciphertext, err := creds.EncryptItem([]byte(params["item"]))
	if err != nil {
		return nil, err
	}
	return map[string]string{"item_encrypted": hexEncode(ciphertext)}, nil
}

func decryptItem(cfg config.Config, params map[string]string) (map[string]string, error) {
	ephemeral, err := hexDecode(params["internal_key"])
	if err != nil {
		return nil, ErrInvalidInput
	}
	creds := credentials.LoadUnlocked(cfg.Scrypt, ephemeral)

	ciphertext, err := hexDecode(params["item_encrypted"])
	if err != nil {
		return nil, ErrInvalidInput
	}
	plaintext, err := creds.DecryptItem(ciphertext)
	if err != nil {
		return nil, err
	}
	return map[string]string{"item": string(plaintext)}, nil
}

// unspentTxoParam and recipientParam are the JSON shapes get-signed-transaction
// expects under its "unspent_txos" and "recipients" fields — arrays, so
// they travel as a JSON-encoded string within the otherwise-scalar
// params map.
type unspentTxoParam struct {
	TxHash  string `json:"tx_hash"`
	TxIndex uint32 `json:"tx_index"`
	Script  string `json:"script"`
	Value   uint64 `json:"value"`
}

type recipientParam struct {
	Address string `json:"address"`
	Value   uint64 `json:"value"`
}

// singleKeyProvider answers for exactly one address: the one derived
// from the signing node get-signed-transaction was given. Scenario 5 in
// spec.md §8 spends a single funding address, which this matches; a
// multi-address spend from a single dispatch call is out of scope (use
// the wallet package's gap-limit KeyProvider for that instead).
type singleKeyProvider struct {
	hash160    [20]byte
	publicKey  []byte
	privateKey []byte
}

func (p singleKeyProvider) GetKeysForAddress(hash160 []byte) ([]byte, []byte, bool) {
	if !bytes.Equal(hash160, p.hash160[:]) {
		return nil, nil, false
	}
	return p.publicKey, p.privateKey, true
}

func getSignedTransaction(cfg config.Config, params map[string]string) (map[string]string, error) {
	extPrv, err := base58.DecodeCheckRaw(params["ext_prv_b58"])
	if err != nil {
		return nil, ErrInvalidInput
	}
	n, err := node.Parse(extPrv, cfg.ExtendedPrivateVersion(), cfg.ExtendedPublicVersion())
	if err != nil {
		return nil, err
	}
	if !n.IsPrivate() {
		return nil, ErrInvalidInput
	}

	var txoParams []unspentTxoParam
	if err := json.Unmarshal([]byte(params["unspent_txos"]), &txoParams); err != nil {
		return nil, ErrInvalidInput
	}
	var recipientParams []recipientParam
	if err := json.Unmarshal([]byte(params["recipients"]), &recipientParams); err != nil {
		return nil, ErrInvalidInput
	}
	fee, err := strconv.ParseUint(params["fee"], 10, 64)
	if err != nil {
		return nil, ErrInvalidInput
	}
	changeIndex, err := strconv.ParseUint(params["change_index"], 10, 32)
	if err != nil {
		return nil, ErrInvalidInput
	}

	var unspent []signer.UnspentOutput
	for _, u := range txoParams {
		txHash, err := hexDecode(u.TxHash)
		if err != nil {
			return nil, ErrInvalidInput
		}
		script, err := hexDecode(u.Script)
		if err != nil {
			return nil, ErrInvalidInput
		}
		unspent = append(unspent, signer.UnspentOutput{
			TxHash:  txHash,
			TxIndex: u.TxIndex,
			Script:  script,
			Value:   u.Value,
		})
	}

	var recipients []signer.Recipient
	for _, r := range recipientParams {
		_, hash160, err := address.Decode(r.Address)
		if err != nil {
			return nil, ErrInvalidInput
		}
		recipients = append(recipients, signer.Recipient{Hash160: hash160, Value: r.Value})
	}

	changeChild, err := derive.DerivePath(n, fmt.Sprintf("m/1/%d", changeIndex))
	if err != nil {
		return nil, err
	}
	changeHash160 := address.FromPublicKey(changeChild.PublicKey())

	signingHash160 := address.FromPublicKey(n.PublicKey())
	kp := singleKeyProvider{hash160: signingHash160, publicKey: n.PublicKey(), privateKey: n.SecretKey()}

	signed, err := signer.CreateSignedTransaction(kp, unspent, recipients, changeHash160[:], fee)
	if err != nil {
		return nil, err
	}

	return map[string]string{"signed_tx": hexEncode(signed.Serialize())}, nil
}
