// Package signer implements SIGHASH_ALL P2PKH transaction signing: fund
// selection by walking the supplied unspent outputs from last to first,
// change-output construction, and the per-input script-suppression
// signing loop.
package signer

import (
	"bytes"

	"github.com/happynine-wallet/hdwallet/internal/address"
	"github.com/happynine-wallet/hdwallet/internal/crypto"
	"github.com/happynine-wallet/hdwallet/internal/txwire"
)

// KeyProvider answers the question a signer must ask for every input it
// spends: given the hash160 embedded in that input's previous output
// script, produce the compressed public key and private key that can
// satisfy it. Implementations materialize keys on demand (see the
// wallet package) rather than holding every derived key permanently.
type KeyProvider interface {
	GetKeysForAddress(hash160 []byte) (publicKey, privateKey []byte, ok bool)
}

// UnspentOutput is a spendable prior output, identified by the
// transaction that created it and its index within that transaction.
type UnspentOutput struct {
	TxHash  []byte
	TxIndex uint32
	Script  []byte
	Value   uint64
}

// Recipient is a desired payment: an amount and a destination hash160.
type Recipient struct {
	Hash160 []byte
	Value   uint64
}

// CreateSignedTransaction selects unspent outputs (walked from the end
// of the slice backward, in whatever order the caller supplied them)
// to cover recipients' total value plus fee, builds a change
// output for any excess paid to changeHash160, and signs every input
// under SIGHASH_ALL. It returns ErrNotEnoughFunds if unspent cannot
// cover the total, and ErrKeyNotFound if keyProvider cannot produce a
// key for one of the selected inputs' addresses.
func CreateSignedTransaction(keyProvider KeyProvider, unspent []UnspentOutput, recipients []Recipient, changeHash160 []byte, fee uint64) (*txwire.Transaction, error) {
	required, changeValue, err := selectUnspentOutputs(unspent, totalValue(recipients)+fee)
	if err != nil {
		return nil, err
	}

	tx := &txwire.Transaction{}
	for _, r := range recipients {
		tx.Outputs = append(tx.Outputs, txwire.NewTxOut(r.Value, address.P2PKHScript(r.Hash160)))
	}
	if changeValue != 0 {
		tx.Outputs = append(tx.Outputs, txwire.NewTxOut(changeValue, address.P2PKHScript(changeHash160)))
	}

	signingPub := make(map[string][]byte)
	signingKey := make(map[string][]byte)
	for _, u := range required {
		hash160, ok := address.RecognizeScript(u.Script)
		if !ok {
			return nil, ErrUnrecognizedScript
		}
		key := string(hash160)
		if _, already := signingKey[key]; already {
			continue
		}
		pub, priv, ok := keyProvider.GetKeysForAddress(hash160)
		if !ok {
			return nil, ErrKeyNotFound
		}
		signingPub[key] = pub
		signingKey[key] = priv
	}

	for _, u := range required {
		tx.Inputs = append(tx.Inputs, txwire.NewTxIn(u.TxHash, u.TxIndex, u.Script))
	}

	for i, u := range required {
		hash160, _ := address.RecognizeScript(u.Script)
		subscript := address.P2PKHScript(hash160)
		preimage := tx.SighashPreimage(i, subscript)
		digest := crypto.DoubleSHA256(preimage)

		priv := signingKey[string(hash160)]
		sig, err := crypto.ECDSASignSecp256k1(priv, digest[:])
		if err != nil {
			return nil, err
		}

		sigWithType := append(append([]byte(nil), sig...), byte(sighashAllType))

		var scriptSig bytes.Buffer
		txwire.PutBytesWithSize(&scriptSig, sigWithType)
		txwire.PutBytesWithSize(&scriptSig, signingPub[string(hash160)])
		tx.Inputs[i].Script = scriptSig.Bytes()
	}

	return tx, nil
}

const sighashAllType = 0x01

func totalValue(recipients []Recipient) uint64 {
	var sum uint64
	for _, r := range recipients {
		sum += r.Value
	}
	return sum
}

// selectUnspentOutputs walks unspent from the last element backward,
// accumulating outputs until their total covers requiredValue. It
// returns the selected outputs and any change due back to the spender.
func selectUnspentOutputs(unspent []UnspentOutput, requiredValue uint64) (selected []UnspentOutput, change uint64, err error) {
	remaining := requiredValue
	for i := len(unspent) - 1; i >= 0; i-- {
		if remaining == 0 {
			break
		}
		u := unspent[i]
		selected = append(selected, u)
		if remaining >= u.Value {
			remaining -= u.Value
		} else {
			change = u.Value - remaining
			remaining = 0
		}
	}
	if remaining != 0 {
		return nil, 0, ErrNotEnoughFunds
	}
	return selected, change, nil
}
