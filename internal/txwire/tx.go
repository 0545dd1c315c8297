package txwire

import (
	"bytes"
	"encoding/binary"

	"github.com/happynine-wallet/hdwallet/internal/crypto"
)

// sighashAll is the signature-hash type this wallet core signs: commit
// to all inputs and outputs, appended as a little-endian uint32 before
// hashing the transaction during signing.
const sighashAll uint32 = 1

// TxIn is one transaction input.
type TxIn struct {
	PrevTxHash  []byte // internal byte order (not reversed for wire)
	PrevTxIndex uint32
	Script      []byte // scriptSig once signed, or the prior output's script while signing
	Sequence    uint32

	// suppressScript, when true, causes Serialize to emit a
	// zero-length script. Used during SIGHASH_ALL script suppression:
	// every input but the one currently being signed is blanked.
	suppressScript bool
}

// NewTxIn builds an unsigned TxIn spending prevTxHash:prevTxIndex, with
// script initially set to the previous output's script (needed during
// signing) and the standard sequence number 0xffffffff.
func NewTxIn(prevTxHash []byte, prevTxIndex uint32, script []byte) TxIn {
	return TxIn{
		PrevTxHash:  append([]byte(nil), prevTxHash...),
		PrevTxIndex: prevTxIndex,
		Script:      append([]byte(nil), script...),
		Sequence:    0xffffffff,
	}
}

// Serialize writes the wire encoding of this input: the previous
// transaction hash in reversed (wire) byte order, the output index, the
// script (or an empty script while SighashPreimage suppresses it), and
// the sequence number.
func (in TxIn) Serialize(buf *bytes.Buffer) {
	buf.Write(reverseBytes(in.PrevTxHash))
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], in.PrevTxIndex)
	buf.Write(idx[:])
	if in.suppressScript {
		PutVarInt(buf, 0)
	} else {
		PutBytesWithSize(buf, in.Script)
	}
	var seq [4]byte
	binary.LittleEndian.PutUint32(seq[:], in.Sequence)
	buf.Write(seq[:])
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// TxOut is one transaction output.
type TxOut struct {
	Value  uint64
	Script []byte
}

// NewTxOut builds a TxOut.
func NewTxOut(value uint64, script []byte) TxOut {
	return TxOut{Value: value, Script: append([]byte(nil), script...)}
}

// Serialize writes the wire encoding of this output.
func (out TxOut) Serialize(buf *bytes.Buffer) {
	var v [8]byte
	binary.LittleEndian.PutUint64(v[:], out.Value)
	buf.Write(v[:])
	PutBytesWithSize(buf, out.Script)
}

// Transaction is a version-1 Bitcoin transaction with no locktime.
type Transaction struct {
	Inputs  []TxIn
	Outputs []TxOut
}

// Serialize returns the full wire encoding: version, inputs, outputs,
// lock time.
func (tx *Transaction) Serialize() []byte {
	var buf bytes.Buffer
	var version [4]byte
	binary.LittleEndian.PutUint32(version[:], 1)
	buf.Write(version[:])

	PutVarInt(&buf, uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		in.Serialize(&buf)
	}

	PutVarInt(&buf, uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		out.Serialize(&buf)
	}

	var lockTime [4]byte
	buf.Write(lockTime[:])

	return buf.Bytes()
}

// Hash returns the transaction's txid: double-SHA256 of the
// serialization, reversed to the conventional display byte order.
func (tx *Transaction) Hash() [32]byte {
	digest := crypto.DoubleSHA256(tx.Serialize())
	var out [32]byte
	rev := reverseBytes(digest[:])
	copy(out[:], rev)
	return out
}

// Parse decodes a serialized version-1 transaction.
func Parse(data []byte) (*Transaction, error) {
	r := bytes.NewReader(data)

	var versionBuf [4]byte
	if _, err := r.Read(versionBuf[:]); err != nil {
		return nil, err
	}
	if binary.LittleEndian.Uint32(versionBuf[:]) != 1 {
		return nil, ErrUnsupportedVersion
	}

	inCount, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	inputs := make([]TxIn, 0, inCount)
	for i := uint64(0); i < inCount; i++ {
		var hashRev [32]byte
		if _, err := r.Read(hashRev[:]); err != nil {
			return nil, err
		}
		var idxBuf [4]byte
		if _, err := r.Read(idxBuf[:]); err != nil {
			return nil, err
		}
		script, err := ReadBytesWithSize(r)
		if err != nil {
			return nil, err
		}
		var seqBuf [4]byte
		if _, err := r.Read(seqBuf[:]); err != nil {
			return nil, err
		}
		inputs = append(inputs, TxIn{
			PrevTxHash:  reverseBytes(hashRev[:]),
			PrevTxIndex: binary.LittleEndian.Uint32(idxBuf[:]),
			Script:      script,
			Sequence:    binary.LittleEndian.Uint32(seqBuf[:]),
		})
	}

	outCount, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	outputs := make([]TxOut, 0, outCount)
	for i := uint64(0); i < outCount; i++ {
		var valueBuf [8]byte
		if _, err := r.Read(valueBuf[:]); err != nil {
			return nil, err
		}
		script, err := ReadBytesWithSize(r)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, TxOut{
			Value:  binary.LittleEndian.Uint64(valueBuf[:]),
			Script: script,
		})
	}

	var lockTimeBuf [4]byte
	if _, err := r.Read(lockTimeBuf[:]); err != nil {
		return nil, err
	}

	return &Transaction{Inputs: inputs, Outputs: outputs}, nil
}

// SighashPreimage returns the serialization to sign for input
// inputIndex under SIGHASH_ALL: all other inputs' scripts are
// suppressed, the input being signed carries subscript in place of its
// usual script, and the SIGHASH_ALL type is appended.
func (tx *Transaction) SighashPreimage(inputIndex int, subscript []byte) []byte {
	working := &Transaction{
		Inputs:  make([]TxIn, len(tx.Inputs)),
		Outputs: tx.Outputs,
	}
	for i, in := range tx.Inputs {
		c := in
		if i == inputIndex {
			c.Script = subscript
			c.suppressScript = false
		} else {
			c.suppressScript = true
		}
		working.Inputs[i] = c
	}

	serialized := working.Serialize()
	var sighashType [4]byte
	binary.LittleEndian.PutUint32(sighashType[:], sighashAll)
	return append(serialized, sighashType[:]...)
}
