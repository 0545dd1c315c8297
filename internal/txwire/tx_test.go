package txwire

import (
	"bytes"
	"testing"

	"github.com/happynine-wallet/hdwallet/internal/crypto"
)

func TestVarIntRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0xfc, 0xfd, 0xffff, 0x10000, 0xffffffff, 0x100000000}
	for _, v := range values {
		var buf bytes.Buffer
		PutVarInt(&buf, v)
		r := bytes.NewReader(buf.Bytes())
		got, err := ReadVarInt(r)
		if err != nil {
			t.Fatalf("v=%d: %v", v, err)
		}
		if got != v {
			t.Errorf("v=%d: got %d", v, got)
		}
	}
}

func TestTransactionSerializeRoundTrip(t *testing.T) {
	tx := &Transaction{
		Inputs: []TxIn{
			NewTxIn(bytes.Repeat([]byte{0x01}, 32), 0, []byte{0x76, 0xa9}),
		},
		Outputs: []TxOut{
			NewTxOut(100000, []byte{0x76, 0xa9, 0x88, 0xac}),
		},
	}
	serialized := tx.Serialize()

	parsed, err := Parse(serialized)
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed.Inputs) != 1 || len(parsed.Outputs) != 1 {
		t.Fatalf("got %d inputs, %d outputs", len(parsed.Inputs), len(parsed.Outputs))
	}
	if !bytes.Equal(parsed.Inputs[0].PrevTxHash, tx.Inputs[0].PrevTxHash) {
		t.Error("prev tx hash mismatch after round trip")
	}
	if parsed.Outputs[0].Value != 100000 {
		t.Errorf("value = %d, want 100000", parsed.Outputs[0].Value)
	}
	if !bytes.Equal(parsed.Outputs[0].Script, tx.Outputs[0].Script) {
		t.Error("script mismatch after round trip")
	}
}

func TestHashIsDeterministicAndOrderReversed(t *testing.T) {
	tx := &Transaction{
		Inputs: []TxIn{
			NewTxIn(bytes.Repeat([]byte{0x02}, 32), 1, nil),
		},
		Outputs: []TxOut{
			NewTxOut(50, []byte{0x00}),
		},
	}
	h1 := tx.Hash()
	h2 := tx.Hash()
	if h1 != h2 {
		t.Error("Hash should be deterministic for an unchanged transaction")
	}
	digest := crypto.DoubleSHA256(tx.Serialize())
	for i := range h1 {
		if h1[i] != digest[len(digest)-1-i] {
			t.Fatal("Hash should be the double-SHA256 of the serialization in reversed byte order")
		}
	}

	tx.Outputs[0].Value = 51
	h3 := tx.Hash()
	if h1 == h3 {
		t.Error("Hash should change when the transaction changes")
	}
}

func TestSighashPreimageSuppressesOtherInputScripts(t *testing.T) {
	tx := &Transaction{
		Inputs: []TxIn{
			NewTxIn(bytes.Repeat([]byte{0x01}, 32), 0, []byte{0xAA, 0xAA}),
			NewTxIn(bytes.Repeat([]byte{0x02}, 32), 0, []byte{0xBB, 0xBB}),
		},
		Outputs: []TxOut{NewTxOut(1, []byte{0xCC})},
	}
	subscript := []byte{0x76, 0xa9, 0x14}
	preimage := tx.SighashPreimage(0, subscript)

	// The preimage must contain the subscript for input 0 but not the
	// original script bytes of input 1.
	if !bytes.Contains(preimage, subscript) {
		t.Error("preimage must contain the subscript for the signed input")
	}
	if bytes.Contains(preimage, []byte{0xBB, 0xBB}) {
		t.Error("preimage must suppress other inputs' scripts")
	}
	// Appended SIGHASH_ALL type, little-endian uint32 == 1.
	if preimage[len(preimage)-4] != 0x01 ||
		preimage[len(preimage)-3] != 0x00 ||
		preimage[len(preimage)-2] != 0x00 ||
		preimage[len(preimage)-1] != 0x00 {
		t.Error("preimage must end with the little-endian SIGHASH_ALL type")
	}
}
