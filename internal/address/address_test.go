package address

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/happynine-wallet/hdwallet/internal/derive"
)

func TestAddressRoundTrip(t *testing.T) {
	hash := bytes.Repeat([]byte{0xAB}, 20)
	enc := Encode(0x00, hash)
	version, dec, err := Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if version != 0x00 {
		t.Errorf("version = %x, want 0x00", version)
	}
	if !bytes.Equal(dec, hash) {
		t.Errorf("hash160 = %x, want %x", dec, hash)
	}
}

func TestWIFRoundTrip(t *testing.T) {
	priv := bytes.Repeat([]byte{0x01}, 32)
	wif := EncodeWIF(0x80, priv)
	version, dec, err := DecodeWIF(wif)
	if err != nil {
		t.Fatal(err)
	}
	if version != 0x80 {
		t.Errorf("version = %x, want 0x80", version)
	}
	if !bytes.Equal(dec, priv) {
		t.Errorf("private key = %x, want %x", dec, priv)
	}
}

func TestP2PKHScriptRoundTrip(t *testing.T) {
	hash := bytes.Repeat([]byte{0xCD}, 20)
	script := P2PKHScript(hash)
	got, ok := RecognizeScript(script)
	if !ok {
		t.Fatal("RecognizeScript failed to recognize a P2PKH script it built")
	}
	if !bytes.Equal(got, hash) {
		t.Errorf("recognized hash = %x, want %x", got, hash)
	}
}

func TestP2SHScriptRoundTrip(t *testing.T) {
	hash := bytes.Repeat([]byte{0xEF}, 20)
	script := P2SHScript(hash)
	got, ok := RecognizeScript(script)
	if !ok {
		t.Fatal("RecognizeScript failed to recognize a P2SH script it built")
	}
	if !bytes.Equal(got, hash) {
		t.Errorf("recognized hash = %x, want %x", got, hash)
	}
}

func TestRecognizeScriptRejectsGarbage(t *testing.T) {
	if _, ok := RecognizeScript([]byte{0x00, 0x01, 0x02}); ok {
		t.Error("RecognizeScript should reject an unrecognized script")
	}
}

// BIP-32 Test Vector 1, derivation m/0'/1: the resulting address must
// match the known-good value.
func TestDerivedAddressMatchesBIP32Vector1(t *testing.T) {
	seed, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	master, err := derive.NewMasterNode(seed, 0x0488ADE4, 0x0488B21E)
	if err != nil {
		t.Fatal(err)
	}

	child, err := derive.DerivePath(master, "m/0'/1")
	if err != nil {
		t.Fatal(err)
	}
	hash := FromPublicKey(child.PublicKey())
	got := Encode(0x00, hash[:])
	want := "1JQheacLPdM5ySCkrZkV66G2ApAXe1mqLj"
	if got != want {
		t.Errorf("address = %s, want %s", got, want)
	}
}
