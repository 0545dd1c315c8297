package node

import (
	"bytes"
	"testing"

	"github.com/happynine-wallet/hdwallet/internal/crypto"
)

const (
	privateVersion = 0x0488ADE4
	publicVersion  = 0x0488B21E
)

func masterFromSeedHex(t *testing.T, seedHex string) *Node {
	t.Helper()
	seed, err := decodeHex(seedHex)
	if err != nil {
		t.Fatalf("decodeHex: %v", err)
	}
	digest := crypto.HMACSHA512([]byte("Bitcoin seed"), seed)
	return New(digest[:32], digest[32:], privateVersion, publicVersion, 0, 0, 0)
}

func decodeHex(s string) ([]byte, error) {
	out := make([]byte, len(s)/2)
	for i := range out {
		hi := hexDigit(s[i*2])
		lo := hexDigit(s[i*2+1])
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexDigit(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}

func TestMasterNodeFromSeedIsPrivate(t *testing.T) {
	n := masterFromSeedHex(t, "000102030405060708090a0b0c0d0e0f")
	if !n.IsPrivate() {
		t.Fatal("master node from seed must be private")
	}
	if n.Depth() != 0 || n.ParentFingerprint() != 0 || n.ChildNum() != 0 {
		t.Errorf("master node must have depth/parent/child all zero, got %d/%d/%d",
			n.Depth(), n.ParentFingerprint(), n.ChildNum())
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	n := masterFromSeedHex(t, "000102030405060708090a0b0c0d0e0f")
	ser := n.SerializePrivate()
	if len(ser) != 78 {
		t.Fatalf("serialized length = %d, want 78", len(ser))
	}

	parsed, err := Parse(ser, privateVersion, publicVersion)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(parsed.SecretKey(), n.SecretKey()) {
		t.Error("round-tripped secret key mismatch")
	}
	if !bytes.Equal(parsed.ChainCode(), n.ChainCode()) {
		t.Error("round-tripped chain code mismatch")
	}
	if !bytes.Equal(parsed.PublicKey(), n.PublicKey()) {
		t.Error("round-tripped public key mismatch")
	}
}

func TestSerializePublicDropsSecretKey(t *testing.T) {
	n := masterFromSeedHex(t, "000102030405060708090a0b0c0d0e0f")
	ser := n.SerializePublic()

	parsed, err := Parse(ser, privateVersion, publicVersion)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.IsPrivate() {
		t.Error("public serialization must parse back as public-only")
	}
	if parsed.SecretKey() != nil {
		t.Error("public-only node must not carry a secret key")
	}
	if !bytes.Equal(parsed.PublicKey(), n.PublicKey()) {
		t.Error("public key must survive public serialization")
	}
}

func TestSerializePrivateOnPublicOnlyNodeIsEmpty(t *testing.T) {
	n := masterFromSeedHex(t, "000102030405060708090a0b0c0d0e0f")
	pub := n.Neuter()

	ser := pub.Serialize(true)
	if len(ser) != 0 {
		t.Errorf("Serialize(true) on a public-only node = %d bytes, want 0", len(ser))
	}
	if ser := pub.SerializePrivate(); len(ser) != 0 {
		t.Errorf("SerializePrivate() on a public-only node = %d bytes, want 0", len(ser))
	}
}

func TestNeuterDropsSecretKey(t *testing.T) {
	n := masterFromSeedHex(t, "000102030405060708090a0b0c0d0e0f")
	pub := n.Neuter()
	if pub.IsPrivate() {
		t.Error("Neuter must produce a public-only node")
	}
	if !bytes.Equal(pub.PublicKey(), n.PublicKey()) {
		t.Error("Neuter must preserve the public key")
	}
	if !bytes.Equal(pub.ChainCode(), n.ChainCode()) {
		t.Error("Neuter must preserve the chain code")
	}
}

func TestParseRejectsWrongLength(t *testing.T) {
	_, err := Parse(make([]byte, 77), privateVersion, publicVersion)
	if err != ErrInvalidLength {
		t.Errorf("err = %v, want ErrInvalidLength", err)
	}
}

func TestFingerprintIsHash160Prefix(t *testing.T) {
	n := masterFromSeedHex(t, "000102030405060708090a0b0c0d0e0f")
	h := crypto.Hash160(n.PublicKey())
	want := uint32(h[0])<<24 | uint32(h[1])<<16 | uint32(h[2])<<8 | uint32(h[3])
	if n.Fingerprint() != want {
		t.Errorf("fingerprint = %x, want %x", n.Fingerprint(), want)
	}
}
