package crypto

import (
	"bytes"
	"testing"
)

func TestRandomBytesLength(t *testing.T) {
	b, err := RandomBytes(32)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 32 {
		t.Errorf("len = %d, want 32", len(b))
	}
}

func TestDoubleSHA256Deterministic(t *testing.T) {
	a := DoubleSHA256([]byte("happynine"))
	b := DoubleSHA256([]byte("happynine"))
	if a != b {
		t.Error("DoubleSHA256 should be deterministic")
	}
	c := DoubleSHA256([]byte("happynine!"))
	if a == c {
		t.Error("different inputs should hash differently")
	}
}

func TestHash160Length(t *testing.T) {
	h := Hash160([]byte("test"))
	if len(h) != 20 {
		t.Errorf("len = %d, want 20", len(h))
	}
}

func TestHMACSHA512Length(t *testing.T) {
	out := HMACSHA512([]byte("key"), []byte("data"))
	if len(out) != 64 {
		t.Errorf("len = %d, want 64", len(out))
	}
}

func TestScryptDeterministic(t *testing.T) {
	salt := bytes.Repeat([]byte{0x01}, 32)
	// use small, fast params for the test
	params := ScryptParams{N: 16, R: 1, P: 1, DKLen: 32}
	k1, err := Scrypt([]byte("pass"), salt, params)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := Scrypt([]byte("pass"), salt, params)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(k1, k2) {
		t.Error("scrypt should be deterministic for the same inputs")
	}
	k3, _ := Scrypt([]byte("other"), salt, params)
	if bytes.Equal(k1, k3) {
		t.Error("different passphrases should not produce the same key")
	}
}

func TestAESCBCRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x02}, 32)
	plaintext := []byte("the quick brown fox jumps over the lazy dog")

	ct, err := AESCBCEncrypt(key, plaintext)
	if err != nil {
		t.Fatal(err)
	}
	if len(ct) < 16 {
		t.Fatalf("ciphertext too short: %d", len(ct))
	}

	pt, err := AESCBCDecrypt(key, ct)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pt, plaintext) {
		t.Errorf("decrypted = %q, want %q", pt, plaintext)
	}
}

func TestAESCBCRandomIV(t *testing.T) {
	key := bytes.Repeat([]byte{0x03}, 32)
	plaintext := []byte("same plaintext")
	ct1, _ := AESCBCEncrypt(key, plaintext)
	ct2, _ := AESCBCEncrypt(key, plaintext)
	if bytes.Equal(ct1, ct2) {
		t.Error("two encryptions of the same plaintext should differ (random IV)")
	}
}

func TestAESCBCBadKeyFails(t *testing.T) {
	key := bytes.Repeat([]byte{0x04}, 32)
	plaintext := []byte("secret")
	ct, _ := AESCBCEncrypt(key, plaintext)

	wrongKey := bytes.Repeat([]byte{0x05}, 32)
	_, err := AESCBCDecrypt(wrongKey, ct)
	// Decryption under the wrong key almost always produces invalid
	// padding and must be rejected.
	if err == nil {
		t.Error("expected decryption with wrong key to fail padding check")
	}
}

func TestECDSASignDeterministic(t *testing.T) {
	priv := bytes.Repeat([]byte{0x01}, 32)
	digest := bytes.Repeat([]byte{0x02}, 32)

	sig1, err := ECDSASignSecp256k1(priv, digest)
	if err != nil {
		t.Fatal(err)
	}
	sig2, err := ECDSASignSecp256k1(priv, digest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(sig1, sig2) {
		t.Error("RFC 6979 signing should be deterministic")
	}
	// DER signatures start with 0x30.
	if sig1[0] != 0x30 {
		t.Errorf("signature should be DER-encoded, got leading byte 0x%02x", sig1[0])
	}
}

func TestScalarLessThanN(t *testing.T) {
	if !ScalarLessThanN(bytes.Repeat([]byte{0x01}, 32)) {
		t.Error("small scalar should be valid")
	}
	overflowing := bytes.Repeat([]byte{0xff}, 32)
	if ScalarLessThanN(overflowing) {
		t.Error("all-0xff scalar should overflow the curve order")
	}
}
