// Package derive implements BIP-32 key derivation: building a master
// node from a seed, and walking CKDpriv/CKDpub child derivation steps
// along a path string such as "m/0'/1".
package derive

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/happynine-wallet/hdwallet/internal/crypto"
	"github.com/happynine-wallet/hdwallet/internal/node"
)

const bip0032HMACKey = "Bitcoin seed"

// HardenedOffset is added to a child index to request hardened
// derivation, per BIP-32.
const HardenedOffset = uint32(0x80000000)

// minSeedLen is the spec's minimum seed length; the reference
// implementation uses 32.
const minSeedLen = 16

// NewMasterNode derives the master node from a seed via
// HMAC-SHA512("Bitcoin seed", seed), splitting the 64-byte digest into a
// 32-byte secret key and a 32-byte chain code. Returns ErrInvalidSeed if
// seed is shorter than 16 bytes, or if IL interpreted as an integer is
// zero or >= the curve order.
func NewMasterNode(seed []byte, privateVersion, publicVersion uint32) (*node.Node, error) {
	if len(seed) < minSeedLen {
		return nil, ErrInvalidSeed
	}

	digest := crypto.HMACSHA512([]byte(bip0032HMACKey), seed)
	left32 := digest[:32]
	if !crypto.ScalarLessThanN(left32) {
		return nil, ErrInvalidSeed
	}
	if isAllZero(left32) {
		return nil, ErrInvalidSeed
	}

	return node.New(left32, digest[32:], privateVersion, publicVersion, 0, 0, 0), nil
}

func isAllZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// DeriveChild computes the i'th child of parent, per BIP-32 CKDpriv (if
// parent is private) or CKDpub (if parent is public-only). Returns
// ErrWantsPrivate if i requests hardened derivation from a public-only
// parent, and ErrInvalidChild for the (exceedingly rare) cases BIP-32
// defines as "proceed with the next value of i" — IL >= curve order,
// the derived private scalar being zero, or the derived public point
// being the identity.
func DeriveChild(parent *node.Node, i uint32) (*node.Node, error) {
	wantsHardened := i&HardenedOffset != 0
	if wantsHardened && !parent.IsPrivate() {
		return nil, ErrWantsPrivate
	}

	var childData []byte
	if wantsHardened {
		childData = append(childData, 0x00)
		childData = append(childData, parent.SecretKey()...)
	} else {
		childData = append(childData, parent.PublicKey()...)
	}
	var iBuf [4]byte
	binary.BigEndian.PutUint32(iBuf[:], i)
	childData = append(childData, iBuf[:]...)

	digest := crypto.HMACSHA512(parent.ChainCode(), childData)
	left32 := digest[:32]
	right32 := append([]byte(nil), digest[32:]...)

	if !crypto.ScalarLessThanN(left32) {
		return nil, ErrInvalidChild
	}

	var newChildKey []byte
	if parent.IsPrivate() {
		sum, _, isZero := crypto.AddModN(parent.SecretKey(), left32)
		if isZero {
			return nil, ErrInvalidChild
		}
		newChildKey = sum[:]
	} else {
		pub, err := crypto.GeneratorMulAndAdd(left32, parent.PublicKey())
		if err != nil {
			return nil, ErrInvalidChild
		}
		newChildKey = pub
	}

	return node.New(newChildKey, right32, parent.PrivateVersion(), parent.PublicVersion(),
		parent.Depth()+1, parent.Fingerprint(), i), nil
}

// DerivePath walks a slash-separated path such as "m/0'/1" or "m/0h/1"
// from parent, applying DeriveChild at each segment. A leading "m"
// component, if present, is ignored; the spec also allows the first
// segment to be omitted entirely (e.g. "0'/1").
func DerivePath(parent *node.Node, path string) (*node.Node, error) {
	parts := strings.Split(path, "/")
	if len(parts) == 0 {
		return nil, ErrInvalidPath
	}
	if parts[0] == "m" || parts[0] == "" {
		parts = parts[1:]
	}

	current := parent
	for _, part := range parts {
		if part == "" {
			continue
		}
		hardened := strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h") || strings.HasSuffix(part, "H")
		numPart := part
		if hardened {
			numPart = part[:len(part)-1]
		}
		n, err := strconv.ParseUint(numPart, 10, 32)
		if err != nil {
			return nil, ErrInvalidPath
		}
		index := uint32(n)
		if hardened {
			index += HardenedOffset
		}
		child, err := DeriveChild(current, index)
		if err != nil {
			return nil, err
		}
		current = child
	}
	return current, nil
}
