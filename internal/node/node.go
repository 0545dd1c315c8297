// Package node implements the BIP-32 extended key: the 78-byte
// serialization format, fingerprint derivation, and public/private
// projection.
package node

import (
	"encoding/binary"

	"github.com/happynine-wallet/hdwallet/internal/crypto"
)

// Node is a single extended key in an HD tree. A Node constructed from a
// 32-byte key is private and carries both the secret scalar and its
// derived public key; a Node constructed from a 33-byte compressed point
// is public-only.
type Node struct {
	isPrivate          bool
	version            uint32
	fingerprint        uint32
	secretKey          []byte // 32 bytes, nil if public-only
	publicKey          []byte // 33 bytes, compressed
	chainCode          []byte // 32 bytes
	depth              uint8
	parentFingerprint  uint32
	childNum           uint32
	privateVersion     uint32
	publicVersion      uint32
}

// New builds a Node from key material. key must be exactly 32 bytes
// (private) or 33 bytes (compressed public). privateVersion and
// publicVersion select the network's extended-key version words (see
// the config package).
func New(key, chainCode []byte, privateVersion, publicVersion uint32, depth uint8, parentFingerprint, childNum uint32) *Node {
	n := &Node{
		depth:             depth,
		parentFingerprint: parentFingerprint,
		childNum:          childNum,
		privateVersion:    privateVersion,
		publicVersion:     publicVersion,
		chainCode:         append([]byte(nil), chainCode...),
	}
	n.setKey(key)
	return n
}

func (n *Node) setKey(key []byte) {
	n.isPrivate = len(key) == 32
	if n.isPrivate {
		n.secretKey = append([]byte(nil), key...)
		n.publicKey = crypto.CompressedPubKeyFromPrivate(n.secretKey)
		n.version = n.privateVersion
	} else {
		n.publicKey = append([]byte(nil), key...)
		n.version = n.publicVersion
	}
	n.updateFingerprint()
}

func (n *Node) updateFingerprint() {
	h := crypto.Hash160(n.publicKey)
	n.fingerprint = binary.BigEndian.Uint32(h[:4])
}

// IsPrivate reports whether this Node holds a private key.
func (n *Node) IsPrivate() bool { return n.isPrivate }

// Version returns the version word appropriate to this node's kind
// (private if it holds a secret key, else public).
func (n *Node) Version() uint32 { return n.version }

// Fingerprint returns the first four bytes of Hash160(publicKey) as a
// big-endian uint32, per BIP-32.
func (n *Node) Fingerprint() uint32 { return n.fingerprint }

// SecretKey returns the 32-byte private scalar, or nil if this Node is
// public-only.
func (n *Node) SecretKey() []byte {
	if n.secretKey == nil {
		return nil
	}
	return append([]byte(nil), n.secretKey...)
}

// PublicKey returns the 33-byte compressed public key.
func (n *Node) PublicKey() []byte {
	return append([]byte(nil), n.publicKey...)
}

// ChainCode returns the 32-byte chain code.
func (n *Node) ChainCode() []byte {
	return append([]byte(nil), n.chainCode...)
}

// Depth returns the node's depth in the derivation tree (0 for the
// master node).
func (n *Node) Depth() uint8 { return n.depth }

// ParentFingerprint returns the parent's fingerprint, or 0 for a master
// node.
func (n *Node) ParentFingerprint() uint32 { return n.parentFingerprint }

// ChildNum returns the index this node was derived at, or 0 for a
// master node.
func (n *Node) ChildNum() uint32 { return n.childNum }

// PrivateVersion and PublicVersion return the network version words
// this node was constructed with, needed to derive children.
func (n *Node) PrivateVersion() uint32 { return n.privateVersion }
func (n *Node) PublicVersion() uint32  { return n.publicVersion }

// Neuter returns a public-only copy of this Node: the same chain code
// and tree position, but with the secret key discarded.
func (n *Node) Neuter() *Node {
	return New(n.publicKey, n.chainCode, n.privateVersion, n.publicVersion, n.depth, n.parentFingerprint, n.childNum)
}

// Serialize returns the 78-byte extended key encoding. If private is
// true, the private form (version privateVersion, 0x00||secretKey
// payload) is produced; otherwise the public form (version
// publicVersion, compressed public key payload) is produced.
// Requesting the private form of a public-only Node yields an empty
// slice rather than silently falling back to the public form.
func (n *Node) Serialize(private bool) []byte {
	if private && !n.isPrivate {
		return []byte{}
	}

	version := n.publicVersion
	if private {
		version = n.privateVersion
	}

	out := make([]byte, 0, 78)
	var versionBuf, parentBuf, childBuf [4]byte
	binary.BigEndian.PutUint32(versionBuf[:], version)
	binary.BigEndian.PutUint32(parentBuf[:], n.parentFingerprint)
	binary.BigEndian.PutUint32(childBuf[:], n.childNum)

	out = append(out, versionBuf[:]...)
	out = append(out, n.depth)
	out = append(out, parentBuf[:]...)
	out = append(out, childBuf[:]...)
	out = append(out, n.chainCode...)
	if private {
		out = append(out, 0x00)
		out = append(out, n.secretKey...)
	} else {
		out = append(out, n.publicKey...)
	}
	return out
}

// SerializePrivate is a convenience for Serialize(true).
func (n *Node) SerializePrivate() []byte { return n.Serialize(true) }

// SerializePublic is a convenience for Serialize(false).
func (n *Node) SerializePublic() []byte { return n.Serialize(false) }
