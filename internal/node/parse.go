package node

import "encoding/binary"

// Parse decodes a 78-byte extended key, per BIP-32's serialization
// format. privateVersion and publicVersion are the network's version
// words, needed so later derivation knows which to stamp on children;
// the version word embedded in data is not otherwise validated.
func Parse(data []byte, privateVersion, publicVersion uint32) (*Node, error) {
	if len(data) != 78 {
		return nil, ErrInvalidLength
	}

	depth := data[4]
	parentFingerprint := binary.BigEndian.Uint32(data[5:9])
	childNum := binary.BigEndian.Uint32(data[9:13])
	chainCode := data[13:45]
	keyMaterial := data[45:78]

	var key []byte
	if keyMaterial[0] == 0x00 {
		key = keyMaterial[1:]
	} else {
		key = keyMaterial
	}

	return New(key, chainCode, privateVersion, publicVersion, depth, parentFingerprint, childNum), nil
}
