// Package txwire implements the Bitcoin transaction wire format: VarInt
// encoding, TxIn/TxOut serialization, and double-SHA256 transaction
// hashing.
package txwire

import (
	"bytes"
	"encoding/binary"
)

// PutVarInt appends value to buf in Bitcoin's compact-size encoding.
func PutVarInt(buf *bytes.Buffer, value uint64) {
	switch {
	case value < 0xfd:
		buf.WriteByte(byte(value))
	case value <= 0xffff:
		buf.WriteByte(0xfd)
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(value))
		buf.Write(b[:])
	case value <= 0xffffffff:
		buf.WriteByte(0xfe)
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(value))
		buf.Write(b[:])
	default:
		buf.WriteByte(0xff)
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], value)
		buf.Write(b[:])
	}
}

// ReadVarInt reads a compact-size-encoded integer from the front of r,
// advancing r past it.
func ReadVarInt(r *bytes.Reader) (uint64, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch first {
	case 0xfd:
		var b [2]byte
		if _, err := r.Read(b[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(b[:])), nil
	case 0xfe:
		var b [4]byte
		if _, err := r.Read(b[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(b[:])), nil
	case 0xff:
		var b [8]byte
		if _, err := r.Read(b[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(b[:]), nil
	default:
		return uint64(first), nil
	}
}

// PutBytesWithSize appends a VarInt length prefix followed by b.
func PutBytesWithSize(buf *bytes.Buffer, b []byte) {
	PutVarInt(buf, uint64(len(b)))
	buf.Write(b)
}

// ReadBytesWithSize reads a VarInt-prefixed byte string.
func ReadBytesWithSize(r *bytes.Reader) ([]byte, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
