package address

// Standard Bitcoin script opcodes used in P2PKH/P2SH output scripts.
const (
	opDup         = 0x76
	opHash160     = 0xa9
	opEqualVerify = 0x88
	opCheckSig    = 0xac
	opEqual       = 0x87
)

// P2PKHScript builds the standard pay-to-pubkey-hash output script:
// OP_DUP OP_HASH160 <20 bytes> OP_EQUALVERIFY OP_CHECKSIG.
func P2PKHScript(hash160 []byte) []byte {
	s := make([]byte, 0, 25)
	s = append(s, opDup, opHash160, byte(len(hash160)))
	s = append(s, hash160...)
	s = append(s, opEqualVerify, opCheckSig)
	return s
}

// P2SHScript builds the standard pay-to-script-hash output script:
// OP_HASH160 <20 bytes> OP_EQUAL.
func P2SHScript(hash160 []byte) []byte {
	s := make([]byte, 0, 23)
	s = append(s, opHash160, byte(len(hash160)))
	s = append(s, hash160...)
	s = append(s, opEqual)
	return s
}

// RecognizeScript extracts the embedded hash160 from a standard P2PKH
// or P2SH output script. ok is false if script matches neither form.
func RecognizeScript(script []byte) (hash160 []byte, ok bool) {
	if len(script) == 25 &&
		script[0] == opDup && script[1] == opHash160 && script[2] == 0x14 &&
		script[23] == opEqualVerify && script[24] == opCheckSig {
		return script[3:23], true
	}
	if len(script) == 23 &&
		script[0] == opHash160 && script[1] == 0x14 &&
		script[22] == opEqual {
		return script[2:22], true
	}
	return nil, false
}
