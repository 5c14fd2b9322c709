package vm

// Header is the decoded form of an instruction's 16-bit little-endian
// header word: condition code, opcode-specific flag field, and opcode.
type Header struct {
	Cond   byte
	Flags5 byte
	Opcode byte
}

// DecodeHeader reads and decodes the 16-bit header at addr.
func DecodeHeader(mem *Memory, pc, addr uint32) (Header, error) {
	raw, err := mem.ReadWord16(pc, addr)
	if err != nil {
		return Header{}, err
	}
	return Header{
		Cond:   byte(raw>>HeaderCondShift) & 0x7,
		Flags5: byte(raw>>HeaderFlagsShift) & HeaderFlagsMask,
		Opcode: byte(raw) & HeaderOpcodeMask,
	}, nil
}

// EncodeHeader packs a header back into its 16-bit little-endian form.
func EncodeHeader(h Header) uint16 {
	return uint16(h.Cond&0x7)<<HeaderCondShift |
		uint16(h.Flags5&HeaderFlagsMask)<<HeaderFlagsShift |
		uint16(h.Opcode)
}

// signExtend8 sign-extends an 8-bit value to 32 bits.
func signExtend8(b byte) uint32 {
	return uint32(int32(int8(b)))
}

// signExtend16 sign-extends a 16-bit value to 32 bits.
func signExtend16(v uint16) uint32 {
	return uint32(int32(int16(v)))
}

