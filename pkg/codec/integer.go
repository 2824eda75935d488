package codec

// Integer-family index keys (INT, SHORT) store value+bias rather than the
// raw value, so that the unsigned big-endian byte comparison used for
// ordering matches signed numeric ordering. The bias is always computed
// through a 64-bit intermediate and then truncated to the column's native
// width, which is why SHORT columns end up with a no-op bias: 2^31 is an
// exact multiple of 2^16, so the low 16 bits are unchanged by adding it.
const bias = int64(1) << 31 // INT32_MAX + 1

// EncodeInt32 biases a 32-bit integer-family value for index storage.
func EncodeInt32(v int32) uint32 {
	return uint32(int64(v) + bias)
}

// DecodeInt32 reverses EncodeInt32.
func DecodeInt32(v uint32) int32 {
	return int32(int64(v) - bias)
}

// EncodeInt16 biases a 16-bit integer-family value for index storage.
func EncodeInt16(v int16) uint16 {
	return uint16(int64(v) + bias)
}

// DecodeInt16 reverses EncodeInt16.
func DecodeInt16(v uint16) int16 {
	return int16(int64(v) - bias)
}
