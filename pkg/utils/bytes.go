package utils

// BytesToUint16 composes a 16-bit value from its high and low bytes.
func BytesToUint16(upper, lower uint8) uint16 {
	return uint16(upper)<<8 | uint16(lower)
}

// Uint16ToBytes splits a 16-bit value into its high and low bytes.
func Uint16ToBytes(value uint16) (upper, lower uint8) {
	return uint8(value >> 8), uint8(value & 0xFF)
}
