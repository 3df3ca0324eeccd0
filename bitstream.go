package beefi

// maxBitfieldWidth is the widest single bitfield the sliding-window
// unpacker supports; nothing in the compressed feedback format ever
// exceeds 9 bits (the widest phi_bit/psi_bit row in AngleBitWidths is 9).
const maxBitfieldWidth = 9

// ExtractBitfields unpacks chunks rows of len(widths) variable-width
// unsigned integers from stream. Bit order is LSB-first within a byte and
// little-endian across bytes: bit 0 of widths[0] in chunk 0 is the
// lowest-order bit of stream[0].
//
// stream may be longer than strictly required -- trailing bytes are
// ignored.
func ExtractBitfields(stream []byte, widths []uint8, chunks int) ([][]uint16, error) {
	sum := 0
	for _, w := range widths {
		if w > maxBitfieldWidth {
			return nil, &InvalidBitfieldSizeError{Given: int(w), Allowed: maxBitfieldWidth}
		}
		sum += int(w)
	}

	required := chunks * sum
	available := len(stream) * 8
	if available < required {
		return nil, &InsufficientBitsizeError{Required: required, Available: available}
	}

	var window uint16
	if len(stream) > 0 {
		window = uint16(stream[0])
	}
	if len(stream) > 1 {
		window |= uint16(stream[1]) << 8
	}
	offset := 0
	currByte := 2

	result := make([][]uint16, chunks)
	for c := 0; c < chunks; c++ {
		row := make([]uint16, len(widths))
		for i, w := range widths {
			width := int(w)
			for offset+width > 16 {
				window = (window >> 8) | (uint16(stream[currByte]) << 8)
				offset -= 8
				currByte++
			}
			mask := uint16(1)<<uint(width) - 1
			row[i] = (window >> uint(offset)) & mask
			offset += width
		}
		result[c] = row
	}

	return result, nil
}
