package beefi

// HE MIMO Control header length in bytes, per IEEE 802.11ax §9.4.1.64.
const mimoControlLength = 5

// Bandwidth is the channel width signalled in the HE MIMO Control header.
type Bandwidth uint8

const (
	Bandwidth20 Bandwidth = iota
	Bandwidth40
	Bandwidth80
	Bandwidth160
)

// MHz returns the channel width in megahertz. mhz = 20 * 2^index.
func (b Bandwidth) MHz() uint16 {
	return 20 * (1 << uint(b))
}

// Hz returns the channel width in hertz.
func (b Bandwidth) Hz() uint64 {
	return uint64(b.MHz()) * 1_000_000
}

// HeMimoControl is a structured view over the 40-bit HE MIMO Control
// header. Decoding never fails -- it is a pure bit view; field validity
// (e.g. whether codebook_info/feedback_type name a supported combination)
// is checked downstream by the extraction configurator.
type HeMimoControl struct {
	NcIndex            uint8
	NrIndex            uint8
	Bandwidth          Bandwidth
	Grouping           uint8
	CodebookInfo       uint8
	FeedbackType       uint8
	RemainingSegments  uint8
	FirstSegment       uint8
	RuStart            uint8
	RuEnd              uint8
	Token              uint8
	Reserved           uint8
}

// DecodeHeMimoControl decodes the 40-bit HE MIMO Control header from the
// first 5 bytes of buf. Fields are little-endian across bytes and
// LSB-first within a byte, packed back-to-back in the order listed in the
// field table (nc_index first, reserved last).
func DecodeHeMimoControl(buf []byte) HeMimoControl {
	var bits uint64
	for i := 0; i < mimoControlLength; i++ {
		bits |= uint64(buf[i]) << (8 * uint(i))
	}

	take := func(offset, width uint) uint8 {
		mask := uint64(1)<<width - 1
		return uint8((bits >> offset) & mask)
	}

	return HeMimoControl{
		NcIndex:           take(0, 3),
		NrIndex:           take(3, 3),
		Bandwidth:         Bandwidth(take(6, 2)),
		Grouping:          take(8, 1),
		CodebookInfo:      take(9, 1),
		FeedbackType:      take(10, 2),
		RemainingSegments: take(12, 3),
		FirstSegment:      take(15, 1),
		RuStart:           take(16, 7),
		RuEnd:             take(23, 7),
		Token:             take(30, 6),
		Reserved:          take(36, 4),
	}
}

// ToMetadata projects the fields of the control header that are carried
// forward unchanged onto every derived BFA/BFM record.
func (c HeMimoControl) ToMetadata() Metadata {
	return Metadata{
		BandwidthMHz: c.Bandwidth.MHz(),
		NrIndex:      c.NrIndex,
		NcIndex:      c.NcIndex,
		CodebookInfo: c.CodebookInfo,
		FeedbackType: c.FeedbackType,
	}
}
