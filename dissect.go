package beefi

import "encoding/binary"

// Layout constants for locating the MIMO control header and BFA payload
// within a captured frame. Empirical for the radiotap-style encapsulation
// this module targets -- see SPEC_FULL §9 open-question decision: kept as
// named constants in one place so an alternate encapsulation is a
// one-function change, not a spec-level contract.
const (
	headerLengthOffset  = 2  // offset of the little-endian u16 header length
	mimoControlOffset   = 26 // MIMO control starts headerLength+26 bytes in
	bfaPayloadOffset    = 7  // BFA payload starts 7 bytes after MIMO control
	frameCheckSeqLength = 4  // trailing FCS bytes, excluded from the payload
)

// Frame is a captured packet: a frame-arrival timestamp plus its raw
// bytes. It is the boundary type between the capture library (gopacket, in
// this module's capture engine) and the dissector below.
type Frame struct {
	TimestampSec  int64
	TimestampUsec int64
	Data          []byte
}

// Dissect locates the HE MIMO Control header and BFA payload within frame
// and returns the decoded BFA record. Errors are always ExtractionError and
// are never fatal to a caller running a capture loop: drop the packet and
// continue.
func Dissect(frame Frame) (BfaRecord, error) {
	data := frame.Data

	headerLength := binary.LittleEndian.Uint16(data[headerLengthOffset : headerLengthOffset+2])
	mimoStart := int(headerLength) + mimoControlOffset
	bfaStart := mimoStart + bfaPayloadOffset
	bfaEnd := len(data) - frameCheckSeqLength

	control := DecodeHeMimoControl(data[mimoStart : mimoStart+mimoControlLength])

	config, err := BuildExtractionConfig(control)
	if err != nil {
		return BfaRecord{}, &ExtractionError{Cause: err}
	}

	angles, err := ExtractBitfields(data[bfaStart:bfaEnd], config.BitfieldPattern, config.NumSubcarriers)
	if err != nil {
		return BfaRecord{}, &ExtractionError{Cause: err}
	}

	return BfaRecord{
		Metadata:  control.ToMetadata(),
		Timestamp: float64(frame.TimestampSec) + float64(frame.TimestampUsec)*1e-6,
		Token:     control.Token,
		Angles:    angles,
	}, nil
}
