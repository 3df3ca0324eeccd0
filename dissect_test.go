package beefi

import (
	"encoding/binary"
	"reflect"
	"testing"
)

// buildFrame assembles a minimal synthetic frame: a 2-byte header-length
// field at offset 2, padding up to the MIMO control start, the 5-byte
// control header, then a BFA payload long enough for the requested
// pattern, followed by 4 trailing FCS bytes.
func buildFrame(headerLength uint16, control [5]byte, payload []byte) []byte {
	mimoStart := int(headerLength) + mimoControlOffset
	bfaStart := mimoStart + bfaPayloadOffset

	buf := make([]byte, bfaStart+len(payload)+frameCheckSeqLength)
	binary.LittleEndian.PutUint16(buf[headerLengthOffset:], headerLength)
	copy(buf[mimoStart:], control[:])
	copy(buf[bfaStart:], payload)
	return buf
}

func TestDissect(t *testing.T) {
	control := [5]byte{0x19, 0x82, 0x00, 0xC4, 0x0D}

	// nr_index=3, nc_index=1, codebook_info=1, feedback_type=0 ->
	// bitfield pattern [6,6,6,4,4,4,6,6,4,4], 64 subcarriers; supply
	// enough payload bytes for at least one subcarrier row.
	widths := []uint8{6, 6, 6, 4, 4, 4, 6, 6, 4, 4}
	var bits int
	for _, w := range widths {
		bits += int(w)
	}
	rowBytes := (bits + 7) / 8
	payload := make([]byte, rowBytes*64)

	frame := Frame{TimestampSec: 1700000000, TimestampUsec: 500000, Data: buildFrame(0, control, payload)}

	bfa, err := Dissect(frame)
	if err != nil {
		t.Fatalf("Dissect() error = %v", err)
	}

	wantMeta := Metadata{BandwidthMHz: 20, NrIndex: 3, NcIndex: 1, CodebookInfo: 1, FeedbackType: 0}
	if bfa.Metadata != wantMeta {
		t.Errorf("Metadata = %+v, want %+v", bfa.Metadata, wantMeta)
	}
	if bfa.Token != 55 {
		t.Errorf("Token = %d, want 55", bfa.Token)
	}
	if got := 1700000000 + 0.5; bfa.Timestamp != got {
		t.Errorf("Timestamp = %v, want %v", bfa.Timestamp, got)
	}
	if len(bfa.Angles) != 64 {
		t.Fatalf("len(Angles) = %d, want 64", len(bfa.Angles))
	}
	if len(bfa.Angles[0]) != len(widths) {
		t.Fatalf("len(Angles[0]) = %d, want %d", len(bfa.Angles[0]), len(widths))
	}
}

func TestDissectPropagatesExtractionError(t *testing.T) {
	// codebook_info/feedback_type combination with too little payload for
	// even one subcarrier row triggers InsufficientBitsizeError, which
	// Dissect must surface wrapped as ExtractionError.
	control := [5]byte{0x19, 0x82, 0x00, 0xC4, 0x0D}
	frame := Frame{Data: buildFrame(0, control, []byte{0x00})}

	_, err := Dissect(frame)
	if err == nil {
		t.Fatal("Dissect() error = nil, want ExtractionError")
	}

	var extractionErr *ExtractionError
	if !reflect.TypeOf(err).AssignableTo(reflect.TypeOf(extractionErr)) {
		t.Fatalf("Dissect() error type = %T, want *ExtractionError", err)
	}
}
