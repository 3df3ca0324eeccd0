// Package beefi extracts Beamforming Feedback Information (BFI) from
// captured IEEE 802.11ax management frames and reconstructs the compressed
// Beamforming Feedback Matrices (BFM) carried in them.
package beefi

// Metadata is the immutable per-record configuration derived from a decoded
// HE MIMO Control header. It never changes once a frame has been dissected.
type Metadata struct {
	BandwidthMHz  uint16
	NrIndex       uint8
	NcIndex       uint8
	CodebookInfo  uint8
	FeedbackType  uint8
}

// NumReceive returns Nr, the number of receive chains (nr_index + 1).
func (m Metadata) NumReceive() int {
	return int(m.NrIndex) + 1
}

// NumSpatial returns Nc, the number of spatial streams (nc_index + 1).
func (m Metadata) NumSpatial() int {
	return int(m.NcIndex) + 1
}

// BfaRecord is a decoded, compressed Beamforming Feedback Angle record: one
// row of quantized angles per subcarrier. Row length is the length of the
// angle pattern selected by (NrIndex, NcIndex); row count is the record's
// subcarrier count. Rows MAY differ in length across records sharing a
// batch or writer -- the batch writer must store true per-record
// dimensions rather than padding.
type BfaRecord struct {
	Metadata  Metadata
	Timestamp float64
	Token     uint8
	Angles    [][]uint16
}

// BfmRecord is a reconstructed Beamforming Feedback Matrix: one complex
// Nr-by-Nc matrix per subcarrier.
type BfmRecord struct {
	Metadata  Metadata
	Timestamp float64
	Token     uint8
	// V is indexed V[row][col][subcarrier], row in [0,Nr), col in [0,Nc).
	V [][][]complex128
}
