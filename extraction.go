package beefi

// AngleKind distinguishes the two quantized angle types carried in a
// compressed beamforming report.
type AngleKind uint8

const (
	AnglePhi AngleKind = iota
	AnglePsi
)

// PatternEntry is one step of an angle pattern: which angle kind to read
// next, and which (1-based) row/column of the Nr×Nr accumulator it acts
// on during BFM reconstruction.
type PatternEntry struct {
	Kind AngleKind
	Row  int
	Col  int
}

// anglePatterns holds the six predefined angle-extraction orders, fixed
// data per SPEC_FULL §9 ("static configuration tables ... not runtime
// maps"). Indices below are the ones the switch in Pattern returns.
var anglePatterns = [6][]PatternEntry{
	{ // (1,0) | (1,2)
		{AnglePhi, 1, 1}, {AnglePsi, 2, 1},
	},
	{ // (2,0)
		{AnglePhi, 1, 1}, {AnglePhi, 2, 1}, {AnglePsi, 2, 1}, {AnglePsi, 3, 1},
	},
	{ // (2,1) | (2,2)
		{AnglePhi, 1, 1}, {AnglePhi, 2, 1}, {AnglePsi, 2, 1}, {AnglePsi, 3, 1},
		{AnglePhi, 2, 2}, {AnglePsi, 3, 2},
	},
	{ // (3,0)
		{AnglePhi, 1, 1}, {AnglePhi, 2, 1}, {AnglePhi, 3, 1},
		{AnglePsi, 2, 1}, {AnglePsi, 3, 1}, {AnglePsi, 4, 1},
	},
	{ // (3,1)
		{AnglePhi, 1, 1}, {AnglePhi, 2, 1}, {AnglePhi, 3, 1},
		{AnglePsi, 2, 1}, {AnglePsi, 3, 1}, {AnglePsi, 4, 1},
		{AnglePhi, 2, 2}, {AnglePhi, 3, 2}, {AnglePsi, 3, 2}, {AnglePsi, 4, 2},
	},
	{ // (3,2) | (3,3)
		{AnglePhi, 1, 1}, {AnglePhi, 2, 1}, {AnglePhi, 3, 1},
		{AnglePsi, 2, 1}, {AnglePsi, 3, 1}, {AnglePsi, 4, 1},
		{AnglePhi, 2, 2}, {AnglePhi, 3, 2}, {AnglePsi, 3, 2}, {AnglePsi, 4, 2},
		{AnglePhi, 3, 3}, {AnglePsi, 4, 3},
	},
}

// Pattern returns the angle-extraction order for the given (nr_index,
// nc_index), or ErrInvalidAntennaConfig for any combination not named in
// the glossary.
func Pattern(nrIndex, ncIndex uint8) ([]PatternEntry, error) {
	switch {
	case nrIndex == 1 && (ncIndex == 0 || ncIndex == 2):
		return anglePatterns[0], nil
	case nrIndex == 2 && ncIndex == 0:
		return anglePatterns[1], nil
	case nrIndex == 2 && (ncIndex == 1 || ncIndex == 2):
		return anglePatterns[2], nil
	case nrIndex == 3 && ncIndex == 0:
		return anglePatterns[3], nil
	case nrIndex == 3 && ncIndex == 1:
		return anglePatterns[4], nil
	case nrIndex == 3 && (ncIndex == 2 || ncIndex == 3):
		return anglePatterns[5], nil
	default:
		return nil, ErrInvalidAntennaConfig
	}
}

// AngleBitSizes is the (phi_bit, psi_bit) pair selected by
// (codebook_info, feedback_type).
type AngleBitSizes struct {
	PhiBit uint8
	PsiBit uint8
}

// AngleBitWidths returns the bit widths for the given codebook_info and
// feedback_type, or ErrInvalidFeedbackType for any combination outside the
// four valid rows (feedback_type == 2, CQI, included -- see SPEC_FULL §9
// open-question decision: CQI is not special-cased, it simply fails here
// like any other unsupported combination).
func AngleBitWidths(codebookInfo, feedbackType uint8) (AngleBitSizes, error) {
	switch {
	case codebookInfo == 0 && feedbackType == 0:
		return AngleBitSizes{PhiBit: 4, PsiBit: 2}, nil
	case codebookInfo == 0 && feedbackType == 1:
		return AngleBitSizes{PhiBit: 7, PsiBit: 5}, nil
	case codebookInfo == 1 && feedbackType == 0:
		return AngleBitSizes{PhiBit: 6, PsiBit: 4}, nil
	case codebookInfo == 1 && feedbackType == 1:
		return AngleBitSizes{PhiBit: 9, PsiBit: 7}, nil
	default:
		return AngleBitSizes{}, ErrInvalidFeedbackType
	}
}

// subcarrierCounts is the grouping x bandwidth cross-table.
var subcarrierCounts = [2][4]int{
	{64, 122, 250, 500}, // grouping 0 (Ng=4): 20/40/80/160 MHz
	{50, 32, 64, 160},   // grouping 1 (Ng=16): 20/40/80/160 MHz
}

// SubcarrierCount returns the number of subcarriers for a given grouping
// and bandwidth.
func SubcarrierCount(grouping uint8, bandwidth Bandwidth) int {
	return subcarrierCounts[grouping][bandwidth]
}

// ExtractionConfig composes the angle pattern, bit widths, and subcarrier
// count for a specific control header into the parameters the bit-stream
// unpacker needs.
type ExtractionConfig struct {
	BitfieldPattern []uint8
	NumSubcarriers  int
}

// BuildExtractionConfig derives an ExtractionConfig from a decoded HE MIMO
// Control header.
func BuildExtractionConfig(c HeMimoControl) (ExtractionConfig, error) {
	widths, err := AngleBitWidths(c.CodebookInfo, c.FeedbackType)
	if err != nil {
		return ExtractionConfig{}, err
	}

	pattern, err := Pattern(c.NrIndex, c.NcIndex)
	if err != nil {
		return ExtractionConfig{}, err
	}

	bitfieldPattern := make([]uint8, len(pattern))
	for i, entry := range pattern {
		if entry.Kind == AnglePhi {
			bitfieldPattern[i] = widths.PhiBit
		} else {
			bitfieldPattern[i] = widths.PsiBit
		}
	}

	return ExtractionConfig{
		BitfieldPattern: bitfieldPattern,
		NumSubcarriers:  SubcarrierCount(c.Grouping, c.Bandwidth),
	}, nil
}
