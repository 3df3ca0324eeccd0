package beefi

import (
	"math"
	"math/cmplx"
)

// ReconstructBFM converts a decoded BFA record into its Beamforming
// Feedback Matrix: one complex Nr×Nc matrix per subcarrier, built by
// right-multiplying an Nr×Nr identity accumulator by a diagonal phase
// matrix D(φ) or a transposed Givens rotation G(ψ)ᵀ for each entry of the
// angle pattern, then keeping only the first Nc columns. The returned
// V is laid out (Nr, Nc, Sub), not (Sub, Nr, Nc).
func ReconstructBFM(bfa BfaRecord) (BfmRecord, error) {
	widths, err := AngleBitWidths(bfa.Metadata.CodebookInfo, bfa.Metadata.FeedbackType)
	if err != nil {
		return BfmRecord{}, &ConversionError{Cause: err}
	}

	pattern, err := Pattern(bfa.Metadata.NrIndex, bfa.Metadata.NcIndex)
	if err != nil {
		return BfmRecord{}, &ConversionError{Cause: err}
	}

	nr := bfa.Metadata.NumReceive()
	nc := bfa.Metadata.NumSpatial()

	constPhi1 := math.Pi / float64(uint64(1)<<uint(widths.PhiBit-1))
	constPhi2 := math.Pi / float64(uint64(1)<<uint(widths.PhiBit))
	constPsi1 := math.Pi / float64(uint64(1)<<uint(widths.PsiBit+1))
	constPsi2 := math.Pi / float64(uint64(1)<<uint(widths.PsiBit+2))

	// v is preallocated with shape (Nr, Nc, Sub) per SPEC_FULL's numerical-
	// path note; each subcarrier's reconstruction writes into its own
	// column-of-the-last-axis view rather than allocating a new matrix.
	numSub := len(bfa.Angles)
	v := make([][][]complex128, nr)
	for r := range v {
		v[r] = make([][]complex128, nc)
		for c := range v[r] {
			v[r][c] = make([]complex128, numSub)
		}
	}

	// acc is the Nr×Nr accumulator, row-major, reused across subcarriers
	// so reconstruction of a whole record allocates it exactly once.
	acc := make([]complex128, nr*nr)

	for k, angleRow := range bfa.Angles {
		for i := range acc {
			acc[i] = 0
		}
		for i := 0; i < nr; i++ {
			acc[i*nr+i] = 1
		}

		for idx, entry := range pattern {
			q := float64(angleRow[idx])
			row := entry.Row - 1
			col := entry.Col - 1

			if entry.Kind == AnglePhi {
				phi := q*constPhi1 + constPhi2
				scale := cmplx.Exp(complex(0, phi))
				for r := 0; r < nr; r++ {
					acc[r*nr+row] *= scale
				}
			} else {
				psi := q*constPsi1 + constPsi2
				cosv := complex(math.Cos(psi), 0)
				sinv := complex(math.Sin(psi), 0)
				for r := 0; r < nr; r++ {
					ti := acc[r*nr+row]
					tj := acc[r*nr+col]
					acc[r*nr+row] = cosv*ti - sinv*tj
					acc[r*nr+col] = sinv*ti + cosv*tj
				}
			}
		}

		for r := 0; r < nr; r++ {
			for c := 0; c < nc; c++ {
				v[r][c][k] = acc[r*nr+c]
			}
		}
	}

	return BfmRecord{
		Metadata:  bfa.Metadata,
		Timestamp: bfa.Timestamp,
		Token:     bfa.Token,
		V:         v,
	}, nil
}
