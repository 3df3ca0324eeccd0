package beefi

import (
	"math"
	"math/cmplx"
	"testing"
)

func approxEqual(t *testing.T, name string, got, want complex128, tol float64) {
	t.Helper()
	if d := cmplx.Abs(got - want); d > tol {
		t.Errorf("%s = %v, want %v (abs diff %g > tol %g)", name, got, want, d, tol)
	}
}

func TestReconstructBFM(t *testing.T) {
	bfa := BfaRecord{
		Metadata: Metadata{BandwidthMHz: 20, NrIndex: 3, NcIndex: 1, CodebookInfo: 1, FeedbackType: 0},
		Angles: [][]uint16{
			{18, 33, 43, 15, 12, 9, 31, 15, 12, 1},
			{19, 33, 43, 14, 12, 9, 31, 16, 11, 1},
			{26, 34, 43, 15, 12, 9, 25, 16, 12, 1},
		},
	}

	bfm, err := ReconstructBFM(bfa)
	if err != nil {
		t.Fatalf("ReconstructBFM() error = %v", err)
	}

	nr := bfa.Metadata.NumReceive()
	nc := bfa.Metadata.NumSpatial()
	if nr != 4 || nc != 2 {
		t.Fatalf("NumReceive/NumSpatial = %d/%d, want 4/2", nr, nc)
	}

	// V is laid out (Nr, Nc, Sub): V[row][col][subcarrier].
	if len(bfm.V) != nr || len(bfm.V[0]) != nc || len(bfm.V[0][0]) != 3 {
		t.Fatalf("V shape = (%d,%d,%d), want (%d,%d,3)", len(bfm.V), len(bfm.V[0]), len(bfm.V[0][0]), nr, nc)
	}

	const tol = 1e-5
	approxEqual(t, "V[0][0][0]", bfm.V[0][0][0], complex(-0.00239, 0.00955), tol)
	approxEqual(t, "V[0][1][0]", bfm.V[0][1][0], complex(-0.02226, 0.33295), tol)
	approxEqual(t, "V[3][0][0]", bfm.V[3][0][0], complex(0.80321, 0), tol)
	approxEqual(t, "V[3][1][0]", bfm.V[3][1][0], complex(0.08741, 0), tol)

	// The last row's imaginary part is zero by construction (identity
	// seed + Givens only touches the row below it).
	for sub := 0; sub < 3; sub++ {
		for col := 0; col < nc; col++ {
			elem := bfm.V[nr-1][col][sub]
			if math.Abs(imag(elem)) > 1e-9 {
				t.Errorf("subcarrier %d: Im(V[%d][%d]) = %g, want ~0", sub, nr-1, col, imag(elem))
			}
		}
	}
}

func TestReconstructBFMUnitaryColumns(t *testing.T) {
	bfa := BfaRecord{
		Metadata: Metadata{BandwidthMHz: 20, NrIndex: 3, NcIndex: 1, CodebookInfo: 1, FeedbackType: 0},
		Angles: [][]uint16{
			{18, 33, 43, 15, 12, 9, 31, 15, 12, 1},
		},
	}

	bfm, err := ReconstructBFM(bfa)
	if err != nil {
		t.Fatalf("ReconstructBFM() error = %v", err)
	}

	nr := bfa.Metadata.NumReceive()
	nc := bfa.Metadata.NumSpatial()
	// Single subcarrier: V[row][col][0].

	for c := 0; c < nc; c++ {
		var normSq float64
		for r := 0; r < nr; r++ {
			normSq += real(bfm.V[r][c][0]) * real(bfm.V[r][c][0])
			normSq += imag(bfm.V[r][c][0]) * imag(bfm.V[r][c][0])
		}
		if math.Abs(normSq-1) > 1e-9 {
			t.Errorf("column %d norm^2 = %g, want ~1", c, normSq)
		}
	}

	var dot complex128
	for r := 0; r < nr; r++ {
		dot += bfm.V[r][0][0] * cmplx.Conj(bfm.V[r][1][0])
	}
	if cmplx.Abs(dot) > 1e-9 {
		t.Errorf("columns 0 and 1 not orthogonal: dot = %v", dot)
	}
}

func TestReconstructBFMInvalidConfig(t *testing.T) {
	bfa := BfaRecord{
		Metadata: Metadata{NrIndex: 7, NcIndex: 7, CodebookInfo: 0, FeedbackType: 0},
		Angles:   [][]uint16{{0}},
	}
	if _, err := ReconstructBFM(bfa); err == nil {
		t.Fatal("ReconstructBFM() error = nil, want ConversionError for invalid antenna config")
	}
}
