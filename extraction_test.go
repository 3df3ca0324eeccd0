package beefi

import (
	"errors"
	"reflect"
	"testing"
)

func TestBuildExtractionConfig(t *testing.T) {
	control := DecodeHeMimoControl([]byte{0x19, 0x82, 0x00, 0xC4, 0x0D})

	got, err := BuildExtractionConfig(control)
	if err != nil {
		t.Fatalf("BuildExtractionConfig() error = %v", err)
	}

	wantPattern := []uint8{6, 6, 6, 4, 4, 4, 6, 6, 4, 4}
	if !reflect.DeepEqual(got.BitfieldPattern, wantPattern) {
		t.Errorf("BitfieldPattern = %v, want %v", got.BitfieldPattern, wantPattern)
	}
	if got.NumSubcarriers != 64 {
		t.Errorf("NumSubcarriers = %d, want 64", got.NumSubcarriers)
	}
}

func TestAngleBitWidths(t *testing.T) {
	cases := []struct {
		codebook, feedback uint8
		want               AngleBitSizes
	}{
		{0, 0, AngleBitSizes{PhiBit: 4, PsiBit: 2}},
		{0, 1, AngleBitSizes{PhiBit: 7, PsiBit: 5}},
		{1, 0, AngleBitSizes{PhiBit: 6, PsiBit: 4}},
		{1, 1, AngleBitSizes{PhiBit: 9, PsiBit: 7}},
	}
	for _, c := range cases {
		got, err := AngleBitWidths(c.codebook, c.feedback)
		if err != nil {
			t.Fatalf("AngleBitWidths(%d,%d) error = %v", c.codebook, c.feedback, err)
		}
		if got != c.want {
			t.Errorf("AngleBitWidths(%d,%d) = %+v, want %+v", c.codebook, c.feedback, got, c.want)
		}
	}
}

func TestAngleBitWidthsRejectsCQI(t *testing.T) {
	// feedback_type == 2 names CQI, which is not a supported angle
	// combination and must fail like any other out-of-table pair.
	_, err := AngleBitWidths(0, 2)
	if !errors.Is(err, ErrInvalidFeedbackType) {
		t.Fatalf("AngleBitWidths(0,2) error = %v, want ErrInvalidFeedbackType", err)
	}
}

func TestPatternUnknownAntennaConfig(t *testing.T) {
	_, err := Pattern(0, 0)
	if !errors.Is(err, ErrInvalidAntennaConfig) {
		t.Fatalf("Pattern(0,0) error = %v, want ErrInvalidAntennaConfig", err)
	}
}

func TestSubcarrierCount(t *testing.T) {
	cases := []struct {
		grouping uint8
		bw       Bandwidth
		want     int
	}{
		{0, Bandwidth20, 64},
		{0, Bandwidth160, 500},
		{1, Bandwidth40, 32},
	}
	for _, c := range cases {
		if got := SubcarrierCount(c.grouping, c.bw); got != c.want {
			t.Errorf("SubcarrierCount(%d,%v) = %d, want %d", c.grouping, c.bw, got, c.want)
		}
	}
}
