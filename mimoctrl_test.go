package beefi

import "testing"

func TestDecodeHeMimoControl(t *testing.T) {
	buf := []byte{0x19, 0x82, 0x00, 0xC4, 0x0D}
	got := DecodeHeMimoControl(buf)

	want := HeMimoControl{
		NcIndex:           1,
		NrIndex:           3,
		Bandwidth:         Bandwidth20,
		Grouping:          0,
		CodebookInfo:      1,
		FeedbackType:      0,
		RemainingSegments: 0,
		FirstSegment:      1,
		RuStart:           0,
		RuEnd:             0x08,
		Token:             55,
		Reserved:          0,
	}

	if got != want {
		t.Fatalf("DecodeHeMimoControl(%x) = %+v, want %+v", buf, got, want)
	}
	if mhz := got.Bandwidth.MHz(); mhz != 20 {
		t.Errorf("Bandwidth.MHz() = %d, want 20", mhz)
	}
}

func TestBandwidthMHz(t *testing.T) {
	cases := []struct {
		bw   Bandwidth
		want uint16
	}{
		{Bandwidth20, 20},
		{Bandwidth40, 40},
		{Bandwidth80, 80},
		{Bandwidth160, 160},
	}
	for _, c := range cases {
		if got := c.bw.MHz(); got != c.want {
			t.Errorf("Bandwidth(%d).MHz() = %d, want %d", c.bw, got, c.want)
		}
	}
}

func TestToMetadata(t *testing.T) {
	c := DecodeHeMimoControl([]byte{0x19, 0x82, 0x00, 0xC4, 0x0D})
	m := c.ToMetadata()
	want := Metadata{BandwidthMHz: 20, NrIndex: 3, NcIndex: 1, CodebookInfo: 1, FeedbackType: 0}
	if m != want {
		t.Fatalf("ToMetadata() = %+v, want %+v", m, want)
	}
}
