package writer

import "testing"

func TestColumnCodecsBfaRow(t *testing.T) {
	codecs, err := columnCodecs(&BfaRow{})
	if err != nil {
		t.Fatalf("columnCodecs(&BfaRow{}) error = %v", err)
	}
	for field, codec := range codecs {
		if codec != "snappy" {
			t.Errorf("field %s: codec = %s, want snappy", field, codec)
		}
	}
	if len(codecs) != 8 {
		t.Errorf("len(codecs) = %d, want 8 (one per BfaRow field)", len(codecs))
	}
}

func TestColumnCodecsBfmRow(t *testing.T) {
	codecs, err := columnCodecs(&BfmRow{})
	if err != nil {
		t.Fatalf("columnCodecs(&BfmRow{}) error = %v", err)
	}
	if len(codecs) != 9 {
		t.Errorf("len(codecs) = %d, want 9 (one per BfmRow field)", len(codecs))
	}
}

type badRow struct {
	Value int64 `parquet:"value"`
}

func TestColumnCodecsRejectsMissingTag(t *testing.T) {
	if _, err := columnCodecs(&badRow{}); err == nil {
		t.Fatal("columnCodecs(&badRow{}) error = nil, want error for missing beefi compress tag")
	}
}

type wrongCodecRow struct {
	Value int64 `parquet:"value" beefi:"compress(codec=gzip)"`
}

func TestColumnCodecsRejectsUnsupportedCodec(t *testing.T) {
	if _, err := columnCodecs(&wrongCodecRow{}); err == nil {
		t.Fatal("columnCodecs(&wrongCodecRow{}) error = nil, want error for non-snappy codec")
	}
}
