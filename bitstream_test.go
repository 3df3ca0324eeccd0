package beefi

import (
	"errors"
	"reflect"
	"testing"
)

func TestExtractBitfieldsWorkedExample(t *testing.T) {
	stream := []byte{0xCA, 0xF0, 0x5C, 0x3E}
	widths := []uint8{6, 4, 4}

	got, err := ExtractBitfields(stream, widths, 2)
	if err != nil {
		t.Fatalf("ExtractBitfields() error = %v", err)
	}

	want := [][]uint16{
		{0x0A, 0x3, 0xC},
		{0x33, 0x5, 0xE},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractBitfields() = %v, want %v", got, want)
	}
}

func TestExtractBitfieldsLargeWidths(t *testing.T) {
	stream := []byte{0xCA, 0xF0}
	widths := []uint8{9, 5, 2}

	got, err := ExtractBitfields(stream, widths, 1)
	if err != nil {
		t.Fatalf("ExtractBitfields() error = %v", err)
	}

	want := [][]uint16{{0b011001010, 0b11000, 0b11}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractBitfields() = %v, want %v", got, want)
	}
}

func TestExtractBitfieldsTrailingBytesIgnored(t *testing.T) {
	stream := []byte{0xCA, 0xF0, 0x5C, 0x3E, 0xFF, 0xFF}
	widths := []uint8{6, 4, 4}

	got, err := ExtractBitfields(stream, widths, 2)
	if err != nil {
		t.Fatalf("ExtractBitfields() error = %v", err)
	}
	want := [][]uint16{{0x0A, 0x3, 0xC}, {0x33, 0x5, 0xE}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractBitfields() = %v, want %v (trailing bytes must be ignored)", got, want)
	}
}

func TestExtractBitfieldsInsufficientBitsize(t *testing.T) {
	stream := []byte{0xCA, 0xF0}
	widths := []uint8{6, 4, 4}

	_, err := ExtractBitfields(stream, widths, 2)
	if err == nil {
		t.Fatal("ExtractBitfields() error = nil, want InsufficientBitsizeError")
	}

	var sizeErr *InsufficientBitsizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("ExtractBitfields() error = %v, want *InsufficientBitsizeError", err)
	}
	if sizeErr.Required != 28 || sizeErr.Available != 16 {
		t.Fatalf("InsufficientBitsizeError = %+v, want {Required:28 Available:16}", sizeErr)
	}
}

func TestExtractBitfieldsRejectsOverwideField(t *testing.T) {
	_, err := ExtractBitfields([]byte{0x00, 0x00}, []uint8{10}, 1)
	var widthErr *InvalidBitfieldSizeError
	if !errors.As(err, &widthErr) {
		t.Fatalf("ExtractBitfields() error = %v, want *InvalidBitfieldSizeError", err)
	}
	if widthErr.Given != 10 || widthErr.Allowed != maxBitfieldWidth {
		t.Fatalf("InvalidBitfieldSizeError = %+v, want {Given:10 Allowed:%d}", widthErr, maxBitfieldWidth)
	}
}
