package beefi

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Wrapped struct errors below carry additional context
// but remain matchable with errors.Is against these.
var (
	ErrInvalidFeedbackType  = errors.New("invalid codebook_info/feedback_type combination")
	ErrInvalidAntennaConfig = errors.New("invalid nr_index/nc_index combination")
	ErrInvalidBitfieldSize  = errors.New("bitfield width exceeds 9 bits")
	ErrInsufficientBitsize  = errors.New("byte stream too short for requested bitfields")
	ErrAlreadyFinalized     = errors.New("writer already finalized")
	ErrChannelFull          = errors.New("downstream channel full, record dropped")
	ErrChannelDisconnected  = errors.New("downstream channel disconnected")
	ErrSinkAlreadySet       = errors.New("a sink of this kind is already attached")
)

// InsufficientBitsizeError reports the exact shortfall between the bits a
// bit-unpack request needs and the bits actually available in the stream.
type InsufficientBitsizeError struct {
	Required  int
	Available int
}

func (e *InsufficientBitsizeError) Error() string {
	return fmt.Sprintf("insufficient bitsize: required %d bits, have %d", e.Required, e.Available)
}

func (e *InsufficientBitsizeError) Unwrap() error {
	return ErrInsufficientBitsize
}

// InvalidBitfieldSizeError reports a requested bitfield width wider than
// the 9 bits the sliding-window unpacker supports.
type InvalidBitfieldSizeError struct {
	Given   int
	Allowed int
}

func (e *InvalidBitfieldSizeError) Error() string {
	return fmt.Sprintf("invalid bitfield size: given %d, allowed up to %d", e.Given, e.Allowed)
}

func (e *InvalidBitfieldSizeError) Unwrap() error {
	return ErrInvalidBitfieldSize
}

// ExtractionError wraps a packet-level decode failure (ConfigError or
// ExtractionError in the taxonomy). It is never fatal to the capture engine:
// the offending packet is dropped and the engine continues.
type ExtractionError struct {
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %s", e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ConversionError wraps an extraction failure surfaced during BFM
// reconstruction.
type ConversionError struct {
	Cause error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("bfm conversion failed: %s", e.Cause)
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}
