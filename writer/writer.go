package writer

import (
	"fmt"
	"math/cmplx"
	"os"

	"github.com/segmentio/parquet-go"

	beefi "github.com/nzqo/BeeFI"
)

// Kind selects which fixed schema a Writer encodes.
type Kind int

const (
	KindBFA Kind = iota
	KindBFM
)

// Writer owns a single output file for its full lifetime, from create to
// finalize. A Writer is not safe for concurrent use; the streaming
// capture engine gives each writer worker exclusive ownership of one.
type Writer struct {
	kind      Kind
	file      *os.File
	bfa       *parquet.GenericWriter[BfaRow]
	bfm       *parquet.GenericWriter[BfmRow]
	finalized bool
}

// Create creates or truncates the file at path and initializes a Parquet
// encoder with SNAPPY compression for the given record kind.
func Create(path string, kind Kind) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}

	w := &Writer{kind: kind, file: f}

	switch kind {
	case KindBFA:
		if _, err := columnCodecs(&BfaRow{}); err != nil {
			f.Close()
			return nil, err
		}
		w.bfa = parquet.NewGenericWriter[BfaRow](f, parquet.Compression(snappyCompression))
	case KindBFM:
		if _, err := columnCodecs(&BfmRow{}); err != nil {
			f.Close()
			return nil, err
		}
		w.bfm = parquet.NewGenericWriter[BfmRow](f, parquet.Compression(snappyCompression))
	default:
		f.Close()
		return nil, fmt.Errorf("unknown writer kind %d", kind)
	}

	return w, nil
}

// AddBFABatch encodes one batch of BFA records. Rows may have
// heterogeneous nested angle-row lengths; the Parquet list encoding
// stores true per-record dimensions, never padded.
func (w *Writer) AddBFABatch(records []beefi.BfaRecord) error {
	if w.kind != KindBFA {
		return fmt.Errorf("writer is configured for kind %d, not BFA", w.kind)
	}
	if w.finalized {
		return beefi.ErrAlreadyFinalized
	}

	rows := make([]BfaRow, len(records))
	for i, r := range records {
		rows[i] = BfaRow{
			Timestamp:    r.Timestamp,
			Token:        r.Token,
			Bandwidth:    r.Metadata.BandwidthMHz,
			NrIndex:      r.Metadata.NrIndex,
			NcIndex:      r.Metadata.NcIndex,
			CodebookInfo: r.Metadata.CodebookInfo,
			FeedbackType: r.Metadata.FeedbackType,
			Angles:       r.Angles,
		}
	}

	if _, err := w.bfa.Write(rows); err != nil {
		return fmt.Errorf("writing bfa batch: %w", err)
	}
	return nil
}

// AddBFMBatch encodes one batch of BFM records, splitting each complex
// matrix element-wise into magnitude and phase columns.
func (w *Writer) AddBFMBatch(records []beefi.BfmRecord) error {
	if w.kind != KindBFM {
		return fmt.Errorf("writer is configured for kind %d, not BFM", w.kind)
	}
	if w.finalized {
		return beefi.ErrAlreadyFinalized
	}

	rows := make([]BfmRow, len(records))
	for i, r := range records {
		rows[i] = BfmRow{
			Timestamp:    r.Timestamp,
			Token:        r.Token,
			Bandwidth:    r.Metadata.BandwidthMHz,
			NrIndex:      r.Metadata.NrIndex,
			NcIndex:      r.Metadata.NcIndex,
			CodebookInfo: r.Metadata.CodebookInfo,
			FeedbackType: r.Metadata.FeedbackType,
			Abs:          magnitudes(r.V),
			Phase:        phases(r.V),
		}
	}

	if _, err := w.bfm.Write(rows); err != nil {
		return fmt.Errorf("writing bfm batch: %w", err)
	}
	return nil
}

// magnitudes and phases preserve V's (Nr, Nc, Sub) nesting exactly --
// only the leaf complex128 values are transformed.

func magnitudes(v [][][]complex128) [][][]float64 {
	out := make([][][]float64, len(v))
	for r, cols := range v {
		out[r] = make([][]float64, len(cols))
		for c, subs := range cols {
			out[r][c] = make([]float64, len(subs))
			for k, elem := range subs {
				out[r][c][k] = cmplx.Abs(elem)
			}
		}
	}
	return out
}

func phases(v [][][]complex128) [][][]float64 {
	out := make([][][]float64, len(v))
	for r, cols := range v {
		out[r] = make([][]float64, len(cols))
		for c, subs := range cols {
			out[r][c] = make([]float64, len(subs))
			for k, elem := range subs {
				out[r][c][k] = cmplx.Phase(elem)
			}
		}
	}
	return out
}

// Finalize flushes and closes the underlying file. A second call fails
// with ErrAlreadyFinalized -- finalize is idempotent-safe, not
// idempotent-successful.
func (w *Writer) Finalize() (int64, error) {
	if w.finalized {
		return 0, beefi.ErrAlreadyFinalized
	}
	w.finalized = true

	var closeErr error
	switch w.kind {
	case KindBFA:
		closeErr = w.bfa.Close()
	case KindBFM:
		closeErr = w.bfm.Close()
	}
	if closeErr != nil {
		return 0, fmt.Errorf("finalizing writer: %w", closeErr)
	}

	info, err := w.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat on finalize: %w", err)
	}

	if err := w.file.Close(); err != nil {
		return 0, fmt.Errorf("closing file on finalize: %w", err)
	}

	return info.Size(), nil
}
