package capture

import (
	"log"
	"sync/atomic"

	beefi "github.com/nzqo/BeeFI"
	"github.com/nzqo/BeeFI/writer"
)

// queueCapacity is the bounded channel size feeding each writer worker;
// BATCH_SIZE is deliberately larger to amortize the cost of an encode
// call over many queued records. Both are fixed per SPEC_FULL §5.
const (
	queueCapacity = 100
	batchSize     = 1000
)

// nectarSink is the BFA stream sink: a bounded channel feeding a writer
// worker goroutine that owns w exclusively.
type nectarSink struct {
	send  chan beefi.BfaRecord
	alive atomic.Bool
	done  chan struct{}
	warned atomic.Bool
}

func newNectarFileSink(w *writer.Writer) *nectarSink {
	s := &nectarSink{
		send: make(chan beefi.BfaRecord, queueCapacity),
		done: make(chan struct{}),
	}
	s.alive.Store(true)
	go s.run(w)
	return s
}

func (s *nectarSink) run(w *writer.Writer) {
	defer close(s.done)
	defer s.alive.Store(false)

	buf := make([]beefi.BfaRecord, 0, batchSize)
	flush := func() bool {
		if len(buf) == 0 {
			return true
		}
		if err := w.AddBFABatch(buf); err != nil {
			log.Printf("capture: nectar writer failed, stopping this worker: %v", err)
			return false
		}
		buf = buf[:0]
		return true
	}

	for rec := range s.send {
		buf = append(buf, rec)
		if len(buf) >= batchSize {
			if !flush() {
				return
			}
		}
	}
	flush()
}

// offer attempts a non-blocking send. On a full queue the record is
// dropped and a warning logged; on a dead worker an error is logged once.
func (s *nectarSink) offer(rec beefi.BfaRecord) {
	if !s.alive.Load() {
		if !s.warned.Swap(true) {
			log.Printf("capture: nectar sink disconnected, dropping further BFA records")
		}
		return
	}
	select {
	case s.send <- rec:
	default:
		log.Printf("capture: nectar queue full, dropping BFA record (token=%d)", rec.Token)
	}
}

func (s *nectarSink) close() {
	close(s.send)
	<-s.done
}

// honeySink is the BFM stream sink, identical in shape to nectarSink but
// over reconstructed matrices.
type honeySink struct {
	send   chan beefi.BfmRecord
	alive  atomic.Bool
	done   chan struct{}
	warned atomic.Bool
}

func newHoneyFileSink(w *writer.Writer) *honeySink {
	s := &honeySink{
		send: make(chan beefi.BfmRecord, queueCapacity),
		done: make(chan struct{}),
	}
	s.alive.Store(true)
	go s.run(w)
	return s
}

func (s *honeySink) run(w *writer.Writer) {
	defer close(s.done)
	defer s.alive.Store(false)

	buf := make([]beefi.BfmRecord, 0, batchSize)
	flush := func() bool {
		if len(buf) == 0 {
			return true
		}
		if err := w.AddBFMBatch(buf); err != nil {
			log.Printf("capture: honey writer failed, stopping this worker: %v", err)
			return false
		}
		buf = buf[:0]
		return true
	}

	for rec := range s.send {
		buf = append(buf, rec)
		if len(buf) >= batchSize {
			if !flush() {
				return
			}
		}
	}
	flush()
}

func (s *honeySink) offer(rec beefi.BfmRecord) {
	if !s.alive.Load() {
		if !s.warned.Swap(true) {
			log.Printf("capture: honey sink disconnected, dropping further BFM records")
		}
		return
	}
	select {
	case s.send <- rec:
	default:
		log.Printf("capture: honey queue full, dropping BFM record (token=%d)", rec.Token)
	}
}

func (s *honeySink) close() {
	close(s.send)
	<-s.done
}
