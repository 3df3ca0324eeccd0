package capture

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopacket/gopacket/pcap"
	"github.com/gopacket/gopacket/pcapgo"

	beefi "github.com/nzqo/BeeFI"
	"github.com/nzqo/BeeFI/writer"
)

// State is the engine's lifecycle state, per SPEC_FULL §4.7:
// Idle -> Configuring -> Running -> Stopping -> Idle.
type State int

const (
	StateIdle State = iota
	StateConfiguring
	StateRunning
	StateStopping
)

type bfaSink interface {
	offer(beefi.BfaRecord)
	close()
}

type bfmSink interface {
	offer(beefi.BfmRecord)
	close()
}

type queueBfaSink struct{ ch chan<- beefi.BfaRecord }

func (s *queueBfaSink) offer(rec beefi.BfaRecord) {
	select {
	case s.ch <- rec:
	default:
		log.Printf("capture: nectar queue full, dropping BFA record (token=%d)", rec.Token)
	}
}

// close is a no-op: a Queue sink's channel is owned by the caller that
// supplied it, not by the engine.
func (s *queueBfaSink) close() {}

type queueBfmSink struct{ ch chan<- beefi.BfmRecord }

func (s *queueBfmSink) offer(rec beefi.BfmRecord) {
	select {
	case s.ch <- rec:
	default:
		log.Printf("capture: honey queue full, dropping BFM record (token=%d)", rec.Token)
	}
}

func (s *queueBfmSink) close() {}

// runningFlag is a thin wrapper over atomic.Bool so the capture loop's
// stop condition reads naturally at call sites.
type runningFlag struct{ v atomic.Bool }

func (f *runningFlag) set(v bool) { f.v.Store(v) }
func (f *runningFlag) get() bool  { return f.v.Load() }

// Engine is a small actor system with three sink kinds -- pollen (raw
// dump), nectar (BFA), honey (BFM) -- and exactly one capture goroutine
// plus at most one writer goroutine per File-backed sink. See SPEC_FULL
// §4.7/§5/§9 for the concurrency and ownership discipline this
// implements.
type Engine struct {
	mu    sync.Mutex
	state State

	source *pcap.Handle

	pollenFile   *os.File
	pollenWriter *pcapgo.Writer

	nectar bfaSink
	honey  bfmSink
	print  bool

	runningFlag runningFlag
	wg          sync.WaitGroup
}

// NewEngine constructs an Engine over a capture source. The engine takes
// ownership of source for its entire lifetime: the capture goroutine reads
// from it through the engine, and Stop closes it.
func NewEngine(source *pcap.Handle) *Engine {
	return &Engine{source: source, state: StateConfiguring}
}

// AttachPollen registers the raw packet-dump sink. Attaching a second
// pollen sink, or attaching one after Start, is a programmer error and
// panics -- matching SPEC_FULL's "MUST fail loudly" requirement.
func (e *Engine) AttachPollen(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateConfiguring {
		panic("capture: cannot attach a sink outside the Configuring state")
	}
	if e.pollenWriter != nil {
		panic("capture: a pollen sink is already attached")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating pollen dump %s: %w", path, err)
	}

	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(65535, e.source.LinkType()); err != nil {
		f.Close()
		return fmt.Errorf("writing pcap file header for %s: %w", path, err)
	}

	e.pollenFile = f
	e.pollenWriter = w
	return nil
}

// AttachNectarFile registers a File-backed BFA sink: w is handed to a
// dedicated writer goroutine that batches records at BATCH_SIZE before
// each encode call.
func (e *Engine) AttachNectarFile(w *writer.Writer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requireConfiguringLocked()
	if e.nectar != nil {
		panic("capture: a nectar sink is already attached")
	}
	e.nectar = newNectarFileSink(w)
}

// AttachNectarQueue registers an in-process BFA sink: records are
// offered, non-blocking, directly to ch.
func (e *Engine) AttachNectarQueue(ch chan<- beefi.BfaRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requireConfiguringLocked()
	if e.nectar != nil {
		panic("capture: a nectar sink is already attached")
	}
	e.nectar = &queueBfaSink{ch: ch}
}

// AttachHoneyFile registers a File-backed BFM sink.
func (e *Engine) AttachHoneyFile(w *writer.Writer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requireConfiguringLocked()
	if e.honey != nil {
		panic("capture: a honey sink is already attached")
	}
	e.honey = newHoneyFileSink(w)
}

// AttachHoneyQueue registers an in-process BFM sink.
func (e *Engine) AttachHoneyQueue(ch chan<- beefi.BfmRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requireConfiguringLocked()
	if e.honey != nil {
		panic("capture: a honey sink is already attached")
	}
	e.honey = &queueBfmSink{ch: ch}
}

// SetPrint enables or disables the human-readable per-packet summary.
func (e *Engine) SetPrint(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.print = v
}

func (e *Engine) requireConfiguringLocked() {
	if e.state != StateConfiguring {
		panic("capture: cannot attach a sink outside the Configuring state")
	}
}

// Start transitions Configuring -> Running and spawns the capture
// goroutine. An engine runs once: after Stop it is Idle with its source
// closed, sinks cannot be attached again and Start returns an error.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.state != StateConfiguring {
		e.mu.Unlock()
		return fmt.Errorf("capture: engine must be in Configuring state to start, got %v", e.state)
	}
	e.state = StateRunning
	e.mu.Unlock()

	e.runningFlag.set(true)
	e.wg.Add(1)
	go e.captureLoop()
	return nil
}

func (e *Engine) captureLoop() {
	defer e.wg.Done()

	for e.runningFlag.get() {
		data, ci, err := e.source.ReadPacketData()
		if err != nil {
			if errors.Is(err, pcap.NextErrorTimeoutExpired) {
				time.Sleep(10 * time.Millisecond)
				continue
			}
			log.Printf("capture: read error, stopping capture: %v", err)
			break
		}

		if e.pollenWriter != nil {
			if err := e.pollenWriter.WritePacket(ci, data); err != nil {
				log.Printf("capture: pollen write failed: %v", err)
			}
		}

		if e.honey == nil && e.nectar == nil && !e.print {
			continue
		}

		frame := beefi.Frame{
			TimestampSec:  ci.Timestamp.Unix(),
			TimestampUsec: int64(ci.Timestamp.Nanosecond()) / 1000,
			Data:          data,
		}

		bfa, err := beefi.Dissect(frame)
		if err != nil {
			log.Printf("capture: dissection error, dropping packet: %v", err)
			continue
		}

		if e.print {
			// The human-readable summary is a data product of the capture,
			// not a diagnostic -- it goes to standard output, not the log.
			fmt.Printf("token=%d timestamp=%.6f subcarriers=%d\n",
				bfa.Token, bfa.Timestamp, len(bfa.Angles))
		}

		if e.honey != nil {
			bfm, err := beefi.ReconstructBFM(bfa)
			if err != nil {
				log.Printf("capture: bfm conversion error, skipping record: %v", err)
			} else {
				e.honey.offer(bfm)
			}
		}

		if e.nectar != nil {
			e.nectar.offer(bfa)
		}
	}
}

// Wait blocks until the capture goroutine exits, whether because the
// underlying source reached EOF/a fatal error on its own (the offline
// case) or because Stop is concurrently tearing it down. It does not
// itself signal the loop to stop.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Stop signals the capture goroutine to exit, joins it, drains and joins
// every writer goroutine, and flushes the pollen sink. A call after
// capture has already finished is a no-op.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if e.state != StateRunning {
		e.mu.Unlock()
		return nil
	}
	e.state = StateStopping
	e.mu.Unlock()

	e.runningFlag.set(false)
	e.wg.Wait()

	if e.nectar != nil {
		e.nectar.close()
	}
	if e.honey != nil {
		e.honey.close()
	}

	if e.pollenFile != nil {
		if err := e.pollenFile.Close(); err != nil {
			log.Printf("capture: closing pollen dump failed: %v", err)
		}
	}

	e.source.Close()

	e.mu.Lock()
	e.state = StateIdle
	e.mu.Unlock()
	return nil
}
