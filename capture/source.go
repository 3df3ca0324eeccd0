// Package capture is the streaming capture engine (C7): it reads frames
// from a live interface or an offline capture file, tees raw frames to a
// packet-dump sink, and feeds decoded BFA and reconstructed BFM records
// into batched Parquet writers without ever blocking the capture thread.
package capture

import (
	"fmt"
	"os"
	"time"

	"github.com/gopacket/gopacket/pcap"
)

// bpfFilter restricts capture to management frames carrying compressed
// beamforming reports -- first byte 0xE0 -- per SPEC_FULL §6.
const bpfFilter = "ether[0] == 0xe0"

// LiveConfig tunes a live interface capture. Zero values are replaced by
// the defaults named in SPEC_FULL §6.
type LiveConfig struct {
	Interface  string
	SnapLen    int32
	BufferSize int
	Buffered   bool // false selects immediate mode (the spec default)
}

func (c LiveConfig) withDefaults() LiveConfig {
	if c.SnapLen == 0 {
		c.SnapLen = 4096
	}
	if c.BufferSize == 0 {
		c.BufferSize = 1_000_000
	}
	return c
}

// OpenLive opens a monitor-mode interface for live capture, promiscuous
// and with a 10 ms read timeout, with the BPF filter from SPEC_FULL §6
// already applied. The handle is not put into non-blocking mode.
func OpenLive(cfg LiveConfig) (*pcap.Handle, error) {
	cfg = cfg.withDefaults()

	inactive, err := pcap.NewInactiveHandle(cfg.Interface)
	if err != nil {
		return nil, fmt.Errorf("creating inactive handle for %s: %w", cfg.Interface, err)
	}
	defer inactive.CleanUp()

	if err := inactive.SetSnapLen(int(cfg.SnapLen)); err != nil {
		return nil, fmt.Errorf("setting snaplen: %w", err)
	}
	if err := inactive.SetPromisc(true); err != nil {
		return nil, fmt.Errorf("setting promiscuous mode: %w", err)
	}
	if err := inactive.SetBufferSize(cfg.BufferSize); err != nil {
		return nil, fmt.Errorf("setting buffer size: %w", err)
	}
	if err := inactive.SetImmediateMode(!cfg.Buffered); err != nil {
		return nil, fmt.Errorf("setting immediate mode: %w", err)
	}
	if err := inactive.SetTimeout(10 * time.Millisecond); err != nil {
		return nil, fmt.Errorf("setting read timeout: %w", err)
	}

	handle, err := inactive.Activate()
	if err != nil {
		return nil, fmt.Errorf("activating capture on %s: %w", cfg.Interface, err)
	}

	if err := handle.SetBPFFilter(bpfFilter); err != nil {
		handle.Close()
		return nil, fmt.Errorf("setting BPF filter: %w", err)
	}

	return handle, nil
}

// OpenOffline opens a capture file for replay. The BPF filter is applied
// identically so offline decoding sees exactly the frames a live capture
// would have.
func OpenOffline(path string) (*pcap.Handle, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("capture file %s: %w", path, err)
	}

	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return nil, fmt.Errorf("opening capture file %s: %w", path, err)
	}

	if err := handle.SetBPFFilter(bpfFilter); err != nil {
		handle.Close()
		return nil, fmt.Errorf("setting BPF filter: %w", err)
	}

	return handle, nil
}
