package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/alitto/pond"
	"github.com/urfave/cli/v2"

	beefi "github.com/nzqo/BeeFI"
	"github.com/nzqo/BeeFI/capture"
	"github.com/nzqo/BeeFI/encode"
	"github.com/nzqo/BeeFI/search"
	"github.com/nzqo/BeeFI/writer"
)

// outputSinks wires whichever of --bfa-out/--bfm-out/--pcap-out/--print
// the caller requested onto a freshly constructed, still-Configuring
// engine. At least one must be requested; this is checked by the caller
// before outputSinks is invoked.
func outputSinks(eng *capture.Engine, pcapOut, bfaOut, bfmOut string, print bool) (finalize func() error, err error) {
	var writers []*writer.Writer
	finalize = func() error {
		var firstErr error
		for _, w := range writers {
			if _, ferr := w.Finalize(); ferr != nil && firstErr == nil {
				firstErr = ferr
			}
		}
		return firstErr
	}

	if pcapOut != "" {
		if err := eng.AttachPollen(pcapOut); err != nil {
			return finalize, err
		}
	}

	if bfaOut != "" {
		w, err := writer.Create(bfaOut, writer.KindBFA)
		if err != nil {
			return finalize, fmt.Errorf("creating bfa writer: %w", err)
		}
		writers = append(writers, w)
		eng.AttachNectarFile(w)
	}

	if bfmOut != "" {
		w, err := writer.Create(bfmOut, writer.KindBFM)
		if err != nil {
			return finalize, fmt.Errorf("creating bfm writer: %w", err)
		}
		writers = append(writers, w)
		eng.AttachHoneyFile(w)
	}

	eng.SetPrint(print)
	return finalize, nil
}

func requireAtLeastOneSink(pcapOut, bfaOut, bfmOut string, print bool) error {
	if pcapOut == "" && bfaOut == "" && bfmOut == "" && !print {
		return fmt.Errorf("at least one of --pcap-out, --bfa-out, --bfm-out, or --print must be set")
	}
	return nil
}

// runUntilInterrupt starts the engine and blocks until ctx is cancelled
// (SIGINT) or the capture source itself reaches EOF/fatal error and the
// capture goroutine exits on its own -- the latter is how offline replay
// ends without requiring the caller to send a signal.
func runUntilInterrupt(ctx context.Context, eng *capture.Engine) error {
	if err := eng.Start(); err != nil {
		return err
	}

	captureDone := make(chan struct{})
	go func() {
		eng.Wait()
		close(captureDone)
	}()

	select {
	case <-ctx.Done():
	case <-captureDone:
	}
	return eng.Stop()
}

func captureLive(cCtx *cli.Context) error {
	iface := cCtx.String("interface")
	pcapOut := cCtx.String("pcap-out")
	bfaOut := cCtx.String("bfa-out")
	bfmOut := cCtx.String("bfm-out")
	print := cCtx.Bool("print")

	if err := requireAtLeastOneSink(pcapOut, bfaOut, bfmOut, print); err != nil {
		return err
	}

	source, err := capture.OpenLive(capture.LiveConfig{
		Interface:  iface,
		SnapLen:    int32(cCtx.Int("snaplen")),
		BufferSize: cCtx.Int("buffer-size"),
		Buffered:   cCtx.Bool("buffered"),
	})
	if err != nil {
		return fmt.Errorf("opening live interface %s: %w", iface, err)
	}

	eng := capture.NewEngine(source)
	finalize, err := outputSinks(eng, pcapOut, bfaOut, bfmOut, print)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("capture: listening on %s, press Ctrl+C to stop", iface)
	if err := runUntilInterrupt(ctx, eng); err != nil {
		return err
	}
	return finalize()
}

func captureFromFile(cCtx *cli.Context) error {
	path := cCtx.String("pcap-in")
	bfaOut := cCtx.String("bfa-out")
	bfmOut := cCtx.String("bfm-out")
	print := cCtx.Bool("print")
	reportOut := cCtx.String("report-out")

	if err := requireAtLeastOneSink("", bfaOut, bfmOut, print); err != nil {
		return err
	}

	source, err := capture.OpenOffline(path)
	if err != nil {
		return err
	}

	eng := capture.NewEngine(source)
	finalize, err := outputSinks(eng, "", bfaOut, bfmOut, print)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("capture: replaying %s", path)
	if err := runUntilInterrupt(ctx, eng); err != nil {
		return err
	}
	if err := finalize(); err != nil {
		return err
	}

	records, err := decodeAllBfa(path)
	if err != nil {
		log.Printf("capture: quality report skipped: %v", err)
		return nil
	}
	report := beefi.AssessBatch(records)
	log.Printf("capture: quality report for %s: tokens=[%d,%d] consistent_schema=%v duplicates=%d",
		path, report.MinToken, report.MaxToken, report.ConsistentSchema, len(report.Duplicates))

	if reportOut != "" {
		if err := encode.WriteJSONIndent(reportOut, report); err != nil {
			log.Printf("capture: writing quality report to %s failed: %v", reportOut, err)
		}
	}
	return nil
}

// decodeAllBfa re-reads an offline capture file end to end, purely to
// build the completed BFA slice the C10 quality report operates over.
// It is independent of whatever streaming pipeline already wrote the
// file's BFA/BFM output, since the report itself is never part of the
// wire contract and is not persisted alongside the records.
func decodeAllBfa(path string) ([]beefi.BfaRecord, error) {
	source, err := capture.OpenOffline(path)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	var records []beefi.BfaRecord
	for {
		data, ci, err := source.ReadPacketData()
		if err != nil {
			break
		}
		frame := beefi.Frame{
			TimestampSec:  ci.Timestamp.Unix(),
			TimestampUsec: int64(ci.Timestamp.Nanosecond()) / 1000,
			Data:          data,
		}
		bfa, err := beefi.Dissect(frame)
		if err != nil {
			continue
		}
		records = append(records, bfa)
	}
	return records, nil
}

func convertOne(path, bfaOutDir, bfmOutDir string) error {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]

	var bfaOut, bfmOut string
	if bfaOutDir != "" {
		bfaOut = filepath.Join(bfaOutDir, stem+".bfa.parquet")
	}
	if bfmOutDir != "" {
		bfmOut = filepath.Join(bfmOutDir, stem+".bfm.parquet")
	}
	if bfaOut == "" && bfmOut == "" {
		return fmt.Errorf("file %s: neither --bfa-out-dir nor --bfm-out-dir produced an output path", path)
	}

	source, err := capture.OpenOffline(path)
	if err != nil {
		return err
	}

	eng := capture.NewEngine(source)
	finalize, err := outputSinks(eng, "", bfaOut, bfmOut, false)
	if err != nil {
		return err
	}

	if err := eng.Start(); err != nil {
		return err
	}
	// Offline sources hit EOF on their own; the capture goroutine exits
	// without any external cancellation, so Stop only needs to join it.
	eng.Wait()
	if err := eng.Stop(); err != nil {
		return err
	}
	return finalize()
}

func convertDir(cCtx *cli.Context) error {
	dir := cCtx.String("dir")
	bfaOutDir := cCtx.String("bfa-out-dir")
	bfmOutDir := cCtx.String("bfm-out-dir")
	workers := cCtx.Int("workers")
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	log.Println("searching:", dir)
	items := search.FindCaptures(dir, "")
	log.Println("capture files discovered:", len(items))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool := pond.New(workers, 0, pond.MinWorkers(workers), pond.Context(ctx))
	defer pool.StopAndWait()

	for _, name := range items {
		path := name
		pool.Submit(func() {
			if err := convertOne(path, bfaOutDir, bfmOutDir); err != nil {
				log.Printf("conversion failed for %s: %v", path, err)
			}
		})
	}

	return nil
}

func monitorMode(cCtx *cli.Context) error {
	iface := cCtx.String("interface")
	channel := cCtx.String("channel")
	bandwidth := cCtx.String("bandwidth")

	if iface == "" {
		return fmt.Errorf("--interface is required")
	}

	// NIC configuration is deliberately left to system utilities rather
	// than reimplemented: set the interface to monitor mode, then set
	// the channel/bandwidth if requested.
	if err := exec.Command("ip", "link", "set", iface, "down").Run(); err != nil {
		return fmt.Errorf("bringing %s down: %w", iface, err)
	}
	if err := exec.Command("iw", iface, "set", "monitor", "none").Run(); err != nil {
		return fmt.Errorf("setting %s to monitor mode: %w", iface, err)
	}
	if err := exec.Command("ip", "link", "set", iface, "up").Run(); err != nil {
		return fmt.Errorf("bringing %s up: %w", iface, err)
	}

	if channel != "" {
		args := []string{"dev", iface, "set", "channel", channel}
		if bandwidth != "" {
			args = append(args, bandwidth)
		}
		if err := exec.Command("iw", args...).Run(); err != nil {
			return fmt.Errorf("setting channel on %s: %w", iface, err)
		}
	}

	log.Printf("%s is now in monitor mode", iface)
	return nil
}

func main() {
	app := &cli.App{
		Name:  "beefi",
		Usage: "capture and decode IEEE 802.11ax beamforming feedback",
		Commands: []*cli.Command{
			{
				Name:  "capture",
				Usage: "capture beamforming feedback from a live monitor-mode interface",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "interface", Required: true},
					&cli.StringFlag{Name: "pcap-out"},
					&cli.StringFlag{Name: "bfa-out"},
					&cli.StringFlag{Name: "bfm-out"},
					&cli.BoolFlag{Name: "print"},
					&cli.StringFlag{Name: "format", Value: "parquet"},
					&cli.IntFlag{Name: "snaplen", Value: 4096},
					&cli.IntFlag{Name: "buffer-size", Value: 1_000_000},
					&cli.BoolFlag{Name: "buffered"},
				},
				Action: captureLive,
			},
			{
				Name:  "from-pcap",
				Usage: "decode beamforming feedback from an existing capture file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "pcap-in", Required: true},
					&cli.StringFlag{Name: "bfa-out"},
					&cli.StringFlag{Name: "bfm-out"},
					&cli.BoolFlag{Name: "print"},
					&cli.StringFlag{Name: "format", Value: "parquet"},
					&cli.StringFlag{Name: "report-out", Usage: "optional path to write the C10 batch quality report as JSON"},
				},
				Action: captureFromFile,
			},
			{
				Name:  "from-pcap-dir",
				Usage: "bulk-convert every capture file discovered under a directory tree",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Required: true},
					&cli.StringFlag{Name: "bfa-out-dir"},
					&cli.StringFlag{Name: "bfm-out-dir"},
					&cli.IntFlag{Name: "workers", Usage: "default: number of CPUs"},
				},
				Action: convertDir,
			},
			{
				Name:  "monitor-mode",
				Usage: "place an interface into monitor mode via iw/ip",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "interface", Required: true},
					&cli.StringFlag{Name: "channel"},
					&cli.StringFlag{Name: "bandwidth"},
				},
				Action: monitorMode,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
