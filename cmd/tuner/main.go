// Command tuner is a guitar tuner and practice-tone player.
//
// Usage:
//
//	tuner [flags] <command> [args]
//
// Commands:
//
//	listen          print live tuner readings from the default input
//	play [track]    play the practice playlist starting at track (1-based)
//	tone <string>   sound the reference note of string 1-6 (6 = low E)
//	tunings         list the available tunings
//
// Defaults come from TUNER_* environment variables; flags override them.
//
// Examples:
//
//	tuner listen
//	tuner -tuning drop-d -mode multi listen
//	tuner -volume 40 play 3
//	tuner -midi IAC play
//	tuner tone 6
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/algo-tuner/analysis"
	"github.com/cwbudde/algo-tuner/device"
	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/engine"
	"github.com/cwbudde/algo-tuner/internal/config"
	"github.com/cwbudde/algo-tuner/midiout"
	"github.com/cwbudde/algo-tuner/pitch"
	"github.com/cwbudde/algo-tuner/synth"
	"github.com/cwbudde/algo-tuner/tuning"
	"golang.org/x/sync/errgroup"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	cfg := config.Load()

	flag.StringVar(&cfg.Tuning, "tuning", cfg.Tuning, "tuning id (see 'tuner tunings')")
	flag.StringVar(&cfg.Window, "window", cfg.Window, "visualizer analysis window (hann, hamming, blackman, blackmanharris, rectangular)")
	flag.StringVar(&cfg.Mode, "mode", cfg.Mode, "string display mode: single or multi")
	flag.IntVar(&cfg.Volume, "volume", cfg.Volume, "output volume 0-100")
	flag.BoolVar(&cfg.Muted, "mute", cfg.Muted, "start muted")
	flag.Float64Var(&cfg.SampleRate, "rate", cfg.SampleRate, "sample rate in Hz")
	flag.Float64Var(&cfg.HighPass, "highpass", cfg.HighPass, "pitch prefilter cutoff in Hz (0 disables)")
	flag.StringVar(&cfg.MIDIPort, "midi", cfg.MIDIPort, "mirror player notes to the MIDI output port containing this name")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tuner [flags] <listen|play|tone|tunings> [args]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "tunings":
		err = listTunings()
	case "listen":
		err = listen(ctx, cfg)
	case "play":
		err = play(ctx, cfg, flag.Arg(1))
	case "tone":
		err = tone(ctx, cfg, flag.Arg(1))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func listTunings() error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTRINGS")
	for _, t := range tuning.All() {
		notes := make([]string, 0, tuning.StringCount)
		for _, s := range t.Strings {
			notes = append(notes, s.Note)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Name, strings.Join(notes, " "))
	}
	return w.Flush()
}

func newEngine(cfg config.Config, opts ...engine.Option) (*engine.Engine, error) {
	win, err := cfg.AnalysisWindow()
	if err != nil {
		return nil, err
	}
	opts = append([]engine.Option{
		engine.WithLogger(log.Default()),
		engine.WithSettings(cfg.Settings()),
		engine.WithProcessorOptions(
			core.WithSampleRate(cfg.SampleRate),
			core.WithBlockSize(cfg.BlockSize),
			core.WithTickRate(cfg.TickRate),
		),
		engine.WithFeedOptions(analysis.WithWindow(win)),
	}, opts...)
	return engine.New(opts...)
}

func listen(ctx context.Context, cfg config.Config) error {
	capture := device.NewCapture(
		device.WithCaptureRate(cfg.SampleRate),
		device.WithFramesPerBuffer(cfg.FramesPerBuffer),
	)
	eng, err := newEngine(cfg,
		engine.WithCapture(capture),
		engine.WithEstimatorOptions(pitch.WithHighPass(cfg.HighPass)),
	)
	if err != nil {
		return err
	}

	if err := eng.StartTuner(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return eng.Run(gctx)
	})
	g.Go(func() error {
		return printReadings(gctx, eng)
	})
	return g.Wait()
}

func printReadings(ctx context.Context, eng *engine.Engine) error {
	var prev string
	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-eng.Readings():
			line := formatReading(r)
			if line == prev {
				continue
			}
			prev = line
			fmt.Println(line)
		}
	}
}

func formatReading(r engine.Reading) string {
	if !r.Valid {
		return "--"
	}
	states := make([]string, len(r.Strings))
	for i, s := range r.Strings {
		states[i] = stateGlyph(s)
	}
	target := "   "
	if r.InTolerance {
		target = fmt.Sprintf("S%d ", tuning.StringCount-r.String)
	}
	return fmt.Sprintf("%s%-4s %7.2f Hz %+6.1f cents %-7s [%s]",
		target, r.Note, r.Frequency, r.Cents, r.State, strings.Join(states, ""))
}

func stateGlyph(s tuning.State) string {
	switch s {
	case tuning.Tuned:
		return "="
	case tuning.Sharp:
		return "#"
	case tuning.Flat:
		return "b"
	default:
		return "."
	}
}

func play(ctx context.Context, cfg config.Config, arg string) error {
	opts := []engine.Option{}
	if cfg.MIDIPort != "" {
		sink, closeMIDI, err := midiout.Open(cfg.MIDIPort, midiout.WithChannel(uint8(cfg.MIDIChannel)))
		if err != nil {
			return err
		}
		defer func() {
			if err := closeMIDI(); err != nil {
				log.Printf("MIDI close: %v", err)
			}
		}()
		opts = append(opts, engine.WithEventSink(sink))
		log.Printf("Mirroring notes to MIDI port %q", cfg.MIDIPort)
	}

	eng, err := newEngine(cfg, opts...)
	if err != nil {
		return err
	}
	spk, err := device.OpenSpeaker(eng.Mixer(), cfg.Latency)
	if err != nil {
		return err
	}
	defer spk.Close()

	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("track %q: %w", arg, err)
		}
		if err := eng.SelectTrack(n - 1); err != nil {
			return err
		}
	}
	if err := eng.Play(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return eng.Run(gctx)
	})
	g.Go(func() error {
		announce(gctx, eng)
		return nil
	})
	return g.Wait()
}

// announce logs auto-advanced tracks until ctx is done.
func announce(ctx context.Context, eng *engine.Engine) {
	tracks := eng.Tracks()
	last := eng.Position().Index
	tick := time.NewTicker(250 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
		if pos := eng.Position(); pos.Index != last {
			last = pos.Index
			log.Printf("Now playing: %s", tracks[pos.Index].Title)
		}
	}
}

func tone(ctx context.Context, cfg config.Config, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > tuning.StringCount {
		return fmt.Errorf("string must be 1-%d, got %q", tuning.StringCount, arg)
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()
	spk, err := device.OpenSpeaker(eng.Mixer(), cfg.Latency)
	if err != nil {
		return err
	}
	defer spk.Close()

	// String 1 is high E, the last entry of the tuning.
	index := tuning.StringCount - n
	target := eng.Tuning().Strings[index]
	if err := eng.PlayReference(index); err != nil {
		return err
	}
	log.Printf("Reference: %s (%.2f Hz)", target.Note, target.Frequency)

	select {
	case <-ctx.Done():
	case <-time.After(synth.ReferenceDuration + cfg.Latency):
	}
	return nil
}
