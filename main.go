package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/mrdg/envgen/audio"
	"github.com/mrdg/envgen/eg"
	"github.com/mrdg/envgen/sim"
	"golang.org/x/term"
)

type sink interface {
	Start() error
	Stop() error
}

func main() {
	var (
		carrier  = flag.Int("carrier", eg.DefaultCarrierHz, "timer frequency in Hz")
		interval = flag.Int("interval", 0, "ticks between sample requests, 0 derives it from -carrier")
		latency  = flag.Int("latency", 2, "ticks per ADC conversion, -1 stalls the converter")
		traceLen = flag.Int("trace", 256, "transition trace capacity, a power of 2 or 0 to disable")
		realtime = flag.Bool("realtime", false, "run the timer in real time")
		backend  = flag.String("backend", "none", "audio output in real time: portaudio, oto or none")
		tone     = flag.Float64("tone", 110, "monitor tone frequency in Hz")
		wave     = flag.String("wave", "saw", "monitor waveform: sine, saw, square or off")
		level    = flag.Float64("level", -12, "monitor level in dB")
		run      = flag.String("run", "", "file of commands to run at startup")
		script   = flag.String("script", "", "Lua script to run at startup")
		verbose  = flag.Bool("v", false, "log envelope transitions")
	)
	flag.Parse()
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	knobs := sim.NewKnobs()
	if err := knobs.Set(sim.KnobLatency, *latency); err != nil {
		log.Fatal(err)
	}
	cfg := eg.DefaultConfig()
	cfg.CarrierHz = *carrier
	cfg.SampleInterval = *interval
	cfg.TraceSize = *traceLen

	board := sim.NewBoard(knobs, cfg.Channels)
	ctrl, err := eg.New(board, cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := ctrl.Start(); err != nil {
		log.Fatal(err)
	}

	e := &env{
		board:    board,
		knobs:    knobs,
		ctrl:     ctrl,
		realtime: *realtime,
		tone:     *tone,
		wave:     *wave,
		level:    *level,
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	if *realtime {
		wg.Add(2)
		go func() {
			defer wg.Done()
			board.Run(ctx)
		}()
		go func() {
			defer wg.Done()
			ctrl.Run(ctx)
		}()

		out, err := newSink(*backend, board, e)
		if err != nil {
			log.Fatal(err)
		}
		if out != nil {
			if err := out.Start(); err != nil {
				log.Fatal(err)
			}
			defer out.Stop()
		}
	}
	if *verbose && ctrl.Trace() != nil {
		e.traceLogged = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			logTrace(ctx, ctrl.Trace())
		}()
	}

	if err := startup(e, *run, *script); err != nil {
		log.Fatal(err)
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		err = repl(e)
	} else {
		err = batch(e, os.Stdin, os.Stdout)
	}
	cancel()
	wg.Wait()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func startup(e *env, run, script string) error {
	if run != "" {
		f, err := os.Open(run)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := batch(e, f, os.Stdout); err != nil {
			return fmt.Errorf("%s: %w", run, err)
		}
	}
	if script != "" {
		return runScript(e, script)
	}
	return nil
}

func newSink(backend string, board *sim.Board, e *env) (sink, error) {
	if backend == "none" {
		return nil, nil
	}
	monitor, err := audio.NewMonitor(board, audio.SampleRate, e.tone, e.wave, e.level)
	if err != nil {
		return nil, err
	}
	switch backend {
	case "portaudio":
		return audio.NewSink(monitor)
	case "oto":
		return audio.NewOtoSink(monitor)
	default:
		return nil, fmt.Errorf("unknown audio backend: %s", backend)
	}
}

func logTrace(ctx context.Context, trace *eg.Trace) {
	t := time.NewTicker(50 * time.Millisecond)
	defer t.Stop()
	var dropped uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			trace.Drain(func(tr eg.Transition) {
				log.Println(tr)
			})
			if n := trace.Dropped(); n != dropped {
				log.Printf("%d transitions dropped", n-dropped)
				dropped = n
			}
		}
	}
}
