package eg

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeBoard is an in-memory Board. The ADC completes a conversion after
// latency readiness polls; a negative latency never completes.
type fakeBoard struct {
	duty atomic.Uint32
	gate atomic.Bool // pin level, true while released

	inputs  [NumChannels]uint16
	latency int
	polls   int
	channel int
	starts  []int

	freq int
	tick func()
}

func newFakeBoard() *fakeBoard {
	b := &fakeBoard{}
	b.gate.Store(true)
	return b
}

func (b *fakeBoard) SetOutputDuty(v uint16) { b.duty.Store(uint32(v)) }
func (b *fakeBoard) ReadGatePin() bool      { return b.gate.Load() }

func (b *fakeBoard) StartConversion(ch int) {
	b.channel = ch
	b.polls = 0
	b.starts = append(b.starts, ch)
}

func (b *fakeBoard) ConversionReady() bool {
	if b.latency < 0 {
		return false
	}
	b.polls++
	return b.polls > b.latency
}

func (b *fakeBoard) ReadConversion() uint16 { return b.inputs[b.channel] }

func (b *fakeBoard) RegisterPeriodicCallback(freqHz int, fn func()) error {
	b.freq = freqHz
	b.tick = fn
	return nil
}

func newTestController(t *testing.T, b *fakeBoard, interval int) *Controller {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SampleInterval = interval
	c, err := New(b, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	return c
}

// run fires n ticks, draining the foreground loop after each one.
func run(b *fakeBoard, c *Controller, n int) {
	for i := 0; i < n; i++ {
		b.tick()
		for c.Poll() {
		}
	}
}

func TestNewValidatesConfig(t *testing.T) {
	b := newFakeBoard()
	tests := []Config{
		{CarrierHz: 0},
		{CarrierHz: 1000, SampleInterval: -1},
		{CarrierHz: 1000, Channels: ChannelMap{Attack, Attack, Decay, Release}},
		{CarrierHz: 1000, TraceSize: 100},
	}
	for _, cfg := range tests {
		if _, err := New(b, cfg); err == nil {
			t.Errorf("expected error for config %+v", cfg)
		}
	}
	if _, err := New(nil, DefaultConfig()); err == nil {
		t.Error("expected error for nil board")
	}
}

func TestControllerStart(t *testing.T) {
	b := newFakeBoard()
	c := newTestController(t, b, 0)
	if want, got := DefaultCarrierHz, b.freq; want != got {
		t.Errorf("want callback at %d Hz, got %d", want, got)
	}
	if want, got := SampleInterval(DefaultCarrierHz), c.Config().SampleInterval; want != got {
		t.Errorf("want sample interval %d, got %d", want, got)
	}
}

func TestControllerTickPublishesOutput(t *testing.T) {
	b := newFakeBoard()
	b.inputs = [4]uint16{0, MaxParam, 0, 0} // release, sustain, decay, attack
	c := newTestController(t, b, 10)

	run(b, c, 40) // one full sampling cycle
	b.gate.Store(false)

	for i := 0; i < 200; i++ {
		prev := c.Output()
		b.tick()
		if want, got := uint32(prev), b.duty.Load(); want != got {
			t.Fatalf("tick %d: want duty %d, got %d", i, want, got)
		}
		for c.Poll() {
		}
	}
	if want, got := uint16(MaxOutput), c.Output(); want != got {
		t.Errorf("want output %d, got %d", want, got)
	}
	if c.Stage() == StageIdle {
		t.Errorf("want an active stage, got %v", c.Stage())
	}
}

func TestControllerSamplesRoundRobin(t *testing.T) {
	b := newFakeBoard()
	b.inputs = [4]uint16{11, 22, 33, 44}
	b.latency = 3
	c := newTestController(t, b, 10)

	// requests at ticks 10..40, the last conversion lands at tick 43
	run(b, c, 45)
	if want, got := []int{0, 1, 2, 3}, b.starts; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong channel order: want %v, got %v", want, got)
	}
	if want, got := [4]uint16{44, 33, 22, 11}, c.Params().Snapshot(); want != got {
		t.Errorf("wrong parameters: want %v, got %v", want, got)
	}
	if want, got := uint64(4), c.Stats().Conversions; want != got {
		t.Errorf("want %d conversions, got %d", want, got)
	}

	run(b, c, 40)
	if want, got := []int{0, 1, 2, 3, 0, 1, 2, 3}, b.starts; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong channel order: want %v, got %v", want, got)
	}
}

func TestControllerStalledConversion(t *testing.T) {
	b := newFakeBoard()
	b.latency = -1
	b.inputs = [4]uint16{100, 100, 100, 100}
	c := newTestController(t, b, 5)

	b.gate.Store(false)
	run(b, c, 500)

	stats := c.Stats()
	if want, got := uint64(500), stats.Updates; want != got {
		t.Errorf("want %d updates, got %d", want, got)
	}
	if want, got := uint64(0), stats.Conversions; want != got {
		t.Errorf("want %d conversions, got %d", want, got)
	}
	if want, got := []int{0}, b.starts; !reflect.DeepEqual(want, got) {
		t.Errorf("want a single started conversion, got %v", got)
	}
	if want, got := [4]uint16{}, c.Params().Snapshot(); want != got {
		t.Errorf("parameters changed: %v", got)
	}
	if c.Output() == 0 {
		t.Error("envelope did not move while the converter was stalled")
	}
}

func TestControllerNoLostRequests(t *testing.T) {
	b := newFakeBoard()
	c := newTestController(t, b, 7)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Run(ctx)
	}()

	const numTicks = 200_000
	for i := 0; i < numTicks; i++ {
		if i%1000 == 0 {
			b.gate.Store(!b.gate.Load())
		}
		b.tick()
	}
	cancel()
	wg.Wait()
	for c.Poll() {
	}

	// every tick was either consumed by exactly one update or merged into
	// a request that was still pending
	stats := c.Stats()
	if want, got := uint64(numTicks), stats.Ticks; want != got {
		t.Fatalf("want %d ticks, got %d", want, got)
	}
	if want, got := stats.Ticks, stats.Updates+stats.Overruns; want != got {
		t.Errorf("updates (%d) + overruns (%d) = %d, want %d",
			stats.Updates, stats.Overruns, got, want)
	}
}
