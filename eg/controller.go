// Package eg is the control core of an ADSR envelope generator.
//
// A periodic timer callback (Tick) publishes the current output to the PWM
// stage and raises work items; a single foreground loop (Poll, Run) consumes
// them by stepping the envelope engine and the analog sampler. The two
// sides share only atomic scalars: one flag per kind of work item, the
// output value and the control parameters.
package eg

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
)

// DefaultCarrierHz is the reference board's PWM rate: a 20 MHz clock
// driving 10 bit phase and frequency correct PWM.
const DefaultCarrierHz = 20_000_000 / (2 * 1024)

// samplesPerSecond sets the analog sampling rate, one conversion every 10ms.
const samplesPerSecond = 100

// SampleInterval returns the number of ticks between sampling requests
// for a carrier of freqHz.
func SampleInterval(freqHz int) int {
	n := freqHz / samplesPerSecond
	if n < 1 {
		n = 1
	}
	return n
}

type Config struct {
	CarrierHz int

	// SampleInterval is the number of ticks between sample requests.
	// Zero derives it from CarrierHz.
	SampleInterval int

	// Channels maps ADC channels to parameters. The zero value selects
	// DefaultChannelMap.
	Channels ChannelMap

	// TraceSize is the capacity of the transition trace, a power of 2.
	// Zero disables tracing.
	TraceSize int
}

func DefaultConfig() Config {
	return Config{
		CarrierHz: DefaultCarrierHz,
		Channels:  DefaultChannelMap,
		TraceSize: 256,
	}
}

// Stats are running counters kept by the controller.
type Stats struct {
	Ticks       uint64 // timer callbacks
	Updates     uint64 // engine steps
	Overruns    uint64 // ticks that found the previous update still pending
	Conversions uint64 // completed analog conversions
}

// Controller owns all mutable state of the envelope generator.
type Controller struct {
	board    Board
	cfg      Config
	params   Params
	engine   *Engine
	sampler  *Sampler
	trace    *Trace
	interval int

	output    atomic.Uint32
	stage     atomic.Int32
	updateDue atomic.Bool
	sampleDue atomic.Bool

	// countdown is only touched by Tick.
	countdown int

	ticks       atomic.Uint64
	updates     atomic.Uint64
	overruns    atomic.Uint64
	conversions atomic.Uint64
}

// New returns a controller for board. Call Start to install the timer
// callback and Run to drive the foreground loop.
func New(board Board, cfg Config) (*Controller, error) {
	if board == nil {
		return nil, errors.New("nil board")
	}
	if cfg.CarrierHz <= 0 {
		return nil, fmt.Errorf("invalid carrier frequency: %d", cfg.CarrierHz)
	}
	if cfg.SampleInterval < 0 {
		return nil, fmt.Errorf("invalid sample interval: %d", cfg.SampleInterval)
	}
	if cfg.SampleInterval == 0 {
		cfg.SampleInterval = SampleInterval(cfg.CarrierHz)
	}
	if cfg.Channels == (ChannelMap{}) {
		cfg.Channels = DefaultChannelMap
	}

	c := &Controller{
		board:     board,
		cfg:       cfg,
		interval:  cfg.SampleInterval,
		countdown: cfg.SampleInterval,
	}
	if cfg.TraceSize > 0 {
		trace, err := NewTrace(cfg.TraceSize)
		if err != nil {
			return nil, err
		}
		c.trace = trace
	}
	sampler, err := NewSampler(board, &c.params, cfg.Channels)
	if err != nil {
		return nil, err
	}
	c.sampler = sampler
	c.engine = NewEngine(&c.params, c.trace)
	return c, nil
}

// Start installs Tick as the board's periodic callback.
func (c *Controller) Start() error {
	if err := c.board.RegisterPeriodicCallback(c.cfg.CarrierHz, c.Tick); err != nil {
		return fmt.Errorf("register tick: %w", err)
	}
	return nil
}

// Tick is the periodic callback. It writes the output, requests an engine
// update and, every SampleInterval ticks, an analog sample. It never
// blocks and never waits for the foreground loop.
func (c *Controller) Tick() {
	c.board.SetOutputDuty(uint16(c.output.Load()))
	c.ticks.Add(1)

	if c.updateDue.Swap(true) {
		c.overruns.Add(1)
	}

	c.countdown--
	if c.countdown == 0 {
		c.sampleDue.Store(true)
		c.countdown = c.interval
	}
}

// Poll runs one iteration of the foreground loop and reports whether it
// found any work. Flags are cleared before the work they request is done,
// so a request raised meanwhile is seen by the next Poll.
func (c *Controller) Poll() bool {
	var worked bool

	if c.updateDue.Swap(false) {
		out := c.engine.Step(c.board.ReadGatePin())
		c.output.Store(uint32(out))
		c.stage.Store(int32(c.engine.Stage()))
		c.updates.Add(1)
		worked = true
	}

	// A request raised mid-conversion stays pending until this one is done.
	if c.sampler.Busy() || c.sampleDue.Swap(false) {
		busy := c.sampler.Busy()
		if c.sampler.Service() {
			c.conversions.Add(1)
			worked = true
		} else if !busy {
			worked = true
		}
	}
	return worked
}

// Run polls until ctx is cancelled, yielding the processor while idle.
func (c *Controller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !c.Poll() {
			runtime.Gosched()
		}
	}
}

// Output returns the value most recently published to the PWM stage.
func (c *Controller) Output() uint16 { return uint16(c.output.Load()) }

// Stage returns the engine stage as of the last update.
func (c *Controller) Stage() Stage { return Stage(c.stage.Load()) }

// Params returns the parameter store.
func (c *Controller) Params() *Params { return &c.params }

// Trace returns the transition trace, or nil if tracing is disabled.
func (c *Controller) Trace() *Trace { return c.trace }

// Config returns the effective configuration.
func (c *Controller) Config() Config { return c.cfg }

func (c *Controller) Stats() Stats {
	return Stats{
		Ticks:       c.ticks.Load(),
		Updates:     c.updates.Load(),
		Overruns:    c.overruns.Load(),
		Conversions: c.conversions.Load(),
	}
}
