// Package sim is a host-side stand-in for the envelope generator board.
// It implements eg.Board with an atomic PWM register, an ADC whose
// conversions take a configurable number of ticks, an active-low gate
// input and a timer that fires the registered callback either on demand
// (Advance) or in real time (Run).
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mrdg/envgen/eg"
)

type Board struct {
	knobs *Knobs
	chans eg.ChannelMap

	duty  atomic.Uint32
	gate  atomic.Bool // asserted
	ticks atomic.Uint64

	// converter state, touched only by the foreground loop
	channel    int
	startTick  uint64
	converting bool

	freq int
	tick func()

	seq       atomic.Pointer[sequence]
	seqDriven bool // producer only
}

// NewBoard returns a board whose ADC channels read the knobs as wired by chans.
func NewBoard(knobs *Knobs, chans eg.ChannelMap) *Board {
	return &Board{knobs: knobs, chans: chans}
}

func (b *Board) SetOutputDuty(v uint16) { b.duty.Store(uint32(v)) }

// Duty returns the last value written to the PWM register.
func (b *Board) Duty() uint16 { return uint16(b.duty.Load()) }

// ReadGatePin returns the pin level: low while the gate is asserted.
func (b *Board) ReadGatePin() bool { return !b.gate.Load() }

// SetGate asserts or releases the gate.
func (b *Board) SetGate(asserted bool) { b.gate.Store(asserted) }

func (b *Board) Gate() bool { return b.gate.Load() }

func (b *Board) StartConversion(channel int) {
	b.channel = channel % eg.NumChannels
	b.startTick = b.ticks.Load()
	b.converting = true
}

func (b *Board) ConversionReady() bool {
	if !b.converting {
		return false
	}
	latency := b.knobs.latency()
	if latency < 0 {
		return false
	}
	return b.ticks.Load()-b.startTick >= uint64(latency)
}

func (b *Board) ReadConversion() uint16 {
	b.converting = false
	return b.knobs.pot(b.chans[b.channel])
}

func (b *Board) RegisterPeriodicCallback(freqHz int, fn func()) error {
	if freqHz <= 0 {
		return fmt.Errorf("invalid timer frequency: %d", freqHz)
	}
	if b.tick != nil {
		return errors.New("periodic callback already registered")
	}
	b.freq = freqHz
	b.tick = fn
	return nil
}

// Freq returns the timer frequency, 0 before a callback is registered.
func (b *Board) Freq() int { return b.freq }

// Ticks returns the number of timer periods elapsed.
func (b *Board) Ticks() uint64 { return b.ticks.Load() }

// Advance fires n timer periods back to back on the calling goroutine.
func (b *Board) Advance(n int) {
	for i := 0; i < n; i++ {
		tick := b.ticks.Add(1)
		if s := b.seq.Load(); s != nil {
			b.gate.Store(s.gateAt(tick))
			b.seqDriven = true
		} else if b.seqDriven {
			b.gate.Store(false)
			b.seqDriven = false
		}
		if b.tick != nil {
			b.tick()
		}
	}
}

// Run fires the callback at the registered frequency until ctx is done.
// Periods are delivered in bursts once per millisecond.
func (b *Board) Run(ctx context.Context) error {
	if b.tick == nil {
		return errors.New("no periodic callback registered")
	}
	t := time.NewTicker(time.Millisecond)
	defer t.Stop()

	var owed int // in thousandths of a period
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			owed += b.freq
			n := owed / 1000
			owed -= n * 1000
			b.Advance(n)
		}
	}
}
