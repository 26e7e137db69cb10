package eg

import (
	"fmt"
	"sync/atomic"
)

// MaxParam is the largest value a control parameter can hold (10 bit ADC).
const MaxParam = 1023

// Param identifies one of the four ADSR control parameters.
type Param int

const (
	Attack Param = iota
	Decay
	Sustain
	Release

	numParams
)

func (p Param) String() string {
	switch p {
	case Attack:
		return "attack"
	case Decay:
		return "decay"
	case Sustain:
		return "sustain"
	case Release:
		return "release"
	}
	return fmt.Sprintf("Param(%d)", int(p))
}

// ParseParam maps a parameter name to its Param.
func ParseParam(s string) (Param, error) {
	for p := Attack; p < numParams; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown parameter %q", s)
}

// Params holds the current control parameters. The sampler is the only
// writer, the engine reads a slot when it enters a stage. Values may be
// stale by one sampling cycle, which is fine since knobs move slowly.
type Params struct {
	values [numParams]atomic.Uint32
}

// Load returns the current value of p.
func (ps *Params) Load(p Param) uint16 {
	return uint16(ps.values[p].Load())
}

// Store sets p, clamping to MaxParam.
func (ps *Params) Store(p Param, v uint16) {
	if v > MaxParam {
		v = MaxParam
	}
	ps.values[p].Store(uint32(v))
}

// Snapshot returns all four parameters in Param order.
func (ps *Params) Snapshot() [4]uint16 {
	var s [4]uint16
	for p := Attack; p < numParams; p++ {
		s[p] = ps.Load(p)
	}
	return s
}
