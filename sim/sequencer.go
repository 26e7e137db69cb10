package sim

import "fmt"

// Pattern is a looping gate sequence. Steps holds one entry per step,
// non-zero where the gate fires; Length is the part of a step the gate
// stays asserted, between 0 and 1.
type Pattern struct {
	BPM          float64
	StepsPerBeat int
	Steps        []int
	Length       float64
}

func (p Pattern) validate() error {
	if p.BPM <= 0 || p.BPM > 1000 {
		return fmt.Errorf("bpm is not in valid range 0 - 1000: %v", p.BPM)
	}
	if p.StepsPerBeat <= 0 {
		return fmt.Errorf("invalid steps per beat: %d", p.StepsPerBeat)
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("empty pattern")
	}
	if p.Length <= 0 || p.Length > 1 {
		return fmt.Errorf("gate length is not in valid range 0 - 1: %v", p.Length)
	}
	return nil
}

type sequence struct {
	steps     []int
	start     uint64
	stepTicks uint64
	gateTicks uint64
}

func (s *sequence) gateAt(tick uint64) bool {
	pos := tick - s.start
	step := (pos / s.stepTicks) % uint64(len(s.steps))
	return s.steps[step] != 0 && pos%s.stepTicks < s.gateTicks
}

// Play starts driving the gate from p on the next tick. The callback
// must be registered first, since step lengths are counted in ticks.
func (b *Board) Play(p Pattern) error {
	if err := p.validate(); err != nil {
		return err
	}
	if b.freq == 0 {
		return fmt.Errorf("no timer frequency")
	}
	stepTicks := uint64(float64(b.freq) * 60 / (p.BPM * float64(p.StepsPerBeat)))
	if stepTicks == 0 {
		stepTicks = 1
	}
	gateTicks := uint64(float64(stepTicks) * p.Length)
	if gateTicks == 0 {
		gateTicks = 1
	}
	steps := make([]int, len(p.Steps))
	copy(steps, p.Steps)
	b.seq.Store(&sequence{
		steps:     steps,
		start:     b.ticks.Load() + 1,
		stepTicks: stepTicks,
		gateTicks: gateTicks,
	})
	return nil
}

// Stop hands the gate back to SetGate. A gate held by the pattern is
// released on the next tick.
func (b *Board) Stop() {
	b.seq.Store(nil)
}

// Playing reports whether a pattern drives the gate.
func (b *Board) Playing() bool {
	return b.seq.Load() != nil
}
