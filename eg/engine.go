package eg

import "fmt"

// MaxOutput is the full scale PWM duty (10 bit).
const MaxOutput = 1023

const (
	// debounceHold is loaded into the debounce counter on an accepted gate
	// assert. Edges are ignored until it has counted down to 1.
	debounceHold = 100

	// attackTarget overshoots MaxOutput so the asymptotic attack curve
	// crosses attackThreshold before it flattens out.
	attackTarget    = 1200
	attackThreshold = MaxOutput
)

// Stage is the outer state of the engine.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageRamp
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageRamp:
		return "ramp"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// RampKind tells the two falling ramps apart. Both use the same math.
type RampKind int

const (
	RampDecay RampKind = iota
	RampRelease
)

func (k RampKind) String() string {
	switch k {
	case RampDecay:
		return "decay"
	case RampRelease:
		return "release"
	}
	return fmt.Sprintf("RampKind(%d)", int(k))
}

// Ramp is the position along the current stage. Target and Scale are the
// destination level and the span above it; Then is the stage entered when
// the phase runs out.
type Ramp struct {
	Kind    RampKind
	Target  uint16
	Scale   uint16
	Phase   uint16
	Granule uint16
	Then    Stage
}

// State is a copy of the engine's internal state.
type State struct {
	Stage    Stage
	Ramp     Ramp
	Debounce int
	Output   uint16
}

// Engine is the ADSR stage machine. Step is called once per update tick
// from the foreground loop; nothing else may touch an Engine concurrently.
type Engine struct {
	params *Params
	trace  *Trace

	stage    Stage
	ramp     Ramp
	debounce int
	output   uint16
	ticks    uint64
}

// NewEngine returns an idle engine reading its time and level settings
// from params. trace may be nil.
func NewEngine(params *Params, trace *Trace) *Engine {
	return &Engine{
		params: params,
		trace:  trace,
		stage:  StageIdle,
		ramp:   Ramp{Granule: 1},
	}
}

// Step advances the engine by one tick. gate is the raw pin level, which
// is low while the gate is asserted. It returns the new output value.
func (e *Engine) Step(gate bool) uint16 {
	e.ticks++

	if e.debounce > 1 {
		e.debounce--
	}
	if e.debounce <= 1 {
		if !gate {
			if e.debounce == 0 {
				e.debounce = debounceHold
				e.enter(StageAttack, Ramp{
					Target:  attackTarget,
					Scale:   attackTarget,
					Granule: Granule(e.params.Load(Attack)),
					Then:    StageRamp,
				})
			}
		} else if e.debounce != 0 {
			if e.output == 0 {
				e.enter(StageIdle, Ramp{Granule: e.ramp.Granule})
			} else {
				e.enter(StageRamp, Ramp{
					Kind:    RampRelease,
					Target:  0,
					Scale:   e.output,
					Granule: Granule(e.params.Load(Release)),
					Then:    StageIdle,
				})
			}
			e.debounce = 0
		}
	}

	switch e.stage {
	case StageAttack:
		e.attack()
	case StageRamp:
		e.fall()
	}
	return e.output
}

func (e *Engine) attack() {
	r := &e.ramp
	v := uint32(65535-CurveValue(r.Phase)) * uint32(r.Scale) / 65536
	if v >= attackThreshold {
		v = attackThreshold
		e.output = uint16(v)
		sustain := e.params.Load(Sustain)
		e.enter(StageRamp, Ramp{
			Kind:    RampDecay,
			Target:  sustain,
			Scale:   MaxOutput - sustain,
			Granule: Granule(e.params.Load(Decay)),
			Then:    StageIdle,
		})
		return
	}
	r.Phase += r.Granule
	e.output = uint16(v)
}

func (e *Engine) fall() {
	r := &e.ramp
	v := uint32(CurveValue(r.Phase))*uint32(r.Scale)/65536 + uint32(r.Target)
	e.output = uint16(v)
	if 65535-r.Phase <= r.Granule {
		e.enter(r.Then, Ramp{Granule: r.Granule})
		return
	}
	r.Phase += r.Granule
}

// enter switches stage. Every stage starts at phase 0.
func (e *Engine) enter(s Stage, r Ramp) {
	r.Phase = 0
	if e.trace != nil {
		e.trace.push(Transition{
			Tick:   e.ticks,
			From:   e.stage,
			To:     s,
			Kind:   r.Kind,
			Output: e.output,
		})
	}
	e.stage = s
	e.ramp = r
}

// State returns a copy of the engine state. Like Step, it must only be
// called from the goroutine that owns the engine.
func (e *Engine) State() State {
	return State{
		Stage:    e.stage,
		Ramp:     e.ramp,
		Debounce: e.debounce,
		Output:   e.output,
	}
}

// Stage returns the current stage.
func (e *Engine) Stage() Stage { return e.stage }
