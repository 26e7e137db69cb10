package sim

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/mrdg/envgen/eg"
)

// KnobLatency is the knob holding the ADC conversion time in ticks.
// A negative value simulates a converter that never finishes.
const KnobLatency = "latency"

// Knobs stores the simulated front panel. Values can be changed from any
// goroutine without locks; all knobs are registered by NewKnobs before
// anything reads them.
type Knobs struct {
	values  map[string]*atomic.Int32
	setters map[string]setter
}

func NewKnobs() *Knobs {
	k := &Knobs{
		values:  make(map[string]*atomic.Int32),
		setters: make(map[string]setter),
	}
	k.mustRegister(eg.Attack.String(), setPot, 100)
	k.mustRegister(eg.Decay.String(), setPot, 400)
	k.mustRegister(eg.Sustain.String(), setPot, 700)
	k.mustRegister(eg.Release.String(), setPot, 500)
	k.mustRegister(KnobLatency, setRange(-1, 10_000), 2)
	return k
}

// Set updates the knob name to value.
func (k *Knobs) Set(name string, value int) error {
	knob, ok := k.values[name]
	if !ok {
		return fmt.Errorf("unknown knob %s", name)
	}
	if err := k.setters[name](value, knob); err != nil {
		return fmt.Errorf("set knob %s: %w", name, err)
	}
	return nil
}

func (k *Knobs) Get(name string) (int, error) {
	knob, ok := k.values[name]
	if !ok {
		return 0, fmt.Errorf("unknown knob %s", name)
	}
	return int(knob.Load()), nil
}

// Names returns the registered knob names in sorted order.
func (k *Knobs) Names() []string {
	names := make([]string, 0, len(k.values))
	for name := range k.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// pot returns the position of the potentiometer wired to p.
func (k *Knobs) pot(p eg.Param) uint16 {
	return uint16(k.values[p.String()].Load())
}

func (k *Knobs) latency() int {
	return int(k.values[KnobLatency].Load())
}

func (k *Knobs) register(name string, set setter, init int) error {
	var knob atomic.Int32
	k.values[name] = &knob
	k.setters[name] = set
	return set(init, &knob)
}

func (k *Knobs) mustRegister(name string, set setter, init int) {
	if err := k.register(name, set, init); err != nil {
		panic(err)
	}
}

type setter func(v int, dest *atomic.Int32) error

var setPot = setRange(0, eg.MaxParam)

func setRange(min, max int) setter {
	return func(v int, dest *atomic.Int32) error {
		if v < min || v > max {
			return fmt.Errorf("value is not in valid range %d - %d: %d", min, max, v)
		}
		dest.Store(int32(v))
		return nil
	}
}
