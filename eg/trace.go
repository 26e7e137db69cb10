package eg

import (
	"fmt"
	"sync/atomic"
)

// Transition records one stage change of the engine.
type Transition struct {
	Tick   uint64
	From   Stage
	To     Stage
	Kind   RampKind // only meaningful when To is StageRamp
	Output uint16
}

func (t Transition) String() string {
	to := t.To.String()
	if t.To == StageRamp {
		to = t.Kind.String()
	}
	return fmt.Sprintf("%8d %-7s -> %-7s out=%d", t.Tick, t.From, to, t.Output)
}

// Trace is a lock-free spsc ring of transitions. The control loop pushes,
// one host goroutine drains. Push never blocks: when the ring is full the
// record is dropped and counted.
type Trace struct {
	records     []Transition
	read, write atomic.Uint32
	dropped     atomic.Uint64
}

// NewTrace returns a ring holding size records. size must be a power of 2.
func NewTrace(size int) (*Trace, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("trace size must be a power of 2: %d", size)
	}
	return &Trace{records: make([]Transition, size)}, nil
}

func (t *Trace) push(tr Transition) {
	write := t.write.Load()
	if write-t.read.Load() == uint32(len(t.records)) {
		t.dropped.Add(1)
		return
	}
	t.records[write%uint32(len(t.records))] = tr
	t.write.Store(write + 1)
}

// Drain calls f for every pending record, oldest first.
func (t *Trace) Drain(f func(Transition)) {
	read := t.read.Load()
	write := t.write.Load()
	for read != write {
		f(t.records[read%uint32(len(t.records))])
		read++
	}
	t.read.Store(read)
}

// Dropped returns how many records were lost to a full ring.
func (t *Trace) Dropped() uint64 {
	return t.dropped.Load()
}
