// Package audio makes the envelope audible on the host. A Monitor plays a
// tone through a VCA driven by the PWM duty; sinks hand it to portaudio or
// oto, and WriteWAV renders it to a file.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mrdg/envgen/eg"
)

const (
	SampleRate = 44100
	bufferSize = 512
	twoPi      = 2 * math.Pi
)

// DutySource is anything exposing the current PWM duty, 0 to eg.MaxOutput.
type DutySource interface {
	Duty() uint16
}

// Monitor is an oscillator whose amplitude follows the duty of source.
// It is not safe for concurrent use; each sink owns one.
type Monitor struct {
	source     DutySource
	sampleRate float64
	gain       float64

	phase      float64
	phaseDelta float64
	fn         func(float64) float64
}

// NewMonitor returns a monitor producing a freq Hz tone of the given
// waveform at sampleRate, attenuated by level dB.
func NewMonitor(source DutySource, sampleRate int, freq float64, wave string, level float64) (*Monitor, error) {
	if freq <= 0 || freq >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("tone frequency is not in valid range 0 - %v: %v", sampleRate/2, freq)
	}
	if level < -40 || level > 0 {
		return nil, fmt.Errorf("level is not in valid range -40 - 0: %v", level)
	}
	m := &Monitor{
		source:     source,
		sampleRate: float64(sampleRate),
		gain:       math.Pow(10, level/20.0),
		phaseDelta: freq * twoPi / float64(sampleRate),
	}
	if err := m.setWaveform(wave); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Monitor) setWaveform(s string) error {
	switch s {
	case "sine":
		m.fn = math.Sin
	case "saw":
		m.fn = func(phase float64) float64 {
			return (2.0 * phase / twoPi) - 1.
		}
	case "square":
		m.fn = func(phase float64) float64 {
			if phase <= math.Pi {
				return 1.0
			}
			return -1.0
		}
	case "off":
		m.fn = func(_ float64) float64 { return 0 }
	default:
		return fmt.Errorf("not a valid waveform type: %v", s)
	}
	return nil
}

// Next returns the next output sample in -1..1.
func (m *Monitor) Next() float32 {
	amp := float64(m.source.Duty()) / eg.MaxOutput
	v := m.fn(m.phase) * amp * m.gain
	m.phase += m.phaseDelta
	if m.phase >= twoPi {
		m.phase -= twoPi
	}
	return float32(v)
}

// Process fills non-interleaved channel buffers, as portaudio expects.
func (m *Monitor) Process(out [][]float32) {
	for n := range out[0] {
		v := m.Next()
		for ch := range out {
			out[ch][n] = v
		}
	}
}

// Read fills p with interleaved stereo float32 little endian frames, as
// oto expects. It never fails.
func (m *Monitor) Read(p []byte) (int, error) {
	const frameSize = 2 * 4
	n := len(p) / frameSize * frameSize
	for i := 0; i < n; i += frameSize {
		bits := math.Float32bits(m.Next())
		binary.LittleEndian.PutUint32(p[i:], bits)
		binary.LittleEndian.PutUint32(p[i+4:], bits)
	}
	return n, nil
}
