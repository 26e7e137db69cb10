package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"

	wav "github.com/youpy/go-wav"
)

type fixedDuty uint16

func (d fixedDuty) Duty() uint16 { return uint16(d) }

func TestMonitorFollowsDuty(t *testing.T) {
	for _, duty := range []fixedDuty{0, 512, 1023} {
		m, err := NewMonitor(duty, 1000, 250, "square", 0)
		if err != nil {
			t.Fatal(err)
		}
		want := float32(duty) / 1023
		for i := 0; i < 8; i++ {
			v := m.Next()
			if math.Abs(math.Abs(float64(v))-float64(want)) > 1e-6 {
				t.Fatalf("duty %d, sample %d: want magnitude %v, got %v", duty, i, want, v)
			}
		}
	}
}

func TestMonitorRead(t *testing.T) {
	m, err := NewMonitor(fixedDuty(1023), SampleRate, 440, "sine", -6)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 8*64+3)
	n, err := m.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 8*64, n; want != got {
		t.Fatalf("want %d bytes, got %d", want, got)
	}
	gain := math.Pow(10, -6/20.0)
	for i := 0; i < n; i += 8 {
		l := math.Float32frombits(binary.LittleEndian.Uint32(buf[i:]))
		r := math.Float32frombits(binary.LittleEndian.Uint32(buf[i+4:]))
		if l != r {
			t.Fatalf("frame %d: channels differ: %v %v", i/8, l, r)
		}
		if math.Abs(float64(l)) > gain+1e-6 {
			t.Fatalf("frame %d: sample %v above level", i/8, l)
		}
	}
}

func TestNewMonitorValidates(t *testing.T) {
	if _, err := NewMonitor(fixedDuty(0), SampleRate, 440, "triangle", 0); err == nil {
		t.Error("expected waveform error")
	}
	if _, err := NewMonitor(fixedDuty(0), SampleRate, 30000, "sine", 0); err == nil {
		t.Error("expected frequency error")
	}
	if _, err := NewMonitor(fixedDuty(0), SampleRate, 440, "sine", 3); err == nil {
		t.Error("expected level error")
	}
}

func TestWriteWAV(t *testing.T) {
	cv := []uint16{0, 1023, 512, 0}
	tone := []float32{0, 1, -1, 0.5}

	var buf bytes.Buffer
	if err := WriteWAV(&buf, 9765, cv, tone); err != nil {
		t.Fatal(err)
	}

	r := wav.NewReader(bytes.NewReader(buf.Bytes()))
	format, err := r.Format()
	if err != nil {
		t.Fatal(err)
	}
	if format.NumChannels != 2 || format.SampleRate != 9765 || format.BitsPerSample != 16 {
		t.Fatalf("unexpected format: %+v", format)
	}

	var left, right []int
	for {
		samples, err := r.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		for _, s := range samples {
			left = append(left, r.IntValue(s, 0))
			right = append(right, r.IntValue(s, 1))
		}
	}
	wantLeft := []int{0, 32767, 512 * 32767 / 1023, 0}
	wantRight := []int{0, 32767, -32767, 16383}
	if len(left) != len(wantLeft) {
		t.Fatalf("want %d frames, got %d", len(wantLeft), len(left))
	}
	for i := range wantLeft {
		if wantLeft[i] != left[i] || wantRight[i] != right[i] {
			t.Errorf("frame %d: want (%d, %d), got (%d, %d)",
				i, wantLeft[i], wantRight[i], left[i], right[i])
		}
	}

	if err := WriteWAV(&buf, 9765, cv, tone[:2]); err == nil {
		t.Error("expected length mismatch error")
	}
}
