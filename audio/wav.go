package audio

import (
	"fmt"
	"io"
	"math"

	wav "github.com/youpy/go-wav"

	"github.com/mrdg/envgen/eg"
)

// WriteWAV writes a 16 bit stereo file at sampleRate. The left channel is
// the envelope itself (duty scaled to full range), the right channel the
// monitor tone. cv and tone must have the same length.
func WriteWAV(w io.Writer, sampleRate int, cv []uint16, tone []float32) error {
	if len(cv) != len(tone) {
		return fmt.Errorf("channel length mismatch: %d != %d", len(cv), len(tone))
	}
	writer := wav.NewWriter(w, uint32(len(cv)), 2, uint32(sampleRate), 16)

	const chunk = 4096
	samples := make([]wav.Sample, 0, chunk)
	for i := range cv {
		samples = append(samples, wav.Sample{Values: [2]int{
			int(cv[i]) * math.MaxInt16 / eg.MaxOutput,
			int(tone[i] * math.MaxInt16),
		}})
		if len(samples) == chunk || i == len(cv)-1 {
			if err := writer.WriteSamples(samples); err != nil {
				return fmt.Errorf("write samples: %w", err)
			}
			samples = samples[:0]
		}
	}
	return nil
}
