package eg

import "fmt"

// NumChannels is the number of multiplexed analog inputs.
const NumChannels = 4

// ChannelMap assigns a parameter to every ADC channel.
type ChannelMap [NumChannels]Param

// DefaultChannelMap matches the reference board: the release pot sits on
// channel 0 and the attack pot on channel 3.
var DefaultChannelMap = ChannelMap{Release, Sustain, Decay, Attack}

func (m ChannelMap) validate() error {
	var seen [numParams]bool
	for ch, p := range m {
		if p < Attack || p >= numParams {
			return fmt.Errorf("channel %d: invalid parameter %d", ch, int(p))
		}
		if seen[p] {
			return fmt.Errorf("channel %d: %s mapped twice", ch, p)
		}
		seen[p] = true
	}
	return nil
}

// Sampler refreshes the control parameters one channel at a time. It
// never waits for the converter: each Service call either starts a
// conversion, finds it still running, or collects the result.
type Sampler struct {
	adc     ADC
	params  *Params
	chans   ChannelMap
	channel int
	started bool
}

// NewSampler returns a sampler starting at channel 0.
func NewSampler(adc ADC, params *Params, chans ChannelMap) (*Sampler, error) {
	if err := chans.validate(); err != nil {
		return nil, fmt.Errorf("channel map: %w", err)
	}
	return &Sampler{adc: adc, params: params, chans: chans}, nil
}

// Service advances the sampler by one step. It returns true when a
// conversion completed and its value was stored.
func (s *Sampler) Service() bool {
	if !s.started {
		s.adc.StartConversion(s.channel)
		s.started = true
		return false
	}
	if !s.adc.ConversionReady() {
		return false
	}
	s.params.Store(s.chans[s.channel], s.adc.ReadConversion())
	s.channel = (s.channel + 1) % NumChannels
	s.started = false
	return true
}

// Busy reports whether a conversion has been started and not yet collected.
func (s *Sampler) Busy() bool { return s.started }

// Channel returns the channel that is being, or will next be, converted.
func (s *Sampler) Channel() int { return s.channel }
