package audio

import (
	"github.com/ebitengine/oto/v3"
	"github.com/gordonklaus/portaudio"
)

// Sink plays a monitor on the default portaudio output device.
type Sink struct {
	monitor *Monitor
	stream  *portaudio.Stream
}

func NewSink(m *Monitor) (*Sink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	s := Sink{monitor: m}
	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, bufferSize, s.monitor.Process)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	s.stream = stream
	return &s, nil
}

func (s *Sink) Start() error {
	return s.stream.Start()
}

func (s *Sink) Stop() error {
	s.stream.Close()
	return portaudio.Terminate()
}

// OtoSink plays a monitor through oto, for hosts without portaudio.
type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player
}

func NewOtoSink(m *Monitor) (*OtoSink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	return &OtoSink{ctx: ctx, player: ctx.NewPlayer(m)}, nil
}

func (s *OtoSink) Start() error {
	s.player.Play()
	return nil
}

func (s *OtoSink) Stop() error {
	return s.player.Close()
}
