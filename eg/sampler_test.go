package eg

import "testing"

func TestSamplerServiceSteps(t *testing.T) {
	b := newFakeBoard()
	b.inputs = [4]uint16{5, 6, 7, 2000}
	b.latency = 1
	var params Params
	s, err := NewSampler(b, &params, ChannelMap{Attack, Decay, Sustain, Release})
	if err != nil {
		t.Fatal(err)
	}

	for ch := 0; ch < NumChannels; ch++ {
		if s.Service() {
			t.Fatalf("channel %d: conversion completed on start", ch)
		}
		if !s.Busy() {
			t.Fatalf("channel %d: sampler not busy after start", ch)
		}
		if s.Service() {
			t.Fatalf("channel %d: conversion completed before ready", ch)
		}
		if !s.Service() {
			t.Fatalf("channel %d: conversion not collected", ch)
		}
		if want, got := (ch+1)%NumChannels, s.Channel(); want != got {
			t.Fatalf("want next channel %d, got %d", want, got)
		}
	}
	// out of range readings are clamped
	if want, got := [4]uint16{5, 6, 7, MaxParam}, params.Snapshot(); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestChannelMapValidate(t *testing.T) {
	bad := []ChannelMap{
		{Attack, Attack, Decay, Release},
		{Attack, Decay, Sustain, Param(7)},
		{Attack, Decay, Sustain, Param(-1)},
	}
	for _, m := range bad {
		if _, err := NewSampler(newFakeBoard(), new(Params), m); err == nil {
			t.Errorf("expected error for %v", m)
		}
	}
	if _, err := NewSampler(newFakeBoard(), new(Params), DefaultChannelMap); err != nil {
		t.Errorf("default map rejected: %v", err)
	}
}

func TestParseParam(t *testing.T) {
	for p := Attack; p < numParams; p++ {
		got, err := ParseParam(p.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != p {
			t.Errorf("want %v, got %v", p, got)
		}
	}
	if _, err := ParseParam("volume"); err == nil {
		t.Error("expected error for unknown parameter")
	}
}
