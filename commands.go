package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mrdg/envgen/audio"
	"github.com/mrdg/envgen/dub"
	"github.com/mrdg/envgen/eg"
	"github.com/mrdg/envgen/sim"
)

type env struct {
	board *sim.Board
	knobs *sim.Knobs
	ctrl  *eg.Controller

	// realtime is set when the board's timer runs on its own goroutine.
	// Commands that step the board by hand are refused then.
	realtime bool

	// traceLogged is set when a logger goroutine drains the trace.
	traceLogged bool

	tone  float64
	wave  string
	level float64
}

var errRealtime = errors.New("not available while running in real time")

func (e *env) eval(input string) (string, error) {
	command, err := dub.Parse(input)
	if err != nil {
		return "", err
	}
	name := string(command.Name)
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if cmd.arity < 0 {
			arity := -cmd.arity
			if len(command.Args) < arity {
				return "", fmt.Errorf("%s: wrong number of arguments: need at least %v, got %v",
					cmd.name, arity, len(command.Args))
			}
		} else if len(command.Args) != cmd.arity {
			return "", fmt.Errorf("%s: wrong number of arguments: want %v, got %v",
				cmd.name, cmd.arity, len(command.Args))
		}
		result, err := cmd.run(e, command.Args)
		if err != nil {
			return result, fmt.Errorf("%s error: %w", cmd.name, err)
		}
		return result, nil
	}
	return "", fmt.Errorf("unknown command: %s", name)
}

// advance fires n ticks and drains the foreground loop after each one,
// calling observe (if not nil) once the tick has been fully handled.
func (e *env) advance(n int, observe func()) {
	for i := 0; i < n; i++ {
		e.board.Advance(1)
		for e.ctrl.Poll() {
		}
		if observe != nil {
			observe()
		}
	}
}

type command struct {
	name  string
	help  string
	run   func(*env, []dub.Node) (string, error)
	arity int // -n means len(args) must be >= n
}

var commands []command

func init() {
	commands = []command{
		{"gate", "gate on|off", gateCommand, 1},
		{"set", "set <knob> <value>", setCommand, 2},
		{"get", "get <knob>", getCommand, 1},
		{"run", "run <ticks>", runCommand, 1},
		{"status", "status", statusCommand, 0},
		{"trace", "trace", traceCommand, 0},
		{"seq", "seq <bpm> '<pattern> [gate length]", seqCommand, -2},
		{"stop", "stop", stopCommand, 0},
		{"render", `render "<file.wav>" <ticks>`, renderCommand, 2},
		{"help", "help", helpCommand, 0},
	}
}

func gateCommand(e *env, args []dub.Node) (string, error) {
	var state string
	if err := readArgs(args, &state); err != nil {
		return "", err
	}
	switch state {
	case "on":
		e.board.SetGate(true)
	case "off":
		e.board.SetGate(false)
	default:
		return "", fmt.Errorf("gate must be on or off: %s", state)
	}
	return "", nil
}

func setCommand(e *env, args []dub.Node) (string, error) {
	var knob string
	var value int
	if err := readArgs(args, &knob, &value); err != nil {
		return "", err
	}
	return "", e.knobs.Set(knob, value)
}

func getCommand(e *env, args []dub.Node) (string, error) {
	var knob string
	if err := readArgs(args, &knob); err != nil {
		return "", err
	}
	v, err := e.knobs.Get(knob)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}

func runCommand(e *env, args []dub.Node) (string, error) {
	if e.realtime {
		return "", errRealtime
	}
	var ticks int
	if err := readArgs(args, &ticks); err != nil {
		return "", err
	}
	if ticks < 0 {
		return "", fmt.Errorf("negative tick count: %d", ticks)
	}
	e.advance(ticks, nil)
	return renderStatus(e), nil
}

func statusCommand(e *env, args []dub.Node) (string, error) {
	return renderStatus(e), nil
}

func traceCommand(e *env, args []dub.Node) (string, error) {
	trace := e.ctrl.Trace()
	if trace == nil {
		return "", errors.New("tracing is disabled")
	}
	if e.traceLogged {
		return "", errors.New("transitions are being logged")
	}
	var lines []string
	trace.Drain(func(t eg.Transition) {
		lines = append(lines, t.String())
	})
	if n := trace.Dropped(); n > 0 {
		lines = append(lines, fmt.Sprintf("(%d transitions dropped)", n))
	}
	return strings.Join(lines, "\n"), nil
}

func seqCommand(e *env, args []dub.Node) (string, error) {
	var bpm float64
	var pattern dub.MatchExpr
	length := 0.5
	var err error
	if len(args) == 3 {
		err = readArgs(args, &bpm, &pattern, &length)
	} else {
		err = readArgs(args, &bpm, &pattern)
	}
	if err != nil {
		return "", err
	}
	meter := dub.Meter{Beats: 4, Division: 4, Resolution: 16}
	steps, err := pattern.Steps(meter)
	if err != nil {
		return "", err
	}
	err = e.board.Play(sim.Pattern{
		BPM:          bpm,
		StepsPerBeat: meter.StepsPerBeat(),
		Steps:        steps,
		Length:       length,
	})
	if err != nil {
		return "", err
	}
	return renderSteps(steps), nil
}

func stopCommand(e *env, args []dub.Node) (string, error) {
	e.board.Stop()
	return "", nil
}

func renderCommand(e *env, args []dub.Node) (string, error) {
	if e.realtime {
		return "", errRealtime
	}
	var file string
	var ticks int
	if err := readArgs(args, &file, &ticks); err != nil {
		return "", err
	}
	if ticks <= 0 {
		return "", fmt.Errorf("tick count must be positive: %d", ticks)
	}
	monitor, err := audio.NewMonitor(e.board, e.board.Freq(), e.tone, e.wave, e.level)
	if err != nil {
		return "", err
	}

	cv := make([]uint16, 0, ticks)
	tone := make([]float32, 0, ticks)
	e.advance(ticks, func() {
		cv = append(cv, e.board.Duty())
		tone = append(tone, monitor.Next())
	})

	f, err := os.Create(file)
	if err != nil {
		return "", err
	}
	if err := audio.WriteWAV(f, e.board.Freq(), cv, tone); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("wrote %d samples to %s", ticks, file), nil
}

func helpCommand(e *env, args []dub.Node) (string, error) {
	var lines []string
	for _, cmd := range commands {
		lines = append(lines, cmd.help)
	}
	lines = append(lines, "knobs: "+strings.Join(e.knobs.Names(), ", "))
	return strings.Join(lines, "\n"), nil
}

func readArgs(args []dub.Node, slots ...interface{}) error {
	if len(args) != len(slots) {
		return errors.New("not enough arguments")
	}
	for n, arg := range args {
		dest := slots[n]
		switch p := dest.(type) {
		case *string:
			switch s := arg.(type) {
			case dub.String:
				*p = string(s)
			case dub.Identifier:
				*p = string(s)
			default:
				return fmt.Errorf("argument error: expected a string or identifier")
			}
		case *float64:
			switch f := arg.(type) {
			case dub.Float:
				*p = float64(f)
			case dub.Int:
				*p = float64(f)
			default:
				return fmt.Errorf("argument error: expected a number")
			}
		case *int:
			n, ok := arg.(dub.Int)
			if !ok {
				return fmt.Errorf("argument error: expected an integer")
			}
			*p = int(n)
		case *dub.MatchExpr:
			m, ok := arg.(dub.MatchExpr)
			if !ok {
				return fmt.Errorf("argument error: expected a pattern")
			}
			*p = m
		default:
			panic("readArgs: unhandled destination type: " + fmt.Sprint(p))
		}
	}
	return nil
}
