package main

import (
	"fmt"
	"strings"

	"github.com/mrdg/envgen/eg"
)

const meterWidth = 32

func renderStatus(e *env) string {
	var b strings.Builder
	out := e.ctrl.Output()
	stage := e.ctrl.Stage()

	gate := colorize("○", colorBlue)
	if e.board.Gate() {
		gate = colorize("●", colorGreen)
	}
	fmt.Fprintf(&b, "%s %-7s %s %4d\n", gate, stage, meter(out, eg.MaxOutput), out)

	params := e.ctrl.Params().Snapshot()
	var knobs []string
	for p, v := range params {
		knobs = append(knobs, fmt.Sprintf("%s %s", colorize(eg.Param(p).String(), colorMagenta), fmt.Sprint(v)))
	}
	b.WriteString(strings.Join(knobs, "  "))
	b.WriteString("\n")

	s := e.ctrl.Stats()
	stats := fmt.Sprintf("ticks %d  updates %d  overruns %d  conversions %d",
		s.Ticks, s.Updates, s.Overruns, s.Conversions)
	if s.Overruns > 0 {
		stats = colorize(stats, colorRed)
	}
	b.WriteString(stats)
	return b.String()
}

func meter(v, max uint16) string {
	n := int(v) * meterWidth / int(max)
	bar := strings.Repeat("█", n) + strings.Repeat("·", meterWidth-n)
	color := colorGreen
	switch {
	case n == meterWidth:
		color = colorRed
	case n > meterWidth*3/4:
		color = colorYellow
	}
	return colorize(bar, color)
}

// renderSteps draws a pattern one beat per group.
func renderSteps(steps []int) string {
	var b strings.Builder
	for i, v := range steps {
		if i > 0 && i%4 == 0 {
			b.WriteString(" ")
		}
		if v > 0 {
			b.WriteString("⬛️")
		} else {
			b.WriteString("⬜️")
		}
	}
	return b.String()
}

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
)

func colorize(text string, color int) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", color, text)
}
