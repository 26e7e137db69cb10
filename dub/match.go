package dub

import "fmt"

type matchItem struct {
	level   int
	matcher matcher
}

type matcher interface {
	match(i int) bool
}

type rangeMatch struct {
	start, end int
}

func (r rangeMatch) match(i int) bool {
	return (i >= r.start || r.start == -1) && (i <= r.end || r.end == -1)
}

var matchAll = rangeMatch{-1, -1}

type listMatch []int

func (l listMatch) match(i int) bool {
	for _, k := range l {
		if k == i {
			return true
		}
	}
	return false
}

// Meter describes a bar: Beats beats of a 1/Division note, cut into steps
// of a 1/Resolution note. 4/4 in 16ths is Meter{4, 4, 16}.
type Meter struct {
	Beats      int
	Division   int
	Resolution int
}

// StepsPerBeat returns the number of steps in one beat.
func (m Meter) StepsPerBeat() int {
	return m.Resolution / m.Division
}

func (m Meter) validate() error {
	if m.Beats <= 0 || m.Division <= 0 || m.Resolution <= 0 {
		return fmt.Errorf("invalid meter %d/%d in %dths", m.Beats, m.Division, m.Resolution)
	}
	if m.Resolution%m.Division != 0 {
		return fmt.Errorf("resolution %d is not a multiple of division %d", m.Resolution, m.Division)
	}
	return nil
}

// Steps evaluates e over one bar of m. The result has one entry per step,
// 1 where the pattern fires. Level 0 matches beats, every further level
// halves the note length; a step fires only if it is selected on every
// level down to the last one.
func (e MatchExpr) Steps(m Meter) ([]int, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	if len(e.matchers) == 0 {
		return nil, fmt.Errorf("empty pattern")
	}
	steps := make([]int, m.StepsPerBeat()*m.Beats)
	last := len(e.matchers) - 1

	for i := last; i >= 0; i-- {
		item := e.matchers[i]
		notesPerBar := m.Beats << item.level
		level := m.Division << item.level
		if level > m.Resolution {
			return nil, fmt.Errorf("can't match 1/%d notes with %dth steps", level, m.Resolution)
		}
		skip := m.Resolution / level
		notesPerBeat := level / m.Division

		for note := 0; note < notesPerBar; note++ {
			// number notes within their beat, or within the bar on level 0
			num := note % notesPerBeat
			if notesPerBeat == 1 {
				num = note
			}
			first := note * skip
			if item.matcher.match(num + 1) {
				if i == last {
					steps[first] = 1
				}
				continue
			}
			for s := first; s < first+skip; s++ {
				steps[s] = 0
			}
		}
	}
	return steps, nil
}
