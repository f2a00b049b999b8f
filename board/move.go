package board

import (
	"fmt"
	"strings"

	"github.com/daystram/dammen/square"
)

// MaxCaptureSteps bounds a capture sequence: a side never has more than 20 pieces.
const MaxCaptureSteps = 20

type MoveKind uint8

const (
	MoveKindUnknown MoveKind = iota
	MoveKindQuiet
	MoveKindCapture
)

func (k MoveKind) String() string {
	switch k {
	case MoveKindQuiet:
		return "Quiet"
	case MoveKindCapture:
		return "Capture"
	default:
		return ""
	}
}

// Step is a single jump of a capture sequence.
type Step struct {
	From, To, Captured square.Square
}

// Move is either a quiet move (no steps) or a capture sequence. It is a value
// type and comparable with ==.
type Move struct {
	From, To square.Square

	steps [MaxCaptureSteps]Step
	n     uint8
}

func NewQuietMove(from, to square.Square) Move {
	return Move{From: from, To: to}
}

// NewCaptureMove builds a capture from chained steps. Captured squares must be
// distinct and every step must start where the previous one landed.
func NewCaptureMove(steps ...Step) (Move, error) {
	if len(steps) == 0 || len(steps) > MaxCaptureSteps {
		return Move{}, fmt.Errorf("%w: capture needs 1 to %d steps", ErrInvalidNotation, MaxCaptureSteps)
	}
	var mv Move
	for i, st := range steps {
		if !st.From.IsValid() || !st.To.IsValid() || !st.Captured.IsValid() {
			return Move{}, fmt.Errorf("%w: step %d out of range", ErrInvalidNotation, i+1)
		}
		if i > 0 && steps[i-1].To != st.From {
			return Move{}, fmt.Errorf("%w: step %d does not continue from %s", ErrInvalidNotation, i+1, steps[i-1].To)
		}
		for _, prev := range steps[:i] {
			if prev.Captured == st.Captured {
				return Move{}, fmt.Errorf("%w: %s captured twice", ErrInvalidNotation, st.Captured)
			}
		}
		mv.steps[i] = st
	}
	mv.n = uint8(len(steps))
	mv.From = steps[0].From
	mv.To = steps[len(steps)-1].To
	return mv, nil
}

func (m Move) Kind() MoveKind {
	switch {
	case m.IsNull():
		return MoveKindUnknown
	case m.n > 0:
		return MoveKindCapture
	default:
		return MoveKindQuiet
	}
}

func (m Move) IsNull() bool {
	return m.From == square.None
}

func (m Move) IsCapture() bool {
	return m.n > 0
}

func (m Move) CaptureCount() int {
	return int(m.n)
}

func (m Move) Steps() []Step {
	steps := make([]Step, m.n)
	copy(steps, m.steps[:m.n])
	return steps
}

func (m Move) Captured() []square.Square {
	sqs := make([]square.Square, m.n)
	for i := range sqs {
		sqs[i] = m.steps[i].Captured
	}
	return sqs
}

func (m Move) Equals(other Move) bool {
	return m == other
}

// SameCaptures reports whether both moves connect the same squares and take the
// same set of pieces, regardless of the path taken.
func (m Move) SameCaptures(other Move) bool {
	if m.From != other.From || m.To != other.To || m.n != other.n {
		return false
	}
	var set [square.Count + 1]bool
	for _, st := range m.steps[:m.n] {
		set[st.Captured] = true
	}
	for _, st := range other.steps[:other.n] {
		if !set[st.Captured] {
			return false
		}
	}
	return true
}

func (m Move) String() string {
	return m.Notation()
}

// Notation formats quiet moves as "32-28" and captures as the origin, every
// captured square in order and the destination joined by "x", e.g. "37x32x28x19x10".
func (m Move) Notation() string {
	if m.IsNull() {
		return ""
	}
	if m.n == 0 {
		return m.From.Notation() + "-" + m.To.Notation()
	}
	builder := strings.Builder{}
	_, _ = builder.WriteString(m.From.Notation())
	for _, st := range m.steps[:m.n] {
		_, _ = builder.WriteRune('x')
		_, _ = builder.WriteString(st.Captured.Notation())
	}
	_, _ = builder.WriteRune('x')
	_, _ = builder.WriteString(m.To.Notation())
	return builder.String()
}

// StepNotation formats every jump as its own "from x captured x to" group,
// joined by ", ". Quiet moves are formatted as in Notation.
func (m Move) StepNotation() string {
	if m.n == 0 {
		return m.Notation()
	}
	groups := make([]string, m.n)
	for i, st := range m.steps[:m.n] {
		groups[i] = st.From.Notation() + "x" + st.Captured.Notation() + "x" + st.To.Notation()
	}
	return strings.Join(groups, ", ")
}

// ParseMove parses both capture forms produced by Notation and StepNotation.
// For the compact form the landing square after each capture is the nearest one
// from which the next captured piece is reachable; ResolveMove matches the
// notation against the legal moves of a position instead.
func ParseMove(n string) (Move, error) {
	p, err := parseNotation(n)
	if err != nil {
		return Move{}, err
	}
	if p.partial {
		return Move{}, fmt.Errorf("%w: %q does not list the captured pieces", ErrInvalidNotation, n)
	}
	return p.mv, nil
}

type parsedNotation struct {
	mv      Move
	capture bool
	partial bool // "fromxto" without captured squares
	exact   bool // per-step form, path is fully specified
}

func (p parsedNotation) matches(mv Move) bool {
	if mv.From != p.mv.From || mv.To != p.mv.To || mv.IsCapture() != p.capture {
		return false
	}
	switch {
	case !p.capture, p.partial:
		return true
	case p.exact:
		return mv == p.mv
	default:
		return mv.SameCaptures(p.mv)
	}
}

func parseNotation(n string) (parsedNotation, error) {
	s := strings.ToLower(strings.Join(strings.Fields(n), ""))
	if s == "" {
		return parsedNotation{}, fmt.Errorf("%w: empty move", ErrInvalidNotation)
	}

	if strings.Contains(s, ",") {
		var steps []Step
		for _, group := range strings.Split(s, ",") {
			sqs, err := parseSquares(strings.Split(group, "x"))
			if err != nil {
				return parsedNotation{}, err
			}
			if len(sqs) != 3 {
				return parsedNotation{}, fmt.Errorf("%w: step %q must be from x captured x to", ErrInvalidNotation, group)
			}
			steps = append(steps, Step{From: sqs[0], Captured: sqs[1], To: sqs[2]})
		}
		mv, err := NewCaptureMove(steps...)
		if err != nil {
			return parsedNotation{}, err
		}
		return parsedNotation{mv: mv, capture: true, exact: true}, nil
	}

	if strings.Contains(s, "-") {
		sqs, err := parseSquares(strings.Split(s, "-"))
		if err != nil {
			return parsedNotation{}, err
		}
		if len(sqs) != 2 || sqs[0] == sqs[1] {
			return parsedNotation{}, fmt.Errorf("%w: quiet move must be from-to", ErrInvalidNotation)
		}
		return parsedNotation{mv: NewQuietMove(sqs[0], sqs[1])}, nil
	}

	sqs, err := parseSquares(strings.Split(s, "x"))
	if err != nil {
		return parsedNotation{}, err
	}
	switch {
	case len(sqs) < 2:
		return parsedNotation{}, fmt.Errorf("%w: %q", ErrInvalidNotation, n)
	case len(sqs) == 2:
		return parsedNotation{mv: Move{From: sqs[0], To: sqs[1]}, capture: true, partial: true}, nil
	case len(sqs)-2 > MaxCaptureSteps:
		return parsedNotation{}, fmt.Errorf("%w: too many captures", ErrInvalidNotation)
	}
	steps, err := canonicalPath(sqs[0], sqs[1:len(sqs)-1], sqs[len(sqs)-1])
	if err != nil {
		return parsedNotation{}, err
	}
	mv, err := NewCaptureMove(steps...)
	if err != nil {
		return parsedNotation{}, err
	}
	return parsedNotation{mv: mv, capture: true}, nil
}

func parseSquares(tokens []string) ([]square.Square, error) {
	sqs := make([]square.Square, len(tokens))
	for i, tok := range tokens {
		sq, err := square.Parse(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: bad square %q", ErrInvalidNotation, tok)
		}
		sqs[i] = sq
	}
	return sqs, nil
}

// canonicalPath rebuilds landing squares for the compact capture form.
func canonicalPath(from square.Square, captured []square.Square, to square.Square) ([]Step, error) {
	steps := make([]Step, 0, len(captured))
	cur := from
	for i, c := range captured {
		d, _, ok := cur.DirectionTo(c)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not on a diagonal from %s", ErrInvalidNotation, c, cur)
		}
		var landing square.Square
		for _, sq := range c.Ray(d) {
			if i == len(captured)-1 {
				if sq == to {
					landing = sq
					break
				}
				continue
			}
			if _, _, ok := sq.DirectionTo(captured[i+1]); ok {
				landing = sq
				break
			}
		}
		if landing == square.None {
			return nil, fmt.Errorf("%w: no landing square after %s", ErrInvalidNotation, c)
		}
		steps = append(steps, Step{From: cur, To: landing, Captured: c})
		cur = landing
	}
	return steps, nil
}
