package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

type Difficulty uint8

const (
	DifficultyBeginner Difficulty = iota + 1
	DifficultyEasy
	DifficultyMedium
	DifficultyHard
	DifficultyExpert
)

// Preset is the search budget of a difficulty level. A zero Depth leaves the
// depth unbounded.
type Preset struct {
	Depth    uint8
	Movetime time.Duration
}

var presets = map[Difficulty]Preset{
	DifficultyBeginner: {Depth: 1, Movetime: 200 * time.Millisecond},
	DifficultyEasy:     {Depth: 2, Movetime: 500 * time.Millisecond},
	DifficultyMedium:   {Depth: 4, Movetime: time.Second},
	DifficultyHard:     {Depth: 8, Movetime: 2 * time.Second},
	DifficultyExpert:   {Movetime: 5 * time.Second},
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return DifficultyBeginner, nil
	case "easy":
		return DifficultyEasy, nil
	case "medium":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	case "expert":
		return DifficultyExpert, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyBeginner:
		return "Beginner"
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	case DifficultyExpert:
		return "Expert"
	default:
		return ""
	}
}

func (d Difficulty) Preset() Preset {
	return presets[d]
}

// ClockConfig returns the search budget of d. A positive timeLimit caps the
// preset movetime.
func (d Difficulty) ClockConfig(timeLimit time.Duration) ClockConfig {
	p := d.Preset()
	movetime := p.Movetime
	if timeLimit > 0 && (movetime == 0 || timeLimit < movetime) {
		movetime = timeLimit
	}
	return ClockConfig{
		Movetime: movetime,
		Depth:    p.Depth,
	}
}
