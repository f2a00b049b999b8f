package square

import (
	"errors"
	"strconv"
)

const (
	// BoardSize is the number of cells along one edge of the board.
	BoardSize = 10

	// Count is the number of playable (dark) squares.
	Count = 50

	// None is the reserved zero square. It is never a valid board location.
	None Square = 0

	// Min and Max bound the FMJD square numbering.
	Min Square = 1
	Max Square = Count

	perRow = BoardSize / 2
)

var (
	// ErrInvalidNotation represents an invalid square notation error.
	ErrInvalidNotation = errors.New("invalid square notation")
)

// Square is a playable square in FMJD numbering. Squares 1-5 form Black's home
// row, squares 46-50 White's; square 46 is White's bottom-left corner.
type Square int8

func Parse(n string) (Square, error) {
	v, err := strconv.Atoi(n)
	if err != nil {
		return None, ErrInvalidNotation
	}
	s := Square(v)
	if v < int(Min) || v > int(Max) {
		return None, ErrInvalidNotation
	}
	return s, nil
}

func (s Square) IsValid() bool {
	return Min <= s && s <= Max
}

func (s Square) String() string {
	return s.Notation()
}

func (s Square) Notation() string {
	if !s.IsValid() {
		return ""
	}
	return strconv.Itoa(int(s))
}

// Row returns the row index counted from White's home edge: row 0 holds
// squares 46-50, row 9 holds squares 1-5.
func (s Square) Row() int {
	return BoardSize - 1 - s.top()
}

// Col returns the column index from the left edge as seen from White.
func (s Square) Col() int {
	t := s.top()
	c := 2 * ((int(s) - 1) % perRow)
	if t%2 == 0 {
		c++
	}
	return c
}

// top is the row index counted from Black's home edge.
func (s Square) top() int {
	return (int(s) - 1) / perRow
}

// FromCoord returns the square at the given row (from White's edge) and column,
// or None when the cell is off-board or light.
func FromCoord(row, col int) Square {
	t := BoardSize - 1 - row
	if t < 0 || t >= BoardSize || col < 0 || col >= BoardSize || (t+col)%2 == 0 {
		return None
	}
	return Square(t*perRow + col/2 + 1)
}
