package board

import (
	"fmt"
	"strings"

	"github.com/daystram/dammen/square"
)

type Side uint8

const (
	SideUnknown Side = iota
	SideWhite
	SideBlack
)

var (
	forwardDirections = [3][2]square.Direction{
		SideWhite: {square.NorthWest, square.NorthEast},
		SideBlack: {square.SouthWest, square.SouthEast},
	}
	promotionRows = [3]int{
		SideWhite: square.BoardSize - 1,
		SideBlack: 0,
	}
)

// ParseSide accepts "White"/"Black" in any case, or the FEN letters "W"/"B".
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return SideWhite, nil
	case "black", "b":
		return SideBlack, nil
	default:
		return SideUnknown, fmt.Errorf("%w: unknown side %q", ErrInvalidPosition, s)
	}
}

func (s Side) String() string {
	switch s {
	case SideWhite:
		return "White"
	case SideBlack:
		return "Black"
	default:
		return ""
	}
}

func (s Side) Opposite() Side {
	switch s {
	case SideWhite:
		return SideBlack
	case SideBlack:
		return SideWhite
	default:
		return SideUnknown
	}
}

// PromotionRow returns the row on which men of this side are crowned.
func (s Side) PromotionRow() int {
	return promotionRows[s]
}

// IsPromotion reports whether a man of this side ending its move on sq is crowned.
func (s Side) IsPromotion(sq square.Square) bool {
	return s != SideUnknown && sq.IsValid() && sq.Row() == promotionRows[s]
}

func (s Side) isForward(d square.Direction) bool {
	f := forwardDirections[s]
	return d == f[0] || d == f[1]
}
