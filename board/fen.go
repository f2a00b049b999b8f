package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/daystram/dammen/square"
)

// parseFEN reads PDN FEN such as "W:W31-50:B1-20" or "B:WK46,28:B12,K3".
// Ranges are allowed for men and kings ("K1-3").
func parseFEN(fen string) ([square.Count + 1]Piece, Side, error) {
	var cells [square.Count + 1]Piece
	fen = strings.TrimSuffix(strings.Join(strings.Fields(fen), ""), ".")
	segments := strings.Split(fen, ":")
	if len(segments) != 3 {
		return cells, SideUnknown, fmt.Errorf("%w: incorrect number of segments", ErrInvalidFEN)
	}

	var turn Side
	switch strings.ToUpper(segments[0]) {
	case "W":
		turn = SideWhite
	case "B":
		turn = SideBlack
	default:
		return cells, SideUnknown, fmt.Errorf("%w: invalid turn", ErrInvalidFEN)
	}

	seen := map[Side]bool{}
	for _, seg := range segments[1:] {
		if seg == "" {
			return cells, SideUnknown, fmt.Errorf("%w: empty piece list", ErrInvalidFEN)
		}
		var s Side
		switch seg[0] {
		case 'W', 'w':
			s = SideWhite
		case 'B', 'b':
			s = SideBlack
		default:
			return cells, SideUnknown, fmt.Errorf("%w: unknown side '%c'", ErrInvalidFEN, seg[0])
		}
		if seen[s] {
			return cells, SideUnknown, fmt.Errorf("%w: %s listed twice", ErrInvalidFEN, s)
		}
		seen[s] = true

		list := seg[1:]
		if list == "" {
			continue
		}
		for _, item := range strings.Split(list, ",") {
			kind := KindMan
			if strings.HasPrefix(item, "K") || strings.HasPrefix(item, "k") {
				kind = KindKing
				item = item[1:]
			}
			lo, hi, err := parseFENRange(item)
			if err != nil {
				return cells, SideUnknown, err
			}
			for sq := lo; sq <= hi; sq++ {
				if cells[sq] != PieceNone {
					return cells, SideUnknown, fmt.Errorf("%w: square %s occupied twice", ErrInvalidFEN, sq)
				}
				cells[sq] = NewPiece(s, kind)
			}
		}
	}
	return cells, turn, nil
}

func parseFENRange(item string) (square.Square, square.Square, error) {
	bounds := strings.Split(item, "-")
	if len(bounds) > 2 {
		return square.None, square.None, fmt.Errorf("%w: bad range %q", ErrInvalidFEN, item)
	}
	lo, err := square.Parse(bounds[0])
	if err != nil {
		return square.None, square.None, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	hi := lo
	if len(bounds) == 2 {
		if hi, err = square.Parse(bounds[1]); err != nil || hi < lo {
			return square.None, square.None, fmt.Errorf("%w: bad range %q", ErrInvalidFEN, item)
		}
	}
	return lo, hi, nil
}

// FEN formats the position as PDN FEN: men first with consecutive runs
// collapsed into ranges, then kings.
func (b *Board) FEN() string {
	builder := strings.Builder{}
	if b.turn == SideBlack {
		_, _ = builder.WriteRune('B')
	} else {
		_, _ = builder.WriteRune('W')
	}
	for _, s := range []Side{SideWhite, SideBlack} {
		_, _ = builder.WriteRune(':')
		if s == SideWhite {
			_, _ = builder.WriteRune('W')
		} else {
			_, _ = builder.WriteRune('B')
		}

		var items []string
		man := NewPiece(s, KindMan)
		for sq := square.Min; sq <= square.Max; sq++ {
			if b.cells[sq] != man {
				continue
			}
			end := sq
			for end < square.Max && b.cells[end+1] == man {
				end++
			}
			if end == sq {
				items = append(items, sq.Notation())
			} else {
				items = append(items, sq.Notation()+"-"+end.Notation())
			}
			sq = end
		}
		king := NewPiece(s, KindKing)
		for sq := square.Min; sq <= square.Max; sq++ {
			if b.cells[sq] == king {
				items = append(items, "K"+strconv.Itoa(int(sq)))
			}
		}
		_, _ = builder.WriteString(strings.Join(items, ","))
	}
	return builder.String()
}
