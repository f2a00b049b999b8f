package board

// Piece is a cell content. The numeric values double as the external board
// encoding.
type Piece uint8

const (
	PieceNone Piece = iota
	PieceWhiteMan
	PieceBlackMan
	PieceWhiteKing
	PieceBlackKing
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindMan
	KindKing
)

func NewPiece(s Side, k Kind) Piece {
	switch {
	case s == SideWhite && k == KindMan:
		return PieceWhiteMan
	case s == SideBlack && k == KindMan:
		return PieceBlackMan
	case s == SideWhite && k == KindKing:
		return PieceWhiteKing
	case s == SideBlack && k == KindKing:
		return PieceBlackKing
	default:
		return PieceNone
	}
}

func (p Piece) IsValid() bool {
	return p <= PieceBlackKing
}

func (p Piece) Side() Side {
	switch p {
	case PieceWhiteMan, PieceWhiteKing:
		return SideWhite
	case PieceBlackMan, PieceBlackKing:
		return SideBlack
	default:
		return SideUnknown
	}
}

func (p Piece) Kind() Kind {
	switch p {
	case PieceWhiteMan, PieceBlackMan:
		return KindMan
	case PieceWhiteKing, PieceBlackKing:
		return KindKing
	default:
		return KindUnknown
	}
}

func (p Piece) IsKing() bool {
	return p == PieceWhiteKing || p == PieceBlackKing
}

// Promote returns the king of the same side; kings and empty cells are unchanged.
func (p Piece) Promote() Piece {
	switch p {
	case PieceWhiteMan:
		return PieceWhiteKing
	case PieceBlackMan:
		return PieceBlackKing
	default:
		return p
	}
}

func (p Piece) String() string {
	switch p {
	case PieceWhiteMan:
		return "White Man"
	case PieceBlackMan:
		return "Black Man"
	case PieceWhiteKing:
		return "White King"
	case PieceBlackKing:
		return "Black King"
	default:
		return ""
	}
}

// Symbol returns the single letter used in diagrams: w/b for men, W/B for kings.
func (p Piece) Symbol() string {
	switch p {
	case PieceWhiteMan:
		return "w"
	case PieceBlackMan:
		return "b"
	case PieceWhiteKing:
		return "W"
	case PieceBlackKing:
		return "B"
	default:
		return "."
	}
}

func (p Piece) SymbolUnicode() string {
	switch p {
	case PieceWhiteMan:
		return "⛀"
	case PieceWhiteKing:
		return "⛁"
	case PieceBlackMan:
		return "⛂"
	case PieceBlackKing:
		return "⛃"
	default:
		return " "
	}
}
