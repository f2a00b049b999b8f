package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/daystram/dammen/square"
)

const (
	// MaxPiecesPerSide is the number of men each side starts with.
	MaxPiecesPerSide = 20

	// EncodedLength is the length of the external cell encoding; index 0 is unused.
	EncodedLength = square.Count + 1

	DefaultStartingPositionFEN = "W:W31-50:B1-20"
)

var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidFEN      = errors.New("invalid fen")
	ErrInvalidNotation = errors.New("invalid move notation")
	ErrIllegalMove     = errors.New("illegal move")
	ErrAmbiguousMove   = errors.New("ambiguous move")
)

// AmbiguousMoveError is returned when a notation matches more than one legal
// move, e.g. a king capture written as "from x to" with several capture sets.
type AmbiguousMoveError struct {
	Notation   string
	Candidates []Move
}

func (e *AmbiguousMoveError) Error() string {
	opts := make([]string, len(e.Candidates))
	for i, mv := range e.Candidates {
		opts[i] = mv.Notation()
	}
	return fmt.Sprintf("%s: %q matches %s", ErrAmbiguousMove, e.Notation, strings.Join(opts, " | "))
}

func (e *AmbiguousMoveError) Unwrap() error {
	return ErrAmbiguousMove
}

// Board is a position: piece placement on the 50 squares plus the side to move.
// Index 0 of cells is unused. Boards are not safe for concurrent mutation; use
// Clone to hand a position to another goroutine.
type Board struct {
	cells [square.Count + 1]Piece
	turn  Side

	hash   uint64
	lock   uint64
	counts [SideBlack + 1][KindKing + 1]uint8
}

type boardConfig struct {
	fen   string
	cells []int
	turn  Side
}

type BoardOption func(*boardConfig)

func WithFEN(fen string) BoardOption {
	return func(cfg *boardConfig) {
		cfg.fen = fen
	}
}

// WithCells builds the board from the external encoding: 51 integers, index 0
// unused, 0 empty, 1 white man, 2 black man, 3 white king, 4 black king.
func WithCells(cells []int, turn Side) BoardOption {
	return func(cfg *boardConfig) {
		cfg.cells = cells
		cfg.turn = turn
	}
}

func NewBoard(opts ...BoardOption) (*Board, error) {
	cfg := &boardConfig{
		fen: DefaultStartingPositionFEN,
	}
	for _, f := range opts {
		f(cfg)
	}

	var cells [square.Count + 1]Piece
	var turn Side
	if cfg.cells != nil {
		if len(cfg.cells) != EncodedLength {
			return nil, fmt.Errorf("%w: expected %d cells, got %d", ErrInvalidPosition, EncodedLength, len(cfg.cells))
		}
		if cfg.cells[0] != 0 {
			return nil, fmt.Errorf("%w: index 0 must be empty", ErrInvalidPosition)
		}
		for i := 1; i < EncodedLength; i++ {
			if cfg.cells[i] < int(PieceNone) || cfg.cells[i] > int(PieceBlackKing) {
				return nil, fmt.Errorf("%w: unknown piece code %d on square %d", ErrInvalidPosition, cfg.cells[i], i)
			}
			cells[i] = Piece(cfg.cells[i])
		}
		turn = cfg.turn
	} else {
		var err error
		cells, turn, err = parseFEN(cfg.fen)
		if err != nil {
			return nil, err
		}
	}

	b := &Board{cells: cells, turn: turn}
	if err := b.validate(); err != nil {
		return nil, err
	}
	for sq := square.Min; sq <= square.Max; sq++ {
		if p := b.cells[sq]; p != PieceNone {
			b.counts[p.Side()][p.Kind()]++
		}
	}
	b.hash = hashKeys.compute(&b.cells, b.turn)
	b.lock = lockKeys.compute(&b.cells, b.turn)
	return b, nil
}

func (b *Board) validate() error {
	if b.turn != SideWhite && b.turn != SideBlack {
		return fmt.Errorf("%w: unknown side to move", ErrInvalidPosition)
	}
	var count [SideBlack + 1]int
	for sq := square.Min; sq <= square.Max; sq++ {
		p := b.cells[sq]
		if p == PieceNone {
			continue
		}
		s := p.Side()
		count[s]++
		if p.Kind() == KindMan && s.IsPromotion(sq) {
			return fmt.Errorf("%w: %s on its promotion square %s", ErrInvalidPosition, p, sq)
		}
	}
	for _, s := range []Side{SideWhite, SideBlack} {
		if count[s] > MaxPiecesPerSide {
			return fmt.Errorf("%w: %s has %d pieces", ErrInvalidPosition, s, count[s])
		}
	}
	return nil
}

func (b *Board) Turn() Side {
	return b.turn
}

// Hash is the Zobrist key of the position including the side to move.
func (b *Board) Hash() uint64 {
	return b.hash
}

// Lock is an independent Zobrist key used to verify hash table hits.
func (b *Board) Lock() uint64 {
	return b.lock
}

func (b *Board) PieceAt(sq square.Square) Piece {
	if !sq.IsValid() {
		return PieceNone
	}
	return b.cells[sq]
}

// Cells returns the external encoding of the placement.
func (b *Board) Cells() []int {
	cells := make([]int, EncodedLength)
	for sq := square.Min; sq <= square.Max; sq++ {
		cells[sq] = int(b.cells[sq])
	}
	return cells
}

func (b *Board) Count(s Side) int {
	if s != SideWhite && s != SideBlack {
		return 0
	}
	return int(b.counts[s][KindMan]) + int(b.counts[s][KindKing])
}

func (b *Board) CountKind(s Side, k Kind) int {
	if (s != SideWhite && s != SideBlack) || k == KindUnknown {
		return 0
	}
	return int(b.counts[s][k])
}

// Squares returns the squares holding pieces of side s.
func (b *Board) Squares(s Side) []square.Square {
	sqs := make([]square.Square, 0, b.Count(s))
	for sq := square.Min; sq <= square.Max; sq++ {
		if b.cells[sq].Side() == s {
			sqs = append(sqs, sq)
		}
	}
	return sqs
}

func (b *Board) Clone() *Board {
	bb := *b
	return &bb
}

func (b *Board) set(sq square.Square, p Piece) {
	if old := b.cells[sq]; old != PieceNone {
		b.hash ^= hashKeys.pieces[old][sq]
		b.lock ^= lockKeys.pieces[old][sq]
		b.counts[old.Side()][old.Kind()]--
	}
	b.cells[sq] = p
	if p != PieceNone {
		b.hash ^= hashKeys.pieces[p][sq]
		b.lock ^= lockKeys.pieces[p][sq]
		b.counts[p.Side()][p.Kind()]++
	}
}

// Apply plays mv for the side to move and returns a function restoring the
// previous position. The move is trusted to come from GenerateMoves; callers
// that accept moves from outside must check legality first.
func (b *Board) Apply(mv Move) func() {
	prev := *b
	p := b.cells[mv.From]
	b.set(mv.From, PieceNone)
	for _, st := range mv.steps[:mv.n] {
		b.set(st.Captured, PieceNone)
	}
	if p.Kind() == KindMan && p.Side().IsPromotion(mv.To) {
		p = p.Promote()
	}
	b.set(mv.To, p)

	b.turn = b.turn.Opposite()
	b.hash ^= hashKeys.turn
	b.lock ^= lockKeys.turn
	return func() {
		*b = prev
	}
}

// IsPromotingMove reports whether mv crowns the moving man.
func (b *Board) IsPromotingMove(mv Move) bool {
	p := b.PieceAt(mv.From)
	return p.Kind() == KindMan && p.Side().IsPromotion(mv.To)
}

// ResolveMove finds the legal move described by a notation. Besides the forms
// accepted by ParseMove it takes the short capture form "from x to", which is
// rejected with an *AmbiguousMoveError when several captures share both ends.
func (b *Board) ResolveMove(n string) (Move, error) {
	p, err := parseNotation(n)
	if err != nil {
		return Move{}, err
	}
	var candidates []Move
	for _, mv := range b.GenerateMoves() {
		if p.matches(mv) {
			candidates = append(candidates, mv)
		}
	}
	switch len(candidates) {
	case 0:
		return Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, strings.TrimSpace(n))
	case 1:
		return candidates[0], nil
	default:
		return Move{}, &AmbiguousMoveError{Notation: n, Candidates: candidates}
	}
}

// Dump renders the board as plain text, Black's home row on top.
func (b *Board) Dump() string {
	builder := strings.Builder{}
	for row := square.BoardSize - 1; row >= 0; row-- {
		_, _ = builder.WriteString("  ")
		for col := 0; col < square.BoardSize; col++ {
			sq := square.FromCoord(row, col)
			if sq == square.None {
				_, _ = builder.WriteString("  ")
				continue
			}
			_, _ = builder.WriteString(" " + b.cells[sq].Symbol())
		}
		_, _ = builder.WriteString("\n")
	}
	return builder.String()
}

// Draw renders a coloured diagram with square numbers on empty dark squares.
func (b *Board) Draw() string {
	light := color.New(color.BgHiWhite)
	dark := color.New(color.BgGreen, color.FgHiWhite)
	blackPiece := color.New(color.BgGreen, color.FgBlack, color.Bold)
	whitePiece := color.New(color.BgGreen, color.FgHiWhite, color.Bold)

	builder := strings.Builder{}
	for row := square.BoardSize - 1; row >= 0; row-- {
		for col := 0; col < square.BoardSize; col++ {
			sq := square.FromCoord(row, col)
			switch p := b.PieceAt(sq); {
			case sq == square.None:
				_, _ = builder.WriteString(light.Sprint("   "))
			case p == PieceNone:
				_, _ = builder.WriteString(dark.Sprintf("%3d", sq))
			case p.Side() == SideWhite:
				_, _ = builder.WriteString(whitePiece.Sprintf(" %s ", p.SymbolUnicode()))
			default:
				_, _ = builder.WriteString(blackPiece.Sprintf(" %s ", p.SymbolUnicode()))
			}
		}
		_, _ = builder.WriteString("\n")
	}
	return builder.String()
}

func (b *Board) DebugString() string {
	return fmt.Sprintf("turn: %s\nfen:  %s\nhash: %016x\nlock: %016x\nwhite: %d men %d kings\nblack: %d men %d kings",
		b.turn, b.FEN(), b.hash, b.lock,
		b.counts[SideWhite][KindMan], b.counts[SideWhite][KindKing],
		b.counts[SideBlack][KindMan], b.counts[SideBlack][KindKing])
}
