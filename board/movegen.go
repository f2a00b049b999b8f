package board

import "github.com/daystram/dammen/square"

// GenerateMoves returns the legal moves for the side to move.
func (b *Board) GenerateMoves() []Move {
	return b.GenerateMovesFor(b.turn)
}

// GenerateMovesFor returns the legal moves of side s as if it were to move.
// Captures are mandatory and only the sequences taking the most pieces are
// legal; quiet moves are generated only when no capture exists.
func (b *Board) GenerateMovesFor(s Side) []Move {
	if mvs := b.generateCaptures(s); len(mvs) > 0 {
		return mvs
	}
	return b.generateQuietMoves(s)
}

// HasCapture reports whether side s has at least one capture available.
func (b *Board) HasCapture(s Side) bool {
	for sq := square.Min; sq <= square.Max; sq++ {
		p := b.cells[sq]
		if p.Side() != s {
			continue
		}
		for _, d := range square.Directions {
			ray := sq.Ray(d)
			i := 0
			if p.IsKing() {
				for i < len(ray) && b.cells[ray[i]] == PieceNone {
					i++
				}
			}
			if i+1 < len(ray) && b.cells[ray[i]].Side() == s.Opposite() && b.cells[ray[i+1]] == PieceNone {
				return true
			}
		}
	}
	return false
}

// Mobility counts the quiet moves side s could make, ignoring whether a capture
// is pending.
func (b *Board) Mobility(s Side) int {
	var n int
	for sq := square.Min; sq <= square.Max; sq++ {
		p := b.cells[sq]
		if p.Side() != s {
			continue
		}
		if p.IsKing() {
			for _, d := range square.Directions {
				for _, to := range sq.Ray(d) {
					if b.cells[to] != PieceNone {
						break
					}
					n++
				}
			}
			continue
		}
		for _, d := range forwardDirections[s] {
			if to := sq.Neighbor(d); to != square.None && b.cells[to] == PieceNone {
				n++
			}
		}
	}
	return n
}

func (b *Board) generateQuietMoves(s Side) []Move {
	var mvs []Move
	for sq := square.Min; sq <= square.Max; sq++ {
		p := b.cells[sq]
		if p.Side() != s {
			continue
		}
		if p.IsKing() {
			for _, d := range square.Directions {
				for _, to := range sq.Ray(d) {
					if b.cells[to] != PieceNone {
						break
					}
					mvs = append(mvs, NewQuietMove(sq, to))
				}
			}
			continue
		}
		for _, d := range forwardDirections[s] {
			if to := sq.Neighbor(d); to != square.None && b.cells[to] == PieceNone {
				mvs = append(mvs, NewQuietMove(sq, to))
			}
		}
	}
	return mvs
}

// captureSearch walks capture sequences depth-first. Captured pieces stay on
// the board until the sequence ends: they block rays and cannot be taken twice.
// The origin square counts as empty once the piece has left it.
type captureSearch struct {
	b      *Board
	side   Side
	origin square.Square
	king   bool

	captured [square.Count + 1]bool
	path     [MaxCaptureSteps]Step
	depth    int

	best int
	mvs  []Move
}

func (b *Board) generateCaptures(s Side) []Move {
	cs := &captureSearch{b: b, side: s}
	for sq := square.Min; sq <= square.Max; sq++ {
		p := b.cells[sq]
		if p.Side() != s {
			continue
		}
		cs.origin = sq
		cs.king = p.IsKing() // a man crossing its promotion row mid-capture stays a man
		cs.search(sq)
	}
	return cs.mvs
}

func (cs *captureSearch) isEmpty(sq square.Square) bool {
	return sq == cs.origin || cs.b.cells[sq] == PieceNone
}

func (cs *captureSearch) isTarget(sq square.Square) bool {
	p := cs.b.cells[sq]
	return p != PieceNone && p.Side() != cs.side && !cs.captured[sq]
}

func (cs *captureSearch) search(from square.Square) {
	extended := false
	for _, d := range square.Directions {
		ray := from.Ray(d)
		if !cs.king {
			if len(ray) >= 2 && cs.isTarget(ray[0]) && cs.isEmpty(ray[1]) {
				extended = true
				cs.jump(from, ray[0], ray[1])
			}
			continue
		}

		i := 0
		for i < len(ray) && cs.isEmpty(ray[i]) {
			i++
		}
		if i >= len(ray) || !cs.isTarget(ray[i]) {
			continue
		}
		for j := i + 1; j < len(ray) && cs.isEmpty(ray[j]); j++ {
			extended = true
			cs.jump(from, ray[i], ray[j])
		}
	}
	if !extended && cs.depth > 0 {
		cs.record()
	}
}

func (cs *captureSearch) jump(from, captured, to square.Square) {
	cs.captured[captured] = true
	cs.path[cs.depth] = Step{From: from, To: to, Captured: captured}
	cs.depth++
	cs.search(to)
	cs.depth--
	cs.captured[captured] = false
}

func (cs *captureSearch) record() {
	if cs.depth < cs.best {
		return
	}
	if cs.depth > cs.best {
		cs.best = cs.depth
		cs.mvs = cs.mvs[:0]
	}
	mv := Move{
		From: cs.path[0].From,
		To:   cs.path[cs.depth-1].To,
		n:    uint8(cs.depth),
	}
	copy(mv.steps[:], cs.path[:cs.depth])
	for _, other := range cs.mvs {
		if other.SameCaptures(mv) {
			return
		}
	}
	cs.mvs = append(cs.mvs, mv)
}
