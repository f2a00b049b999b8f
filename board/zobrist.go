package board

import "github.com/daystram/dammen/square"

const (
	zobristHashSeed uint64 = 0x9e3779b97f4a7c15
	zobristLockSeed uint64 = 0xd1b54a32d192ed03
)

// zobristKeys holds one random key per (piece, square) and one for Black to move.
type zobristKeys struct {
	pieces [PieceBlackKing + 1][square.Count + 1]uint64
	turn   uint64
}

var (
	// Two independent key sets: hash indexes tables, lock verifies them.
	hashKeys = newZobristKeys(zobristHashSeed)
	lockKeys = newZobristKeys(zobristLockSeed)
)

func newZobristKeys(seed uint64) *zobristKeys {
	r := &pseudoRand{s: seed}
	k := &zobristKeys{}
	for p := PieceWhiteMan; p <= PieceBlackKing; p++ {
		for sq := square.Min; sq <= square.Max; sq++ {
			k.pieces[p][sq] = r.Uint64()
		}
	}
	k.turn = r.Uint64()
	return k
}

func (k *zobristKeys) compute(cells *[square.Count + 1]Piece, turn Side) uint64 {
	var h uint64
	for sq := square.Min; sq <= square.Max; sq++ {
		if p := cells[sq]; p != PieceNone {
			h ^= k.pieces[p][sq]
		}
	}
	if turn == SideBlack {
		h ^= k.turn
	}
	return h
}

// pseudoRand is a xorshift64* generator; deterministic keys keep hashes stable
// across runs.
type pseudoRand struct {
	s uint64
}

func (r *pseudoRand) Uint64() uint64 {
	r.s ^= r.s >> 12
	r.s ^= r.s << 25
	r.s ^= r.s >> 27
	return r.s * 2685821657736338717
}
