package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/daystram/dammen/board"
)

func movegen(w io.Writer, fen string, draw bool) error {
	fmt.Fprintln(w, "============ movegen")
	b, err := board.NewBoard(board.WithFEN(fen))
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "to move:", b.Turn())
	fmt.Fprintln(w, b.Dump())
	fmt.Fprintln(w, b.Draw())
	fmt.Fprintln(w, b.DebugString())
	dumpMoves(w, b)

	if draw {
		for _, mv := range b.GenerateMoves() {
			unApply := b.Apply(mv)
			fmt.Fprintln(w, mv)
			fmt.Fprintln(w, b.Draw())
			fmt.Fprintln(w, b.FEN())
			unApply()
		}
	}
	return nil
}

func dumpMoves(w io.Writer, b *board.Board) {
	mvs := b.GenerateMoves()
	for i, mv := range mvs {
		fmt.Fprintf(w, "option %*d: [%s] [%s] %s %s => %s (cap=%d) (pro=%v)\n",
			len(strconv.Itoa(len(mvs))), i+1, mv.Notation(), mv.StepNotation(), mv.Kind(),
			mv.From, mv.To, mv.CaptureCount(), b.IsPromotingMove(mv))
	}
}
