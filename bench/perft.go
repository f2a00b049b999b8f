package bench

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/daystram/dammen/board"
)

// Counters tallies the leaf moves of a perft run. Mul counts captures taking
// more than one piece.
type Counters struct {
	Nodes uint64
	Cap   uint64
	Mul   uint64
	Pro   uint64
}

func (c *Counters) String() string {
	return fmt.Sprintf("nodes=%d cap=%d mul=%d pro=%d", c.Nodes, c.Cap, c.Mul, c.Pro)
}

func Perft(depth int, fen string, parallel, verbose bool, out chan string) (*Counters, error) {
	b, err := board.NewBoard(
		board.WithFEN(fen),
	)
	if err != nil {
		return nil, err
	}

	var run perftFunc
	if parallel {
		run = runPerftParallel
	} else {
		run = runPerft
	}

	c := &Counters{}
	start := time.Now()
	run(b, depth, true, verbose, out, c)
	elapsed := time.Since(start)

	if out != nil {
		out <- message.NewPrinter(language.English).
			Sprintf("d=%d nodes=%d rate=%dn/s cap=%d mul=%d pro=%d (%.3fs elapsed)",
				depth, c.Nodes, int(float64(c.Nodes)/elapsed.Seconds()), c.Cap, c.Mul, c.Pro, elapsed.Seconds())
	}
	return c, nil
}

type perftFunc func(b *board.Board, d int, root, verbose bool, out chan string, c *Counters) uint64

func runPerft(b *board.Board, d int, root, verbose bool, out chan string, c *Counters) uint64 {
	if d == 0 {
		c.Nodes++
		return 1
	}

	var sum uint64
	for _, mv := range b.GenerateMoves() {
		var child uint64
		if d == 1 {
			child = 1
			c.Nodes++
			if mv.IsCapture() {
				c.Cap++
			}
			if mv.CaptureCount() > 1 {
				c.Mul++
			}
			if b.IsPromotingMove(mv) {
				c.Pro++
			}
		} else {
			unApply := b.Apply(mv)
			child = runPerft(b, d-1, false, verbose, out, c)
			unApply()
		}
		if verbose && root && out != nil {
			out <- fmt.Sprintf("%s: %d", mv.Notation(), child)
		}
		sum += child
	}
	return sum
}

// runPerftParallel fans out one goroutine per move at every inner node, each
// working on its own clone.
func runPerftParallel(b *board.Board, d int, root, verbose bool, out chan string, c *Counters) uint64 {
	if d == 0 {
		atomic.AddUint64(&c.Nodes, 1)
		return 1
	}

	var sum uint64
	var wg sync.WaitGroup
	for _, mv := range b.GenerateMoves() {
		if d == 1 {
			atomic.AddUint64(&c.Nodes, 1)
			if mv.IsCapture() {
				atomic.AddUint64(&c.Cap, 1)
			}
			if mv.CaptureCount() > 1 {
				atomic.AddUint64(&c.Mul, 1)
			}
			if b.IsPromotingMove(mv) {
				atomic.AddUint64(&c.Pro, 1)
			}
			if verbose && root && out != nil {
				out <- fmt.Sprintf("%s: %d", mv.Notation(), 1)
			}
			sum++
			continue
		}

		mv := mv
		wg.Add(1)
		go func() {
			defer wg.Done()
			bb := b.Clone()
			bb.Apply(mv)
			child := runPerftParallel(bb, d-1, false, verbose, out, c)
			if verbose && root && out != nil {
				out <- fmt.Sprintf("%s: %d", mv.Notation(), child)
			}
			atomic.AddUint64(&sum, child)
		}()
	}
	wg.Wait()
	return sum
}
