package board

import (
	"errors"
	"testing"
)

func TestMoveNotationRoundTrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		fen      string
		move     string
		wantStep string
	}{
		{name: "quiet", fen: DefaultStartingPositionFEN, move: "32-28", wantStep: "32-28"},
		{name: "single jump", fen: "W:W32,45:B27", move: "32x27x21", wantStep: "32x27x21"},
		{name: "multi jump", fen: "W:W46,50:B32,41,44", move: "46x41x32x28", wantStep: "46x41x37, 37x32x28"},
		{name: "king jump", fen: "W:WK46:B28", move: "46x28x14", wantStep: "46x28x14"},
		{name: "circular", fen: "W:W37:B21,22,31,32", move: "37x32x22x21x31x37", wantStep: "37x32x28, 28x22x17, 17x21x26, 26x31x37"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := mustBoard(t, tt.fen)
			mv, err := b.ResolveMove(tt.move)
			if err != nil {
				t.Fatal("unexpected error:", err)
			}
			if got := mv.Notation(); got != tt.move {
				t.Errorf("unexpected notation: got=%s want=%s", got, tt.move)
			}
			if got := mv.StepNotation(); got != tt.wantStep {
				t.Errorf("unexpected step notation: got=%s want=%s", got, tt.wantStep)
			}

			for _, n := range []string{mv.Notation(), mv.StepNotation()} {
				parsed, err := ParseMove(n)
				if err != nil {
					t.Fatalf("unexpected error parsing %q: %v", n, err)
				}
				if parsed != mv {
					t.Errorf("parse(format(m)) != m for %q: got=%s", n, parsed.StepNotation())
				}
				again, err := ParseMove(parsed.Notation())
				if err != nil || again != parsed {
					t.Errorf("parse/format not idempotent for %q", n)
				}
			}
		})
	}
}

func TestParseMoveLenient(t *testing.T) {
	t.Parallel()
	want, err := ParseMove("46x41x37, 37x32x28")
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	for _, n := range []string{"46 x 41 x 37, 37 x 32 x 28", "46X41X32X28", " 46x41x32x28 "} {
		got, err := ParseMove(n)
		if err != nil {
			t.Errorf("unexpected error for %q: %v", n, err)
			continue
		}
		if got != want {
			t.Errorf("unexpected move for %q: got=%s want=%s", n, got.StepNotation(), want.StepNotation())
		}
	}
	if want.Kind() != MoveKindCapture || want.From != 46 || want.To != 28 {
		t.Errorf("unexpected move: %s kind=%s", want, want.Kind())
	}
	if got := NewQuietMove(32, 28).Kind(); got != MoveKindQuiet {
		t.Errorf("unexpected kind: got=%s want=%s", got, MoveKindQuiet)
	}
	if got := (Move{}).Kind(); got != MoveKindUnknown {
		t.Errorf("unexpected kind: got=%s want=%s", got, MoveKindUnknown)
	}
}

func TestParseMoveErrors(t *testing.T) {
	t.Parallel()
	for _, n := range []string{
		"",
		"32-",
		"32-32",
		"51-46",
		"32x",
		"46x28",
		"1x2x3",
		"32x27x21, 22x17x11",
		"32x27x21, 21x27x32",
		"32x27, 21x17x12",
		"a-b",
	} {
		if _, err := ParseMove(n); !errors.Is(err, ErrInvalidNotation) {
			t.Errorf("unexpected error for %q: got=%v want=%v", n, err, ErrInvalidNotation)
		}
	}
}

func TestNewCaptureMove(t *testing.T) {
	t.Parallel()
	mv, err := NewCaptureMove(Step{From: 46, To: 37, Captured: 41}, Step{From: 37, To: 28, Captured: 32})
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if got := mv.Captured(); len(got) != 2 || got[0] != 41 || got[1] != 32 {
		t.Errorf("unexpected captured squares: got=%v", got)
	}
	other, _ := NewCaptureMove(Step{From: 46, To: 37, Captured: 41}, Step{From: 37, To: 28, Captured: 32})
	if !mv.Equals(other) || !mv.SameCaptures(other) {
		t.Error("identical moves must compare equal")
	}
	if _, err := NewCaptureMove(); err == nil {
		t.Error("empty capture must be rejected")
	}
}
