package hub

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/daystram/dammen/engine"
)

func run(t *testing.T, input string) []string {
	t.Helper()
	var out bytes.Buffer
	i := NewInterface(WithIO(strings.NewReader(input), &out), WithHashTableSize(1<<10))
	if err := i.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return strings.Split(strings.TrimSpace(out.String()), "\n")
}

func TestInterface(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		input      string
		want       []string
		wantPrefix []string
	}{
		{
			name:       "handshake",
			input:      "hub\ninit\nping\nquit\nping\n",
			wantPrefix: []string{"id name=Dammen", "param name=debug", "param name=movetime", "param name=hash", "param name=parallel-perft"},
			want:       []string{"wait", "ready", "pong"},
		},
		{
			name:  "forced capture",
			input: "pos pos=W:W32,45:B27\nlevel depth=3\ngo think\n",
			want:  []string{"done move=32x27x21"},
		},
		{
			name:  "moves from the start",
			input: "pos start moves=\"32-28 19-23\"\nset-param name=parallel-perft value=false\nperft depth=1\n",
			want:  []string{"28x23x19: 1"},
		},
		{
			name:  "new game restores the start position",
			input: "pos pos=W:W28:B23\nnew-game\nperft depth=1\n",
			want:  []string{"31-26: 1", "35-30: 1"},
		},
		{
			name:  "unknown command",
			input: "castle\n",
			want:  []string{`error message="unknown command \"castle\""`},
		},
		{
			name:       "illegal move in position",
			input:      "pos pos=W:W32,45:B27 moves=32-28\n",
			wantPrefix: []string{`error message="illegal move`},
		},
		{
			name:       "invalid param",
			input:      "set-param name=hash value=-1\nset-param name=movetime value=1\n",
			wantPrefix: []string{`error message="invalid hash`, `error message="invalid movetime`},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lines := run(t, tt.input)
			got := make(map[string]bool, len(lines))
			for _, l := range lines {
				got[l] = true
			}
			for _, w := range tt.want {
				if !got[w] {
					t.Errorf("missing line: want=%q got=%q", w, lines)
				}
			}
			for _, w := range tt.wantPrefix {
				found := false
				for _, l := range lines {
					if strings.HasPrefix(l, w) {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("missing line prefix: want=%q got=%q", w, lines)
				}
			}
		})
	}
}

func TestInterfaceSearch(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	in := strings.NewReader("level depth=2\ngo think\n")
	i := NewInterface(WithIO(in, &out), WithHashTableSize(1<<10))
	ctx := context.Background()
	i.reset(ctx)

	// drive the commands by hand so the search is not cancelled by end of input
	i.commandLevel(ctx, map[string]string{"depth": "2"})
	i.commandGo(ctx, map[string]string{"think": ""})
	i.engineDone.Wait()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) < 2 {
		t.Fatalf("unexpected output: %q", lines)
	}
	if !strings.HasPrefix(lines[0], "info depth=1 ") {
		t.Errorf("unexpected first line: got=%q", lines[0])
	}
	last := lines[len(lines)-1]
	if !strings.HasPrefix(last, "done move=") {
		t.Fatalf("unexpected last line: got=%q", last)
	}
	if _, err := i.board.ResolveMove(strings.TrimPrefix(last, "done move=")); err != nil {
		t.Errorf("unexpected best move %q: %v", last, err)
	}
}

func TestCommandLevel(t *testing.T) {
	t.Parallel()
	i := NewInterface(WithIO(strings.NewReader(""), &bytes.Buffer{}))
	ctx := context.Background()

	i.commandLevel(ctx, map[string]string{"time": "60", "inc": "0.5", "moves": "12"})
	want := engine.ClockConfig{Remaining: time.Minute, Increment: 500 * time.Millisecond, MovesPlayed: 12}
	if i.level != want {
		t.Errorf("unexpected level: got=%+v want=%+v", i.level, want)
	}

	i.commandLevel(ctx, map[string]string{"move-time": "1.5"})
	want = engine.ClockConfig{Movetime: 1500 * time.Millisecond}
	if i.level != want {
		t.Errorf("unexpected level: got=%+v want=%+v", i.level, want)
	}

	// rejected levels keep the previous one
	i.commandLevel(ctx, map[string]string{"depth": "300"})
	if i.level != want {
		t.Errorf("unexpected level: got=%+v want=%+v", i.level, want)
	}
}

func TestParseLine(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line     string
		wantCmd  string
		wantArgs map[string]string
		wantErr  bool
	}{
		{line: "go think", wantCmd: "go", wantArgs: map[string]string{"think": ""}},
		{line: "pos pos=W:W31-50:B1-20", wantCmd: "pos", wantArgs: map[string]string{"pos": "W:W31-50:B1-20"}},
		{line: `pos start moves="32-28 19-23"`, wantCmd: "pos", wantArgs: map[string]string{"start": "", "moves": "32-28 19-23"}},
		{line: "level  time=60   inc=1", wantCmd: "level", wantArgs: map[string]string{"time": "60", "inc": "1"}},
		{line: `pos moves="32-28`, wantErr: true},
		{line: `""`, wantErr: true},
	}
	for _, tt := range tests {
		cmd, args, err := parseLine(tt.line)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: unexpected error: %v", tt.line, err)
			continue
		}
		if tt.wantErr {
			continue
		}
		if cmd != tt.wantCmd {
			t.Errorf("%s: unexpected command: got=%s want=%s", tt.line, cmd, tt.wantCmd)
		}
		if len(args) != len(tt.wantArgs) {
			t.Errorf("%s: unexpected args: got=%v want=%v", tt.line, args, tt.wantArgs)
			continue
		}
		for k, v := range tt.wantArgs {
			if args[k] != v {
				t.Errorf("%s: unexpected arg %s: got=%q want=%q", tt.line, k, args[k], v)
			}
		}
	}
}
