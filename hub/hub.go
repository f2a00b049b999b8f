package hub

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/daystram/dammen/bench"
	"github.com/daystram/dammen/board"
	"github.com/daystram/dammen/engine"
)

var (
	EngineName    = "Dammen"
	EngineVersion = "0.1"
	EngineAuthor  = "Danny August Ramaputra"

	defaultOptions = options{
		debug:         false,
		movetime:      engine.DefaultMovetime,
		hashTableSize: engine.DefaultHashTableSize,
		parallelPerft: true,
	}
)

const (
	minMovetime = 100 * time.Millisecond
	maxMovetime = time.Hour
	maxHashSize = 1 << 24
)

type options struct {
	debug         bool
	movetime      time.Duration
	hashTableSize uint64
	parallelPerft bool
}

// Interface speaks a Hub-style line protocol: one command per line, arguments
// as key=value pairs with double-quoted values where they contain spaces.
type Interface struct {
	in     io.Reader
	out    io.Writer
	outMu  sync.Mutex
	logger *zap.SugaredLogger

	evaluator *engine.Evaluator
	engine    *engine.Engine
	options   options

	board   *board.Board
	history []uint64
	level   engine.ClockConfig

	mu            sync.Mutex
	engineRunning bool
	engineCancel  context.CancelFunc
	engineDone    sync.WaitGroup
}

type Option func(*Interface)

func WithIO(in io.Reader, out io.Writer) Option {
	return func(i *Interface) {
		i.in, i.out = in, out
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(i *Interface) {
		i.logger = l
	}
}

func WithEvaluator(ev *engine.Evaluator) Option {
	return func(i *Interface) {
		i.evaluator = ev
	}
}

func WithHashTableSize(size uint64) Option {
	return func(i *Interface) {
		i.options.hashTableSize = size
	}
}

func NewInterface(opts ...Option) *Interface {
	i := &Interface{
		in:      os.Stdin,
		out:     os.Stdout,
		logger:  zap.NewNop().Sugar(),
		options: defaultOptions,
	}
	for _, f := range opts {
		f(i)
	}
	return i
}

// Run serves commands until "quit" or the end of input. A running search is
// stopped and awaited before returning.
func (i *Interface) Run(ctx context.Context) error {
	i.reset(ctx)
	defer i.engineDone.Wait()
	defer i.commandStop(ctx)

	scanner := bufio.NewScanner(i.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, args, err := parseLine(line)
		if err != nil {
			i.error(err)
			continue
		}

		switch cmd {
		case "hub":
			i.commandHub(ctx)
		case "init", "new-game":
			i.reset(ctx)
			if cmd == "init" {
				i.println("ready")
			}
		case "ping":
			i.println("pong")
		case "set-param":
			i.commandSetParam(ctx, args)
		case "pos":
			i.commandPos(ctx, args)
		case "level":
			i.commandLevel(ctx, args)
		case "go":
			i.commandGo(ctx, args)
		case "stop":
			i.commandStop(ctx)
		case "perft":
			i.commandPerft(ctx, args)
		case "d":
			i.commandDraw(ctx)
		case "quit":
			return nil
		default:
			i.error(fmt.Errorf("unknown command %q", cmd))
		}
	}
	return scanner.Err()
}

func (i *Interface) commandHub(_ context.Context) {
	i.println(fmt.Sprintf("id name=%s version=%s author=%q", EngineName, EngineVersion, EngineAuthor))
	i.println(fmt.Sprintf("param name=debug value=%v type=bool", defaultOptions.debug))
	i.println(fmt.Sprintf("param name=movetime value=%d type=int min=%d max=%d",
		defaultOptions.movetime.Milliseconds(), minMovetime.Milliseconds(), maxMovetime.Milliseconds()))
	i.println(fmt.Sprintf("param name=hash value=%d type=int min=0 max=%d", defaultOptions.hashTableSize, maxHashSize))
	i.println(fmt.Sprintf("param name=parallel-perft value=%v type=bool", defaultOptions.parallelPerft))
	i.println("wait")
}

func (i *Interface) commandSetParam(_ context.Context, args map[string]string) {
	name, valueStr := strings.ToLower(args["name"]), args["value"]
	switch name {
	case "debug":
		value, err := strconv.ParseBool(valueStr)
		if err != nil {
			i.error(fmt.Errorf("invalid debug value %q", valueStr))
			return
		}
		i.options.debug = value
	case "movetime":
		value, err := strconv.ParseUint(valueStr, 10, 64)
		if err != nil || time.Duration(value)*time.Millisecond < minMovetime || time.Duration(value)*time.Millisecond > maxMovetime {
			i.error(fmt.Errorf("invalid movetime value %q", valueStr))
			return
		}
		i.options.movetime = time.Duration(value) * time.Millisecond
	case "hash":
		value, err := strconv.ParseUint(valueStr, 10, 64)
		if err != nil || value > maxHashSize {
			i.error(fmt.Errorf("invalid hash value %q", valueStr))
			return
		}
		i.options.hashTableSize = value
	case "parallel-perft":
		value, err := strconv.ParseBool(valueStr)
		if err != nil {
			i.error(fmt.Errorf("invalid parallel-perft value %q", valueStr))
			return
		}
		i.options.parallelPerft = value
	default:
		i.error(fmt.Errorf("unknown param %q", name))
	}
}

// commandPos sets the position: "pos start" or "pos pos=<fen>", optionally
// followed by moves="32-28 19-23" played from it.
func (i *Interface) commandPos(_ context.Context, args map[string]string) {
	if i.isRunning() {
		i.error(errors.New("search in progress"))
		return
	}

	fen := board.DefaultStartingPositionFEN
	if p, ok := args["pos"]; ok {
		fen = p
	} else if _, ok := args["start"]; !ok {
		i.error(errors.New("missing position"))
		return
	}

	b, err := board.NewBoard(board.WithFEN(fen))
	if err != nil {
		i.error(err)
		return
	}
	history := []uint64{}
	for _, n := range strings.Fields(args["moves"]) {
		mv, err := b.ResolveMove(n)
		if err != nil {
			i.error(err)
			return
		}
		history = append(history, b.Hash())
		b.Apply(mv)
	}
	i.board = b
	i.history = history
}

// commandLevel replaces the search budget. Times are in seconds.
func (i *Interface) commandLevel(_ context.Context, args map[string]string) {
	var level engine.ClockConfig
	for key, value := range args {
		var err error
		switch key {
		case "depth":
			var d uint64
			d, err = strconv.ParseUint(value, 10, 8)
			level.Depth = uint8(d)
		case "nodes":
			level.Nodes, err = strconv.ParseUint(value, 10, 64)
		case "move-time":
			level.Movetime, err = parseSeconds(value)
		case "time":
			level.Remaining, err = parseSeconds(value)
		case "inc":
			level.Increment, err = parseSeconds(value)
		case "moves":
			level.MovesPlayed, err = strconv.Atoi(value)
		case "infinite":
		default:
			err = fmt.Errorf("unknown level %q", key)
		}
		if err != nil {
			i.error(err)
			return
		}
	}
	i.level = level
}

func (i *Interface) commandGo(ctx context.Context, args map[string]string) {
	_, think := args["think"]
	_, analyze := args["analyze"]
	if !think && !analyze {
		i.error(errors.New("expected go think or go analyze"))
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.engineRunning {
		i.error(errors.New("search in progress"))
		return
	}

	cfg := &engine.SearchConfig{
		ClockConfig: i.level,
		History:     append([]uint64(nil), i.history...),
		Info:        i.info,
		Debug:       i.options.debug,
	}
	switch {
	case analyze:
		cfg.ClockConfig = engine.ClockConfig{}
	case cfg.ClockConfig == (engine.ClockConfig{}):
		cfg.ClockConfig.Movetime = i.options.movetime
	}

	engineCtx, engineCancel := context.WithCancel(ctx)
	i.engineCancel = engineCancel
	i.engineRunning = true
	i.engineDone.Add(1)
	b := i.board.Clone()
	go func() {
		defer i.engineDone.Done()
		defer func() {
			engineCancel()
			i.mu.Lock()
			i.engineRunning = false
			i.mu.Unlock()
		}()

		res, err := i.engine.Search(engineCtx, b, cfg)
		if err != nil {
			i.error(err)
			return
		}
		i.println(fmt.Sprintf("done move=%s", res.Move.Notation()))
	}()
}

func (i *Interface) commandStop(_ context.Context) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.engineRunning {
		i.engineCancel()
	}
}

func (i *Interface) commandPerft(_ context.Context, args map[string]string) {
	depth, err := strconv.Atoi(args["depth"])
	if err != nil || depth < 0 {
		i.error(fmt.Errorf("invalid depth %q", args["depth"]))
		return
	}

	out := make(chan string, 64)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for s := range out {
			i.println(s)
		}
	}()
	_, err = bench.Perft(depth, i.board.FEN(), i.options.parallelPerft, true, out)
	close(out)
	<-printed
	if err != nil {
		i.error(err)
	}
}

func (i *Interface) commandDraw(_ context.Context) {
	i.println(i.board.Draw())
	i.println(i.board.DebugString())
}

func (i *Interface) reset(ctx context.Context) {
	i.commandStop(ctx)
	i.engineDone.Wait()
	i.commandPos(ctx, map[string]string{"start": ""})
	i.level = engine.ClockConfig{}
	i.engine = engine.NewEngine(&engine.EngineConfig{
		HashTableSize: i.options.hashTableSize,
		Evaluator:     i.evaluator,
		Logger:        i.logger,
	})
}

func (i *Interface) isRunning() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.engineRunning
}

func (i *Interface) info(res engine.SearchResult) {
	nps := uint64(0)
	if res.Elapsed > 0 {
		nps = uint64(float64(res.Nodes) / res.Elapsed.Seconds())
	}
	i.println(fmt.Sprintf("info depth=%d score=%s nodes=%d time=%.3f nps=%d pv=%q",
		res.Depth, engine.FormatScore(res.Score), res.Nodes, res.Elapsed.Seconds(), nps, engine.FormatLine(res.PV)))
}

func (i *Interface) error(err error) {
	i.logger.Warnw("hub command failed", "error", err)
	i.println(fmt.Sprintf("error message=%q", err.Error()))
}

func (i *Interface) println(a ...any) {
	i.outMu.Lock()
	defer i.outMu.Unlock()
	fmt.Fprintln(i.out, a...)
}

func parseSeconds(s string) (time.Duration, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return time.Duration(f * float64(time.Second)), nil
}

// parseLine splits a command line into its name and arguments. Bare words map
// to an empty value.
func parseLine(line string) (string, map[string]string, error) {
	var tokens []string
	var token strings.Builder
	quoted := false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == ' ' && !quoted:
			if token.Len() > 0 {
				tokens = append(tokens, token.String())
				token.Reset()
			}
		default:
			token.WriteRune(r)
		}
	}
	if quoted {
		return "", nil, fmt.Errorf("unterminated quote in %q", line)
	}
	if token.Len() > 0 {
		tokens = append(tokens, token.String())
	}
	if len(tokens) == 0 {
		return "", nil, fmt.Errorf("empty command %q", line)
	}

	args := make(map[string]string, len(tokens)-1)
	for _, t := range tokens[1:] {
		key, value, _ := strings.Cut(t, "=")
		args[key] = value
	}
	return tokens[0], args, nil
}
