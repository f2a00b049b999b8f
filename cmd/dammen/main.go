package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/daystram/dammen/api"
	"github.com/daystram/dammen/board"
	"github.com/daystram/dammen/config"
	"github.com/daystram/dammen/engine"
	"github.com/daystram/dammen/hub"
)

const (
	exitOK  = 0
	exitErr = 1
)

var (
	configPath = flag.String("config", "", "config file path")
	profile    = flag.Bool("profile", false, "serve pprof endpoint")

	serveRun = flag.Bool("serve", false, "run http server mode")

	perftRun      = flag.Bool("perft", false, "run perft mode")
	perftDepth    = flag.Int("perft.depth", 5, "perft depth in perft mode")
	perftParallel = flag.Bool("perft.parallel", true, "fan out perft over goroutines")

	movegenRun  = flag.Bool("movegen", false, "run movegen mode")
	movegenDraw = flag.Bool("movegen.draw", false, "draw applied moves in movegen mode")

	selfplayRun      = flag.Bool("selfplay", false, "run selfplay mode")
	selfplayWhite    = flag.String("selfplay.white", "medium", "white difficulty in selfplay mode")
	selfplayBlack    = flag.String("selfplay.black", "easy", "black difficulty in selfplay mode")
	selfplayMaxPlies = flag.Int("selfplay.maxplies", 300, "ply limit in selfplay mode")
	selfplayClock    = flag.Bool("selfplay.clock", false, "play on the configured time control in selfplay mode")
)

func main() {
	flag.Parse()

	cfg, err := config.Setup(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(exitErr)
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(exitErr)
	}
	defer func() { _ = logger.Sync() }()

	if *profile {
		runProfiler(logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = realMain(ctx, cfg, logger, flag.Args())
	stop()
	if err != nil {
		logger.Errorw("exited with error", "error", err)
		_ = logger.Sync()
		os.Exit(exitErr)
	}
}

func newLogger(cfg config.LogConfig) (*zap.SugaredLogger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func runProfiler(logger *zap.SugaredLogger) {
	go func() {
		addr := "localhost:6060"
		logger.Infof("starting pprof endpoint: http://%s/debug/pprof", addr)
		_ = http.ListenAndServe(addr, nil)
	}()
}

func realMain(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger, args []string) error {
	fen := board.DefaultStartingPositionFEN
	if len(args) > 0 {
		fen = strings.Join(args, " ")
	}
	switch {
	case *serveRun:
		return api.NewServer(cfg, logger).ListenAndServe(ctx)
	case *perftRun:
		return perft(os.Stdout, *perftDepth, fen, *perftParallel)
	case *movegenRun:
		return movegen(os.Stdout, fen, *movegenDraw)
	case *selfplayRun:
		white, err := engine.ParseDifficulty(*selfplayWhite)
		if err != nil {
			return err
		}
		black, err := engine.ParseDifficulty(*selfplayBlack)
		if err != nil {
			return err
		}
		return selfplay(ctx, os.Stdout, cfg, logger, fen, white, black, *selfplayMaxPlies, *selfplayClock)
	}

	return hub.NewInterface(
		hub.WithLogger(logger),
		hub.WithEvaluator(engine.NewEvaluator(cfg.Engine.Weights)),
		hub.WithHashTableSize(cfg.Engine.HashTableSize),
	).Run(ctx)
}
