package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/daystram/dammen/engine"
	"github.com/daystram/dammen/game"
	"github.com/daystram/dammen/rating"
)

// EnvPrefix prefixes every environment override, e.g. DAMMEN_SERVER_ADDR.
const EnvPrefix = "DAMMEN"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server ServerConfig     `mapstructure:"server"`
	Log    LogConfig        `mapstructure:"log"`
	Engine EngineConfig     `mapstructure:"engine"`
	Rules  game.Rules       `mapstructure:"rules"`
	Clock  game.ClockConfig `mapstructure:"clock"`
	Rating rating.Config    `mapstructure:"rating"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// MaxTimeLimit caps the time a single AI move request may ask for.
	MaxTimeLimit time.Duration `mapstructure:"max_time_limit"`
	// SessionTTL is how long an idle game session is kept.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type EngineConfig struct {
	HashTableSize     uint64         `mapstructure:"hash_size"`
	DefaultDifficulty string         `mapstructure:"default_difficulty"`
	Debug             bool           `mapstructure:"debug"`
	Weights           engine.Weights `mapstructure:"weights"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			MaxTimeLimit: 10 * time.Second,
			SessionTTL:   time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
		Engine: EngineConfig{
			HashTableSize:     engine.DefaultHashTableSize,
			DefaultDifficulty: engine.DifficultyMedium.String(),
			Weights:           engine.DefaultWeights(),
		},
		Rules: game.DefaultRules(),
		Clock: game.ClockConfig{
			Initial:   10 * time.Minute,
			Increment: 5 * time.Second,
		},
		Rating: rating.DefaultConfig(),
	}
}

// Setup loads the configuration from the defaults, then the config file at
// cfgPath when given, then DAMMEN_* environment variables.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: empty server address", ErrInvalidConfig)
	}
	if c.Server.MaxTimeLimit <= 0 {
		return fmt.Errorf("%w: max time limit must be positive", ErrInvalidConfig)
	}
	if _, err := engine.ParseDifficulty(c.Engine.DefaultDifficulty); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Clock.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Rating.Tau <= 0 || c.Rating.Epsilon <= 0 {
		return fmt.Errorf("%w: rating tau and epsilon must be positive", ErrInvalidConfig)
	}
	return nil
}

// setDefaults registers every key so environment variables can override keys
// absent from the config file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.max_time_limit", cfg.Server.MaxTimeLimit)
	v.SetDefault("server.session_ttl", cfg.Server.SessionTTL)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.development", cfg.Log.Development)

	v.SetDefault("engine.hash_size", cfg.Engine.HashTableSize)
	v.SetDefault("engine.default_difficulty", cfg.Engine.DefaultDifficulty)
	v.SetDefault("engine.debug", cfg.Engine.Debug)
	w := cfg.Engine.Weights
	v.SetDefault("engine.weights.man", w.Man)
	v.SetDefault("engine.weights.king", w.King)
	v.SetDefault("engine.weights.centre", w.Centre)
	v.SetDefault("engine.weights.mobility", w.Mobility)
	v.SetDefault("engine.weights.king_centre", w.KingCentre)
	v.SetDefault("engine.weights.back_row", w.BackRow)
	v.SetDefault("engine.weights.advancement", w.Advancement)
	v.SetDefault("engine.weights.tempo", w.Tempo)

	v.SetDefault("rules.repetitions", cfg.Rules.Repetitions)
	v.SetDefault("rules.king_move_plies", cfg.Rules.KingMovePlies)
	v.SetDefault("rules.endgame_plies", cfg.Rules.EndgamePlies)
	v.SetDefault("rules.short_endgame_plies", cfg.Rules.ShortEndgamePlies)

	v.SetDefault("clock.initial", cfg.Clock.Initial)
	v.SetDefault("clock.increment", cfg.Clock.Increment)
	v.SetDefault("clock.draw_on_insufficient_material", cfg.Clock.DrawOnInsufficientMaterial)

	v.SetDefault("rating.tau", cfg.Rating.Tau)
	v.SetDefault("rating.epsilon", cfg.Rating.Epsilon)
}
