package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	c "mooio/internal"
)

// Config is everything mooio reads at startup.
//
// Sources, highest precedence first:
//  1. CLI flags
//  2. Environment variables (MOOIO_*, nested keys joined with _)
//  3. Configuration file (YAML, TOML or JSON)
//  4. Defaults
type Config struct {
	Log LogConfig `mapstructure:"log"`
	IO  IO        `mapstructure:"io"`
}

type LogConfig struct {
	// DEBUG, INFO, WARN or ERROR, any case
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// time.Format layout for the tint handler
	TimeFormat string `mapstructure:"time_format" validate:"required"`

	AddSource bool `mapstructure:"add_source"`
}

// IO selects and sizes the reactor backend.
type IO struct {
	// uring is linux only, pool runs everywhere
	Backend string `mapstructure:"backend" validate:"required,oneof=uring pool"`

	// io_uring submission queue entries, also the cap on in-flight ops
	RingEntries uint32 `mapstructure:"ring_entries" validate:"required,gt=0,lte=32768"`

	// CPU to pin the ring thread to, -1 to leave it floating
	RingCPU int `mapstructure:"ring_cpu" validate:"gte=-1"`

	// blocking workers of the pool backend
	Workers int `mapstructure:"workers" validate:"required,gt=0,lte=1024"`

	// open files bypassing the page cache (O_DIRECT, FILE_FLAG_NO_BUFFERING);
	// unaligned buffers handed to the reactor get staged
	Direct bool `mapstructure:"direct"`

	// bytes per transfer for the copy command
	ChunkSize int `mapstructure:"chunk_size" validate:"required,gt=0"`
}

func (l LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	// validated already
	_ = lvl.UnmarshalText([]byte(strings.ToUpper(l.Level)))
	return lvl
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.time_format", time.TimeOnly)
	v.SetDefault("log.add_source", false)

	v.SetDefault("io.backend", "pool")
	v.SetDefault("io.ring_entries", 0x80)
	v.SetDefault("io.ring_cpu", -1)
	v.SetDefault("io.workers", 4)
	v.SetDefault("io.direct", false)
	v.SetDefault("io.chunk_size", c.CHUNK_SIZE)
}

// Flags registers the CLI overrides. Bind them with Load.
func Flags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a config file")
	fs.String("log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")
	fs.String("backend", "", "io backend (uring, pool)")
	fs.Int("workers", 0, "pool backend workers")
	fs.Int("chunk", 0, "bytes per transfer")
	fs.Bool("direct", false, "open files with direct I/O")
}

var flagKeys = map[string]string{
	"log-level": "log.level",
	"backend":   "io.backend",
	"workers":   "io.workers",
	"chunk":     "io.chunk_size",
	"direct":    "io.direct",
}

// Load builds the configuration from defaults, the config file named by
// --config (if any), the environment and the flags in fs (may be nil).
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MOOIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		// only flags the user actually passed override lower layers
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
