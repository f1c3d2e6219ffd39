// Package config provides YAML-based configuration loading for lat-dynamic.
package config

import (
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"

    "github.com/spf13/viper"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/topology"
)

// ErrConfig marks every configuration error. All of them are fatal and are
// reported before any tile starts.
var ErrConfig = errors.New("config")

// Config is the root application configuration.
type Config struct {
    // AppName optional logical name used in logs and reports
    AppName string `mapstructure:"app_name"`

    // Log holds logging configuration
    Log LogConfig `mapstructure:"log"`

    // Layer describes the convolution to run
    Layer LayerConfig `mapstructure:"layer"`

    // Run selects the strategy and mesh size
    Run RunConfig `mapstructure:"run"`

    // Fabric selects how tiles talk to each other
    Fabric FabricConfig `mapstructure:"fabric"`

    // Report controls the end-of-run summary
    Report ReportConfig `mapstructure:"report"`
}

// LogConfig defines logger settings.
type LogConfig struct {
    // Level: debug, info, warn, error
    Level string `mapstructure:"level"`
    // Format: console or json
    Format string `mapstructure:"format"`
    // Outputs: list of outputs: stdout, stderr, or file paths
    Outputs []string `mapstructure:"outputs"`

    // Rotation controls file rotation when writing to files
    Rotation RotationConfig `mapstructure:"rotation"`
    // Development toggles development-friendly logging options
    Development bool `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
    Enable     bool   `mapstructure:"enable"`
    Filename   string `mapstructure:"filename"`
    MaxSizeMB  int    `mapstructure:"max_size_mb"`
    MaxBackups int    `mapstructure:"max_backups"`
    MaxAgeDays int    `mapstructure:"max_age_days"`
    Compress   bool   `mapstructure:"compress"`
}

// LayerConfig is the convolution shape. Images and filters are square.
type LayerConfig struct {
    InChannels  int `mapstructure:"in_channels"`
    OutChannels int `mapstructure:"out_channels"`
    ImageSize   int `mapstructure:"image_size"`
    FilterSize  int `mapstructure:"filter_size"`
    // sparsities are percentages
    InSparsity  int `mapstructure:"in_sparsity"`
    OutSparsity int `mapstructure:"out_sparsity"`
}

type RunConfig struct {
    // Mode: none, simple or adaptive
    Mode    string `mapstructure:"mode"`
    Tiles   int    `mapstructure:"tiles"`
    Balance bool   `mapstructure:"balance"`
    // Seed of the channel selection draws
    Seed uint64 `mapstructure:"seed"`
    // MACDelayNS is the simulated time per multiply-accumulate
    MACDelayNS int64 `mapstructure:"mac_delay_ns"`
}

type FabricConfig struct {
    // Kind: chan, mem, tcp or quic
    Kind string `mapstructure:"kind"`
    // Listen is the host tcp and quic tiles bind to
    Listen string `mapstructure:"listen"`
}

type ReportConfig struct {
    // Format: text, json, yaml, cbor or proto
    Format string `mapstructure:"format"`
    // Output is a file path; empty or "-" means stdout
    Output string `mapstructure:"output"`
}

var (
    modes         = []string{"none", "simple", "adaptive"}
    fabricKinds   = []string{"chan", "mem", "tcp", "quic"}
    reportFormats = []string{"text", "json", "yaml", "cbor", "proto"}
)

// Default returns a Config populated with sensible defaults. The layer is
// left zero; it normally comes from the command line.
func Default() *Config {
    return &Config{
        AppName: "lat-dynamic",
        Log: LogConfig{
            Level:       "warn",
            Format:      "console",
            Outputs:     []string{"stderr"},
            Development: false,
            Rotation: RotationConfig{
                Enable:     false,
                Filename:   "logs/lat-dynamic.log",
                MaxSizeMB:  50,
                MaxBackups: 3,
                MaxAgeDays: 28,
                Compress:   true,
            },
        },
        Run:    RunConfig{Mode: "simple", Tiles: 1, Balance: true, Seed: 1},
        Fabric: FabricConfig{Kind: "chan", Listen: "127.0.0.1"},
        Report: ReportConfig{Format: "text"},
    }
}

// Load reads configuration from the provided path (if non-empty),
// otherwise it searches common locations and supports environment overrides.
// Environment variables use the prefix LATDYN and `.`/`-` are replaced with `_`.
// Example: LATDYN_RUN_TILES=8
//
// Load does not call Validate: the command line may still fill in the layer.
func Load(path string) (*Config, error) {
    cfg := Default()

    v := viper.New()
    v.SetConfigType("yaml")
    v.SetEnvPrefix("LATDYN")
    v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
    v.AutomaticEnv()

    // seed defaults for viper so env-only configs work
    v.SetDefault("app_name", cfg.AppName)
    v.SetDefault("log.level", cfg.Log.Level)
    v.SetDefault("log.format", cfg.Log.Format)
    v.SetDefault("log.outputs", cfg.Log.Outputs)
    v.SetDefault("log.development", cfg.Log.Development)
    v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
    v.SetDefault("log.rotation.filename", cfg.Log.Rotation.Filename)
    v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
    v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
    v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
    v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
    v.SetDefault("layer.in_channels", cfg.Layer.InChannels)
    v.SetDefault("layer.out_channels", cfg.Layer.OutChannels)
    v.SetDefault("layer.image_size", cfg.Layer.ImageSize)
    v.SetDefault("layer.filter_size", cfg.Layer.FilterSize)
    v.SetDefault("layer.in_sparsity", cfg.Layer.InSparsity)
    v.SetDefault("layer.out_sparsity", cfg.Layer.OutSparsity)
    v.SetDefault("run.mode", cfg.Run.Mode)
    v.SetDefault("run.tiles", cfg.Run.Tiles)
    v.SetDefault("run.balance", cfg.Run.Balance)
    v.SetDefault("run.seed", cfg.Run.Seed)
    v.SetDefault("run.mac_delay_ns", cfg.Run.MACDelayNS)
    v.SetDefault("fabric.kind", cfg.Fabric.Kind)
    v.SetDefault("fabric.listen", cfg.Fabric.Listen)
    v.SetDefault("report.format", cfg.Report.Format)
    v.SetDefault("report.output", cfg.Report.Output)

    // Choose config file
    if path == "" {
        // Allow override via env var
        if envPath := os.Getenv("LATDYN_CONFIG"); envPath != "" {
            path = envPath
        }
    }

    if path != "" {
        v.SetConfigFile(path)
    } else {
        // Search common locations with base name `lat-dynamic`
        v.SetConfigName("lat-dynamic")
        v.AddConfigPath(".")
        v.AddConfigPath("./configs")
        if home, err := os.UserHomeDir(); err == nil {
            v.AddConfigPath(filepath.Join(home, ".lat-dynamic"))
        }
    }

    // Read config file if present; if not found, continue with defaults/env
    if err := v.ReadInConfig(); err != nil {
        var viperConfigFileNotFound viper.ConfigFileNotFoundError
        if !errors.As(err, &viperConfigFileNotFound) {
            return nil, fmt.Errorf("read config: %w", err)
        }
    }

    if err := v.Unmarshal(&cfg); err != nil {
        return nil, fmt.Errorf("decode config: %w", err)
    }
    cfg.normalize()
    return cfg, nil
}

func (c *Config) normalize() {
    if c.Log.Format == "" {
        c.Log.Format = "console"
    }
    if len(c.Log.Outputs) == 0 {
        c.Log.Outputs = []string{"stderr"}
    }
    // mode names are case-sensitive
    c.Run.Mode = strings.TrimSpace(c.Run.Mode)
    c.Fabric.Kind = strings.ToLower(strings.TrimSpace(c.Fabric.Kind))
    c.Report.Format = strings.ToLower(strings.TrimSpace(c.Report.Format))
}

// Validate checks everything that must hold before tiles start. Every error
// wraps ErrConfig.
func (c *Config) Validate() error {
    c.normalize()
    switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
    case "debug", "info", "warn", "warning", "error":
        // ok
    default:
        return fmt.Errorf("%w: invalid log.level: %q", ErrConfig, c.Log.Level)
    }
    if !oneOf(c.Run.Mode, modes) {
        return fmt.Errorf("%w: unknown mode parameter: '%s'", ErrConfig, c.Run.Mode)
    }
    if !oneOf(c.Fabric.Kind, fabricKinds) {
        return fmt.Errorf("%w: unknown fabric %q (want one of %s)", ErrConfig, c.Fabric.Kind, strings.Join(fabricKinds, ", "))
    }
    if !oneOf(c.Report.Format, reportFormats) {
        return fmt.Errorf("%w: unknown report format %q (want one of %s)", ErrConfig, c.Report.Format, strings.Join(reportFormats, ", "))
    }

    l := c.Layer
    if l.InChannels <= 0 || l.OutChannels <= 0 {
        return fmt.Errorf("%w: channel counts must be positive, got %d in, %d out", ErrConfig, l.InChannels, l.OutChannels)
    }
    if l.FilterSize <= 0 || l.ImageSize < l.FilterSize {
        return fmt.Errorf("%w: need 0 < filter-size <= in-size, got filter %d, image %d", ErrConfig, l.FilterSize, l.ImageSize)
    }
    if l.InSparsity < 0 || l.InSparsity > 100 {
        return fmt.Errorf("%w: in-sparsity must be a percentage, got %d", ErrConfig, l.InSparsity)
    }
    if l.OutSparsity < 0 || l.OutSparsity > 100 {
        return fmt.Errorf("%w: out-sparsity must be a percentage, got %d", ErrConfig, l.OutSparsity)
    }

    if _, err := topology.ForTiles(c.Run.Tiles); err != nil {
        return fmt.Errorf("%w: %v", ErrConfig, err)
    }
    if l.OutChannels%c.Run.Tiles != 0 {
        return fmt.Errorf("%w: %d output channels do not divide across %d tiles", ErrConfig, l.OutChannels, c.Run.Tiles)
    }
    if c.Run.Mode != "none" && l.InChannels%c.Run.Tiles != 0 {
        return fmt.Errorf("%w: %d input channels do not divide across %d tiles", ErrConfig, l.InChannels, c.Run.Tiles)
    }
    if c.Run.MACDelayNS < 0 {
        return fmt.Errorf("%w: negative mac delay %d", ErrConfig, c.Run.MACDelayNS)
    }
    return nil
}

func oneOf(s string, set []string) bool {
    for _, v := range set {
        if s == v { return true }
    }
    return false
}
