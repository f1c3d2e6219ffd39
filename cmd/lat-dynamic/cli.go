package main

import (
    "errors"
    "fmt"
    "io"
    "strconv"
    "strings"
    "time"

    "github.com/spf13/pflag"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/config"
)

const usage = `Usage: lat-dynamic in-channels in-size in-sparsity out-channels \
                   out-sparsity filter-size [--mode=mode] [--tiles=N]
'size' parameters indicate the width/height in pixels
'sparsity' parameters are percentages
'mode' selects how to exploit sparsity ('none', 'simple', 'adaptive')
`

// errUsage asks the caller to print the usage text.
var errUsage = errors.New("usage")

// Options holds CLI options.
type Options struct {
    ConfigPath string
    Layer      config.LayerConfig

    fs *pflag.FlagSet
    // flag values, applied only when set on the command line
    mode      string
    tiles     int
    fabric    string
    listen    string
    noBalance bool
    seed      uint64
    report    string
    output    string
    macDelay  time.Duration
    logLevel  string
}

// ParseArgs parses the six positional layer parameters and the flags, which
// may appear anywhere on the line.
func ParseArgs(args []string) (Options, error) {
    var opts Options
    fs := pflag.NewFlagSet("lat-dynamic", pflag.ContinueOnError)
    fs.SetOutput(io.Discard)
    fs.StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file")
    fs.StringVar(&opts.mode, "mode", "simple", "How to exploit sparsity: none, simple or adaptive")
    fs.IntVar(&opts.tiles, "tiles", 1, "Number of tiles")
    fs.StringVar(&opts.fabric, "fabric", "chan", "Tile links: chan, mem, tcp or quic")
    fs.StringVar(&opts.listen, "listen", "127.0.0.1", "Host network fabrics listen on")
    fs.BoolVar(&opts.noBalance, "no-balance", false, "Disable work stealing")
    fs.Uint64Var(&opts.seed, "seed", 1, "Seed of the channel selection draws")
    fs.StringVar(&opts.report, "report", "text", "Report format: text, json, yaml, cbor or proto")
    fs.StringVar(&opts.output, "output", "", "Report file (default stdout)")
    fs.DurationVar(&opts.macDelay, "mac-delay", 0, "Simulated time per multiply-accumulate")
    fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
    if err := fs.Parse(args); err != nil {
        if errors.Is(err, pflag.ErrHelp) { return opts, errUsage }
        return opts, unknownArgument(err)
    }
    opts.fs = fs

    pos := fs.Args()
    if len(pos) < 6 { return opts, errUsage }
    if len(pos) > 6 { return opts, fmt.Errorf("Unknown argument: %s", pos[6]) }
    names := []string{"in-channels", "in-size", "in-sparsity", "out-channels", "out-sparsity", "filter-size"}
    v := make([]int, len(names))
    for i, s := range pos {
        n, err := strconv.Atoi(s)
        if err != nil { return opts, fmt.Errorf("Error: %s must be an integer, got '%s'", names[i], s) }
        v[i] = n
    }
    opts.Layer = config.LayerConfig{InChannels: v[0], ImageSize: v[1], InSparsity: v[2], OutChannels: v[3], OutSparsity: v[4], FilterSize: v[5]}
    return opts, nil
}

// Apply overrides cfg with the layer and with every flag given explicitly.
func (o Options) Apply(cfg *config.Config) {
    cfg.Layer = o.Layer
    if o.fs == nil { return }
    set := func(name string) bool { return o.fs.Changed(name) }
    if set("mode") { cfg.Run.Mode = o.mode }
    if set("tiles") { cfg.Run.Tiles = o.tiles }
    if set("fabric") { cfg.Fabric.Kind = o.fabric }
    if set("listen") { cfg.Fabric.Listen = o.listen }
    if set("no-balance") { cfg.Run.Balance = !o.noBalance }
    if set("seed") { cfg.Run.Seed = o.seed }
    if set("report") { cfg.Report.Format = o.report }
    if set("output") { cfg.Report.Output = o.output }
    if set("mac-delay") { cfg.Run.MACDelayNS = o.macDelay.Nanoseconds() }
    if set("log-level") { cfg.Log.Level = o.logLevel }
}

// unknownArgument turns a pflag error into the one-line diagnostic.
func unknownArgument(err error) error {
    msg := err.Error()
    for _, p := range []string{"unknown flag: ", "unknown shorthand flag: "} {
        if strings.HasPrefix(msg, p) { return fmt.Errorf("Unknown argument: %s", strings.TrimPrefix(msg, p)) }
    }
    return fmt.Errorf("Error: %s", msg)
}
