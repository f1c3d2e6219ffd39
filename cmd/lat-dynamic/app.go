package main

import (
    "context"
    "errors"
    "fmt"
    "io"
    "os"
    "os/signal"
    "strings"
    "time"

    "go.uber.org/zap"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/balance"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/config"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/driver"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/mesh"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/observability"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/report"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/tensor"
)

// run is the main entry point. Diagnostics go to stdout as a single line.
func run(args []string, stdout io.Writer) int {
    opts, err := ParseArgs(args)
    if errors.Is(err, errUsage) {
        fmt.Fprint(stdout, usage)
        return 1
    }
    if err != nil {
        fmt.Fprintln(stdout, err)
        return 1
    }

    cfg, err := config.Load(opts.ConfigPath)
    if err != nil {
        fmt.Fprintln(stdout, "Error: failed to load config:", err)
        return 1
    }
    opts.Apply(cfg)
    if err := cfg.Validate(); err != nil {
        fmt.Fprintln(stdout, "Error:", strings.TrimPrefix(err.Error(), config.ErrConfig.Error()+": "))
        return 1
    }

    logger, err := observability.SetupLogger(cfg.Log)
    if err != nil {
        fmt.Fprintln(stdout, "Error: failed to setup logger:", err)
        return 1
    }
    defer func() { _ = logger.Sync() }()
    zap.L().Debug("effective configuration", zap.Any("config", cfg))

    mo, err := meshOptions(cfg, logger)
    if err != nil {
        fmt.Fprintln(stdout, "Error:", err)
        return 1
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
    defer stop()
    res, err := mesh.Run(ctx, mo)
    if err != nil {
        fmt.Fprintln(stdout, "Error:", err)
        return 1
    }

    out := stdout
    if p := cfg.Report.Output; p != "" && p != "-" {
        f, err := os.Create(p)
        if err != nil {
            fmt.Fprintln(stdout, "Error:", err)
            return 1
        }
        defer f.Close()
        out = f
    }
    if err := report.Write(out, cfg.Report.Format, report.FromResult(res)); err != nil {
        fmt.Fprintln(stdout, "Error: writing report:", err)
        return 1
    }
    return 0
}

func meshOptions(cfg *config.Config, logger *zap.Logger) (mesh.Options, error) {
    mode, err := driver.ParseMode(cfg.Run.Mode)
    if err != nil { return mesh.Options{}, err }
    bal := balance.ModeEnabled
    if !cfg.Run.Balance { bal = balance.ModeDisabled }
    l := cfg.Layer
    return mesh.Options{
        Shape:       tensor.NewConvShape(l.InChannels, l.OutChannels, l.ImageSize, l.FilterSize),
        Mode:        mode,
        Tiles:       cfg.Run.Tiles,
        Balance:     bal,
        InSparsity:  l.InSparsity,
        OutSparsity: l.OutSparsity,
        Seed:        cfg.Run.Seed,
        Fabric:      cfg.Fabric.Kind,
        Listen:      cfg.Fabric.Listen,
        MACDelay:    time.Duration(cfg.Run.MACDelayNS),
        Logger:      logger.Named(cfg.AppName),
    }, nil
}
