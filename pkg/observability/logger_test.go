package observability

import (
    "os"
    "path/filepath"
    "strings"
    "testing"

    "go.uber.org/zap"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/config"
)

func TestParseLevel(t *testing.T) {
    for in, want := range map[string]zap.AtomicLevel{"debug": zap.NewAtomicLevelAt(zap.DebugLevel), "WARNING": zap.NewAtomicLevelAt(zap.WarnLevel), "": zap.NewAtomicLevelAt(zap.InfoLevel)} {
        got, err := ParseLevel(in)
        if err != nil || got.Level() != want.Level() { t.Fatalf("%q: %v %v", in, got.Level(), err) }
    }
    if _, err := ParseLevel("loud"); err == nil { t.Fatalf("expected error") }
}

func TestSetupLoggerWritesFile(t *testing.T) {
    path := filepath.Join(t.TempDir(), "logs", "run.log")
    prev := zap.L()
    defer zap.ReplaceGlobals(prev)

    l, err := SetupLogger(config.LogConfig{Level: "debug", Format: "json", Outputs: []string{path}})
    if err != nil { t.Fatalf("setup: %v", err) }
    Tile(l, 3).Info("hello")
    _ = l.Sync()

    data, err := os.ReadFile(path)
    if err != nil { t.Fatalf("read: %v", err) }
    if !strings.Contains(string(data), `"tile":3`) || !strings.Contains(string(data), "hello") { t.Fatalf("log = %s", data) }
}
