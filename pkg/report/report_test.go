package report

import (
    "bytes"
    "encoding/json"
    "strings"
    "testing"
    "time"

    "github.com/fxamacker/cbor/v2"
    "google.golang.org/protobuf/proto"
    "google.golang.org/protobuf/types/known/structpb"
    "gopkg.in/yaml.v3"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/balance"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/driver"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/mesh"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/task"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/tensor"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/topology"
)

func sample() Summary {
    grid, _ := topology.ForTiles(2)
    r := &mesh.Result{
        RunID:       "run-1",
        Grid:        grid,
        Mode:        driver.ModeAdaptive,
        Balance:     balance.ModeEnabled,
        Fabric:      "chan",
        Shape:       tensor.NewConvShape(4, 8, 6, 3),
        InSelected:  3,
        OutSelected: 5,
        Elapsed:     1500 * time.Microsecond,
        Tiles: []driver.Stats{
            {Tile: 0, Tasks: []task.ChannelRange{{0, 4, 0, 4}, {0, 4, 6, 8}}, KernelCalls: 7, MACs: 100, Acquired: 1},
            {Tile: 1, Tasks: []task.ChannelRange{{0, 4, 4, 6}}, KernelCalls: 3, MACs: 40, Given: 1, ChannelsGiven: 2},
        },
    }
    return FromResult(r)
}

func TestFromResult(t *testing.T) {
    s := sample()
    if s.Tiles != 2 || s.Grid != "1x2" || s.Mode != "adaptive" { t.Fatalf("header = %+v", s) }
    if s.KernelCalls != 10 || s.MACs != 140 || s.Steals != 1 { t.Fatalf("totals = %d %d %d", s.KernelCalls, s.MACs, s.Steals) }
    if s.PerTile[0].OutputChannels != 6 || len(s.PerTile[0].Tasks) != 2 { t.Fatalf("tile 0 = %+v", s.PerTile[0]) }
    if s.Layer.ImageSize != 6 || s.Layer.FilterSize != 3 { t.Fatalf("layer = %+v", s.Layer) }
}

func TestWriteText(t *testing.T) {
    var b bytes.Buffer
    if err := Write(&b, "text", sample()); err != nil { t.Fatalf("write: %v", err) }
    out := b.String()
    for _, want := range []string{"run-1", "Computation took 1.5ms", "in[0,4) out[6,8)", "adaptive"} {
        if !strings.Contains(out, want) { t.Fatalf("missing %q in:\n%s", want, out) }
    }
}

func TestWriteEncodings(t *testing.T) {
    want := sample()

    var b bytes.Buffer
    if err := Write(&b, "json", want); err != nil { t.Fatalf("json: %v", err) }
    var js Summary
    if err := json.Unmarshal(b.Bytes(), &js); err != nil || js.MACs != want.MACs || len(js.PerTile) != 2 { t.Fatalf("json decode: %v %+v", err, js) }

    b.Reset()
    if err := Write(&b, "yaml", want); err != nil { t.Fatalf("yaml: %v", err) }
    var ys Summary
    if err := yaml.Unmarshal(b.Bytes(), &ys); err != nil || ys.RunID != want.RunID || ys.PerTile[1].ChannelsGiven != 2 { t.Fatalf("yaml decode: %v %+v", err, ys) }

    b.Reset()
    if err := Write(&b, "cbor", want); err != nil { t.Fatalf("cbor: %v", err) }
    var cs Summary
    if err := cbor.Unmarshal(b.Bytes(), &cs); err != nil || cs.Steals != 1 { t.Fatalf("cbor decode: %v %+v", err, cs) }

    b.Reset()
    if err := Write(&b, "proto", want); err != nil { t.Fatalf("proto: %v", err) }
    var ps structpb.Struct
    if err := proto.Unmarshal(b.Bytes(), &ps); err != nil { t.Fatalf("proto decode: %v", err) }
    if got := ps.Fields["run_id"].GetStringValue(); got != "run-1" { t.Fatalf("run_id = %q", got) }
    if got := ps.Fields["kernel_calls"].GetNumberValue(); got != 10 { t.Fatalf("kernel_calls = %v", got) }
}

func TestWriteUnknownFormat(t *testing.T) {
    if err := Write(&bytes.Buffer{}, "xml", sample()); err == nil { t.Fatalf("expected error") }
}
