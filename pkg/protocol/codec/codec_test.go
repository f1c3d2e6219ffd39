package codec

import (
    "bytes"
    "testing"

    "google.golang.org/protobuf/types/known/structpb"
)

type tileLine struct {
    Tile  int    `json:"tile" yaml:"tile"`
    Mode  string `json:"mode" yaml:"mode"`
    Calls []int  `json:"calls" yaml:"calls"`
}

func TestStructCodecsRoundTrip(t *testing.T) {
    r, err := Default()
    if err != nil { t.Fatalf("default: %v", err) }
    in := tileLine{Tile: 3, Mode: "adaptive", Calls: []int{4, 1}}
    for _, ct := range []string{"application/json", "application/yaml", "application/cbor"} {
        c := r.Get(ct)
        if c == nil { t.Fatalf("missing %s", ct) }
        b, err := c.Marshal(in)
        if err != nil { t.Fatalf("%s marshal: %v", ct, err) }
        var out tileLine
        if err := c.Unmarshal(b, &out); err != nil { t.Fatalf("%s unmarshal: %v", ct, err) }
        if out.Tile != 3 || out.Mode != "adaptive" || len(out.Calls) != 2 || out.Calls[1] != 1 { t.Fatalf("%s: %+v", ct, out) }
    }
}

func TestCBORIsDeterministic(t *testing.T) {
    c, err := CBOR()
    if err != nil { t.Fatalf("cbor: %v", err) }
    m := map[string]int{"z": 1, "a": 2, "m": 3}
    first, err := c.Marshal(m)
    if err != nil { t.Fatalf("marshal: %v", err) }
    for i := 0; i < 10; i++ {
        again, _ := c.Marshal(m)
        if !bytes.Equal(first, again) { t.Fatalf("encoding changed between calls") }
    }
}

func TestProtoCodec(t *testing.T) {
    c := Proto()
    s, err := structpb.NewStruct(map[string]any{"run_id": "r1", "tiles": 4})
    if err != nil { t.Fatalf("struct: %v", err) }
    b, err := c.Marshal(s)
    if err != nil { t.Fatalf("marshal: %v", err) }
    var out structpb.Struct
    if err := c.Unmarshal(b, &out); err != nil { t.Fatalf("unmarshal: %v", err) }
    if out.Fields["run_id"].GetStringValue() != "r1" || out.Fields["tiles"].GetNumberValue() != 4 { t.Fatalf("roundtrip mismatch: %v", &out) }
    if _, err := c.Marshal(tileLine{}); err == nil { t.Fatalf("non-proto value accepted") }
}

func TestNewRegistryLeavesOutCBOR(t *testing.T) {
    r := NewRegistry()
    if r.Get("application/cbor") != nil { t.Fatalf("cbor preloaded") }
    if r.Get("application/json") == nil || r.Get("application/yaml") == nil || r.Get("application/x-protobuf") == nil { t.Fatalf("missing built-in") }
}
