package protocol

import (
    "testing"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/protocol/codec"
)

func TestParseFormat(t *testing.T) {
    cases := map[string]Format{"json": FormatJSON, "cbor": FormatCBOR, "proto": FormatProto, "protobuf": FormatProto, "yaml": FormatYAML, "yml": FormatYAML}
    for name, want := range cases {
        got, err := ParseFormat(name)
        if err != nil || got != want { t.Fatalf("ParseFormat(%q) = %v, %v", name, got, err) }
    }
    if _, err := ParseFormat("xml"); err == nil { t.Fatalf("expected error") }
}

func TestCodecFor(t *testing.T) {
    reg, err := codec.Default()
    if err != nil { t.Fatalf("registry: %v", err) }
    for _, f := range []Format{FormatJSON, FormatCBOR, FormatProto, FormatYAML} {
        c, err := CodecFor(reg, f)
        if err != nil { t.Fatalf("%s: %v", f, err) }
        if c.ContentType() != f.ContentType() { t.Fatalf("%s resolved to %s", f, c.ContentType()) }
    }
    if _, err := CodecFor(reg, FormatUnknown); err == nil { t.Fatalf("unknown format resolved") }
    if _, err := CodecFor(codec.NewRegistry(), FormatCBOR); err == nil { t.Fatalf("cbor resolved without registration") }
    if FormatUnknown.String() != ContentUnknown { t.Fatalf("unknown string: %s", FormatUnknown) }
}
