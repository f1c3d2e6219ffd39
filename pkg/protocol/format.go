package protocol

import (
    "fmt"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/protocol/codec"
)

// Format names a body encoding.
type Format uint8

const (
    FormatUnknown Format = iota
    FormatJSON
    FormatCBOR
    FormatProto
    FormatYAML
)

var contentTypes = map[Format]string{
    FormatJSON:  ContentJSON,
    FormatCBOR:  ContentCBOR,
    FormatProto: ContentProto,
    FormatYAML:  ContentYAML,
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
    if ct, ok := contentTypes[f]; ok { return ct }
    return ContentUnknown
}

func (f Format) String() string { return f.ContentType() }

// ParseFormat maps a short name to a Format. "protobuf" and "yml" are
// accepted as aliases.
func ParseFormat(name string) (Format, error) {
    switch name {
    case "json":
        return FormatJSON, nil
    case "cbor":
        return FormatCBOR, nil
    case "proto", "protobuf":
        return FormatProto, nil
    case "yaml", "yml":
        return FormatYAML, nil
    }
    return FormatUnknown, fmt.Errorf("unknown format: %q", name)
}

// CodecFor looks up the codec for f in r.
func CodecFor(r *codec.Registry, f Format) (codec.Codec, error) {
    if f == FormatUnknown { return nil, fmt.Errorf("no codec for %s", f) }
    c := r.Get(f.ContentType())
    if c == nil { return nil, fmt.Errorf("no codec registered for %s", f) }
    return c, nil
}
