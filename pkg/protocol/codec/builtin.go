package codec

import (
    "encoding/json"
    "fmt"

    cbor "github.com/fxamacker/cbor/v2"
    "google.golang.org/protobuf/proto"
    "gopkg.in/yaml.v3"
)

// JSON encodes with encoding/json. Content-Type: application/json
func JSON() Codec { return jsonCodec{} }

type jsonCodec struct{}

func (jsonCodec) ContentType() string                { return "application/json" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.MarshalIndent(v, "", "  ") }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// YAML encodes YAML 1.2. Content-Type: application/yaml
func YAML() Codec { return yamlCodec{} }

type yamlCodec struct{}

func (yamlCodec) ContentType() string                { return "application/yaml" }
func (yamlCodec) Marshal(v any) ([]byte, error)      { return yaml.Marshal(v) }
func (yamlCodec) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

// CBOR encodes with the RFC 8949 core deterministic profile. Struct fields
// use their cbor tag, falling back to the json tag.
// Content-Type: application/cbor
func CBOR() (Codec, error) {
    em, err := cbor.CoreDetEncOptions().EncMode()
    if err != nil { return nil, fmt.Errorf("cbor encoder: %w", err) }
    dm, err := cbor.DecOptions{}.DecMode()
    if err != nil { return nil, fmt.Errorf("cbor decoder: %w", err) }
    return cborCodec{enc: em, dec: dm}, nil
}

type cborCodec struct {
    enc cbor.EncMode
    dec cbor.DecMode
}

func (cborCodec) ContentType() string                  { return "application/cbor" }
func (c cborCodec) Marshal(v any) ([]byte, error)      { return c.enc.Marshal(v) }
func (c cborCodec) Unmarshal(data []byte, v any) error { return c.dec.Unmarshal(data, v) }

// Proto encodes protocol buffer messages with deterministic map ordering.
// Anything that is not a proto.Message is rejected.
// Content-Type: application/x-protobuf
func Proto() Codec { return protoCodec{} }

type protoCodec struct{}

func (protoCodec) ContentType() string { return "application/x-protobuf" }

func (protoCodec) Marshal(v any) ([]byte, error) {
    m, ok := v.(proto.Message)
    if !ok { return nil, fmt.Errorf("proto codec: %T is not a proto.Message", v) }
    return proto.MarshalOptions{Deterministic: true}.Marshal(m)
}

func (protoCodec) Unmarshal(data []byte, v any) error {
    m, ok := v.(proto.Message)
    if !ok { return fmt.Errorf("proto codec: %T is not a proto.Message", v) }
    return proto.Unmarshal(data, m)
}
