// Package codec holds the body encodings a run summary can be written in.
// Every codec is deterministic, so equal values encode to equal bytes.
package codec

// Codec marshals values to and from one encoding.
type Codec interface {
    ContentType() string
    Marshal(v any) ([]byte, error)
    Unmarshal(data []byte, v any) error
}

// Registry maps content types to codecs.
type Registry struct{ byType map[string]Codec }

// NewRegistry returns a registry holding the codecs that cannot fail to
// build: JSON, Protobuf and YAML.
func NewRegistry() *Registry {
    r := &Registry{byType: make(map[string]Codec)}
    r.Register(JSON())
    r.Register(Proto())
    r.Register(YAML())
    return r
}

// Default returns a registry holding every built-in codec, CBOR included.
func Default() (*Registry, error) {
    r := NewRegistry()
    c, err := CBOR()
    if err != nil { return nil, err }
    r.Register(c)
    return r, nil
}

// Register adds c, replacing any codec with the same content type.
func (r *Registry) Register(c Codec) { r.byType[c.ContentType()] = c }

// Get returns the codec for contentType, or nil.
func (r *Registry) Get(contentType string) Codec { return r.byType[contentType] }
