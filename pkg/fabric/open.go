package fabric

import (
    "context"
    "fmt"
    "net"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/topology"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/transport"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/transport/mem"
    tquic "github.com/ucam-comparch-loki/lat-dynamic/pkg/transport/quic"
    ttcp "github.com/ucam-comparch-loki/lat-dynamic/pkg/transport/tcp"
)

// Kinds lists every fabric Open accepts.
var Kinds = []string{"chan", "mem", "tcp", "quic"}

// NewByKind constructs a stream Transport by string kind.
func NewByKind(kind string) (transport.Transport, error) {
    switch kind {
    case "tcp":
        return ttcp.New(), nil
    case "quic":
        return tquic.New()
    case "mem":
        return mem.New(), nil
    default:
        return nil, ErrUnknownKind(kind)
    }
}

// ErrUnknownKind names a fabric kind Open does not know.
type ErrUnknownKind string

func (e ErrUnknownKind) Error() string { return "unknown fabric kind: " + string(e) }

// Open builds the fabric named by kind for grid. Network fabrics listen on
// host with an ephemeral port per tile.
func Open(ctx context.Context, kind string, grid topology.Grid, host string) (Fabric, error) {
    if kind == "" || kind == "chan" {
        return NewChan(grid), nil
    }
    tr, err := NewByKind(kind)
    if err != nil { return nil, err }
    if host == "" { host = "127.0.0.1" }
    listen := func(t topology.TileID) string { return net.JoinHostPort(host, "0") }
    if tr.Name() == "mem" {
        listen = func(t topology.TileID) string { return fmt.Sprintf("tile-%d", t) }
    }
    return NewStream(ctx, tr, grid, listen)
}
