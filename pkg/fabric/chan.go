package fabric

import (
    "context"
    "fmt"
    "sync"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/protocol"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/topology"
)

// ChanFabric connects tiles with buffered channels.
type ChanFabric struct {
    grid  topology.Grid
    boxes []*mailbox
    errs  chan error
    done  chan struct{}
    once  sync.Once
}

func NewChan(grid topology.Grid) *ChanFabric {
    f := &ChanFabric{grid: grid, boxes: make([]*mailbox, grid.Size()), errs: make(chan error), done: make(chan struct{})}
    for i := range f.boxes { f.boxes[i] = newMailbox() }
    return f
}

func (f *ChanFabric) Grid() topology.Grid { return f.grid }
func (f *ChanFabric) Errs() <-chan error  { return f.errs }

func (f *ChanFabric) Endpoint(t topology.TileID) Endpoint {
    if !f.grid.Contains(t) { return nil }
    return &chanEndpoint{f: f, tile: t}
}

func (f *ChanFabric) Close() error {
    f.once.Do(func() { close(f.done) })
    return nil
}

type chanEndpoint struct {
    f    *ChanFabric
    tile topology.TileID
}

func (e *chanEndpoint) Tile() topology.TileID { return e.tile }

func (e *chanEndpoint) Send(ctx context.Context, dst topology.TileID, rec protocol.Record) error {
    if !e.f.grid.Contains(dst) {
        return fmt.Errorf("%w: %d", ErrUnknownTile, dst)
    }
    select {
    case <-e.f.done:
        return ErrClosed
    default:
    }
    rec.Dest = dst
    return e.f.boxes[dst].deliver(ctx, rec)
}

func (e *chanEndpoint) Inbox(ch protocol.Channel) <-chan protocol.Record { return e.f.boxes[e.tile].inbox(ch) }
func (e *chanEndpoint) Pending(ch protocol.Channel) bool           { return e.f.boxes[e.tile].pending(ch) }
