package fabric

import (
    "context"
    "fmt"
    "sync"

    "go.uber.org/zap"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/protocol"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/topology"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/transport"
)

// StreamFabric carries records over a stream transport. Every tile listens
// before any tile runs; links are dialled on first send and kept for the rest
// of the run.
type StreamFabric struct {
    grid      topology.Grid
    tr        transport.Transport
    addrs     []string
    listeners []transport.Listener
    eps       []*streamEndpoint
    errs      chan error
    log       *zap.Logger

    ctx    context.Context
    cancel context.CancelFunc
    wg     sync.WaitGroup
    once   sync.Once
}

// NewStream starts one listener per tile. listen returns the address tile t
// listens on; the fabric dials whatever address the listener reports.
func NewStream(ctx context.Context, tr transport.Transport, grid topology.Grid, listen func(topology.TileID) string) (*StreamFabric, error) {
    ctx, cancel := context.WithCancel(ctx)
    f := &StreamFabric{
        grid:   grid,
        tr:     tr,
        addrs:  make([]string, grid.Size()),
        eps:    make([]*streamEndpoint, grid.Size()),
        errs:   make(chan error, grid.Size()),
        log:    zap.L().Named("fabric").With(zap.String("kind", tr.Name())),
        ctx:    ctx,
        cancel: cancel,
    }
    for i := 0; i < grid.Size(); i++ {
        t := topology.TileID(i)
        l, err := tr.Listen(ctx, listen(t))
        if err != nil {
            _ = f.Close()
            return nil, fmt.Errorf("fabric: tile %d listen: %w", i, err)
        }
        f.listeners = append(f.listeners, l)
        f.addrs[i] = l.Addr().String()
        ep := &streamEndpoint{f: f, tile: t, box: newMailbox(), links: transport.NewTable()}
        f.eps[i] = ep
        f.log.Debug("listening", zap.Int("tile", i), zap.String("addr", f.addrs[i]))
        f.wg.Add(1)
        go func() { defer f.wg.Done(); ep.acceptLoop(l) }()
    }
    return f, nil
}

func (f *StreamFabric) Grid() topology.Grid { return f.grid }
func (f *StreamFabric) Errs() <-chan error  { return f.errs }

func (f *StreamFabric) Endpoint(t topology.TileID) Endpoint {
    if !f.grid.Contains(t) { return nil }
    return f.eps[t]
}

// Addr returns the address tile t listens on.
func (f *StreamFabric) Addr(t topology.TileID) string { return f.addrs[t] }

// Close tears down every listener and link and waits for the read loops.
func (f *StreamFabric) Close() error {
    f.once.Do(func() {
        f.cancel()
        for _, l := range f.listeners { _ = l.Close() }
        for _, ep := range f.eps {
            if ep == nil { continue }
            c := ep.links.Counters()
            f.log.Debug("links down", zap.Int("tile", int(ep.tile)), zap.Ints("senders", ep.links.Senders()),
                zap.Uint64("frames_sent", c.FramesSent), zap.Uint64("frames_recv", c.FramesRecv),
                zap.Uint64("bytes_sent", c.BytesSent), zap.Uint64("bytes_recv", c.BytesRecv))
            ep.links.Close()
        }
        f.wg.Wait()
    })
    return nil
}

func (f *StreamFabric) fail(err error) {
    if f.ctx.Err() != nil { return }
    select {
    case f.errs <- err:
    default:
        f.log.Error("dropped link error", zap.Error(err))
    }
}

type streamEndpoint struct {
    f     *StreamFabric
    tile  topology.TileID
    box   *mailbox
    links *transport.Table
}

func (e *streamEndpoint) Tile() topology.TileID { return e.tile }

func (e *streamEndpoint) Inbox(ch protocol.Channel) <-chan protocol.Record { return e.box.inbox(ch) }
func (e *streamEndpoint) Pending(ch protocol.Channel) bool           { return e.box.pending(ch) }

func (e *streamEndpoint) Send(ctx context.Context, dst topology.TileID, rec protocol.Record) error {
    if !e.f.grid.Contains(dst) {
        return fmt.Errorf("%w: %d", ErrUnknownTile, dst)
    }
    if e.f.ctx.Err() != nil { return ErrClosed }
    rec.Dest = dst
    if dst == e.tile {
        return e.box.deliver(ctx, rec)
    }
    link, err := e.link(dst)
    if err != nil { return err }
    b, err := protocol.EncodeFrames(rec)
    if err != nil { return err }
    if err := link.Send(b); err != nil {
        return fmt.Errorf("fabric: send %v: %w", rec, err)
    }
    return nil
}

// link returns the link to dst, dialling it on first use. The link
// outlives the send, so it is bound to the fabric's context.
func (e *streamEndpoint) link(dst topology.TileID) (transport.Link, error) {
    return e.links.Get(int(dst), func() (transport.Link, error) {
        l, err := e.f.tr.Dial(e.f.ctx, e.f.addrs[dst])
        if err != nil { return nil, fmt.Errorf("fabric: dial tile %d: %w", dst, err) }
        e.f.log.Debug("link up", zap.Int("from", int(e.tile)), zap.Int("to", int(dst)), zap.String("addr", e.f.addrs[dst]))
        return l, nil
    })
}

func (e *streamEndpoint) acceptLoop(l transport.Listener) {
    for {
        link, err := l.Accept(e.f.ctx)
        if err != nil {
            if e.f.ctx.Err() == nil && !transport.Closed(err) {
                e.f.fail(fmt.Errorf("fabric: tile %d accept: %w", e.tile, err))
            }
            return
        }
        if !e.links.Adopt(link) { return }
        e.f.wg.Add(1)
        go func() { defer e.f.wg.Done(); e.readLoop(link) }()
    }
}

func (e *streamEndpoint) readLoop(link transport.Link) {
    bound := false
    for {
        b, err := link.Recv()
        if err != nil {
            e.readFailed(err)
            return
        }
        recs, err := protocol.DecodeFrames(b)
        if err != nil {
            e.f.fail(fmt.Errorf("fabric: tile %d: %w", e.tile, err))
            return
        }
        for _, rec := range recs {
            if rec.Dest != e.tile {
                e.f.fail(fmt.Errorf("fabric: tile %d got record for tile %d: %w", e.tile, rec.Dest, protocol.ErrBadRecord))
                return
            }
            if !bound {
                e.links.Bind(link, int(rec.Source))
                bound = true
            }
            if err := e.box.deliver(e.f.ctx, rec); err != nil {
                if e.f.ctx.Err() == nil { e.f.fail(fmt.Errorf("fabric: tile %d: %w", e.tile, err)) }
                return
            }
        }
    }
}

// readFailed reports a broken link unless it broke because the fabric, or
// the far end, shut down cleanly.
func (e *streamEndpoint) readFailed(err error) {
    if e.f.ctx.Err() != nil || transport.Closed(err) { return }
    e.f.fail(fmt.Errorf("fabric: tile %d read: %w", e.tile, err))
}
