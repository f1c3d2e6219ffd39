package fabric

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/protocol"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/task"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/topology"
)

func recv(t *testing.T, ep Endpoint, ch protocol.Channel) protocol.Record {
    t.Helper()
    select {
    case r := <-ep.Inbox(ch):
        return r
    case <-time.After(5 * time.Second):
        t.Fatalf("tile %d: nothing on %v", ep.Tile(), ch)
        return protocol.Record{}
    }
}

func exerciseFabric(t *testing.T, f Fabric) {
    t.Helper()
    ctx := context.Background()
    a, b := f.Endpoint(0), f.Endpoint(1)
    if a.Pending(protocol.ChannelRequest) { t.Fatalf("fresh inbox not empty") }

    if err := a.Send(ctx, 1, protocol.NewRequest(0, 1)); err != nil { t.Fatalf("send request: %v", err) }
    req := recv(t, b, protocol.ChannelRequest)
    if req.Kind != protocol.KindRequest || req.Source != 0 || req.Dest != 1 { t.Fatalf("request = %v", req) }

    give := task.ChannelRange{FirstIn: 0, LastIn: 4, FirstOut: 6, LastOut: 8}
    if err := b.Send(ctx, req.Source, protocol.NewResponse(1, req.Source, give)); err != nil { t.Fatalf("send response: %v", err) }
    resp := recv(t, a, protocol.ChannelResponse)
    if resp.Task != give || resp.Source != 1 { t.Fatalf("response = %v", resp) }

    // a full set of requests from every direction fits without a reader
    for i := 0; i < RequestDepth; i++ {
        if err := b.Send(ctx, 0, protocol.NewRequest(1, 0)); err != nil { t.Fatalf("request %d: %v", i, err) }
    }
    for i := 0; i < RequestDepth; i++ { recv(t, a, protocol.ChannelRequest) }

    if err := a.Send(ctx, 99, protocol.NewRequest(0, 99)); !errors.Is(err, ErrUnknownTile) { t.Fatalf("unknown tile err = %v", err) }
}

func TestChanFabric(t *testing.T) {
    f := NewChan(topology.Grid{Rows: 1, Cols: 2})
    defer f.Close()
    exerciseFabric(t, f)
    if f.Endpoint(5) != nil { t.Fatalf("endpoint outside grid") }
}

func TestChanFabricPending(t *testing.T) {
    f := NewChan(topology.Grid{Rows: 1, Cols: 2})
    ep := f.Endpoint(1)
    if err := f.Endpoint(0).Send(context.Background(), 1, protocol.NewRequest(0, 1)); err != nil { t.Fatalf("send: %v", err) }
    if !ep.Pending(protocol.ChannelRequest) || ep.Pending(protocol.ChannelResponse) { t.Fatalf("pending flags wrong") }
    <-ep.Inbox(protocol.ChannelRequest)
    if ep.Pending(protocol.ChannelRequest) { t.Fatalf("still pending after receive") }

    bad := protocol.NewRequest(0, 1)
    bad.Channel = 9
    if err := f.Endpoint(0).Send(context.Background(), 1, bad); !errors.Is(err, ErrUnknownChannel) { t.Fatalf("err = %v", err) }
    _ = f.Close()
    if err := f.Endpoint(0).Send(context.Background(), 1, protocol.NewRequest(0, 1)); !errors.Is(err, ErrClosed) { t.Fatalf("closed err = %v", err) }
}

func TestChanFabricSendHonoursContext(t *testing.T) {
    f := NewChan(topology.Grid{Rows: 1, Cols: 2})
    ctx, cancel := context.WithCancel(context.Background())
    ep := f.Endpoint(0)
    if err := ep.Send(ctx, 1, protocol.NewResponse(0, 1, task.ChannelRange{})); err != nil { t.Fatalf("first: %v", err) }
    cancel()
    if err := ep.Send(ctx, 1, protocol.NewResponse(0, 1, task.ChannelRange{})); !errors.Is(err, context.Canceled) {
        t.Fatalf("blocked send err = %v", err)
    }
}

func TestStreamFabrics(t *testing.T) {
    for _, kind := range []string{"mem", "tcp"} {
        t.Run(kind, func(t *testing.T) {
            f, err := Open(context.Background(), kind, topology.Grid{Rows: 1, Cols: 2}, "")
            if err != nil { t.Fatalf("open: %v", err) }
            defer f.Close()
            exerciseFabric(t, f)
            select {
            case err := <-f.Errs():
                t.Fatalf("link error: %v", err)
            default:
            }
        })
    }
}

func TestOpenUnknownKind(t *testing.T) {
    _, err := Open(context.Background(), "carrier-pigeon", topology.Grid{Rows: 1, Cols: 1}, "")
    var uk ErrUnknownKind
    if !errors.As(err, &uk) { t.Fatalf("err = %v", err) }
}

func TestNewByKindMatchesKinds(t *testing.T) {
    for _, kind := range Kinds {
        if kind == "chan" { continue }
        tr, err := NewByKind(kind)
        if err != nil { t.Fatalf("%s: %v", kind, err) }
        if tr.Name() != kind { t.Fatalf("%s: transport named %q", kind, tr.Name()) }
    }
    var uk ErrUnknownKind
    if _, err := NewByKind("inproc"); !errors.As(err, &uk) { t.Fatalf("inproc: err = %v", err) }
}
