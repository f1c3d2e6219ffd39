// Package tcp links tiles over TCP, one connection per direction.
package tcp

import (
    "context"
    "errors"
    "net"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/transport"
)

type Transport struct{ dialer net.Dialer }

func New() *Transport { return &Transport{} }

func (t *Transport) Name() string { return "tcp" }

func (t *Transport) Listen(ctx context.Context, address string) (transport.Listener, error) {
    var lc net.ListenConfig
    l, err := lc.Listen(ctx, "tcp", address)
    if err != nil { return nil, err }
    go func() { <-ctx.Done(); _ = l.Close() }()
    return &listener{l: l}, nil
}

func (t *Transport) Dial(ctx context.Context, address string) (transport.Link, error) {
    c, err := t.dialer.DialContext(ctx, "tcp", address)
    if err != nil { return nil, err }
    // records are small and latency bound
    if tc, ok := c.(*net.TCPConn); ok { _ = tc.SetNoDelay(true) }
    link := transport.NewConnLink(c, c.RemoteAddr())
    go func() { <-ctx.Done(); _ = link.Close() }()
    return link, nil
}

type listener struct{ l net.Listener }

func (l *listener) Addr() net.Addr { return l.l.Addr() }

// Accept unblocks when ctx is done by closing the whole listener.
func (l *listener) Accept(ctx context.Context) (transport.Link, error) {
    stop := context.AfterFunc(ctx, func() { _ = l.l.Close() })
    defer stop()
    c, err := l.l.Accept()
    if err != nil {
        if ctx.Err() != nil { return nil, ctx.Err() }
        if errors.Is(err, net.ErrClosed) { return nil, transport.ErrClosed }
        return nil, err
    }
    if tc, ok := c.(*net.TCPConn); ok { _ = tc.SetNoDelay(true) }
    return transport.NewConnLink(c, c.RemoteAddr()), nil
}

func (l *listener) Close() error { return l.l.Close() }
