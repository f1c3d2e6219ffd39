// Package mem links tiles of one process over net.Pipe, addressed by name.
package mem

import (
    "context"
    "fmt"
    "net"
    "sync"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/transport"
)

// backlog is how many dialled links may wait for Accept.
const backlog = 8

// Transport routes Dial calls to the listener registered under the name.
type Transport struct {
    mu        sync.Mutex
    listeners map[string]*listener
    dials     int
}

func New() *Transport { return &Transport{listeners: make(map[string]*listener)} }

func (t *Transport) Name() string { return "mem" }

func (t *Transport) Listen(ctx context.Context, name string) (transport.Listener, error) {
    t.mu.Lock()
    defer t.mu.Unlock()
    if _, ok := t.listeners[name]; ok { return nil, fmt.Errorf("mem: %q already listening", name) }
    l := &listener{name: name, links: make(chan transport.Link, backlog), done: make(chan struct{})}
    t.listeners[name] = l
    go func() {
        select {
        case <-ctx.Done():
        case <-l.done:
        }
        _ = l.Close()
        t.mu.Lock()
        if t.listeners[name] == l { delete(t.listeners, name) }
        t.mu.Unlock()
    }()
    return l, nil
}

func (t *Transport) Dial(ctx context.Context, name string) (transport.Link, error) {
    t.mu.Lock()
    l := t.listeners[name]
    t.dials++
    seq := t.dials
    t.mu.Unlock()
    if l == nil { return nil, fmt.Errorf("mem: nobody listening on %q", name) }

    near, far := net.Pipe()
    cli := transport.NewConnLink(near, addr(name))
    srv := transport.NewConnLink(far, addr(fmt.Sprintf("%s#%d", name, seq)))
    select {
    case l.links <- srv:
    case <-l.done:
        _ = near.Close()
        _ = far.Close()
        return nil, fmt.Errorf("mem: %q: %w", name, transport.ErrClosed)
    default:
        _ = near.Close()
        _ = far.Close()
        return nil, fmt.Errorf("mem: %q: accept backlog full", name)
    }
    go func() { <-ctx.Done(); _ = cli.Close() }()
    return cli, nil
}

type listener struct {
    name  string
    links chan transport.Link
    done  chan struct{}
    once  sync.Once
}

func (l *listener) Addr() net.Addr { return addr(l.name) }

func (l *listener) Accept(ctx context.Context) (transport.Link, error) {
    select {
    case <-ctx.Done():
        return nil, ctx.Err()
    case <-l.done:
        return nil, transport.ErrClosed
    case link := <-l.links:
        return link, nil
    }
}

func (l *listener) Close() error {
    l.once.Do(func() { close(l.done) })
    return nil
}

type addr string

func (a addr) Network() string { return "mem" }
func (a addr) String() string  { return string(a) }
