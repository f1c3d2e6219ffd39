package transport

import (
    "context"
    "errors"
    "net"
)

// MaxFrame bounds a single frame on every link.
const MaxFrame = 1 << 24

// ErrFrameTooLarge is returned for frames above MaxFrame in either direction.
var ErrFrameTooLarge = errors.New("transport: frame too large")

// Link is one established connection between two tiles. Send may be called
// from several goroutines; Recv expects a single reader.
type Link interface {
    Send(frame []byte) error
    Recv() ([]byte, error)
    RemoteAddr() net.Addr
    Counters() Counters
    Close() error
}

// Listener hands out links dialled to its address.
type Listener interface {
    // Accept blocks until a link arrives, ctx is done or the listener closes.
    Accept(ctx context.Context) (Link, error)
    Addr() net.Addr
    Close() error
}

// Transport dials and listens for one kind of link.
type Transport interface {
    Name() string
    // Listen accepts links on address until ctx is done or Close is called.
    Listen(ctx context.Context, address string) (Listener, error)
    // Dial opens a link to address. The link is closed when ctx is done.
    Dial(ctx context.Context, address string) (Link, error)
}

// Counters reports the traffic a link has carried.
type Counters struct {
    FramesSent, FramesRecv uint64
    BytesSent, BytesRecv   uint64
}

// ErrClosed is returned by listeners and tables used after Close.
var ErrClosed = errors.New("transport: closed")

// Closed reports whether err only says that a link or listener was shut down.
func Closed(err error) bool {
    return errors.Is(err, ErrClosed) || errors.Is(err, net.ErrClosed) || isEOF(err)
}
