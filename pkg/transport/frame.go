package transport

import (
    "bufio"
    "encoding/binary"
    "errors"
    "fmt"
    "io"
    "net"
    "sync"
    "sync/atomic"
)

// ConnLink frames a byte stream. Closing the link closes the stream.
type ConnLink struct {
    mu     sync.Mutex
    br     *bufio.Reader
    bw     *bufio.Writer
    c      io.Closer
    remote net.Addr

    framesSent, framesRecv atomic.Uint64
    bytesSent, bytesRecv   atomic.Uint64
}

// NewConnLink wraps rw. remote may be nil when the stream has no address.
func NewConnLink(rw io.ReadWriteCloser, remote net.Addr) *ConnLink {
    return &ConnLink{br: bufio.NewReader(rw), bw: bufio.NewWriter(rw), c: rw, remote: remote}
}

func (l *ConnLink) Send(frame []byte) error {
    if len(frame) > MaxFrame { return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(frame)) }
    l.mu.Lock()
    defer l.mu.Unlock()
    var hdr [4]byte
    binary.LittleEndian.PutUint32(hdr[:], uint32(len(frame)))
    if _, err := l.bw.Write(hdr[:]); err != nil { return err }
    if _, err := l.bw.Write(frame); err != nil { return err }
    if err := l.bw.Flush(); err != nil { return err }
    l.framesSent.Add(1)
    l.bytesSent.Add(uint64(len(frame)))
    return nil
}

func (l *ConnLink) Recv() ([]byte, error) {
    var hdr [4]byte
    if _, err := io.ReadFull(l.br, hdr[:]); err != nil { return nil, err }
    n := binary.LittleEndian.Uint32(hdr[:])
    if n > MaxFrame { return nil, fmt.Errorf("%w: %d bytes announced", ErrFrameTooLarge, n) }
    buf := make([]byte, n)
    if _, err := io.ReadFull(l.br, buf); err != nil { return nil, err }
    l.framesRecv.Add(1)
    l.bytesRecv.Add(uint64(n))
    return buf, nil
}

func (l *ConnLink) RemoteAddr() net.Addr { return l.remote }

func (l *ConnLink) Counters() Counters {
    return Counters{
        FramesSent: l.framesSent.Load(),
        FramesRecv: l.framesRecv.Load(),
        BytesSent:  l.bytesSent.Load(),
        BytesRecv:  l.bytesRecv.Load(),
    }
}

func (l *ConnLink) Close() error { return l.c.Close() }

func isEOF(err error) bool { return errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) }
