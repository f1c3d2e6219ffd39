// Package quic links tiles over QUIC. Each link is one connection carrying
// one bidirectional stream, opened by the dialer.
package quic

import (
    "context"
    "crypto/ecdsa"
    "crypto/elliptic"
    "crypto/rand"
    "crypto/tls"
    "crypto/x509"
    "errors"
    "fmt"
    "math/big"
    "net"
    "time"

    quicgo "github.com/quic-go/quic-go"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/transport"
)

const alpn = "lat-dynamic/1"

type Transport struct {
    server *tls.Config
    client *tls.Config
    conf   *quicgo.Config
}

// New creates a transport with an ephemeral self-signed certificate. Tiles
// of one run trust each other, so dialers skip verification.
func New() (*Transport, error) {
    cert, err := selfSigned()
    if err != nil { return nil, fmt.Errorf("quic: certificate: %w", err) }
    return &Transport{
        server: &tls.Config{Certificates: []tls.Certificate{cert}, NextProtos: []string{alpn}, MinVersion: tls.VersionTLS13},
        client: &tls.Config{InsecureSkipVerify: true, NextProtos: []string{alpn}, MinVersion: tls.VersionTLS13},
        conf:   &quicgo.Config{KeepAlivePeriod: 10 * time.Second, MaxIdleTimeout: time.Minute},
    }, nil
}

func (t *Transport) Name() string { return "quic" }

func (t *Transport) Listen(ctx context.Context, address string) (transport.Listener, error) {
    l, err := quicgo.ListenAddr(address, t.server, t.conf)
    if err != nil { return nil, err }
    go func() { <-ctx.Done(); _ = l.Close() }()
    return &listener{l: l}, nil
}

// Dial opens the link's stream immediately. The listening side only sees
// the stream once the first frame is sent.
func (t *Transport) Dial(ctx context.Context, address string) (transport.Link, error) {
    c, err := quicgo.DialAddr(ctx, address, t.client, t.conf)
    if err != nil { return nil, err }
    st, err := c.OpenStreamSync(ctx)
    if err != nil {
        _ = c.CloseWithError(1, "open stream")
        return nil, err
    }
    link := transport.NewConnLink(stream{Stream: st, c: c}, c.RemoteAddr())
    go func() { <-ctx.Done(); _ = link.Close() }()
    return link, nil
}

type listener struct{ l *quicgo.Listener }

func (l *listener) Addr() net.Addr { return l.l.Addr() }

func (l *listener) Accept(ctx context.Context) (transport.Link, error) {
    c, err := l.l.Accept(ctx)
    if err != nil {
        if ctx.Err() != nil { return nil, ctx.Err() }
        if errors.Is(err, quicgo.ErrServerClosed) { return nil, transport.ErrClosed }
        return nil, err
    }
    st, err := c.AcceptStream(ctx)
    if err != nil {
        _ = c.CloseWithError(1, "accept stream")
        return nil, err
    }
    return transport.NewConnLink(stream{Stream: st, c: c}, c.RemoteAddr()), nil
}

func (l *listener) Close() error { return l.l.Close() }

// stream closes its whole connection, not just the send direction.
type stream struct {
    quicgo.Stream
    c quicgo.Connection
}

func (s stream) Close() error { return s.c.CloseWithError(0, "") }

func selfSigned() (tls.Certificate, error) {
    key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
    if err != nil { return tls.Certificate{}, err }
    now := time.Now()
    tmpl := x509.Certificate{
        SerialNumber:          big.NewInt(now.UnixNano()),
        NotBefore:             now.Add(-time.Minute),
        NotAfter:              now.Add(24 * time.Hour),
        KeyUsage:              x509.KeyUsageDigitalSignature,
        ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
        BasicConstraintsValid: true,
        DNSNames:              []string{"localhost"},
        IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
    }
    der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
    if err != nil { return tls.Certificate{}, err }
    return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}, nil
}
