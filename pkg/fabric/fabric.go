// Package fabric carries load-balancing records between tiles. Each tile owns
// an Endpoint with two inboxes: requests (room for one from every neighbour)
// and responses (room for the single reply a tile can be waiting on).
//
// ChanFabric delivers records over Go channels. StreamFabric frames them over
// a transport (mem, tcp or quic), one outbound session per neighbour.
package fabric

import (
    "context"
    "errors"
    "fmt"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/protocol"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/topology"
)

const (
    // RequestDepth is how many requests an inbox queues: one per direction.
    RequestDepth = topology.NumDirections
    // ResponseDepth is how many responses an inbox queues.
    ResponseDepth = 1
)

var (
    ErrUnknownTile    = errors.New("fabric: unknown tile")
    ErrUnknownChannel = errors.New("fabric: unknown channel")
    ErrClosed         = errors.New("fabric: closed")
)

// Endpoint is one tile's attachment to the fabric.
type Endpoint interface {
    // Tile returns the id of the tile owning the endpoint.
    Tile() topology.TileID
    // Send delivers rec to dst's inbox for rec.Channel. It blocks only while
    // that inbox is full.
    Send(ctx context.Context, dst topology.TileID, rec protocol.Record) error
    // Inbox returns the receive side of one of this tile's channels.
    Inbox(ch protocol.Channel) <-chan protocol.Record
    // Pending reports whether a record is waiting on ch.
    Pending(ch protocol.Channel) bool
}

// Fabric connects every tile of a grid.
type Fabric interface {
    Grid() topology.Grid
    Endpoint(t topology.TileID) Endpoint
    // Errs reports asynchronous link failures. A record that cannot be
    // delivered is fatal to the run.
    Errs() <-chan error
    Close() error
}

type mailbox struct {
    requests  chan protocol.Record
    responses chan protocol.Record
}

func newMailbox() *mailbox {
    return &mailbox{
        requests:  make(chan protocol.Record, RequestDepth),
        responses: make(chan protocol.Record, ResponseDepth),
    }
}

func (m *mailbox) inbox(ch protocol.Channel) chan protocol.Record {
    switch ch {
    case protocol.ChannelRequest:
        return m.requests
    case protocol.ChannelResponse:
        return m.responses
    default:
        return nil
    }
}

func (m *mailbox) pending(ch protocol.Channel) bool {
    in := m.inbox(ch)
    return in != nil && len(in) > 0
}

func (m *mailbox) deliver(ctx context.Context, rec protocol.Record) error {
    in := m.inbox(rec.Channel)
    if in == nil {
        return fmt.Errorf("%w: %v", ErrUnknownChannel, rec.Channel)
    }
    select {
    case in <- rec:
        return nil
    case <-ctx.Done():
        return ctx.Err()
    }
}
