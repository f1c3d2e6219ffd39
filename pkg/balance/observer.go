package balance

import (
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/task"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/topology"
)

// EventKind classifies scheduler events.
type EventKind int

const (
    EventGave     EventKind = iota // answered a request with work
    EventRefused                   // answered a request with nothing
    EventAcquired                  // a neighbour gave this tile work
    EventEmpty                     // a neighbour had nothing to give
    EventSkipped                   // the neighbour in this direction is the tile itself
)

func (k EventKind) String() string {
    switch k {
    case EventGave:
        return "gave"
    case EventRefused:
        return "refused"
    case EventAcquired:
        return "acquired"
    case EventEmpty:
        return "empty"
    case EventSkipped:
        return "skipped"
    default:
        return "unknown"
    }
}

// Event is one step of the protocol as seen by Tile.
type Event struct {
    Kind EventKind
    Tile topology.TileID
    Peer topology.TileID
    Task task.ChannelRange
}

// Observer receives every event of one scheduler, on the tile's goroutine.
type Observer interface {
    Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}
