package balance

import (
    "errors"
    "fmt"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/topology"
)

// ErrProtocol marks a message no cooperating tile would send. It is fatal.
var ErrProtocol = errors.New("balance: protocol violation")

// Mode switches load balancing on or off for a run.
type Mode int

const (
    ModeEnabled Mode = iota
    ModeDisabled
)

func (m Mode) String() string {
    if m == ModeDisabled { return "disabled" }
    return "enabled"
}

// State counts the requests a tile has made and answered.
type State struct {
    RequestsMade     int
    RequestsReceived int
}

// NewState seeds RequestsReceived with the directions in which tile is its
// own neighbour, since no request will ever arrive from those.
func NewState(grid topology.Grid, tile topology.TileID) State {
    return State{RequestsReceived: grid.SelfDirections(tile)}
}

// Finished reports whether every neighbour has been asked for work.
func (s State) Finished() bool { return s.RequestsMade >= topology.NumDirections }

// Done reports whether the tile has asked and been asked by every neighbour.
func (s State) Done() bool { return s.Finished() && s.RequestsReceived >= topology.NumDirections }

func (s State) String() string { return fmt.Sprintf("made=%d received=%d", s.RequestsMade, s.RequestsReceived) }
