package sparse

import "github.com/ucam-comparch-loki/lat-dynamic/pkg/tensor"

// Activations is a compressed activation tensor: Dense holds only the channels
// listed in Channels, in list order.
type Activations struct {
    Dense    tensor.Activation
    Channels ChannelList
}

// Slice returns the view of a holding the original channels in [first, last).
func Slice(a Activations, first, last int) Activations {
    start, count := Resolve(a.Channels, first, last)
    return Activations{
        Dense:    tensor.SliceDense(a.Dense, start, start+count),
        Channels: a.Channels.Sub(start, count),
    }
}

// Stored returns the dense view of compressed positions [i, i+n).
func (a Activations) Stored(i, n int) tensor.Activation {
    return tensor.SliceDense(a.Dense, i, i+n)
}
