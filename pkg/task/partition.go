package task

import "github.com/ucam-comparch-loki/lat-dynamic/pkg/tensor"

// InitialConv returns tile's share of a layer before any rebalancing. Every
// tile gets all input channels and an even slice of the output channels;
// when OutChannels does not divide by numTiles the remainder is left
// unassigned.
func InitialConv(shape tensor.ConvShape, tile, numTiles int) ChannelRange {
    first, last := evenSlice(shape.OutChannels, tile, numTiles)
    return ChannelRange{FirstIn: 0, LastIn: shape.InChannels, FirstOut: first, LastOut: last}
}

// InitialPool returns tile's share of a pooling layer's channels.
func InitialPool(shape tensor.PoolShape, tile, numTiles int) PoolRange {
    first, last := evenSlice(shape.Channels, tile, numTiles)
    return PoolRange{First: first, Last: last}
}

func evenSlice(total, tile, numTiles int) (int, int) {
    if numTiles <= 0 { return 0, 0 }
    per := total / numTiles
    first, last := tile*per, (tile+1)*per
    if last > total { last = total }
    if first > last { first = last }
    return first, last
}
