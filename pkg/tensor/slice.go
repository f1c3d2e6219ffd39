package tensor

// SliceDense returns a view of channels [first, last) of a.
// Callers guarantee 0 <= first <= last <= a.Channels; nothing is checked.
func SliceDense(a Activation, first, last int) Activation {
    a.Address += Address(first * a.ChannelStride)
    a.Channels = last - first
    return a
}

// SliceFilter returns the weights connecting input channels [firstIn, lastIn)
// to output channels [firstOut, lastOut). Same caller contract as SliceDense.
func SliceFilter(f Filter, firstIn, lastIn, firstOut, lastOut int) Filter {
    f.Address += Address(firstIn*f.InChannelStride + firstOut*f.OutChannelStride)
    f.InChannels = lastIn - firstIn
    f.OutChannels = lastOut - firstOut
    return f
}
