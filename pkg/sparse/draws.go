package sparse

import (
    "fmt"
    "math/rand/v2"
)

// DrawRange is the exclusive upper bound of every draw.
const DrawRange = 100

// Draws is an immutable sequence of values in [0, DrawRange). Keeping a
// channel only when its draw exceeds a threshold of X gives a result that is
// roughly X% sparse over any section of the sequence.
type Draws struct {
    v []uint8
}

// GenerateDraws returns n draws from a PCG stream seeded with seed. The same
// seed always yields the same sequence.
func GenerateDraws(seed uint64, n int) Draws {
    r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
    v := make([]uint8, n)
    for i := range v {
        v[i] = uint8(r.IntN(DrawRange))
    }
    return Draws{v: v}
}

// NewDraws copies v, rejecting values outside [0, DrawRange).
func NewDraws(v []uint8) (Draws, error) {
    for i, x := range v {
        if int(x) >= DrawRange {
            return Draws{}, fmt.Errorf("sparse: draw %d out of range at %d", x, i)
        }
    }
    return Draws{v: append([]uint8(nil), v...)}, nil
}

// Len returns the number of draws.
func (d Draws) Len() int { return len(d.v) }

// At returns draw i.
func (d Draws) At(i int) int { return int(d.v[i]) }

// SelectInputs keeps input channel i of n when draw i exceeds sparsity.
// Inputs consume the sequence from the front.
func SelectInputs(d Draws, n, sparsity int) (ChannelList, error) {
    return selectChannels(d, n, sparsity, func(i int) int { return d.At(i) })
}

// SelectOutputs keeps output channel i of n when draw Len()-1-i exceeds
// sparsity. Outputs consume the sequence from the back so that input and
// output selections stay independent.
func SelectOutputs(d Draws, n, sparsity int) (ChannelList, error) {
    return selectChannels(d, n, sparsity, func(i int) int { return d.At(d.Len() - 1 - i) })
}

func selectChannels(d Draws, n, sparsity int, draw func(int) int) (ChannelList, error) {
    if n > d.Len() {
        return ChannelList{}, fmt.Errorf("sparse: %d channels need more than %d draws", n, d.Len())
    }
    ids := make([]int, 0, n)
    for i := 0; i < n; i++ {
        if draw(i) > sparsity {
            ids = append(ids, i)
        }
    }
    return ChannelList{ids: ids}, nil
}
