package task

import (
    "testing"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/sparse"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/tensor"
)

func TestInitialConvEvenSplit(t *testing.T) {
    shape := tensor.NewConvShape(8, 16, 10, 3)
    for tile := 0; tile < 4; tile++ {
        got := InitialConv(shape, tile, 4)
        want := ChannelRange{FirstIn: 0, LastIn: 8, FirstOut: 4 * tile, LastOut: 4*tile + 4}
        if got != want { t.Fatalf("tile %d: got %v, want %v", tile, got, want) }
    }
}

func TestInitialConvSingleTile(t *testing.T) {
    got := InitialConv(tensor.NewConvShape(4, 4, 8, 3), 0, 1)
    if got != (ChannelRange{0, 4, 0, 4}) { t.Fatalf("got %v", got) }
}

func TestInitialConvRemainderUnassigned(t *testing.T) {
    shape := tensor.NewConvShape(2, 10, 4, 1)
    covered := 0
    prev := 0
    for tile := 0; tile < 3; tile++ {
        r := InitialConv(shape, tile, 3)
        if r.FirstOut != prev { t.Fatalf("gap before tile %d: %v", tile, r) }
        prev = r.LastOut
        covered += r.OutChannels()
    }
    if covered != 9 { t.Fatalf("covered %d, want 9 (remainder dropped)", covered) }
}

func TestInitialPool(t *testing.T) {
    p := tensor.PoolShape{Channels: 12}
    if r := InitialPool(p, 2, 3); r != (PoolRange{8, 12}) { t.Fatalf("got %v", r) }
    if r := InitialPool(p, 0, 0); !r.IsEmpty() { t.Fatalf("zero tiles gave %v", r) }
}

func TestSplitBisectsRemainder(t *testing.T) {
    cases := []struct {
        task   ChannelRange
        cursor int
        kept   int
        given  ChannelRange
    }{
        {ChannelRange{0, 8, 4, 8}, 4, 6, ChannelRange{0, 8, 6, 8}},
        {ChannelRange{0, 8, 4, 8}, 5, 6, ChannelRange{0, 8, 6, 8}},
        {ChannelRange{0, 8, 4, 8}, 6, 7, ChannelRange{0, 8, 7, 8}},
        {ChannelRange{1, 3, 0, 100}, 0, 50, ChannelRange{1, 3, 50, 100}},
    }
    for _, c := range cases {
        tk := c.task
        got := Split(&tk, c.cursor)
        if got != c.given || tk.LastOut != c.kept {
            t.Fatalf("Split(%v, %d) = %v kept %v, want %v kept ..%d", c.task, c.cursor, got, tk, c.given, c.kept)
        }
    }
}

func TestSplitLastUnitIsKept(t *testing.T) {
    tk := ChannelRange{0, 4, 3, 8}
    got := Split(&tk, 7)
    if !got.IsEmpty() { t.Fatalf("split of one unit gave %v", got) }
    if tk != (ChannelRange{0, 4, 3, 8}) { t.Fatalf("task modified: %v", tk) }

    done := ChannelRange{0, 4, 3, 8}
    if got := Split(&done, 8); !got.IsEmpty() || done.LastOut != 8 {
        t.Fatalf("exhausted task split: %v, %v", got, done)
    }
}

func TestSplitProperties(t *testing.T) {
    for first := 0; first < 6; first++ {
        for last := first; last < 20; last++ {
            for cursor := first; cursor <= last; cursor++ {
                tk := ChannelRange{0, 3, first, last}
                got := Split(&tk, cursor)
                if last-cursor < 2 {
                    if !got.IsEmpty() || tk.LastOut != last {
                        t.Fatalf("[%d,%d)@%d: got %v, task %v", first, last, cursor, got, tk)
                    }
                    continue
                }
                if got.FirstOut >= got.LastOut { t.Fatalf("[%d,%d)@%d: empty share %v", first, last, cursor, got) }
                if tk.LastOut <= cursor { t.Fatalf("[%d,%d)@%d: owner lost its cursor: %v", first, last, cursor, tk) }
                if tk.LastOut != got.FirstOut || got.LastOut != last {
                    t.Fatalf("[%d,%d)@%d: pieces do not tile: %v + %v", first, last, cursor, tk, got)
                }
                if got.FirstIn != 0 || got.LastIn != 3 { t.Fatalf("input axis changed: %v", got) }
            }
        }
    }
}

func TestRangePredicates(t *testing.T) {
    if !(ChannelRange{}).IsEmpty() { t.Fatalf("zero range not empty") }
    if (ChannelRange{0, 1, 0, 1}).IsEmpty() { t.Fatalf("unit range empty") }
    if !(ChannelRange{0, 4, 2, 2}).IsEmpty() { t.Fatalf("out-empty range not empty") }
    if (ChannelRange{0, 4, 5, 2}).Valid() { t.Fatalf("inverted range valid") }
    if got := (ChannelRange{1, 2, 3, 4}).String(); got != "in[1,2) out[3,4)" { t.Fatalf("String = %q", got) }
}

func TestConvShapeNarrowsChannels(t *testing.T) {
    s := tensor.NewConvShape(8, 16, 10, 3)
    got := ConvShape(s, ChannelRange{2, 6, 4, 5})
    if got.InChannels != 4 || got.OutChannels != 1 { t.Fatalf("got %+v", got) }
    if got.ImageWidth != 10 || got.FilterHeight != 3 || got.Stride != 1 { t.Fatalf("other fields changed: %+v", got) }
}

func TestSlicesFollowTask(t *testing.T) {
    in := tensor.NewActivation(1, 8, 4, 4)
    out := tensor.NewActivation(1, 16, 2, 2)
    w := tensor.NewFilter(8, 16, 3, 3)
    r := ChannelRange{2, 6, 4, 12}

    if s := InputSlice(in, r); s.Address != tensor.Address(2*in.ChannelStride) || s.Channels != 4 {
        t.Fatalf("input slice %+v", s)
    }
    if s := OutputSlice(out, r); s.Address != tensor.Address(4*out.ChannelStride) || s.Channels != 8 {
        t.Fatalf("output slice %+v", s)
    }
    if s := WeightsSlice(w, r); s.Address != tensor.Address(2*w.InChannelStride+4*w.OutChannelStride) {
        t.Fatalf("weights slice %+v", s)
    }

    sp := sparse.Activations{Dense: in, Channels: sparse.MustChannelList(1, 2, 3, 7)}
    if s := SparseInputSlice(sp, r); s.Channels.Len() != 2 || s.Channels.At(0) != 2 {
        t.Fatalf("sparse input slice %v", s.Channels.IDs())
    }
    if s := SparsePoolSlice(sp, PoolRange{3, 8}); s.Channels.Len() != 2 || s.Channels.At(1) != 7 {
        t.Fatalf("sparse pool slice %v", s.Channels.IDs())
    }
    if s := PoolShape(tensor.PoolShape{Channels: 9, InputWidth: 4}, PoolRange{3, 5}); s.Channels != 2 || s.InputWidth != 4 {
        t.Fatalf("pool shape %+v", s)
    }
}
