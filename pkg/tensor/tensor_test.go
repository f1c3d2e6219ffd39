package tensor

import "testing"

func TestSliceDenseAdvancesByChannelStride(t *testing.T) {
    a := NewActivation(1, 8, 5, 5)
    a.Address = 1000
    s := SliceDense(a, 3, 7)
    if want := Address(1000 + 3*5*5*ElemSize); s.Address != want {
        t.Fatalf("address = %d, want %d", s.Address, want)
    }
    if s.Channels != 4 { t.Fatalf("channels = %d, want 4", s.Channels) }
    if s.ChannelStride != a.ChannelStride || s.RowStride != a.RowStride {
        t.Fatalf("strides changed: %+v vs %+v", s, a)
    }
    if a.Address != 1000 { t.Fatalf("parent modified") }
}

func TestSliceDenseEmpty(t *testing.T) {
    a := NewActivation(1, 4, 2, 2)
    s := SliceDense(a, 4, 4)
    if s.Channels != 0 { t.Fatalf("channels = %d", s.Channels) }
    if s.Address != Address(4*a.ChannelStride) { t.Fatalf("address = %d", s.Address) }
}

func TestSliceFilter(t *testing.T) {
    f := NewFilter(6, 10, 3, 3)
    f.Address = 64
    s := SliceFilter(f, 2, 5, 4, 9)
    want := Address(64 + 2*f.InChannelStride + 4*f.OutChannelStride)
    if s.Address != want { t.Fatalf("address = %d, want %d", s.Address, want) }
    if s.InChannels != 3 || s.OutChannels != 5 {
        t.Fatalf("channels = %dx%d", s.InChannels, s.OutChannels)
    }
    if f.InChannelStride != 10*3*3*ElemSize { t.Fatalf("in stride = %d", f.InChannelStride) }
}

func TestConvShape(t *testing.T) {
    s := NewConvShape(4, 8, 10, 3)
    if s.OutputWidth() != 8 || s.OutputHeight() != 8 {
        t.Fatalf("output = %dx%d", s.OutputWidth(), s.OutputHeight())
    }
    if got, want := s.MACs(), int64(4*8*8*8*3*3); got != want {
        t.Fatalf("macs = %d, want %d", got, want)
    }
    s.FilterWidth = 12
    if s.OutputWidth() != 0 { t.Fatalf("oversized filter output = %d", s.OutputWidth()) }
}

func TestPoolComparisons(t *testing.T) {
    p := PoolShape{BatchSize: 1, Channels: 3, InputWidth: 4, InputHeight: 4, WindowWidth: 4, WindowHeight: 4, Stride: 1}
    if got := p.Comparisons(); got != 3*16 { t.Fatalf("comparisons = %d", got) }
}

func TestAllocatorAlignsAndRecords(t *testing.T) {
    al := NewAllocator(10, 64)
    a, err := al.Alloc("a", 3, GroupInput)
    if err != nil { t.Fatalf("alloc: %v", err) }
    b, err := al.Alloc("b", 100, GroupWeights)
    if err != nil { t.Fatalf("alloc: %v", err) }
    if a != 64 || b != 128 { t.Fatalf("addresses = %d, %d", a, b) }
    if al.Used() != 64+128 { t.Fatalf("used = %d", al.Used()) }
    regs := al.Regions()
    if len(regs) != 2 || regs[1].Name != "b" || regs[1].Group != GroupWeights {
        t.Fatalf("regions = %+v", regs)
    }
    if _, err := al.Alloc("bad", -1, GroupCPU); err == nil {
        t.Fatalf("expected error for negative size")
    }
}

func TestAllocatorPlacesTensors(t *testing.T) {
    al := NewAllocator(0, 0)
    in, err := al.Activation("in", GroupInput, 1, 4, 8, 8)
    if err != nil { t.Fatalf("activation: %v", err) }
    w, err := al.Filter("w", GroupWeights, 4, 2, 3, 3)
    if err != nil { t.Fatalf("filter: %v", err) }
    if in.Group != GroupInput || w.Group != GroupWeights { t.Fatalf("groups not set") }
    if w.Address < in.Address+Address(in.Bytes()) { t.Fatalf("overlapping regions") }
}
