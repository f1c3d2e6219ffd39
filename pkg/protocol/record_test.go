package protocol

import (
    "bytes"
    "errors"
    "testing"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/task"
)

func TestRecordRoundtrip(t *testing.T) {
    r := NewResponse(7, 12, task.ChannelRange{FirstIn: 0, LastIn: 64, FirstOut: 40, LastOut: 48})
    b, err := r.MarshalBinary()
    if err != nil { t.Fatalf("marshal: %v", err) }
    if len(b) != RecordSize { t.Fatalf("record size = %d", len(b)) }

    var r2 Record
    if err := r2.UnmarshalBinary(b); err != nil { t.Fatalf("unmarshal: %v", err) }
    if r2 != r { t.Fatalf("records differ: %#v vs %#v", r2, r) }
}

func TestRequestCarriesRequester(t *testing.T) {
    r := NewRequest(3, 1)
    if r.Kind != KindRequest || r.Channel != ChannelRequest || r.Source != 3 || !r.Task.IsEmpty() {
        t.Fatalf("request = %#v", r)
    }
    if ChannelFor(KindResponse) != ChannelResponse || ChannelFor(KindRequest) != ChannelRequest {
        t.Fatalf("channel mapping wrong")
    }
}

func TestRecordWriteRead(t *testing.T) {
    var buf bytes.Buffer
    recs := []Record{NewRequest(0, 1), NewResponse(1, 0, task.ChannelRange{FirstIn: 0, LastIn: 4, FirstOut: 6, LastOut: 8})}
    for i := range recs {
        if _, err := recs[i].WriteTo(&buf); err != nil { t.Fatalf("write: %v", err) }
    }
    for i := range recs {
        var r Record
        if _, err := r.ReadFrom(&buf); err != nil { t.Fatalf("read: %v", err) }
        if r != recs[i] { t.Fatalf("record %d = %#v, want %#v", i, r, recs[i]) }
    }
}

func TestFramesRoundtrip(t *testing.T) {
    recs := []Record{NewRequest(5, 6), NewResponse(6, 5, task.ChannelRange{})}
    b, err := EncodeFrames(recs...)
    if err != nil { t.Fatalf("encode: %v", err) }
    got, err := DecodeFrames(b)
    if err != nil { t.Fatalf("decode: %v", err) }
    if len(got) != 2 || got[0] != recs[0] || got[1] != recs[1] { t.Fatalf("frames = %v", got) }
    if _, err := DecodeFrames(b[:40]); !errors.Is(err, ErrBadRecord) { t.Fatalf("partial frame err = %v", err) }
}

func TestRecordRejectsGarbage(t *testing.T) {
    var r Record
    if err := r.UnmarshalBinary(make([]byte, 8)); !errors.Is(err, ErrBadRecord) { t.Fatalf("short: %v", err) }
    if err := r.UnmarshalBinary(make([]byte, RecordSize)); !errors.Is(err, ErrBadRecord) { t.Fatalf("magic: %v", err) }

    good := NewRequest(1, 2)
    b, _ := good.MarshalBinary()
    b[3] = 9
    if err := r.UnmarshalBinary(b); !errors.Is(err, ErrBadRecord) { t.Fatalf("kind: %v", err) }

    neg := NewRequest(-1, 2)
    if _, err := neg.MarshalBinary(); !errors.Is(err, ErrBadRecord) { t.Fatalf("negative tile: %v", err) }
}

func TestNegativeChannelsSurvive(t *testing.T) {
    // an inverted range must reach the receiver intact so it can be rejected there
    r := NewResponse(0, 1, task.ChannelRange{FirstIn: 0, LastIn: 4, FirstOut: 9, LastOut: -3})
    b, err := r.MarshalBinary()
    if err != nil { t.Fatalf("marshal: %v", err) }
    var r2 Record
    if err := r2.UnmarshalBinary(b); err != nil { t.Fatalf("unmarshal: %v", err) }
    if r2.Task.LastOut != -3 || r2.Task.Valid() { t.Fatalf("task = %v", r2.Task) }
}
