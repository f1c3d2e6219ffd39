package protocol

import (
    "encoding/binary"
    "errors"
    "fmt"
    "io"
    "math"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/task"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/topology"
)

// Fixed record layout (32 bytes) shared by every fabric.
// All integer fields are little-endian.
//
//  0  ..1   Magic    'L''D' (0x4c44)
//  2        Version  u8
//  3        Kind     u8
//  4        Channel  u8
//  5  ..7   Reserved
//  8  ..11  Source   u32
//  12 ..15  Dest     u32
//  16 ..31  Task     4 x i32 (FirstIn, LastIn, FirstOut, LastOut)
const (
    RecordSize     = 32
    magicWord      = uint16(0x4c44) // 'L''D'
    CurrentVersion = 1
)

// ErrBadRecord is returned for frames that are not well-formed records.
var ErrBadRecord = errors.New("protocol: bad record")

// Record is one load-balancing message: a request carries only the
// requester's id, a response carries a task.
type Record struct {
    Version uint8
    Kind    Kind
    Channel Channel
    Source  topology.TileID
    Dest    topology.TileID
    Task    task.ChannelRange
}

// NewRequest builds the request src sends to dst.
func NewRequest(src, dst topology.TileID) Record {
    return Record{Version: CurrentVersion, Kind: KindRequest, Channel: ChannelRequest, Source: src, Dest: dst}
}

// NewResponse builds src's answer to dst.
func NewResponse(src, dst topology.TileID, t task.ChannelRange) Record {
    return Record{Version: CurrentVersion, Kind: KindResponse, Channel: ChannelResponse, Source: src, Dest: dst, Task: t}
}

// MarshalBinary encodes the record to a 32-byte buffer.
func (r *Record) MarshalBinary() ([]byte, error) {
    buf := make([]byte, RecordSize)
    if err := r.put(buf); err != nil { return nil, err }
    return buf, nil
}

func (r *Record) put(buf []byte) error {
    if r.Source < 0 || r.Dest < 0 || int64(r.Source) > math.MaxUint32 || int64(r.Dest) > math.MaxUint32 {
        return fmt.Errorf("%w: tile id out of range (%d -> %d)", ErrBadRecord, r.Source, r.Dest)
    }
    fields := [4]int{r.Task.FirstIn, r.Task.LastIn, r.Task.FirstOut, r.Task.LastOut}
    for _, v := range fields {
        if v < math.MinInt32 || v > math.MaxInt32 {
            return fmt.Errorf("%w: channel index %d overflows", ErrBadRecord, v)
        }
    }
    binary.LittleEndian.PutUint16(buf[0:2], magicWord)
    buf[2] = r.Version
    buf[3] = uint8(r.Kind)
    buf[4] = uint8(r.Channel)
    buf[5], buf[6], buf[7] = 0, 0, 0
    binary.LittleEndian.PutUint32(buf[8:12], uint32(r.Source))
    binary.LittleEndian.PutUint32(buf[12:16], uint32(r.Dest))
    for i, v := range fields {
        binary.LittleEndian.PutUint32(buf[16+4*i:20+4*i], uint32(int32(v)))
    }
    return nil
}

// UnmarshalBinary decodes a record from a 32-byte buffer.
func (r *Record) UnmarshalBinary(buf []byte) error {
    if len(buf) < RecordSize {
        return fmt.Errorf("%w: short record (%d bytes)", ErrBadRecord, len(buf))
    }
    if binary.LittleEndian.Uint16(buf[0:2]) != magicWord {
        return fmt.Errorf("%w: bad magic", ErrBadRecord)
    }
    r.Version = buf[2]
    r.Kind = Kind(buf[3])
    r.Channel = Channel(buf[4])
    r.Source = topology.TileID(binary.LittleEndian.Uint32(buf[8:12]))
    r.Dest = topology.TileID(binary.LittleEndian.Uint32(buf[12:16]))
    var f [4]int
    for i := range f {
        f[i] = int(int32(binary.LittleEndian.Uint32(buf[16+4*i : 20+4*i])))
    }
    r.Task = task.ChannelRange{FirstIn: f[0], LastIn: f[1], FirstOut: f[2], LastOut: f[3]}
    if r.Kind != KindRequest && r.Kind != KindResponse {
        return fmt.Errorf("%w: unknown kind %d", ErrBadRecord, buf[3])
    }
    return nil
}

// WriteTo writes the record to w.
func (r *Record) WriteTo(w io.Writer) (int64, error) {
    b, err := r.MarshalBinary()
    if err != nil { return 0, err }
    n, err := w.Write(b)
    return int64(n), err
}

// ReadFrom reads exactly one record from r.
func (r *Record) ReadFrom(rd io.Reader) (int64, error) {
    var buf [RecordSize]byte
    n, err := io.ReadFull(rd, buf[:])
    if err != nil { return int64(n), err }
    return int64(n), r.UnmarshalBinary(buf[:])
}

// EncodeFrames packs records back to back into one buffer.
func EncodeFrames(recs ...Record) ([]byte, error) {
    out := make([]byte, RecordSize*len(recs))
    for i := range recs {
        if err := recs[i].put(out[i*RecordSize : (i+1)*RecordSize]); err != nil { return nil, err }
    }
    return out, nil
}

// DecodeFrames splits buf into records. len(buf) must be a multiple of
// RecordSize.
func DecodeFrames(buf []byte) ([]Record, error) {
    if len(buf)%RecordSize != 0 {
        return nil, fmt.Errorf("%w: %d bytes is not a whole number of records", ErrBadRecord, len(buf))
    }
    out := make([]Record, len(buf)/RecordSize)
    for i := range out {
        if err := out[i].UnmarshalBinary(buf[i*RecordSize : (i+1)*RecordSize]); err != nil { return nil, err }
    }
    return out, nil
}

func (r Record) String() string {
    if r.Kind == KindRequest {
        return fmt.Sprintf("%s %d->%d", r.Kind, r.Source, r.Dest)
    }
    return fmt.Sprintf("%s %d->%d %v", r.Kind, r.Source, r.Dest, r.Task)
}
