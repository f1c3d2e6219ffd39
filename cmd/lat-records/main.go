// Command lat-records writes sample load-balancing record frames for
// inspecting and testing fabric decoders, or dumps the records in a file.
package main

import (
    "encoding/hex"
    "fmt"
    "io"
    "log"
    "os"
    "path/filepath"
    "strings"

    "github.com/spf13/pflag"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/protocol"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/task"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/topology"
)

func main() {
    outDir := pflag.String("out", "testdata/records", "output directory for binary frames")
    decode := pflag.String("decode", "", "print the records in this file instead of generating")
    pflag.Parse()

    if *decode != "" {
        if err := dump(os.Stdout, *decode); err != nil { log.Fatal(err) }
        return
    }
    if err := generate(os.Stdout, *outDir); err != nil { log.Fatal(err) }
    fmt.Println("Generated record frames in", *outDir)
}

// generate writes one file per sample: a lone request, a lone response, and
// the exchange of a row of four tiles where tile 0 runs dry and tile 1 hands
// it the back half of its slice.
func generate(w io.Writer, dir string) error {
    if err := os.MkdirAll(dir, 0o755); err != nil { return err }
    grid, err := topology.ForTiles(4)
    if err != nil { return err }
    right := grid.Neighbor(0, topology.Right)
    given := task.ChannelRange{FirstIn: 0, LastIn: 8, FirstOut: 6, LastOut: 8}

    samples := []struct {
        name string
        recs []protocol.Record
    }{
        {"request.bin", []protocol.Record{protocol.NewRequest(0, right)}},
        {"response_empty.bin", []protocol.Record{protocol.NewResponse(right, 0, task.ChannelRange{})}},
        {"exchange.bin", []protocol.Record{
            protocol.NewRequest(0, right),
            protocol.NewResponse(right, 0, given),
            protocol.NewRequest(right, 0),
            protocol.NewResponse(0, right, task.ChannelRange{}),
        }},
    }
    for _, s := range samples {
        b, err := protocol.EncodeFrames(s.recs...)
        if err != nil { return fmt.Errorf("%s: %w", s.name, err) }
        if err := os.WriteFile(filepath.Join(dir, s.name), b, 0o644); err != nil { return err }
        fmt.Fprintf(w, "%-20s %5d bytes  head: %s\n", s.name, len(b), shortHex(b, 32))
    }
    return nil
}

func dump(w io.Writer, path string) error {
    b, err := os.ReadFile(path)
    if err != nil { return err }
    recs, err := protocol.DecodeFrames(b)
    if err != nil { return fmt.Errorf("%s: %w", path, err) }
    for i, r := range recs {
        fmt.Fprintf(w, "%3d  %v\n", i, r)
    }
    return nil
}

func shortHex(b []byte, n int) string {
    if len(b) == 0 { return "" }
    if n > len(b) { n = len(b) }
    enc := hex.EncodeToString(b[:n])
    if len(b) > n { enc += "..." }
    var out []string
    for i := 0; i < len(enc); i += 8 {
        j := i + 8
        if j > len(enc) { j = len(enc) }
        out = append(out, enc[i:j])
    }
    return strings.Join(out, " ")
}
