package protocol

import "fmt"

// Kind says what a record carries (fits in uint8).
type Kind uint8

const (
    KindUnknown  Kind = iota
    KindRequest       // a tile asking a neighbour for work; Source is the requester
    KindResponse      // the answer to a request; Task may be empty
)

func (k Kind) String() string {
    switch k {
    case KindRequest:
        return "request"
    case KindResponse:
        return "response"
    default:
        return fmt.Sprintf("kind-%d", uint8(k))
    }
}

// Channel is the logical input channel a record is delivered to on the
// destination tile.
type Channel uint8

const (
    ChannelRequest  Channel = 4
    ChannelResponse Channel = 5
)

func (c Channel) String() string {
    switch c {
    case ChannelRequest:
        return "lb-request"
    case ChannelResponse:
        return "lb-response"
    default:
        return fmt.Sprintf("channel-%d", uint8(c))
    }
}

// ChannelFor returns the channel records of kind k travel on.
func ChannelFor(k Kind) Channel {
    if k == KindRequest { return ChannelRequest }
    return ChannelResponse
}

// MIME types of the report body formats. Records never carry them.
const (
    ContentUnknown = "application/octet-stream"
    ContentCBOR    = "application/cbor"
    ContentJSON    = "application/json"
    ContentProto   = "application/x-protobuf"
    ContentYAML    = "application/yaml"
)
