// Package transport moves opaque frames between tiles that do not share a
// Go channel. A Transport listens and dials; both sides of a connection see
// it as a Link. Frames are length prefixed (u32 LE) on every byte stream.
//
// Implementations live in subpackages: mem (net.Pipe, one process), tcp and
// quic. A Table keeps the links one tile has open, keyed by the far tile.
package transport
