// Package sparse maps dense channel ranges onto compressed channel lists.
//
// A compressed tensor stores only a subset of its channels, densely and in
// order; ChannelList records which original channel ids survived. Because
// the list is ascending, the positions whose ids fall inside any dense range
// are contiguous, so every dense range resolves to one compressed range.
package sparse
