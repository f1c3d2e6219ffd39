// Package balance is the per-tile work-stealing scheduler.
//
// A tile works through its task, answering steal requests from neighbours
// between kernel calls by giving away the upper half of its remaining output
// channels. When its task runs out it asks each neighbour in turn (down,
// right, up, left) for work, adopting the first non-empty answer. Once all
// four neighbours have been asked it drains: it keeps refusing requests
// until it has heard from every neighbour that can ask it, then stops.
//
// Directions in which a tile is its own neighbour are counted as both asked
// and answered without any message, so every tile on every grid shape
// expects exactly four requests in total.
//
// A tile never blocks without also answering requests, which rules out two
// tiles waiting on each other.
package balance
