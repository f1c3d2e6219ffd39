// Package task defines the units of work handed to tiles: rectangular ranges
// of a convolution's input×output channel space, and single-axis ranges for
// pooling. It also holds the static partitioner and the split used when a
// neighbour steals work.
package task
