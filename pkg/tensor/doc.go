// Package tensor holds tensor descriptors and the pure slicing arithmetic used
// to carve per-task views out of whole-layer buffers.
//
// A descriptor never owns memory. It is an abstract base address plus byte
// strides into a buffer owned by whoever allocated it (see Allocator), so a
// slice is only valid for as long as its parent buffer is.
//
// Layouts follow the accelerator library the kernels expect:
//   - activations are BCHW (row stride = element size)
//   - filters are IOHW: out-channel stride = filter plane, in-channel stride =
//     out-channels * out-channel stride
package tensor
