package balance

import "github.com/ucam-comparch-loki/lat-dynamic/pkg/tensor"

func shape16() tensor.ConvShape { return tensor.NewConvShape(8, 16, 10, 3) }
