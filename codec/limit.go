package codec

import "fmt"

// Limit wraps another codec to bound the payload size accepted by Decode.
// Encode is forwarded to Inner unchanged. MaxDecode <= 0 disables the bound.
//
// Typical use: a store shared with other services, where an oversized entry
// under one of our keys should be dropped rather than decoded.
type Limit[V any] struct {
	Inner     Codec[V]
	MaxDecode int
}

func (c Limit[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }
func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
