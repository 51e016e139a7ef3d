// Package codec converts cached values to and from bytes.
//
// gencache frames every encoded payload itself, so codecs only need to be
// symmetric: Decode(Encode(v)) must yield a value equal to v. A Decode error
// on a stored entry is treated as corruption; the entry is deleted and the
// lookup reports a miss.
package codec

import "errors"

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// ErrTooLarge is returned by Limit when a payload exceeds its bound.
var ErrTooLarge = errors.New("codec: payload too large")
