package codec

import "encoding/json"

// JSON is a Codec over encoding/json. The zero value is ready to use.
// Round-trips lose Go type identity for interface-typed V (numbers decode as
// float64); prefer a concrete V.
type JSON[V any] struct{}

var _ Codec[struct{}] = JSON[struct{}]{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
