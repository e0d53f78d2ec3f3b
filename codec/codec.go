// Package codec provides pluggable (de)serialization of cached values.
// The cache and the durable store only ever see the encoded bytes.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
