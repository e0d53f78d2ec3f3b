package codec

import "github.com/fxamacker/cbor/v2"

// CBOR serializes values with fxamacker/cbor. Construct with NewCBOR or
// NewDeterministicCBOR; the zero value has no encoder configured and must
// not be used.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[int] = CBOR[int]{}

// NewCBOR returns a codec using the preferred (compact) encoding options.
func NewCBOR[V any]() (CBOR[V], error) {
	return buildCBOR[V](cbor.PreferredUnsortedEncOptions())
}

// NewDeterministicCBOR returns a codec producing RFC 8949 core deterministic
// output, for callers that hash or compare the encoded bytes.
func NewDeterministicCBOR[V any]() (CBOR[V], error) {
	return buildCBOR[V](cbor.CoreDetEncOptions())
}

func buildCBOR[V any](eo cbor.EncOptions) (CBOR[V], error) {
	// RFC3339Nano keeps timestamps readable in dumps and stable across
	// the deterministic and compact modes.
	eo.Time = cbor.TimeRFC3339Nano
	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	dm, err := (cbor.DecOptions{}).DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

func (c CBOR[V]) Encode(v V) ([]byte, error) { return c.enc.Marshal(v) }

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dec.Unmarshal(b, &v)
	return v, err
}
