package codec

import "google.golang.org/protobuf/proto"

// Protobuf serializes proto.Message values. Decode allocates a fresh
// message through the constructor passed to NewProtobuf, so decoded values
// never share state.
type Protobuf[M proto.Message] struct {
	newMsg func() M
}

func NewProtobuf[M proto.Message](newMsg func() M) Protobuf[M] {
	return Protobuf[M]{newMsg: newMsg}
}

func (c Protobuf[M]) Encode(m M) ([]byte, error) { return proto.Marshal(m) }

func (c Protobuf[M]) Decode(b []byte) (M, error) {
	m := c.newMsg()
	err := proto.Unmarshal(b, m)
	return m, err
}
