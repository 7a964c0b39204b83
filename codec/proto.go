package codec

import "google.golang.org/protobuf/proto"

// ProtoCodec stores protobuf messages in their binary wire form.
type ProtoCodec[T proto.Message] struct {
	newT func() T
}

// Proto returns a codec for messages of type T. newT must return a fresh,
// non-nil message to decode into.
func Proto[T proto.Message](newT func() T) ProtoCodec[T] {
	return ProtoCodec[T]{newT: newT}
}

func (c ProtoCodec[T]) EncodeValue(obj T) ([]byte, error) {
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(obj)
	if err != nil {
		return nil, encodeErr("proto", err)
	}
	return data, nil
}

func (c ProtoCodec[T]) DecodeValue(data []byte) (T, error) {
	msg := c.newT()
	if err := proto.Unmarshal(data, msg); err != nil {
		var zero T
		return zero, decodeErr("proto", err)
	}
	return msg, nil
}
