package cache

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec converts cached values to and from the opaque blobs the Gateway
// stores. A decode failure is a cache malfunction, not a miss.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// MsgpackCodec encodes cache entries as msgpack. There is no schema
// versioning; a format change requires a full cache flush.
type MsgpackCodec struct{}

// NewMsgpackCodec returns the default codec.
func NewMsgpackCodec() MsgpackCodec { return MsgpackCodec{} }

func (MsgpackCodec) Marshal(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cache encode: %w", err)
	}
	return data, nil
}

func (MsgpackCodec) Unmarshal(data []byte, v any) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cache decode: %w", err)
	}
	return nil
}
