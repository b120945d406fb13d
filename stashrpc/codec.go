package stashrpc

import (
	"encoding/json"
	"fmt"

	grpcEncoding "google.golang.org/grpc/encoding"
	_ "google.golang.org/grpc/encoding/proto" // ensure default proto codec is registered first
	"google.golang.org/protobuf/proto"
)

func init() {
	// Replace the default proto codec with a wrapper that JSON-encodes the
	// rawr.Stash messages and hands every other message to proto.
	grpcEncoding.RegisterCodec(stashCodec{})
}

type stashCodec struct{}

func (stashCodec) Name() string { return "proto" }

func (stashCodec) Marshal(v any) ([]byte, error) {
	if _, ok := v.(stashMsg); ok {
		return json.Marshal(v)
	}
	if m, ok := v.(proto.Message); ok {
		return proto.Marshal(m)
	}
	return nil, fmt.Errorf("stash codec: unsupported message type %T", v)
}

func (stashCodec) Unmarshal(data []byte, v any) error {
	if _, ok := v.(stashMsg); ok {
		return json.Unmarshal(data, v)
	}
	if m, ok := v.(proto.Message); ok {
		return proto.Unmarshal(data, m)
	}
	return fmt.Errorf("stash codec: unsupported message type %T", v)
}
