package server

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// jsonCodec serializes plain Go structs. It is registered under the name
// "json" so it replaces Connect's protobuf JSON codec for this service.
type jsonCodec struct{}

// Codec returns the codec handlers and clients of BotService must share.
func Codec() connect.Codec {
	return jsonCodec{}
}

func (jsonCodec) Name() string {
	return "json"
}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", v, err)
	}
	return nil
}
