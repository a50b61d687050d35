package api

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// JSONCodec lets Connect carry the plain Go message types in this package.
// It registers under the "json" name, so both the Connect protocol
// (application/json) and gRPC-Web/gRPC (+json) content types work.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

// Unmarshal implements connect.Codec.
func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
