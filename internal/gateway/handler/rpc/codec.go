package rpc

import (
	"encoding/json"
	"net/http"

	"connectrpc.com/connect"
)

// jsonCodec lets connect carry plain Go structs as JSON. It replaces the
// default protojson codec registered under the same name.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

func handlerOptions() []connect.HandlerOption {
	return []connect.HandlerOption{connect.WithCodec(jsonCodec{})}
}

// Route is one mounted procedure.
type Route struct {
	Path    string
	Handler http.Handler
}
