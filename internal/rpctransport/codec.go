// Package rpctransport is the cross-process request/reply channel the
// master transaction engine uses to serve worker peers. Everything in
// this package is plumbing, not storage-engine logic.
//
// It rides on google.golang.org/grpc, but the transaction engine's
// messages (transaction ids, snapshots, command ids) are plain Go
// structs rather than generated protobuf types, so transport and
// message shape can evolve independently of a .proto toolchain. That
// needs a codec that can (de)serialize arbitrary Go values instead of
// proto.Message — gobCodec below registers one with grpc's codec
// registry under the name "gob" and every server/client in this
// package forces it.
package rpctransport

import (
	"bytes"
	"encoding/gob"

	"google.golang.org/grpc/encoding"
)

const codecName = "gob"

type gobCodec struct{}

func (gobCodec) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func (gobCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(gobCodec{})
}
