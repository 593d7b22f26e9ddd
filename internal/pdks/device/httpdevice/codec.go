package httpdevice

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"golang.org/x/xerrors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// maxResponseBody caps a bridge response. A full terminal log of ~100k
// punches encodes to well under this in either format.
const maxResponseBody = 32 << 20

// isProtobuf reports whether the bridge answered with a protobuf body.
// Bridges built on the terminal SDK send "application/x-protobuf".
func isProtobuf(h http.Header) bool {
	ct, _, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		return false
	}
	return ct == "application/x-protobuf" ||
		ct == "application/protobuf" ||
		ct == "application/octet-stream"
}

// decodeBody reads resp into v. Protobuf bodies carry a
// google.protobuf.Struct with the same field names as the JSON form,
// so they are remapped through protojson and decoded identically.
func decodeBody(resp *http.Response, v any) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return xerrors.Errorf("read body: %w", err)
	}

	if isProtobuf(resp.Header) {
		var st structpb.Struct
		if err := proto.Unmarshal(body, &st); err != nil {
			return xerrors.Errorf("unmarshal protobuf struct: %w", err)
		}
		body, err = protojson.Marshal(&st)
		if err != nil {
			return xerrors.Errorf("remap protobuf struct: %w", err)
		}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return xerrors.Errorf("decode json: %w", err)
	}
	return nil
}

// flexID accepts user ids sent as JSON strings or numbers. Terminals
// store them as strings; some bridges forward them as numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return xerrors.Errorf("user_id: %w", err)
	}
	*f = flexID(n.String())
	return nil
}
