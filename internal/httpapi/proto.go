package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

// maxRequestBody caps request bodies for both protobuf and JSON payloads.
// A register request with long names is still well under 1 KiB.
const maxRequestBody = 4096

const contentTypeProtobuf = "application/x-protobuf"

// isProtobuf returns true if the request's Content-Type indicates a
// protobuf payload.
func isProtobuf(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct == contentTypeProtobuf ||
		ct == "application/protobuf" ||
		ct == "application/octet-stream"
}

// readProto reads the request body and unmarshals it into msg.
func readProto(r *http.Request, msg proto.Message) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return err
	}
	return proto.Unmarshal(body, msg)
}

// writeProto marshals msg and writes it with the given HTTP status.
func writeProto(w http.ResponseWriter, status int, msg proto.Message) {
	data, err := proto.Marshal(msg)
	if err != nil {
		http.Error(w, "proto marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeProtobuf)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// requestFromStruct maps a google.protobuf.Struct carrying the JSON field
// names onto an EndpointRequest.  Non-string values are ignored.
func requestFromStruct(s *structpb.Struct) types.EndpointRequest {
	str := func(k string) string {
		if v, ok := s.GetFields()[k]; ok {
			return v.GetStringValue()
		}
		return ""
	}
	return types.EndpointRequest{
		UID:       str("uid"),
		Action:    str("action"),
		Timestamp: str("timestamp"),
		FirstName: str("firstName"),
		LastName:  str("lastName"),
	}
}

// structFrom renders any JSON-serialisable value as a Struct, so protobuf
// clients see exactly the fields JSON clients do.
func structFrom(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// respond writes v as protobuf when the request came in as protobuf, JSON
// otherwise.
func respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	if !isProtobuf(r) {
		writeJSON(w, status, v)
		return
	}
	s, err := structFrom(v)
	if err != nil {
		http.Error(w, "proto marshal error", http.StatusInternalServerError)
		return
	}
	writeProto(w, status, s)
}
