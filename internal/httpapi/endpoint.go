package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rollcall-dev/rollcall/internal/rollcall/service"
	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

// handleEndpointGet serves ?health=1 and ?registry=1.
func (s *Server) handleEndpointGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("health") != "":
		reply, err := s.health.Check(r.Context())
		if err != nil {
			s.logger.Printf("health check failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, reply)
			return
		}
		writeJSON(w, http.StatusOK, reply)

	case q.Get("registry") != "":
		body, err := s.roster.RegistryFeed(r.Context())
		if err != nil {
			s.logger.Printf("registry feed error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)

	default:
		writeError(w, http.StatusBadRequest, "bad_query", "expected ?health=1 or ?registry=1")
	}
}

// handleEndpointPost dispatches scan and register requests.  Malformed
// bodies and uids are 400s; application failures are HTTP 200 with
// status "error", which terminals surface as a script error.
func (s *Server) handleEndpointPost(w http.ResponseWriter, r *http.Request) {
	req, err := decodeEndpointRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_body", "invalid request body")
		return
	}

	var reply types.EndpointReply
	switch req.Action {
	case types.ActionScan, "":
		reply, err = s.attendance.Scan(r.Context(), req)
	case types.ActionRegister:
		reply, err = s.roster.Register(r.Context(), req)
	default:
		err = service.ErrUnknownAction
	}

	if err != nil {
		switch {
		case errors.Is(err, types.ErrInvalidUID):
			writeError(w, http.StatusBadRequest, "invalid_uid", err.Error())
		case errors.Is(err, service.ErrMissingFirstName), errors.Is(err, service.ErrUnknownAction):
			respond(w, r, http.StatusOK, types.EndpointReply{Status: types.StatusError, Message: err.Error()})
		default:
			s.logger.Printf("%s error uid=%s req=%s: %v", req.Action, req.UID, requestID(r.Context()), err)
			respond(w, r, http.StatusOK, types.EndpointReply{Status: types.StatusError, Message: "store unavailable"})
		}
		return
	}

	respond(w, r, http.StatusOK, reply)
}

func decodeEndpointRequest(r *http.Request) (types.EndpointRequest, error) {
	if isProtobuf(r) {
		var st structpb.Struct
		if err := readProto(r, &st); err != nil {
			return types.EndpointRequest{}, err
		}
		return requestFromStruct(&st), nil
	}

	var req types.EndpointRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		return types.EndpointRequest{}, err
	}
	return req, nil
}
