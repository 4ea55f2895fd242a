package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rollcall-dev/rollcall/internal/rollcall/service"
	"github.com/rollcall-dev/rollcall/internal/rollcall/store"
	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

type peopleList struct {
	People []types.Person `json:"people"`
}

type attendanceList struct {
	Date string                   `json:"date"`
	Rows []types.AttendanceRecord `json:"rows"`
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.roster.List(r.Context())
	if err != nil {
		s.internalError(w, "list people", err)
		return
	}
	writeJSON(w, http.StatusOK, peopleList{People: people})
}

func (s *Server) handlePutPerson(w http.ResponseWriter, r *http.Request) {
	var body types.PersonUpdate
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	uid := chi.URLParam(r, "uid")
	p, err := s.roster.Update(r.Context(), uid, body)
	if errors.Is(err, store.ErrNotFound) {
		// PUT creates when absent.
		_, err = s.roster.Register(r.Context(), types.EndpointRequest{
			UID: uid, Action: types.ActionRegister, FirstName: body.FirstName, LastName: body.LastName,
		})
		if err == nil {
			p, err = s.roster.Get(r.Context(), uid)
		}
	}
	if err != nil {
		s.mapDashboardError(w, "put person", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	if err := s.roster.Delete(r.Context(), chi.URLParam(r, "uid")); err != nil {
		s.mapDashboardError(w, "delete person", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	rows, date, err := s.attendance.ListDay(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.mapDashboardError(w, "list attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, attendanceList{Date: date, Rows: rows})
}

func (s *Server) handlePatchAttendance(w http.ResponseWriter, r *http.Request) {
	var patch types.AttendancePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	rec, err := s.attendance.Edit(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.mapDashboardError(w, "patch attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteAttendance(w http.ResponseWriter, r *http.Request) {
	if err := s.attendance.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.mapDashboardError(w, "delete attendance", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) mapDashboardError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, types.ErrInvalidUID):
		writeError(w, http.StatusBadRequest, "invalid_uid", err.Error())
	case errors.Is(err, service.ErrMissingFirstName),
		errors.Is(err, service.ErrInvalidDateKey),
		errors.Is(err, service.ErrCheckOutBeforeCheckIn):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		s.internalError(w, op, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Printf("%s error: %v", op, err)
	writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
