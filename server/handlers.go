package server

import (
	"context"
	"net/http"
	"time"

	"github.com/tucfis/shexpose/crud"
	"github.com/tucfis/shexpose/errors"
	"github.com/tucfis/shexpose/sparql"
)

// writeOperationError maps pipeline errors onto HTTP statuses. Unclassified
// errors are logged in full and answered with an opaque 500.
func (s *Server) writeOperationError(w http.ResponseWriter, r *http.Request, err error) {
	_, isStoreErr := sparql.IsStoreError(err)
	switch {
	case errors.IsAny(err, crud.ErrNotFound, crud.ErrUnknownEntity, crud.ErrUnknownAttribute):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, crud.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, err.Error())
	case isStoreErr:
		s.logger.Errorw("Store round trip failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeError(w, http.StatusBadGateway, "triple store request failed")
	default:
		s.logger.Errorw("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// subjectURI resolves the {id} path segment for the routed entity.
func (s *Server) subjectURI(r *http.Request) (string, error) {
	return s.translator.SubjectURI(r.PathValue("entity"), r.PathValue("id"))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	entityName := r.PathValue("entity")

	var fields map[string]crud.FieldPayload
	if err := readJSON(w, r, &fields); err != nil {
		return
	}

	subject, err := s.translator.Create(r.Context(), entityName, fields)
	if err != nil {
		s.writeOperationError(w, r, err)
		return
	}

	w.Header().Set("Location", subject)
	writeJSON(w, http.StatusCreated, map[string]string{"uri": subject})
}

func (s *Server) handleReadResource(w http.ResponseWriter, r *http.Request) {
	subject, err := s.subjectURI(r)
	if err != nil {
		s.writeOperationError(w, r, err)
		return
	}

	res, err := s.translator.ReadResource(r.Context(), r.PathValue("entity"), subject, preferredLanguage(r))
	if err != nil {
		s.writeOperationError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReplaceResource(w http.ResponseWriter, r *http.Request) {
	subject, err := s.subjectURI(r)
	if err != nil {
		s.writeOperationError(w, r, err)
		return
	}

	var fields map[string]crud.FieldPayload
	if err := readJSON(w, r, &fields); err != nil {
		return
	}

	if err := s.translator.ReplaceResource(r.Context(), r.PathValue("entity"), subject, fields); err != nil {
		s.writeOperationError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"uri": subject})
}

func (s *Server) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	subject, err := s.subjectURI(r)
	if err != nil {
		s.writeOperationError(w, r, err)
		return
	}

	if err := s.translator.DeleteResource(r.Context(), r.PathValue("entity"), subject); err != nil {
		s.writeOperationError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReadAttribute(w http.ResponseWriter, r *http.Request) {
	subject, err := s.subjectURI(r)
	if err != nil {
		s.writeOperationError(w, r, err)
		return
	}

	value, err := s.translator.ReadAttribute(r.Context(), r.PathValue("entity"), subject, r.PathValue("attribute"), preferredLanguage(r))
	if err != nil {
		s.writeOperationError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, value)
}

func (s *Server) handleReplaceAttribute(w http.ResponseWriter, r *http.Request) {
	subject, err := s.subjectURI(r)
	if err != nil {
		s.writeOperationError(w, r, err)
		return
	}

	var payload crud.FieldPayload
	if err := readJSON(w, r, &payload); err != nil {
		return
	}

	if err := s.translator.ReplaceAttribute(r.Context(), r.PathValue("entity"), subject, r.PathValue("attribute"), payload); err != nil {
		s.writeOperationError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"uri": subject})
}

func (s *Server) handleAddToAttribute(w http.ResponseWriter, r *http.Request) {
	subject, err := s.subjectURI(r)
	if err != nil {
		s.writeOperationError(w, r, err)
		return
	}

	var payload crud.FieldPayload
	if err := readJSON(w, r, &payload); err != nil {
		return
	}

	if err := s.translator.AddToAttribute(r.Context(), r.PathValue("entity"), subject, r.PathValue("attribute"), payload); err != nil {
		s.writeOperationError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"uri": subject})
}

func (s *Server) handleDeleteAttribute(w http.ResponseWriter, r *http.Request) {
	subject, err := s.subjectURI(r)
	if err != nil {
		s.writeOperationError(w, r, err)
		return
	}

	if err := s.translator.DeleteAttribute(r.Context(), r.PathValue("entity"), subject, r.PathValue("attribute"), r.URL.Query().Get("language")); err != nil {
		s.writeOperationError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth probes the store with a trivial ASK. Degraded means the
// server is up but the store is not answering.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}

	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if _, err := s.health.Ask(ctx, "ASK { }"); err != nil {
			s.logger.Warnw("Health probe failed", "error", err)
			status["status"] = "degraded"
			status["store"] = "unreachable"
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["store"] = "ok"
	}

	writeJSON(w, http.StatusOK, status)
}
