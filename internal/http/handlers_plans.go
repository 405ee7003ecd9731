package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/OzanA78/doviz-hesaplama/internal/engine"
	"github.com/OzanA78/doviz-hesaplama/internal/storage"
)

const maxPlanBody = 1 << 20 // 1MB

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	if s.plans == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "plan storage not configured")
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	names, err := s.plans.ListPlans(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List plans failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "plan storage error")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	if s.plans == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "plan storage not configured")
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/plans/")
	if name == "" || strings.Contains(name, "/") {
		writeJSONError(w, http.StatusNotFound, "unknown plan path")
		return
	}

	switch r.Method {
	case http.MethodGet:
		plan, err := s.plans.LoadPlan(r.Context(), name)
		if errors.Is(err, storage.ErrPlanNotFound) {
			writeJSONError(w, http.StatusNotFound, "plan not found")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Load plan failed", "plan", name, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "plan storage error")
			return
		}
		writeJSON(w, http.StatusOK, plan)

	case http.MethodPut:
		var plan engine.Plan
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPlanBody))
		if err := dec.Decode(&plan); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid plan payload")
			return
		}
		if err := s.plans.SavePlan(r.Context(), name, plan); err != nil {
			slog.ErrorContext(r.Context(), "Save plan failed", "plan", name, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "plan storage error")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		err := s.plans.DeletePlan(r.Context(), name)
		if errors.Is(err, storage.ErrPlanNotFound) {
			writeJSONError(w, http.StatusNotFound, "plan not found")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Delete plan failed", "plan", name, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "plan storage error")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
