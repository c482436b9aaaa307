package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	metricssvc "github.com/Raiyan-S/GP-Dashboard/internal/services/metrics"
	"github.com/Raiyan-S/GP-Dashboard/internal/transport/http/dto"
	httperrors "github.com/Raiyan-S/GP-Dashboard/internal/transport/http/errors"
)

type RoundsHandler struct {
	service *metricssvc.Service
}

func NewRoundsHandler(service *metricssvc.Service) *RoundsHandler {
	return &RoundsHandler{service: service}
}

// List returns chart rows for every round, optionally narrowed with the
// client_id query parameter.
func (h *RoundsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w)
		return
	}

	rows, err := h.service.PerformanceRows(r.Context(), r.URL.Query().Get("client_id"))
	if err != nil {
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, rows)
}

func (h *RoundsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w)
		return
	}

	var req dto.CreateRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteDetail(w, http.StatusUnprocessableEntity, "Invalid round payload")
		return
	}

	round, err := h.service.AddRound(r.Context(), req.ToModel())
	if err != nil {
		switch {
		case errors.Is(err, metricssvc.ErrInvalidRound):
			httperrors.WriteDetail(w, http.StatusUnprocessableEntity, "Invalid round payload")
		case errors.Is(err, metricssvc.ErrDuplicateRound):
			httperrors.WriteDetail(w, http.StatusBadRequest, "Round already exists")
		default:
			writeInternal(w)
		}
		return
	}

	httperrors.Write(w, http.StatusOK, round)
}

func (h *RoundsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w)
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, stats)
}

func (h *RoundsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w)
		return
	}

	round, err := h.service.Round(r.Context(), chi.URLParam(r, "roundID"))
	if err != nil {
		if errors.Is(err, metricssvc.ErrRoundNotFound) {
			httperrors.WriteDetail(w, http.StatusNotFound, "Round not found")
			return
		}
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, round)
}

func (h *RoundsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w)
		return
	}

	if err := h.service.DeleteRound(r.Context(), chi.URLParam(r, "roundID")); err != nil {
		if errors.Is(err, metricssvc.ErrRoundNotFound) {
			httperrors.WriteDetail(w, http.StatusNotFound, "Round not found")
			return
		}
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MessageResponse{Message: "Round deleted"})
}
