package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	authsvc "github.com/Raiyan-S/GP-Dashboard/internal/services/auth"
	predictsvc "github.com/Raiyan-S/GP-Dashboard/internal/services/predict"
	"github.com/Raiyan-S/GP-Dashboard/internal/transport/http/dto"
	httperrors "github.com/Raiyan-S/GP-Dashboard/internal/transport/http/errors"
)

// Uploads above this size are rejected before decoding.
const maxUploadBytes = 10 << 20

type PredictHandler struct {
	service *predictsvc.Service
}

func NewPredictHandler(service *predictsvc.Service) *PredictHandler {
	return &PredictHandler{service: service}
}

func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httperrors.WriteDetail(w, http.StatusUnprocessableEntity, "A file upload is required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		httperrors.WriteDetail(w, http.StatusUnprocessableEntity, "A file upload is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httperrors.WriteDetail(w, http.StatusBadRequest, "Could not read uploaded file")
		return
	}

	identity, _ := authsvc.IdentityFromContext(r.Context())

	result, err := h.service.Classify(r.Context(), data, identity.Username)
	if err != nil {
		switch {
		case errors.Is(err, predictsvc.ErrBadImage):
			httperrors.WriteDetail(w, http.StatusBadRequest, "Unsupported or corrupt image")
		case errors.Is(err, predictsvc.ErrModelNotFound):
			httperrors.WriteDetail(w, http.StatusNotFound, "No trained model available")
		default:
			writeInternal(w)
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PredictResponse{
		Prediction:      result.Class,
		Confidence:      result.Confidence,
		Probabilities:   result.Probabilities,
		ModelUploadDate: result.ModelUploadedAt,
		ImageSize:       fmt.Sprintf("%dx%d", result.Image.Width, result.Image.Height),
		ImageFormat:     result.Image.Format,
	})
}

func (h *PredictHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w)
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		httperrors.WriteDetail(w, http.StatusUnauthorized, "Session expired or invalid")
		return
	}

	records, err := h.service.History(r.Context(), identity.Username)
	if err != nil {
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, records)
}
