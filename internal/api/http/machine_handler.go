package http

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/gateway"
)

func (h *Handler) ListMachines(w http.ResponseWriter, r *http.Request) {
	if h.store.Machines.Len() == 0 || r.URL.Query().Get("refresh") == "true" {
		if err := h.store.Machines.Refresh(r.Context(), tokenFrom(r)); err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.store.Machines.List())
}

// CreateMachine accepts either a JSON body or a multipart form with a
// "machine" JSON field and an optional "image" file.
func (h *Handler) CreateMachine(w http.ResponseWriter, r *http.Request) {
	var machine domain.NewMachine
	var image *gateway.File

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUpload); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrValidation, err))
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("machine")), &machine); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid machine field: %v", domain.ErrValidation, err))
			return
		}
		file, header, err := r.FormFile("image")
		switch {
		case err == nil:
			defer file.Close()
			image = uploadedFile(file, header)
		case err != http.ErrMissingFile:
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrValidation, err))
			return
		}
	} else if err := decodeJSON(r, &machine); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.machines.Create(r.Context(), tokenFrom(r), machine, image)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func uploadedFile(file multipart.File, header *multipart.FileHeader) *gateway.File {
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &gateway.File{Filename: header.Filename, ContentType: contentType, Content: file}
}

func (h *Handler) ListAvailableParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.machines.AvailableParts(r.Context(), tokenFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"parts": parts})
}

func (h *Handler) GetMachine(w http.ResponseWriter, r *http.Request) {
	view, err := h.machines.Get(r.Context(), tokenFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) DeleteMachine(w http.ResponseWriter, r *http.Request) {
	if err := h.machines.Delete(r.Context(), tokenFrom(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) EditMachine(w http.ResponseWriter, r *http.Request) {
	view, err := h.machines.Enter(r.Context(), tokenFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) SetMachineFields(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.machines.Set(r.Context(), tokenFrom(r), mux.Vars(r)["id"], fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) SaveMachine(w http.ResponseWriter, r *http.Request) {
	result, err := h.machines.Exit(r.Context(), tokenFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) UpdateMachineImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: image is required", domain.ErrValidation))
		return
	}
	defer file.Close()

	imageURL, err := h.machines.UpdateImage(r.Context(), tokenFrom(r), mux.Vars(r)["id"], *uploadedFile(file, header))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"imageUrl": imageURL})
}

type maintenanceRequest struct {
	PerformedAt *time.Time `json:"performedAt"`
	Notes       string     `json:"notes"`
}

func (h *Handler) RecordMaintenance(w http.ResponseWriter, r *http.Request) {
	var req maintenanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.machines.RecordMaintenance(r.Context(), tokenFrom(r), mux.Vars(r)["id"], req.PerformedAt, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
