package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"rental-mngt-admin/internal/domain"
)

func (h *Handler) ListConfig(w http.ResponseWriter, r *http.Request) {
	elements, err := h.config.List(r.Context(), tokenFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, elements)
}

func (h *Handler) AddConfig(w http.ResponseWriter, r *http.Request) {
	var element domain.ConfigElement
	if err := decodeJSON(r, &element); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.config.Add(r.Context(), tokenFrom(r), element); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, element)
}

func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	element := domain.ConfigElement{Key: mux.Vars(r)["key"], Value: body.Value}
	if err := h.config.Update(r.Context(), tokenFrom(r), element); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, element)
}

func (h *Handler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.config.Delete(r.Context(), tokenFrom(r), mux.Vars(r)["key"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
