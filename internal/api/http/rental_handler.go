package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"rental-mngt-admin/internal/domain"
)

func (h *Handler) ListRentals(w http.ResponseWriter, r *http.Request) {
	if h.store.Rentals.Len() == 0 || r.URL.Query().Get("refresh") == "true" {
		if err := h.store.Rentals.Refresh(r.Context(), tokenFrom(r)); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if machineID := r.URL.Query().Get("machine_id"); machineID != "" {
		writeJSON(w, http.StatusOK, h.store.RentalsForMachine(machineID))
		return
	}
	writeJSON(w, http.StatusOK, h.store.Rentals.List())
}

func (h *Handler) CreateRental(w http.ResponseWriter, r *http.Request) {
	var rental domain.NewRental
	if err := decodeJSON(r, &rental); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.rentals.Create(r.Context(), tokenFrom(r), mux.Vars(r)["id"], rental)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetRental(w http.ResponseWriter, r *http.Request) {
	view, err := h.rentals.Get(r.Context(), tokenFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) DeleteRental(w http.ResponseWriter, r *http.Request) {
	if err := h.rentals.Delete(r.Context(), tokenFrom(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) EditRental(w http.ResponseWriter, r *http.Request) {
	view, err := h.rentals.Enter(r.Context(), tokenFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) SetRentalFields(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.rentals.Set(r.Context(), tokenFrom(r), mux.Vars(r)["id"], fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) SaveRental(w http.ResponseWriter, r *http.Request) {
	result, err := h.rentals.Exit(r.Context(), tokenFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) ToggleRentalPaid(w http.ResponseWriter, r *http.Request) {
	view, err := h.rentals.TogglePaid(r.Context(), tokenFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) QuoteRental(w http.ResponseWriter, r *http.Request) {
	quote, err := h.rentals.Quote(r.Context(), tokenFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) RentalAgreement(w http.ResponseWriter, r *http.Request) {
	link, err := h.rentals.Agreement(r.Context(), tokenFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}
