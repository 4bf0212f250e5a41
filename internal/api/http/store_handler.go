package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"rental-mngt-admin/internal/store"
	"rental-mngt-admin/internal/utils"
)

type storeResponse struct {
	Collections   map[string]store.Status `json:"collections"`
	PriceShipping decimal.Decimal         `json:"price_shipping"`
}

func (h *Handler) storeState() storeResponse {
	return storeResponse{Collections: h.store.Statuses(), PriceShipping: h.store.PriceShipping()}
}

func (h *Handler) GetStore(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.storeState())
}

// InitializeStore fetches the collections that are still empty. Failed
// collections are reported in the returned state; the call itself succeeds.
func (h *Handler) InitializeStore(w http.ResponseWriter, r *http.Request) {
	_ = h.store.Initialize(r.Context(), tokenFrom(r))
	writeJSON(w, http.StatusOK, h.storeState())
}

func (h *Handler) ClearStore(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RefreshCollection(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["collection"]
	found, err := h.store.RefreshByName(r.Context(), name, tokenFrom(r))
	if !found {
		writeMessage(w, http.StatusNotFound, "unknown collection "+name)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.storeState())
}

func (h *Handler) ListEmails(w http.ResponseWriter, r *http.Request) {
	if h.store.Emails.Len() == 0 || r.URL.Query().Get("refresh") == "true" {
		if err := h.store.Emails.Refresh(r.Context(), tokenFrom(r)); err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.store.Emails.List())
}

type quoteRequest struct {
	PricePerDay  decimal.Decimal `json:"price_per_day"`
	RentalDate   *time.Time      `json:"rentalDate"`
	ReturnDate   *time.Time      `json:"returnDate"`
	WithShipping bool            `json:"with_shipping"`
	ShippingFee  decimal.Decimal `json:"shipping_fee"`
}

// QuotePrice prices a rental that is not booked yet, e.g. while the booking form is filled.
func (h *Handler) QuotePrice(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.CalculateRentalCostWithBreakdown(utils.PricingInput{
		PricePerDay: req.PricePerDay,
		Period: utils.RentalPeriod{
			RentalDate:   req.RentalDate,
			ReturnDate:   req.ReturnDate,
			WithShipping: req.WithShipping,
		},
		ShippingFee: req.ShippingFee,
	}))
}
