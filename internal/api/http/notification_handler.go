package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-mngt-admin/internal/domain"
)

type page[T any] struct {
	Items    []T   `json:"items"`
	Total    int32 `json:"total"`
	Page     int32 `json:"page"`
	PageSize int32 `json:"page_size"`
}

// pageParams reads page and page_size, defaulting to the first page of 20.
func pageParams(r *http.Request) (int32, int32) {
	q := r.URL.Query()
	p, err := strconv.ParseInt(q.Get("page"), 10, 32)
	if err != nil || p < 1 {
		p = 1
	}
	size, err := strconv.ParseInt(q.Get("page_size"), 10, 32)
	if err != nil || size < 1 || size > 100 {
		size = 20
	}
	return int32(p), int32(size)
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	p, size := pageParams(r)
	unreadOnly := r.URL.Query().Get("unread") == "true"
	notes, total, err := h.notifications.GetNotifications(r.Context(), unreadOnly, p, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, page[domain.Notification]{Items: notes, Total: total, Page: p, PageSize: size})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	if err := h.notifications.MarkAsRead(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListChangeEvents(w http.ResponseWriter, r *http.Request) {
	p, size := pageParams(r)
	q := r.URL.Query()
	events, total, err := h.changeLog.List(r.Context(), domain.EntityType(q.Get("entity")), q.Get("entity_id"), p, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if events == nil {
		events = []domain.ChangeEvent{}
	}
	writeJSON(w, http.StatusOK, page[domain.ChangeEvent]{Items: events, Total: total, Page: p, PageSize: size})
}

func (h *Handler) GoogleAuthStatus(w http.ResponseWriter, r *http.Request) {
	linked, err := h.api.GoogleAuthStatus(r.Context(), tokenFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"linked": linked})
}

func (h *Handler) GoogleAuthURL(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.api.GoogleAuthURL(r.Context(), tokenFrom(r), r.URL.Query().Get("redirect"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authURL)
}
