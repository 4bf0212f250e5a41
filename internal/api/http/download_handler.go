package http

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"

	"rental-mngt-admin/internal/logger"
	"rental-mngt-admin/internal/storage"
)

// DownloadHandler serves archived files behind the signed URLs of the local storage backend.
type DownloadHandler struct {
	files storage.FileReader
}

func NewDownloadHandler(files storage.FileReader) *DownloadHandler {
	return &DownloadHandler{files: files}
}

// HandleDownload handles GET requests to the URLs built by GeneratePresignedDownloadURL
func (h *DownloadHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}
	expires, err := strconv.ParseInt(r.URL.Query().Get("expires"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid expires parameter", http.StatusBadRequest)
		return
	}
	if !h.files.VerifyDownload(mux.Vars(r)["token"], key, expires) {
		http.Error(w, "Link expired or invalid", http.StatusForbidden)
		return
	}

	file, err := h.files.ReadFile(key)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filepath.Base(key)}))
	w.Header().Set("Cache-Control", "private, no-store")

	if _, err := io.Copy(w, file); err != nil {
		logger.WarnContext(r.Context(), "Download interrupted", "key", key, "error", err)
	}
}

// RegisterMockStorageRoutes registers the local storage download endpoint
func RegisterMockStorageRoutes(router *mux.Router, files storage.FileReader) {
	handler := NewDownloadHandler(files)
	router.HandleFunc("/api/v1/download/{token}", handler.HandleDownload).Methods(http.MethodGet).Name("DownloadFile")
}
