package gallery

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

// NewHandler serves svc over the routes HTTPService talks to.
func NewHandler(svc Service) http.Handler {
	h := &handler{svc: svc}
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+listPath, h.list)
	mux.HandleFunc("GET "+thumbnailPath, h.thumbnail)
	mux.HandleFunc("GET "+viewPath, h.view)
	return mux
}

type handler struct {
	svc Service
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("directory")
	if dir == "" {
		writeJSON(w, Listing{Files: []Entry{}, Error: ErrNoDirectory.Error()})
		return
	}

	listing, err := h.svc.List(r.Context(), dir)
	if err != nil {
		logrus.WithError(err).WithField("directory", dir).Error("listing failed")
		writeJSON(w, Listing{Files: []Entry{}, Error: err.Error()})
		return
	}
	writeJSON(w, listing)
}

func (h *handler) thumbnail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dir, name := q.Get("directory"), q.Get("filename")
	if dir == "" || name == "" {
		http.Error(w, "Missing directory or filename", http.StatusBadRequest)
		return
	}

	size := defaultThumbnailRequest
	if raw := q.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid size", http.StatusBadRequest)
			return
		}
		size = n
	}

	data, err := h.svc.Thumbnail(r.Context(), dir, name, size)
	if err != nil {
		writeImageError(w, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}

func (h *handler) view(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dir, name := q.Get("directory"), q.Get("filename")
	if dir == "" || name == "" {
		http.Error(w, "Missing directory or filename", http.StatusBadRequest)
		return
	}

	data, err := h.svc.FullImage(r.Context(), dir, name)
	if err != nil {
		writeImageError(w, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}

func writeImageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.Error(w, "File not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidFilename), errors.Is(err, ErrNoDirectory):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logrus.WithError(err).Error("serving image failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("encoding response failed")
	}
}
