package http

import (
	"bufio"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/FinWise/internal/receipts"
)

// DefaultMaxReceiptSize caps uploaded receipt files.
const DefaultMaxReceiptSize = 10 << 20

// ReceiptHandler serves receipt uploads and downloads.
type ReceiptHandler struct {
	Store   receipts.Store
	MaxSize int64
	Log     *zap.Logger
}

func allowedReceiptType(ct string) bool {
	return strings.HasPrefix(ct, "image/") || ct == "application/pdf"
}

// Upload handles POST /api/receipts with a multipart "file" field and
// answers with the key to store on a transaction.
func (h *ReceiptHandler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.MaxSize
	if limit <= 0 {
		limit = DefaultMaxReceiptSize
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<10)

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	br := bufio.NewReaderSize(file, 512)
	head, _ := br.Peek(512)
	contentType := http.DetectContentType(head)
	if !allowedReceiptType(contentType) {
		writeError(w, http.StatusUnsupportedMediaType, "receipts must be images or PDF")
		return
	}

	key := receipts.NewKey(userID(r))
	if err := h.Store.Put(r.Context(), key, contentType, io.LimitReader(br, limit)); err != nil {
		h.Log.Error("store receipt", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}

// Download handles GET /api/receipts/{key}. Keys contain a slash and may
// arrive escaped.
func (h *ReceiptHandler) Download(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || !receipts.OwnedBy(key, userID(r)) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	rc, contentType, err := h.Store.Get(r.Context(), key)
	if errors.Is(err, receipts.ErrNotFound) || errors.Is(err, receipts.ErrInvalidKey) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		h.Log.Error("load receipt", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, rc); err != nil {
		h.Log.Warn("send receipt", zap.Error(err))
	}
}
