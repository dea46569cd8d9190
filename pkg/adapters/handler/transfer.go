package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
	"github.com/wadjakorntonsri/rendium/pkg/logger"
	"github.com/wadjakorntonsri/rendium/pkg/ports"
)

const maxImportBytes = 20 << 20

type TransferHandler struct {
	service ports.TransferService
	log     logger.Logger
}

func NewTransferHandler(service ports.TransferService, log logger.Logger) *TransferHandler {
	return &TransferHandler{service: service, log: log}
}

type importResponse struct {
	Message string               `json:"message"`
	Summary domain.ImportSummary `json:"summary"`
}

// Import reads a bookmark file from the multipart field "file" or, for any
// other content type, from the raw request body.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	text, err := readImportFile(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.service.Import(r.Context(), owner, text)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	if !summary.Succeeded() {
		writeJSON(w, http.StatusUnprocessableEntity, importResponse{Message: "Import Failed", Summary: *summary})
		return
	}
	writeJSON(w, http.StatusOK, importResponse{Message: "Import Successful", Summary: *summary})
}

func readImportFile(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		b, err := io.ReadAll(r.Body)
		return string(b), err
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return "", fmt.Errorf("missing file: %w", err)
	}
	defer file.Close()

	b, err := io.ReadAll(file)
	return string(b), err
}

func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserFromContext(r.Context())

	filename := fmt.Sprintf("bookmarks-%s.html", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	// headers are already out once the writer starts, so failures can
	// only be logged
	if err := h.service.Export(r.Context(), owner, w); err != nil {
		h.log.Error("export failed", logger.String("owner", owner), logger.Error(err))
	}
}

// ClearAll wipes every bookmark and folder of the signed-in user
func (h *TransferHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserFromContext(r.Context())
	if err := h.service.ClearAll(r.Context(), owner); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
