package handler

import (
	"net/http"
	"strings"

	"github.com/wadjakorntonsri/rendium/pkg/logger"
	"github.com/wadjakorntonsri/rendium/pkg/ports"
)

type MetadataHandler struct {
	extractor ports.MetadataExtractor
	log       logger.Logger
}

func NewMetadataHandler(extractor ports.MetadataExtractor, log logger.Logger) *MetadataHandler {
	return &MetadataHandler{extractor: extractor, log: log}
}

// Preview answers GET /metadata?url=... with the page's title,
// description and preview image. Unreachable pages still get a 200 with
// the host-name fallback.
func (h *MetadataHandler) Preview(w http.ResponseWriter, r *http.Request) {
	rawURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	m, err := h.extractor.Extract(r.Context(), rawURL)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
