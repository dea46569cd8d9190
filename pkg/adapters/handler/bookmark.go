package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
	"github.com/wadjakorntonsri/rendium/pkg/logger"
	"github.com/wadjakorntonsri/rendium/pkg/ports"
)

type BookmarkHandler struct {
	service ports.BookmarkService
	log     logger.Logger
}

func NewBookmarkHandler(service ports.BookmarkService, log logger.Logger) *BookmarkHandler {
	return &BookmarkHandler{service: service, log: log}
}

type pinRequest struct {
	Pinned *bool `json:"pinned"`
}

type moveRequest struct {
	FolderID *int64 `json:"folder_id"`
}

func (h *BookmarkHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserFromContext(r.Context())

	var req domain.CreateBookmarkInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.service.Create(r.Context(), owner, req)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// List accepts folder_id, search and pinned query parameters
func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserFromContext(r.Context())
	q := r.URL.Query()

	filter := domain.BookmarkFilter{Search: q.Get("search")}
	if v := q.Get("folder_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid folder_id")
			return
		}
		filter.FolderID = &id
	}
	if v := q.Get("pinned"); v != "" {
		pinned, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid pinned")
			return
		}
		filter.Pinned = &pinned
	}

	bookmarks, err := h.service.List(r.Context(), owner, filter)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmarks)
}

func (h *BookmarkHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserFromContext(r.Context())
	bookmarks, err := h.service.ListTrash(r.Context(), owner)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmarks)
}

func (h *BookmarkHandler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserFromContext(r.Context())
	n, err := h.service.EmptyTrash(r.Context(), owner)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (h *BookmarkHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.service.Get(r.Context(), owner, id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookmarkHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var patch domain.MetadataPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.service.UpdateMetadata(r.Context(), owner, id, patch)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookmarkHandler) Trash(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.MoveToTrash)
}

func (h *BookmarkHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.Restore)
}

func (h *BookmarkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.Remove)
}

func (h *BookmarkHandler) Pin(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := decodeJSON(r, &req); err != nil || req.Pinned == nil {
		writeError(w, http.StatusBadRequest, "pinned is required")
		return
	}
	h.mutate(w, r, func(ctx context.Context, owner string, id int64) error {
		return h.service.TogglePin(ctx, owner, id, *req.Pinned)
	})
}

// Move assigns a folder; a null folder_id makes the bookmark unfiled
func (h *BookmarkHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.mutate(w, r, func(ctx context.Context, owner string, id int64) error {
		return h.service.MoveToFolder(ctx, owner, id, req.FolderID)
	})
}

// mutate runs a state change on the bookmark named in the path and
// answers 204 on success.
func (h *BookmarkHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, owner string, id int64) error) {
	owner, _ := UserFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := fn(r.Context(), owner, id); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
