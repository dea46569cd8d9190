package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/rendium/pkg/logger"
	"github.com/wadjakorntonsri/rendium/pkg/ports"
)

type FolderHandler struct {
	service ports.FolderService
	log     logger.Logger
}

func NewFolderHandler(service ports.FolderService, log logger.Logger) *FolderHandler {
	return &FolderHandler{service: service, log: log}
}

type createFolderRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type updateFolderRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserFromContext(r.Context())

	var req createFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.service.Create(r.Context(), owner, req.Name, req.Color)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserFromContext(r.Context())
	folders, err := h.service.List(r.Context(), owner)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

func (h *FolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.service.Get(r.Context(), owner, id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.service.Update(r.Context(), owner, id, req.Name, req.Color)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Delete(r.Context(), owner, id); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
