package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	appMiddleware "github.com/osezele-ek/MiniDrive/internal/api/middlewares"
	"github.com/osezele-ek/MiniDrive/internal/models"
	"github.com/osezele-ek/MiniDrive/internal/services"
)

type FolderHandler struct {
	folders *services.FolderService
}

func NewFolderHandler(folders *services.FolderService) *FolderHandler {
	return &FolderHandler{folders: folders}
}

type createFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	folder, err := h.folders.Create(r.Context(), userID, req.ParentID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

type browseResponse struct {
	Folder  *models.Folder  `json:"folder,omitempty"`
	Folders []models.Folder `json:"folders"`
	Files   []models.File   `json:"files"`
}

// Browse serves both the root listing (no id) and a folder's contents.
func (h *FolderHandler) Browse(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var (
		folderID *string
		current  *models.Folder
	)
	if id := chi.URLParam(r, "id"); id != "" {
		folder, err := h.folders.Get(r.Context(), userID, id)
		if err != nil {
			writeError(w, err)
			return
		}
		folderID = &folder.ID
		current = folder
	}

	folders, files, err := h.folders.Browse(r.Context(), userID, folderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, browseResponse{Folder: current, Folders: folders, Files: files})
}

func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.folders.Delete(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
