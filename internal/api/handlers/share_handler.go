package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	appMiddleware "github.com/osezele-ek/MiniDrive/internal/api/middlewares"
	"github.com/osezele-ek/MiniDrive/internal/core"
	"github.com/osezele-ek/MiniDrive/internal/services"
)

type ShareHandler struct {
	share   *services.ShareService
	db      core.DbClient
	storage core.ObjectClient
}

func NewShareHandler(share *services.ShareService, db core.DbClient, storage core.ObjectClient) *ShareHandler {
	return &ShareHandler{share: share, db: db, storage: storage}
}

func (h *ShareHandler) CreateFileShare(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	tok, err := h.share.ShareFile(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tok)
}

func (h *ShareHandler) CreateFolderShare(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	tok, err := h.share.ShareFolder(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tok)
}

// ServeFileShare streams a shared file. No authentication: possession of a
// live token is the credential.
func (h *ShareHandler) ServeFileShare(w http.ResponseWriter, r *http.Request) {
	file, err := h.share.ResolveFile(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, err)
		return
	}

	rc, err := h.storage.GetReader(r.Context(), file.StorageKey)
	if err != nil {
		writeError(w, err)
		return
	}
	defer rc.Close()

	serveFileStream(w, file.Name, file.MimeType, rc)
}

// BrowseFolderShare lists a shared folder's contents. The optional subfolder
// query parameter descends into the shared subtree only.
func (h *ShareHandler) BrowseFolderShare(w http.ResponseWriter, r *http.Request) {
	folder, err := h.share.ResolveFolder(r.Context(), chi.URLParam(r, "token"), r.URL.Query().Get("subfolder"))
	if err != nil {
		writeError(w, err)
		return
	}

	folders, err := h.db.ListChildFolders(r.Context(), folder.OwnerID, &folder.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	files, err := h.db.ListFiles(r.Context(), folder.OwnerID, &folder.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, browseResponse{Folder: folder, Folders: folders, Files: files})
}

// ServeSharedFolderFile streams a file that lives inside a shared folder's
// subtree.
func (h *ShareHandler) ServeSharedFolderFile(w http.ResponseWriter, r *http.Request) {
	file, err := h.share.ResolveSharedFile(r.Context(), chi.URLParam(r, "token"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	rc, err := h.storage.GetReader(r.Context(), file.StorageKey)
	if err != nil {
		writeError(w, err)
		return
	}
	defer rc.Close()

	serveFileStream(w, file.Name, file.MimeType, rc)
}
