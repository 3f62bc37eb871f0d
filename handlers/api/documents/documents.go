package documents

import (
	"collab-editor-server/core"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	CreateDocumentRequest struct {
		Title string `json:"title"`
	}

	UpdateDocumentRequest struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}

	ErrorResponse struct {
		Error string `json:"error"`
	}

	DeleteDocumentResponse struct {
		Message string `json:"message"`
	}
)

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}

// HandleList returns all documents, most recently updated first
func HandleList(store core.DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		documents, err := store.List(r.Context())
		if err != nil {
			logrus.WithField("error", err).Error("Failed to list documents")
			writeError(w, r, http.StatusInternalServerError, "Failed to fetch documents")
			return
		}

		if documents == nil {
			documents = []core.Document{}
		}

		render.JSON(w, r, documents)
	}
}

// HandleCreate creates a new document with the given title
func HandleCreate(store core.DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDocumentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logrus.WithField("error", err).Error("Failed to decode request")
			writeError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		doc, err := store.Create(r.Context(), req.Title)
		if err != nil {
			logrus.WithField("error", err).Error("Failed to create document")
			writeError(w, r, http.StatusInternalServerError, "Failed to create document")
			return
		}

		render.JSON(w, r, doc)
	}
}

// HandleGet retrieves a document by id
func HandleGet(store core.DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		doc, err := store.FindID(r.Context(), id)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				writeError(w, r, http.StatusNotFound, "Document not found")
				return
			}
			logrus.WithField("error", err).Error("Failed to get document")
			writeError(w, r, http.StatusInternalServerError, "Failed to fetch document")
			return
		}

		render.JSON(w, r, doc)
	}
}

// HandleUpdate overwrites a document's title and/or content
func HandleUpdate(store core.DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req UpdateDocumentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logrus.WithField("error", err).Error("Failed to decode request")
			writeError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		doc, err := store.Update(r.Context(), id, req.Title, req.Content)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				writeError(w, r, http.StatusNotFound, "Document not found")
				return
			}
			logrus.WithField("error", err).Error("Failed to update document")
			writeError(w, r, http.StatusInternalServerError, "Failed to update document")
			return
		}

		render.JSON(w, r, doc)
	}
}

// HandleDelete removes a document by id
func HandleDelete(store core.DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := store.Delete(r.Context(), id); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				writeError(w, r, http.StatusNotFound, "Document not found")
				return
			}
			logrus.WithField("error", err).Error("Failed to delete document")
			writeError(w, r, http.StatusInternalServerError, "Failed to delete document")
			return
		}

		render.JSON(w, r, DeleteDocumentResponse{Message: "Document deleted successfully"})
	}
}
