package http

import (
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/impilo/fieldreport/internal/attachment"
	httpmiddleware "github.com/impilo/fieldreport/internal/http/middleware"
)

// CreateAttachment accepts a multipart submission: title, notes and date
// fields, one optional "register" file and any number of "pictures" files.
func (h *Handler) CreateAttachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes*8)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid multipart payload", nil)
		return
	}

	date, err := time.Parse("2006-01-02", r.FormValue("date"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "date must be YYYY-MM-DD", nil)
		return
	}

	input := attachment.CreateInput{
		Title: r.FormValue("title"),
		Notes: r.FormValue("notes"),
		Date:  date,
	}

	if files := r.MultipartForm.File["register"]; len(files) > 0 {
		file, err := readMultipartFile(files[0])
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "unreadable register file", nil)
			return
		}
		input.Register = file
	}
	for _, header := range r.MultipartForm.File["pictures"] {
		file, err := readMultipartFile(header)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "unreadable picture file", nil)
			return
		}
		input.Pictures = append(input.Pictures, *file)
	}

	actor := httpmiddleware.GetProfile(r.Context())
	created, err := h.attachments.Submit(r.Context(), *actor, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// ListAttachments returns the attachments visible to the caller.
func (h *Handler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	actor := httpmiddleware.GetProfile(r.Context())
	attachments, err := h.attachments.List(r.Context(), *actor)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	WriteJSON(w, http.StatusOK, attachments)
}

// GetAttachment fetches one attachment inside the caller's scope.
func (h *Handler) GetAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid id", nil)
		return
	}

	actor := httpmiddleware.GetProfile(r.Context())
	a, err := h.attachments.Get(r.Context(), *actor, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

// DeleteAttachment removes one attachment record.
func (h *Handler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid id", nil)
		return
	}

	actor := httpmiddleware.GetProfile(r.Context())
	if err := h.attachments.Delete(r.Context(), *actor, id); err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// UploadProgress returns the live per-file progress of one submission. Gone
// entries (finished past the grace delay, failed, or never started) are a
// 404.
func (h *Handler) UploadProgress(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid id", nil)
		return
	}

	state, ok := h.attachments.Tracker().Snapshot(id)
	if !ok {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "no upload in progress", nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"files":   state.Files,
		"overall": state.Overall(),
		"status":  state.Status,
	})
}

func readMultipartFile(header *multipart.FileHeader) (*attachment.FileInput, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &attachment.FileInput{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
