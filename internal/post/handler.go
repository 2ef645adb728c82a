package post

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"social-service/internal/media"
	"social-service/internal/shared/apperr"
	"social-service/internal/shared/httpx"
)

// AuthorLookup resolves the profile snapshot stored on new posts and
// comments.
type AuthorLookup func(ctx context.Context, userID string) (Author, error)

type CreateReq struct {
	Text string `json:"text"`
}

type Handler struct {
	svc     Service
	authors AuthorLookup
	images  *media.Service
}

func NewHandler(s Service, authors AuthorLookup, images *media.Service) *Handler {
	return &Handler{svc: s, authors: authors, images: images}
}

var errBadForm = apperr.Validation("invalid_body", "Invalid request body")

const (
	defaultPage  = 1
	defaultLimit = 10
)

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}

	var (
		text string
		file multipart.File
		fh   *multipart.FileHeader
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		text, file, fh, err = h.readMultipart(w, r)
		if err != nil {
			return err
		}
		if file != nil {
			defer file.Close()
		}
	} else {
		body, err := httpx.Decode[CreateReq](w, r)
		if err != nil {
			return err
		}
		text = body.Text
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	author, err := h.authors(r.Context(), uid)
	if err != nil {
		return err
	}

	var imagePath string
	if file != nil {
		imagePath, err = h.images.SaveImage(r.Context(), fh.Filename, file, fh.Size)
		if err != nil {
			return err
		}
	}

	p, err := h.svc.Create(r.Context(), author, text, imagePath)
	if err != nil {
		if imagePath != "" {
			if rmErr := h.images.Remove(r.Context(), imagePath); rmErr != nil {
				slog.WarnContext(r.Context(), "orphaned image", "image", imagePath, "error", rmErr)
			}
		}
		return err
	}
	httpx.WriteData(w, p, http.StatusCreated)
	return nil
}

func (h *Handler) readMultipart(w http.ResponseWriter, r *http.Request) (string, multipart.File, *multipart.FileHeader, error) {
	limit := int64(5 << 20)
	if h.images != nil && h.images.MaxBytes() > 0 {
		limit = h.images.MaxBytes()
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return "", nil, nil, media.ErrTooLarge
		}
		return "", nil, nil, errBadForm.WithCause(err)
	}
	text := r.FormValue("text")
	file, fh, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return text, nil, nil, nil
	}
	if err != nil {
		return "", nil, nil, errBadForm.WithCause(err)
	}
	if !h.images.Enabled() {
		file.Close()
		return "", nil, nil, media.ErrDisabled
	}
	return text, file, fh, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	page := httpx.QueryInt(r, "page", defaultPage)
	limit := httpx.QueryInt(r, "limit", defaultLimit)
	res, err := h.svc.List(r.Context(), page, limit)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]any{
		"success": true,
		"count":   len(res.Items),
		"total":   res.Total,
		"page":    res.Page,
		"hasMore": res.HasMore,
		"data":    res.Items,
	}, http.StatusOK)
	return nil
}

func (h *Handler) ListByAuthor(w http.ResponseWriter, r *http.Request) error {
	posts, err := h.svc.ListByAuthor(r.Context(), r.PathValue("user_id"))
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []Post{}
	}
	httpx.WriteData(w, posts, http.StatusOK)
	return nil
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		return ErrNotFound
	}
	p, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		return err
	}
	httpx.WriteData(w, p, http.StatusOK)
	return nil
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	id, err := httpx.PathID(r, "id")
	if err != nil {
		return ErrNotFound
	}
	if err := h.svc.Delete(r.Context(), id, uid); err != nil {
		return err
	}
	httpx.WriteMessage(w, "Post removed", http.StatusOK)
	return nil
}
