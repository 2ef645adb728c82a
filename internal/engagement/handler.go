package engagement

import (
	"net/http"

	"social-service/internal/post"
	"social-service/internal/shared/httpx"
)

type CommentReq struct {
	Text string `json:"text"`
}

type Handler struct {
	svc     Service
	authors post.AuthorLookup
}

func NewHandler(s Service, authors post.AuthorLookup) *Handler {
	return &Handler{svc: s, authors: authors}
}

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	pid, err := httpx.PathID(r, "id")
	if err != nil {
		return post.ErrNotFound
	}
	likes, err := h.svc.ToggleLike(r.Context(), pid, uid)
	if err != nil {
		return err
	}
	httpx.WriteData(w, likes, http.StatusOK)
	return nil
}

func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	pid, err := httpx.PathID(r, "id")
	if err != nil {
		return post.ErrNotFound
	}
	likes, err := h.svc.Unlike(r.Context(), pid, uid)
	if err != nil {
		return err
	}
	httpx.WriteData(w, likes, http.StatusOK)
	return nil
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	pid, err := httpx.PathID(r, "id")
	if err != nil {
		return post.ErrNotFound
	}
	body, err := httpx.Decode[CommentReq](w, r)
	if err != nil {
		return err
	}
	author, err := h.authors(r.Context(), uid)
	if err != nil {
		return err
	}
	comments, err := h.svc.AddComment(r.Context(), pid, author, body.Text)
	if err != nil {
		return err
	}
	httpx.WriteData(w, comments, http.StatusCreated)
	return nil
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	pid, err := httpx.PathID(r, "id")
	if err != nil {
		return post.ErrNotFound
	}
	cid, err := httpx.PathID(r, "comment_id")
	if err != nil {
		return ErrCommentNotFound
	}
	comments, err := h.svc.DeleteComment(r.Context(), pid, cid, uid)
	if err != nil {
		return err
	}
	httpx.WriteData(w, comments, http.StatusOK)
	return nil
}
