// Package auth exposes registration and login, issuing bearer tokens for
// profiles.
package auth

import (
	"net/http"

	"social-service/internal/profile"
	"social-service/internal/shared/httpx"
	"social-service/internal/shared/validate"
)

type TokenIssuer interface {
	Make(userID string) (string, error)
}

type Handler struct {
	profiles profile.Service
	tokens   TokenIssuer
}

func NewHandler(p profile.Service, t TokenIssuer) *Handler {
	return &Handler{profiles: p, tokens: t}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) error {
	body, err := httpx.Decode[profile.RegisterReq](w, r)
	if err != nil {
		return err
	}
	p, err := h.profiles.Register(r.Context(), body)
	if err != nil {
		return err
	}
	return h.writeSession(w, p, http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	body, err := httpx.Decode[profile.LoginReq](w, r)
	if err != nil {
		return err
	}
	if err = validate.Struct(body); err != nil {
		return err
	}
	p, err := h.profiles.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		return err
	}
	return h.writeSession(w, p, http.StatusOK)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	p, err := h.profiles.GetByID(r.Context(), uid)
	if err != nil {
		return err
	}
	httpx.WriteData(w, p, http.StatusOK)
	return nil
}

func (h *Handler) writeSession(w http.ResponseWriter, p *profile.Profile, code int) error {
	token, err := h.tokens.Make(p.ID)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]any{"success": true, "token": token, "data": p}, code)
	return nil
}
