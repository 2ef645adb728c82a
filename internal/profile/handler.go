package profile

import (
	"net/http"

	"social-service/internal/shared/httpx"
)

type Handler struct{ svc Service }

func NewHandler(s Service) *Handler { return &Handler{svc: s} }

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) error {
	p, err := h.svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	httpx.WriteData(w, p, http.StatusOK)
	return nil
}

func (h *Handler) Connections(w http.ResponseWriter, r *http.Request) error {
	list, err := h.svc.GetConnections(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	writeConnections(w, list)
	return nil
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	in, err := httpx.Decode[UpdateReq](w, r)
	if err != nil {
		return err
	}
	p, err := h.svc.Update(r.Context(), r.PathValue("id"), uid, in)
	if err != nil {
		return err
	}
	httpx.WriteData(w, p, http.StatusOK)
	return nil
}

func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	list, err := h.svc.Connect(r.Context(), r.PathValue("id"), uid, r.PathValue("target_id"))
	if err != nil {
		return err
	}
	writeConnections(w, list)
	return nil
}

func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	list, err := h.svc.Disconnect(r.Context(), r.PathValue("id"), uid, r.PathValue("target_id"))
	if err != nil {
		return err
	}
	writeConnections(w, list)
	return nil
}

func writeConnections(w http.ResponseWriter, list []Summary) {
	if list == nil {
		list = []Summary{}
	}
	httpx.WriteJSON(w, map[string]any{"success": true, "count": len(list), "data": list}, http.StatusOK)
}
