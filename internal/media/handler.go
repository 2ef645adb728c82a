package media

import "net/http"

type Handler struct{ svc *Service }

func NewHandler(s *Service) *Handler { return &Handler{svc: s} }

// Get redirects to a short lived presigned URL for the image.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) error {
	u, err := h.svc.URL(r.Context(), r.PathValue("key"))
	if err != nil {
		return err
	}
	http.Redirect(w, r, u.String(), http.StatusFound)
	return nil
}
