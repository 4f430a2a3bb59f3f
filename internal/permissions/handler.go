package permissions

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-comercial/internal/platform/httpx"
)

// Handler exposes the authorization service endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	mw      Middleware
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, mw Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, mw: mw}
}

// MountRoutes registers permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.selfOrRequire(MenuPermissions, View)).Get("/{actor}", h.get)
	r.With(h.mw.Require(MenuPermissions, Modify)).Put("/{actor}", h.replace)
}

// selfOrRequire lets an actor read its own set. Reading anyone else's set
// needs caps on menuIndex.
func (h *Handler) selfOrRequire(menuIndex int, caps ...Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		gated := h.mw.Require(menuIndex, caps...)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := strings.TrimSpace(r.Header.Get(ActorHeader))
			if caller != "" && caller == strings.TrimSpace(chi.URLParam(r, "actor")) {
				next.ServeHTTP(w, r)
				return
			}
			gated.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor := chi.URLParam(r, "actor")
	set, err := h.service.Set(r.Context(), actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, PayloadFromSet(set))
}

func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	actor := chi.URLParam(r, "actor")
	set, dropped, err := DecodePayload(http.MaxBytesReader(w, r.Body, httpx.MaxBodyBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httpx.Problem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", "permission payload exceeds the size limit")
		return
	}
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if dropped > 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "permission records must carry every field once")
		return
	}
	if err := h.service.Replace(r.Context(), actor, set); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, PayloadFromSet(set))
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrInvalidActor), errors.Is(err, ErrInvalidSet):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("permissions handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
