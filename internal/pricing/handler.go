package pricing

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-comercial/internal/permissions"
	"github.com/odyssey-erp/odyssey-comercial/internal/platform/httpx"
)

// Handler exposes pricing endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	perms     permissions.Middleware
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, perms permissions.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator.New(), perms: perms}
}

type openRequest struct {
	TableID int64 `json:"table_id" validate:"required,gt=0"`
}

type discountRequest struct {
	Value string `json:"value" validate:"max=32"`
}

// MountRoutes registers pricing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.perms.Require(permissions.MenuPricingQuote)).Post("/quote", h.quote)
	r.Route("/simulations", func(r chi.Router) {
		r.Use(h.perms.Require(permissions.MenuPriceTables))
		r.Post("/", h.open)
		r.Get("/{id}", h.evaluate)
		r.Get("/{id}/export.csv", h.export)
		r.With(h.perms.Require(permissions.MenuPriceTables, permissions.Modify)).Put("/{id}/discounts/{slot}", h.setDiscount)
		r.Delete("/{id}", h.close)
	})
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}
	quote := h.service.Quote(req)
	if !finite(quote.BasePrice) || !finite(quote.NetPrice) {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", "price is out of range")
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}
	sim, err := h.service.Open(r.Context(), req.TableID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sim)
}

func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	eval, err := h.service.Evaluate(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, eval)
}

func (h *Handler) setDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "slot must be an integer")
		return
	}
	var req discountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}
	sim, err := h.service.SetDiscount(r.Context(), id, slot, req.Value)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sim)
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Close(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.service.ExportCSV(r.Context(), id, &buf); err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="simulacao-%s.csv"`, id))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("write simulation export", slog.String("simulation", id.String()), slog.Any("error", err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTableNotFound), errors.Is(err, ErrSimulationNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidSlot):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("pricing handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid simulation id")
		return uuid.UUID{}, false
	}
	return id, true
}

func validationDetail(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
	return err.Error()
}
