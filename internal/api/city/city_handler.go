package city

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-city-registry/internal/api"
	"github.com/FACorreiaa/go-city-registry/internal/types"
)

// Messages returned to clients.
const (
	MsgCreated       = "record created"
	MsgUpdated       = "record updated"
	MsgDeleted       = "record deleted"
	MsgNotFound      = "record not found"
	MsgAlreadyExists = "record already exists"
	MsgInvalidID     = "invalid city id"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetAllCities(w http.ResponseWriter, r *http.Request)
	GetCity(w http.ResponseWriter, r *http.Request)
	CreateCity(w http.ResponseWriter, r *http.Request)
	UpdateCity(w http.ResponseWriter, r *http.Request)
	DeleteCity(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	logger  *slog.Logger
	service Service
}

func NewCityHandler(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:  logger,
		service: service,
	}
}

// GetAllCities handles GET /cities
func (h *HandlerImpl) GetAllCities(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CityHandler").Start(r.Context(), "GetAllCities")
	defer span.End()

	cities := h.service.ListCities(ctx)

	h.logger.DebugContext(ctx, "Returning cities", slog.String("handler", "GetAllCities"), slog.Int("count", len(cities)))
	span.SetStatus(codes.Ok, "Cities returned successfully")
	api.WriteJSONResponse(w, r, http.StatusOK, cities)
}

// GetCity handles GET /cities/{cityID}
func (h *HandlerImpl) GetCity(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CityHandler").Start(r.Context(), "GetCity")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetCity"))

	id, ok := h.cityID(w, r, l)
	if !ok {
		span.SetStatus(codes.Error, "Invalid city ID")
		return
	}
	span.SetAttributes(attribute.Int("city.id", id))

	c, err := h.service.GetCity(ctx, id)
	if err != nil {
		h.writeServiceError(w, r, l, err, http.StatusNotFound)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetStatus(codes.Ok, "City returned")
	api.WriteJSONResponse(w, r, http.StatusOK, c)
}

// CreateCity handles POST /cities
func (h *HandlerImpl) CreateCity(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CityHandler").Start(r.Context(), "CreateCity")
	defer span.End()
	l := h.logger.With(slog.String("handler", "CreateCity"))

	var req types.CityInput
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		l.InfoContext(ctx, "Rejected invalid city", slog.Any("error", err))
		span.SetStatus(codes.Error, "Validation failed")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.service.CreateCity(ctx, req)
	if err != nil {
		h.writeServiceError(w, r, l, err, http.StatusNotFound)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetAttributes(attribute.Int("city.id", c.ID))
	span.SetStatus(codes.Ok, "City created")
	api.SuccessResponse(w, r, http.StatusOK, MsgCreated, c)
}

// UpdateCity handles PUT /cities/{cityID}. The path id overrides any id in the body.
func (h *HandlerImpl) UpdateCity(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CityHandler").Start(r.Context(), "UpdateCity")
	defer span.End()
	l := h.logger.With(slog.String("handler", "UpdateCity"))

	id, ok := h.cityID(w, r, l)
	if !ok {
		span.SetStatus(codes.Error, "Invalid city ID")
		return
	}
	span.SetAttributes(attribute.Int("city.id", id))

	var req types.CityInput
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.ID = &id
	if err := req.Validate(); err != nil {
		l.InfoContext(ctx, "Rejected invalid city", slog.Any("error", err))
		span.SetStatus(codes.Error, "Validation failed")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.service.UpdateCity(ctx, id, req)
	if err != nil {
		h.writeServiceError(w, r, l, err, http.StatusBadRequest)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetStatus(codes.Ok, "City updated")
	api.SuccessResponse(w, r, http.StatusOK, MsgUpdated, c)
}

// DeleteCity handles DELETE /cities/{cityID}
func (h *HandlerImpl) DeleteCity(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CityHandler").Start(r.Context(), "DeleteCity")
	defer span.End()
	l := h.logger.With(slog.String("handler", "DeleteCity"))

	id, ok := h.cityID(w, r, l)
	if !ok {
		span.SetStatus(codes.Error, "Invalid city ID")
		return
	}
	span.SetAttributes(attribute.Int("city.id", id))

	if err := h.service.DeleteCity(ctx, id); err != nil {
		h.writeServiceError(w, r, l, err, http.StatusBadRequest)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetStatus(codes.Ok, "City deleted")
	api.SuccessResponse(w, r, http.StatusOK, MsgDeleted, nil)
}

func (h *HandlerImpl) cityID(w http.ResponseWriter, r *http.Request, l *slog.Logger) (int, bool) {
	raw := chi.URLParam(r, "cityID")
	id, err := strconv.Atoi(raw)
	if err != nil {
		l.InfoContext(r.Context(), "Invalid city ID format", slog.String("cityID_str", raw))
		api.ErrorResponse(w, r, http.StatusBadRequest, MsgInvalidID)
		return 0, false
	}
	return id, true
}

// writeServiceError maps service outcomes to responses. Lookups answer a missing
// record with 404; update and delete answer it with 400.
func (h *HandlerImpl) writeServiceError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error, notFoundStatus int) {
	switch {
	case errors.Is(err, api.ErrNotFound):
		l.InfoContext(r.Context(), "City not found", slog.Any("error", err))
		api.ErrorResponse(w, r, notFoundStatus, MsgNotFound)
	case errors.Is(err, api.ErrDuplicateName):
		l.InfoContext(r.Context(), "City already exists", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, MsgAlreadyExists)
	default:
		l.ErrorContext(r.Context(), "City operation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
	}
}
