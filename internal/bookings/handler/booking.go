package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"deskly/internal/bookings/service"
	"deskly/pkg/config"
	apperrors "deskly/pkg/errors"
	httputil "deskly/pkg/http"
	"deskly/pkg/logger"
	"deskly/pkg/model"
)

// HeaderCustomerID carries the authenticated caller's id, set by the
// upstream auth layer.
const HeaderCustomerID = "X-Customer-ID"

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings/:id", h.GetByID)
	router.DELETE("/api/v1/bookings/:id", h.Cancel)
	router.GET("/api/v1/customers/:id/bookings", h.GetByCustomer)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Create(r.Context(), r.Header.Get(HeaderCustomerID), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

// Cancel reports 204 when the booking transitioned to cancelled and 200
// with cancelled=false when it already was.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cancelled, err := h.service.Cancel(r.Context(), ps.ByName("id"), r.Header.Get(HeaderCustomerID))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if !cancelled {
		if err := httputil.WriteSuccess(w, map[string]bool{"cancelled": false}); err != nil {
			h.log.Error("failed to write success response", "handler", "Cancel", "error", err)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) GetByCustomer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := paginationParams(r)
	if err != nil {
		h.writeError(w, "GetByCustomer", err)
		return
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	bookings, total, err := h.service.GetByCustomer(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		h.writeError(w, "GetByCustomer", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetByCustomer", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func paginationParams(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if limitStr := query.Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return 0, 0, apperrors.InvalidInput(fmt.Sprintf("invalid limit parameter: %s", limitStr))
		}
	}

	var offset int64
	if offsetStr := query.Get("offset"); offsetStr != "" {
		var err error
		offset, err = strconv.ParseInt(offsetStr, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput(fmt.Sprintf("invalid offset parameter: %s", offsetStr))
		}
	}

	return limit, offset, nil
}
