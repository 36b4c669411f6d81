package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"deskly/internal/workspaces/service"
	"deskly/pkg/config"
	apperrors "deskly/pkg/errors"
	httputil "deskly/pkg/http"
	"deskly/pkg/logger"
	"deskly/pkg/model"
)

type WorkspaceHandler struct {
	service service.WorkspaceService
	log     *logger.Logger
}

func NewWorkspaceHandler(service service.WorkspaceService, log *logger.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		service: service,
		log:     log,
	}
}

func (h *WorkspaceHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/workspaces", h.Create)
	router.GET("/api/v1/workspaces", h.GetAll)
	router.GET("/api/v1/workspaces/:id", h.GetByID)
	router.PATCH("/api/v1/workspaces/:id", h.Update)
	router.DELETE("/api/v1/workspaces/:id", h.Delete)
	router.GET("/api/v1/availability", h.GetAvailable)
}

func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var workspace model.Workspace
	if err := json.NewDecoder(r.Body).Decode(&workspace); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), &workspace); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, workspace); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *WorkspaceHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	workspace, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, workspace); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *WorkspaceHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := paginationParams(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	workspaces, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, workspaces, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.WorkspaceUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

// GetAvailable lists the active workspaces free for the requested
// interval, passed as RFC 3339 query parameters.
func (h *WorkspaceHandler) GetAvailable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	start, err := parseTimeParam(query.Get("start"), "start")
	if err != nil {
		h.writeError(w, "GetAvailable", err)
		return
	}
	end, err := parseTimeParam(query.Get("end"), "end")
	if err != nil {
		h.writeError(w, "GetAvailable", err)
		return
	}

	workspaces, err := h.service.GetAvailable(r.Context(), start, end)
	if err != nil {
		h.writeError(w, "GetAvailable", err)
		return
	}

	if err := httputil.WriteSuccess(w, workspaces); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAvailable", "error", err)
	}
}

func (h *WorkspaceHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func parseTimeParam(value, name string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.InvalidInput(fmt.Sprintf("missing %s parameter", name))
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter: must be RFC 3339", name))
	}
	return t, nil
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
