package handler

import (
	"net/http"
	"travelbook/internal/recyclebin/service"
	httputil "travelbook/pkg/http"
	"travelbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type RecycleBinHandler struct {
	service service.RecycleBinService
	log     *logger.Logger
}

func NewRecycleBinHandler(service service.RecycleBinService, log *logger.Logger) *RecycleBinHandler {
	return &RecycleBinHandler{
		service: service,
		log:     log,
	}
}

func (h *RecycleBinHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	items, total, err := h.service.List(r.Context(), r.URL.Query().Get("table"), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, items, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *RecycleBinHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	item, err := h.service.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, item); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RecycleBinHandler) Restore(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	item, err := h.service.Restore(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Restore", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{
		"original_table": item.OriginalTable,
		"original_id":    item.OriginalID,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Restore", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RecycleBinHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/recycle-bin", h.List)
	router.GET("/api/v1/recycle-bin/id/:id", h.GetByID)
	router.POST("/api/v1/recycle-bin/id/:id/restore", h.Restore)
}
