package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"travelbook/internal/invoices/service"
	httputil "travelbook/pkg/http"
	"travelbook/pkg/logger"
	"travelbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const contentTypePDF = "application/pdf"

type InvoiceHandler struct {
	service service.InvoiceService
	log     *logger.Logger
}

func NewInvoiceHandler(service service.InvoiceService, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		service: service,
		log:     log,
	}
}

func (h *InvoiceHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *InvoiceHandler) writeBadBody(w http.ResponseWriter, handler string) {
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
		Code:  "INVALID_INPUT",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", writeErr)
	}
}

func (h *InvoiceHandler) GetSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	settings, err := h.service.GetSettings(r.Context())
	if err != nil {
		h.writeError(w, "GetSettings", err)
		return
	}

	if err := httputil.WriteSuccess(w, settings); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSettings", "operation", "WriteSuccess", "error", err)
	}
}

func (h *InvoiceHandler) UpdateSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in model.InvoiceSettings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeBadBody(w, "UpdateSettings")
		return
	}

	settings, err := h.service.UpdateSettings(r.Context(), &in)
	if err != nil {
		h.writeError(w, "UpdateSettings", err)
		return
	}

	if err := httputil.WriteSuccess(w, settings); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateSettings", "operation", "WriteSuccess", "error", err)
	}
}

func renderRequest(r *http.Request, ps httprouter.Params) service.RenderRequest {
	q := r.URL.Query()
	return service.RenderRequest{
		RequestID:      ps.ByName("id"),
		Lang:           q.Get("lang"),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		Mode:           service.Mode(q.Get("mode")),
		Confirmation:   httputil.QueryBool(r, "confirmation", false),
	}
}

func (h *InvoiceHandler) Render(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	in := renderRequest(r, ps)
	if in.Mode == service.ModePreview {
		h.Preview(w, r, ps)
		return
	}

	out, err := h.service.RenderRequest(r.Context(), in)
	if err != nil {
		h.writeError(w, "Render", err)
		return
	}

	if err := httputil.WriteBinary(w, contentTypePDF, out.Disposition, out.Filename, out.Body); err != nil {
		h.log.Error("failed to write binary response", "handler", "Render", "operation", "WriteBinary", "error", err)
	}
}

func (h *InvoiceHandler) Preview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	body, err := h.service.Preview(r.Context(), renderRequest(r, ps))
	if err != nil {
		h.writeError(w, "Preview", err)
		return
	}

	if err := httputil.WriteHTML(w, body); err != nil {
		h.log.Error("failed to write HTML response", "handler", "Preview", "operation", "WriteHTML", "error", err)
	}
}

// groupQuery reads a group invoice from the query string. ids may be repeated
// or comma separated.
func groupQuery(r *http.Request) *service.GroupRequest {
	q := r.URL.Query()
	var ids []string
	for _, v := range q["ids"] {
		ids = append(ids, strings.Split(v, ",")...)
	}
	return &service.GroupRequest{
		RequestIDs:     ids,
		InvoiceNumber:  q.Get("number"),
		Lang:           q.Get("lang"),
		Mode:           service.Mode(q.Get("mode")),
		Confirmation:   httputil.QueryBool(r, "confirmation", false),
		AcceptLanguage: r.Header.Get("Accept-Language"),
	}
}

func (h *InvoiceHandler) RenderGroup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in service.GroupRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeBadBody(w, "RenderGroup")
		return
	}
	in.AcceptLanguage = r.Header.Get("Accept-Language")

	h.group(w, r, "RenderGroup", &in)
}

func (h *InvoiceHandler) GetGroup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.group(w, r, "GetGroup", groupQuery(r))
}

func (h *InvoiceHandler) group(w http.ResponseWriter, r *http.Request, handler string, in *service.GroupRequest) {
	if in.Mode == service.ModePreview {
		body, err := h.service.PreviewGroup(r.Context(), in)
		if err != nil {
			h.writeError(w, handler, err)
			return
		}
		if err := httputil.WriteHTML(w, body); err != nil {
			h.log.Error("failed to write HTML response", "handler", handler, "operation", "WriteHTML", "error", err)
		}
		return
	}

	out, err := h.service.RenderGroup(r.Context(), in)
	if err != nil {
		h.writeError(w, handler, err)
		return
	}

	if err := httputil.WriteBinary(w, contentTypePDF, out.Disposition, out.Filename, out.Body); err != nil {
		h.log.Error("failed to write binary response", "handler", handler, "operation", "WriteBinary", "error", err)
	}
}

func (h *InvoiceHandler) Verify(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.service.Verify(r.Context(), ps.ByName("token"))
	if err != nil {
		h.writeError(w, "Verify", err)
		return
	}

	if err := httputil.WriteSuccess(w, v); err != nil {
		h.log.Error("failed to write success response", "handler", "Verify", "operation", "WriteSuccess", "error", err)
	}
}

func (h *InvoiceHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/invoices/settings", h.GetSettings)
	router.PUT("/api/v1/invoices/settings", h.UpdateSettings)
	router.GET("/api/v1/invoices/requests/:id", h.Render)
	router.GET("/api/v1/invoices/requests/:id/preview", h.Preview)
	router.GET("/api/v1/invoices/group", h.GetGroup)
	router.POST("/api/v1/invoices/group", h.RenderGroup)
	router.GET("/api/v1/invoices/verify/:token", h.Verify)
}
