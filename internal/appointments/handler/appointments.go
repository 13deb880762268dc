package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	appointmentserrors "travelbook/internal/appointments/errors"
	"travelbook/internal/appointments/service"
	httputil "travelbook/pkg/http"
	"travelbook/pkg/logger"
	"travelbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const bookingPath = "/api/v1/appointments/bookings/id/"

type AppointmentHandler struct {
	service service.AppointmentService
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		log:     log,
	}
}

func (h *AppointmentHandler) DayBoard(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	board, err := h.service.DayBoard(r.Context(), ps.ByName("date"))
	if err != nil {
		h.writeError(w, "DayBoard", err)
		return
	}

	if err := httputil.WriteSuccess(w, board); err != nil {
		h.log.Error("failed to write success response", "handler", "DayBoard", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) EnsureDaySlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	created, err := h.service.EnsureDaySlotsExist(r.Context(), ps.ByName("date"))
	if err != nil {
		h.writeError(w, "EnsureDaySlots", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]int{"created": created}); err != nil {
		h.log.Error("failed to write success response", "handler", "EnsureDaySlots", "operation", "WriteSuccess", "error", err)
	}
}

// ToggleSlot answers 303 pointing at the booking when the slot is booked,
// so the client can offer to cancel it instead.
func (h *AppointmentHandler) ToggleSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slot, err := h.service.ToggleSlotStatus(r.Context(), ps.ByName("id"))
	if err != nil {
		var booked *appointmentserrors.SlotBookedError
		if errors.As(err, &booked) {
			if writeErr := httputil.WriteSeeOther(w, bookingPath+booked.BookingID, httputil.ErrorResponse{
				Error:   "Slot is booked, cancel the booking to free it",
				Code:    "SLOT_BOOKED",
				Details: map[string]any{"slot_id": booked.SlotID, "booking_id": booked.BookingID},
			}); writeErr != nil {
				h.log.Error("failed to write redirect response", "handler", "ToggleSlot", "operation", "WriteSeeOther", "error", writeErr)
			}
			return
		}
		h.writeError(w, "ToggleSlot", err)
		return
	}

	if err := httputil.WriteSuccess(w, slot); err != nil {
		h.log.Error("failed to write success response", "handler", "ToggleSlot", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) CreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in model.BookingCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeBadBody(w, "CreateBooking")
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), &in)
	if err != nil {
		h.writeError(w, "CreateBooking", err)
		return
	}

	w.Header().Set("Location", bookingPath+booking.ID)
	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateBooking", "operation", "WriteCreated", "error", err)
	}
}

func (h *AppointmentHandler) ListBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListBookings", err)
		return
	}

	bookings, total, err := h.service.ListBookings(r.Context(), r.URL.Query().Get("date"), limit, offset)
	if err != nil {
		h.writeError(w, "ListBookings", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListBookings", "operation", "WritePaginated", "error", err)
	}
}

func (h *AppointmentHandler) GetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetBooking(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetBooking", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in model.BookingStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeBadBody(w, "UpdateBookingStatus")
		return
	}

	booking, err := h.service.UpdateBookingStatus(r.Context(), ps.ByName("id"), &in)
	if err != nil {
		h.writeError(w, "UpdateBookingStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateBookingStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) CancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	result, err := h.service.CancelBooking(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "CancelBooking", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "CancelBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AppointmentHandler) writeBadBody(w http.ResponseWriter, handler string) {
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
		Code:  "INVALID_INPUT",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", writeErr)
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/appointments/days/:date/slots", h.DayBoard)
	router.POST("/api/v1/appointments/days/:date/slots", h.EnsureDaySlots)
	router.PATCH("/api/v1/appointments/slots/id/:id/toggle", h.ToggleSlot)
	router.POST("/api/v1/appointments/bookings", h.CreateBooking)
	router.GET("/api/v1/appointments/bookings", h.ListBookings)
	router.GET("/api/v1/appointments/bookings/id/:id", h.GetBooking)
	router.PATCH("/api/v1/appointments/bookings/id/:id/status", h.UpdateBookingStatus)
	router.DELETE("/api/v1/appointments/bookings/id/:id", h.CancelBooking)
}
