package reschedule

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"fitbook-service/api"
	"fitbook-service/pkg/middleware/identity"
	"fitbook-service/pkg/response"
	"fitbook-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type BookingRescheduler interface {
	RescheduleBooking(ctx context.Context, trainerID, bookingID string, req *api.RescheduleRequest) (*api.BookingResponse, error)
}

type Request struct {
	api.RescheduleRequest
}

type Response struct {
	response.Response
	Booking api.BookingResponse `json:"booking,omitempty"`
}

func New(log *slog.Logger, rescheduler BookingRescheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.reschedule.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if id == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		if err := validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			if errors.As(err, &validateErr) {
				log.Error("Invalid request", sl.Err(err))
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.ValidationError(validateErr))
				return
			}

			log.Error("Failed to validate request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid request"))
			return
		}

		trainerID := identity.TrainerID(r.Context())

		booking, err := rescheduler.RescheduleBooking(r.Context(), trainerID, id, &req.RescheduleRequest)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("Booking not found", slog.String("booking_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "booking not found"))
			return
		}

		if errors.Is(err, response.ErrConflict) {
			log.Error("Booking is not confirmed", slog.String("booking_id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "booking is not confirmed"))
			return
		}

		if errors.Is(err, response.ErrDayUnavailable) {
			log.Error("Day unavailable", slog.String("date", req.Date))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.DAY_UNAVAILABLE), "trainer is not available on this day"))
			return
		}

		if errors.Is(err, response.ErrSlotOutOfWindow) {
			log.Error("Slot out of window", slog.String("time", req.Time))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.SLOT_OUT_OF_WINDOW), "time does not match an available slot"))
			return
		}

		if errors.Is(err, response.ErrSlotTaken) {
			log.Error("Slot already booked", slog.String("date", req.Date), slog.String("time", req.Time))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.SLOT_TAKEN), "slot is already booked"))
			return
		}

		if errors.Is(err, response.ErrLocked) {
			log.Error("Slot is locked")
			w.WriteHeader(http.StatusLocked)
			render.JSON(w, r, response.Error(string(response.LOCKED), "slot is locked, try again"))
			return
		}

		if err != nil {
			log.Error("Failed to reschedule booking", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to reschedule booking"))
			return
		}

		log.Info("Booking rescheduled", slog.Any("booking", booking))
		responseOK(w, r, booking)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, booking *api.BookingResponse) {
	render.JSON(w, r, Response{
		Booking: *booking,
	})
}
