package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fitbook-service/api"
	"fitbook-service/pkg/middleware/identity"
	"fitbook-service/pkg/response"
	"fitbook-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type BookingGetter interface {
	GetBooking(ctx context.Context, trainerID, bookingID string) (*api.BookingResponse, error)
	ListBookings(ctx context.Context, trainerID string, date *time.Time, status *string) ([]*api.BookingResponse, error)
}

type Response struct {
	response.Response
	Booking api.BookingResponse `json:"booking,omitzero"`
}

type ListResponse struct {
	response.Response
	Bookings []*api.BookingResponse `json:"bookings"`
}

func New(log *slog.Logger, getter BookingGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		trainerID := identity.TrainerID(r.Context())

		id := chi.URLParam(r, "id")
		if id == "" {
			listBookings(w, r, log, getter, trainerID)
			return
		}

		booking, err := getter.GetBooking(r.Context(), trainerID, id)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("Booking not found", slog.String("booking_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "booking not found"))
			return
		}

		if err != nil {
			log.Error("Failed to get booking", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get booking"))
			return
		}

		log.Info("Booking retrieved", slog.String("booking_id", id))
		render.JSON(w, r, Response{Booking: *booking})
	}
}

func listBookings(w http.ResponseWriter, r *http.Request, log *slog.Logger, getter BookingGetter, trainerID string) {
	var date *time.Time
	var status *string

	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			log.Error("Invalid date filter", slog.String("date", d))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "date must be YYYY-MM-DD"))
			return
		}
		date = &parsed
	}

	if s := r.URL.Query().Get("status"); s != "" {
		status = &s
	}

	bookings, err := getter.ListBookings(r.Context(), trainerID, date, status)
	if err != nil {
		log.Error("Failed to list bookings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list bookings"))
		return
	}

	log.Info("Bookings listed", slog.Int("count", len(bookings)))
	render.JSON(w, r, ListResponse{Bookings: bookings})
}
