package create

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
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type PricingCreator interface {
	CreateSessionPricing(ctx context.Context, trainerID string, req *api.SessionPricingRequest) (*api.SessionPricingResponse, error)
}

type Request struct {
	api.SessionPricingRequest
}

type Response struct {
	response.Response
	Pricing api.SessionPricingResponse `json:"pricing,omitempty"`
}

func New(log *slog.Logger, creator PricingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pricing.create.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

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

		pricing, err := creator.CreateSessionPricing(r.Context(), trainerID, &req.SessionPricingRequest)
		if err != nil {
			log.Error("Failed to create session pricing", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create session pricing"))
			return
		}

		log.Info("Session pricing created", slog.String("pricing_id", pricing.ID))

		w.WriteHeader(http.StatusCreated)
		responseOK(w, r, pricing)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, pricing *api.SessionPricingResponse) {
	render.JSON(w, r, Response{
		Pricing: *pricing,
	})
}
