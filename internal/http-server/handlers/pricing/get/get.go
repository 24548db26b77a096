package get

import (
	"context"
	"log/slog"
	"net/http"

	"fitbook-service/api"
	"fitbook-service/pkg/middleware/identity"
	"fitbook-service/pkg/response"
	"fitbook-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type PricingLister interface {
	ListSessionPricing(ctx context.Context, trainerID string) ([]*api.SessionPricingResponse, error)
}

type ListResponse struct {
	response.Response
	Pricing []*api.SessionPricingResponse `json:"pricing"`
}

func New(log *slog.Logger, lister PricingLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pricing.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		trainerID := identity.TrainerID(r.Context())

		pricing, err := lister.ListSessionPricing(r.Context(), trainerID)
		if err != nil {
			log.Error("Failed to list session pricing", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list session pricing"))
			return
		}

		log.Info("Session pricing listed", slog.Int("count", len(pricing)))
		render.JSON(w, r, ListResponse{Pricing: pricing})
	}
}
