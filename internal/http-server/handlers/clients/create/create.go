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

type ClientCreator interface {
	CreateClient(ctx context.Context, trainerID string, req *api.ClientRequest) (*api.ClientResponse, error)
}

type Request struct {
	api.ClientRequest
}

type Response struct {
	response.Response
	Client api.ClientResponse `json:"client,omitempty"`
}

func New(log *slog.Logger, creator ClientCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.clients.create.New"

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

		client, err := creator.CreateClient(r.Context(), trainerID, &req.ClientRequest)
		if err != nil {
			log.Error("Failed to create client", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create client"))
			return
		}

		log.Info("Client created", slog.String("client_id", client.ID))

		w.WriteHeader(http.StatusCreated)
		responseOK(w, r, client)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, client *api.ClientResponse) {
	render.JSON(w, r, Response{
		Client: *client,
	})
}
