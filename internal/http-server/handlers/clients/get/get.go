package get

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
)

type ClientGetter interface {
	GetClient(ctx context.Context, trainerID, clientID string) (*api.ClientResponse, error)
	ListClients(ctx context.Context, trainerID string) ([]*api.ClientResponse, error)
}

type Response struct {
	response.Response
	Client api.ClientResponse `json:"client,omitzero"`
}

type ListResponse struct {
	response.Response
	Clients []*api.ClientResponse `json:"clients"`
}

func New(log *slog.Logger, getter ClientGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.clients.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		trainerID := identity.TrainerID(r.Context())

		id := chi.URLParam(r, "id")
		if id == "" {
			clients, err := getter.ListClients(r.Context(), trainerID)
			if err != nil {
				log.Error("Failed to list clients", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list clients"))
				return
			}

			log.Info("Clients listed", slog.Int("count", len(clients)))
			render.JSON(w, r, ListResponse{Clients: clients})
			return
		}

		client, err := getter.GetClient(r.Context(), trainerID, id)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("Client not found", slog.String("client_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "client not found"))
			return
		}

		if err != nil {
			log.Error("Failed to get client", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get client"))
			return
		}

		log.Info("Client retrieved", slog.String("client_id", id))
		render.JSON(w, r, Response{Client: *client})
	}
}
