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

type NotificationLister interface {
	ListNotifications(ctx context.Context, trainerID string) ([]*api.NotificationResponse, error)
}

type ListResponse struct {
	response.Response
	Notifications []*api.NotificationResponse `json:"notifications"`
}

func New(log *slog.Logger, lister NotificationLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.notifications.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		trainerID := identity.TrainerID(r.Context())

		notifications, err := lister.ListNotifications(r.Context(), trainerID)
		if err != nil {
			log.Error("Failed to list notifications", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list notifications"))
			return
		}

		log.Info("Notifications listed", slog.Int("count", len(notifications)))
		render.JSON(w, r, ListResponse{Notifications: notifications})
	}
}
