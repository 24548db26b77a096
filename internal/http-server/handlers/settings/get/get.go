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

type SettingsGetter interface {
	GetSettings(ctx context.Context, trainerID string) (*api.SettingsResponse, error)
}

type Response struct {
	response.Response
	Settings api.SettingsResponse `json:"settings,omitempty"`
}

func New(log *slog.Logger, getter SettingsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.settings.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		trainerID := identity.TrainerID(r.Context())

		settings, err := getter.GetSettings(r.Context(), trainerID)
		if err != nil {
			log.Error("Failed to get settings", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get settings"))
			return
		}

		log.Info("Settings retrieved", slog.String("trainer_id", trainerID))
		responseOK(w, r, settings)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, settings *api.SettingsResponse) {
	render.JSON(w, r, Response{
		Settings: *settings,
	})
}
