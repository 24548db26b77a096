package notify

import (
	"context"
	"log/slog"
	"time"

	"fitbook-service/internal/models"
	"fitbook-service/pkg/sl"
)

// Notifier delivers trainer notifications after a booking mutation.
// Delivery is fire-and-forget: implementations log failures and never
// return them, so a committed booking can not be invalidated downstream.
type Notifier interface {
	Notify(ctx context.Context, trainerID, title, message, notificationType string)
}

type Store interface {
	CreateNotification(ctx context.Context, notification *models.Notification) (string, error)
}

type StoreNotifier struct {
	log   *slog.Logger
	store Store
}

func New(log *slog.Logger, store Store) *StoreNotifier {
	return &StoreNotifier{log: log, store: store}
}

func (n *StoreNotifier) Notify(ctx context.Context, trainerID, title, message, notificationType string) {
	const op = "notify.StoreNotifier.Notify"

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := n.store.CreateNotification(ctx, &models.Notification{
		TrainerID: trainerID,
		Title:     title,
		Message:   message,
		Type:      notificationType,
	})
	if err != nil {
		n.log.Error("Failed to deliver notification",
			slog.String("op", op),
			slog.String("trainer_id", trainerID),
			sl.Err(err),
		)
	}
}
