package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fitbook-service/internal/models"
	"fitbook-service/pkg/response"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// #### availability config ####

// defaults for a trainer who has never saved settings: Mon-Fri 09:00-17:00,
// lunch 12:00-13:00, 60-minute sessions, no buffer.
var defaultDays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

func (s *Storage) GetOrCreateAvailabilityConfig(ctx context.Context, trainerID string) (*models.AvailabilityConfig, error) {
	const op = "storage.postgres.GetOrCreateAvailabilityConfig"

	cfg, err := s.getAvailabilityConfig(ctx, trainerID)
	if err == nil {
		return cfg, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO availability_config
		(trainer_id, days_available, start_time, end_time, break_start, break_end, session_duration, buffer_time, timezone)
		VALUES ($1, $2, '09:00', '17:00', '12:00', '13:00', 60, 0, '')
		ON CONFLICT (trainer_id) DO NOTHING`,
		trainerID,
		pq.Array(defaultDays),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cfg, err = s.getAvailabilityConfig(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cfg, nil
}

func (s *Storage) getAvailabilityConfig(ctx context.Context, trainerID string) (*models.AvailabilityConfig, error) {
	var cfg models.AvailabilityConfig

	err := s.db.QueryRowContext(ctx,
		`SELECT days_available, start_time, end_time, break_start, break_end, session_duration, buffer_time, timezone
		FROM availability_config WHERE trainer_id=$1`, trainerID).
		Scan(
			pq.Array(&cfg.DaysAvailable),
			&cfg.StartTime,
			&cfg.EndTime,
			&cfg.BreakStart,
			&cfg.BreakEnd,
			&cfg.SessionDuration,
			&cfg.BufferTime,
			&cfg.Timezone,
		)
	if err != nil {
		return nil, err
	}

	cfg.TrainerID = trainerID

	return &cfg, nil
}

func (s *Storage) UpsertAvailabilityConfig(ctx context.Context, cfg *models.AvailabilityConfig) error {
	const op = "storage.postgres.UpsertAvailabilityConfig"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO availability_config
		(trainer_id, days_available, start_time, end_time, break_start, break_end, session_duration, buffer_time, timezone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (trainer_id)
		DO UPDATE
		SET days_available = EXCLUDED.days_available,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			break_start = EXCLUDED.break_start,
			break_end = EXCLUDED.break_end,
			session_duration = EXCLUDED.session_duration,
			buffer_time = EXCLUDED.buffer_time,
			timezone = EXCLUDED.timezone`,
		cfg.TrainerID,
		pq.Array(cfg.DaysAvailable),
		cfg.StartTime,
		cfg.EndTime,
		cfg.BreakStart,
		cfg.BreakEnd,
		cfg.SessionDuration,
		cfg.BufferTime,
		cfg.Timezone,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// #### clients ####

func (s *Storage) CreateClient(ctx context.Context, client *models.Client) (string, error) {
	const op = "storage.postgres.CreateClient"

	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clients (client_id, trainer_id, name, email, phone)
		VALUES ($1, $2, $3, $4, $5)`,
		id,
		client.TrainerID,
		client.Name,
		client.Email,
		client.Phone,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetClient(ctx context.Context, trainerID, clientID string) (*models.Client, error) {
	const op = "storage.postgres.GetClient"

	var client models.Client

	err := s.db.QueryRowContext(ctx,
		`SELECT name, email, phone FROM clients WHERE client_id=$1 AND trainer_id=$2`,
		clientID, trainerID).
		Scan(&client.Name, &client.Email, &client.Phone)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client.ClientID = clientID
	client.TrainerID = trainerID

	return &client, nil
}

func (s *Storage) ListClients(ctx context.Context, trainerID string) ([]*models.Client, error) {
	const op = "storage.postgres.ListClients"

	rows, err := s.db.QueryContext(ctx,
		`SELECT client_id, name, email, phone FROM clients WHERE trainer_id=$1 ORDER BY name`,
		trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var clients []*models.Client

	for rows.Next() {
		var client models.Client

		err := rows.Scan(&client.ClientID, &client.Name, &client.Email, &client.Phone)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		client.TrainerID = trainerID
		clients = append(clients, &client)
	}

	return clients, nil
}

// #### session pricing ####

func (s *Storage) CreateSessionPricing(ctx context.Context, pricing *models.SessionPricing) (string, error) {
	const op = "storage.postgres.CreateSessionPricing"

	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_pricing (pricing_id, trainer_id, session_type, duration_minutes, price, currency, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id,
		pricing.TrainerID,
		pricing.Type,
		pricing.DurationMinutes,
		pricing.Price,
		pricing.Currency,
		pricing.Active,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetSessionPricing(ctx context.Context, trainerID, pricingID string) (*models.SessionPricing, error) {
	const op = "storage.postgres.GetSessionPricing"

	var pricing models.SessionPricing

	err := s.db.QueryRowContext(ctx,
		`SELECT session_type, duration_minutes, price, currency, active
		FROM session_pricing WHERE pricing_id=$1 AND trainer_id=$2`,
		pricingID, trainerID).
		Scan(&pricing.Type, &pricing.DurationMinutes, &pricing.Price, &pricing.Currency, &pricing.Active)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pricing.PricingID = pricingID
	pricing.TrainerID = trainerID

	return &pricing, nil
}

func (s *Storage) ListSessionPricing(ctx context.Context, trainerID string) ([]*models.SessionPricing, error) {
	const op = "storage.postgres.ListSessionPricing"

	rows, err := s.db.QueryContext(ctx,
		`SELECT pricing_id, session_type, duration_minutes, price, currency, active
		FROM session_pricing WHERE trainer_id=$1 ORDER BY session_type`,
		trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var pricings []*models.SessionPricing

	for rows.Next() {
		var pricing models.SessionPricing

		err := rows.Scan(&pricing.PricingID, &pricing.Type, &pricing.DurationMinutes, &pricing.Price, &pricing.Currency, &pricing.Active)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		pricing.TrainerID = trainerID
		pricings = append(pricings, &pricing)
	}

	return pricings, nil
}

// #### bookings ####

// CreateBooking inserts a confirmed booking. The partial unique index on
// (trainer_id, booking_date, booking_time) WHERE status='confirmed' is the
// authority for the no-double-booking invariant: two concurrent inserts for
// the same slot cannot both commit, the loser gets ErrSlotTaken.
func (s *Storage) CreateBooking(ctx context.Context, booking *models.Booking) (string, error) {
	const op = "storage.postgres.CreateBooking"

	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings
		(booking_id, trainer_id, client_id, pricing_id, booking_date, booking_time, status, paid, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id,
		booking.TrainerID,
		booking.ClientID,
		booking.PricingID,
		booking.Date,
		booking.Time,
		string(booking.Status),
		booking.Paid,
		booking.Notes,
	)
	if err != nil {
		sqlErr, ok := err.(*pq.Error)
		if ok && sqlErr.Code == "23505" {
			return "", fmt.Errorf("%s: %w", op, response.ErrSlotTaken)
		}
		if ok && sqlErr.Code == "23503" {
			return "", fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetBooking(ctx context.Context, trainerID, bookingID string) (*models.Booking, error) {
	const op = "storage.postgres.GetBooking"

	var booking models.Booking
	var status string

	err := s.db.QueryRowContext(ctx,
		`SELECT client_id, pricing_id, booking_date, booking_time, status, paid, notes, created_at
		FROM bookings WHERE booking_id=$1 AND trainer_id=$2`,
		bookingID, trainerID).
		Scan(
			&booking.ClientID,
			&booking.PricingID,
			&booking.Date,
			&booking.Time,
			&status,
			&booking.Paid,
			&booking.Notes,
			&booking.CreatedAt,
		)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	booking.BookingID = bookingID
	booking.TrainerID = trainerID
	booking.Status = models.BookingStatus(status)

	return &booking, nil
}

func (s *Storage) ListBookings(ctx context.Context, trainerID string, date *time.Time, status *string) ([]*models.Booking, error) {
	const op = "storage.postgres.ListBookings"

	query := `SELECT booking_id, client_id, pricing_id, booking_date, booking_time, status, paid, notes, created_at
		FROM bookings WHERE trainer_id=$1`
	args := []any{trainerID}

	if date != nil {
		args = append(args, *date)
		query += fmt.Sprintf(" AND booking_date=$%d", len(args))
	}
	if status != nil {
		args = append(args, *status)
		query += fmt.Sprintf(" AND status=$%d", len(args))
	}

	query += " ORDER BY booking_date, booking_time"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var bookings []*models.Booking

	for rows.Next() {
		var booking models.Booking
		var bookingStatus string

		err := rows.Scan(
			&booking.BookingID,
			&booking.ClientID,
			&booking.PricingID,
			&booking.Date,
			&booking.Time,
			&bookingStatus,
			&booking.Paid,
			&booking.Notes,
			&booking.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		booking.TrainerID = trainerID
		booking.Status = models.BookingStatus(bookingStatus)

		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

// ListBookedTimes returns the confirmed start times for one trainer day,
// feeding the conflict filter on the slot preview.
func (s *Storage) ListBookedTimes(ctx context.Context, trainerID string, date time.Time) (map[string]bool, error) {
	const op = "storage.postgres.ListBookedTimes"

	rows, err := s.db.QueryContext(ctx,
		`SELECT booking_time FROM bookings
		WHERE trainer_id=$1 AND booking_date=$2 AND status='confirmed'`,
		trainerID, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	taken := make(map[string]bool)

	for rows.Next() {
		var bookingTime string

		if err := rows.Scan(&bookingTime); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		taken[bookingTime] = true
	}

	return taken, nil
}

func (s *Storage) UpdateBookingStatus(ctx context.Context, trainerID, bookingID string, status models.BookingStatus) error {
	const op = "storage.postgres.UpdateBookingStatus"

	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET status=$1 WHERE booking_id=$2 AND trainer_id=$3`,
		string(status), bookingID, trainerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// RescheduleBooking moves a confirmed booking to a new (date, time). The
// partial unique index replaces the row's own entry during the update, so a
// booking never conflicts with its previous slot.
func (s *Storage) RescheduleBooking(ctx context.Context, trainerID, bookingID string, date time.Time, bookingTime string) error {
	const op = "storage.postgres.RescheduleBooking"

	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET booking_date=$1, booking_time=$2
		WHERE booking_id=$3 AND trainer_id=$4 AND status='confirmed'`,
		date, bookingTime, bookingID, trainerID)
	if err != nil {
		sqlErr, ok := err.(*pq.Error)
		if ok && sqlErr.Code == "23505" {
			return fmt.Errorf("%s: %w", op, response.ErrSlotTaken)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeleteBooking(ctx context.Context, trainerID, bookingID string) error {
	const op = "storage.postgres.DeleteBooking"

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM bookings WHERE booking_id=$1 AND trainer_id=$2`,
		bookingID, trainerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// #### notifications ####

func (s *Storage) CreateNotification(ctx context.Context, notification *models.Notification) (string, error) {
	const op = "storage.postgres.CreateNotification"

	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (notification_id, trainer_id, title, message, notification_type)
		VALUES ($1, $2, $3, $4, $5)`,
		id,
		notification.TrainerID,
		notification.Title,
		notification.Message,
		notification.Type,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) ListNotifications(ctx context.Context, trainerID string) ([]*models.Notification, error) {
	const op = "storage.postgres.ListNotifications"

	rows, err := s.db.QueryContext(ctx,
		`SELECT notification_id, title, message, notification_type, created_at
		FROM notifications WHERE trainer_id=$1 ORDER BY created_at DESC`,
		trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var notifications []*models.Notification

	for rows.Next() {
		var notification models.Notification

		err := rows.Scan(
			&notification.NotificationID,
			&notification.Title,
			&notification.Message,
			&notification.Type,
			&notification.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		notification.TrainerID = trainerID
		notifications = append(notifications, &notification)
	}

	return notifications, nil
}
