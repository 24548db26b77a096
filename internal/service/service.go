package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitbook-service/api"
	"fitbook-service/internal/lock"
	"fitbook-service/internal/models"
	"fitbook-service/internal/notify"
	"fitbook-service/internal/schedule"
	"fitbook-service/pkg/response"
)

type Service struct {
	store    Store
	locker   lock.Locker
	notifier notify.Notifier
}

func NewService(store Store, locker lock.Locker, notifier notify.Notifier) *Service {
	return &Service{store: store, locker: locker, notifier: notifier}
}

type Store interface {
	// Availability config
	GetOrCreateAvailabilityConfig(ctx context.Context, trainerID string) (*models.AvailabilityConfig, error)
	UpsertAvailabilityConfig(ctx context.Context, cfg *models.AvailabilityConfig) error

	// Clients
	CreateClient(ctx context.Context, client *models.Client) (string, error)
	GetClient(ctx context.Context, trainerID, clientID string) (*models.Client, error)
	ListClients(ctx context.Context, trainerID string) ([]*models.Client, error)

	// Session pricing
	CreateSessionPricing(ctx context.Context, pricing *models.SessionPricing) (string, error)
	GetSessionPricing(ctx context.Context, trainerID, pricingID string) (*models.SessionPricing, error)
	ListSessionPricing(ctx context.Context, trainerID string) ([]*models.SessionPricing, error)

	// Bookings
	CreateBooking(ctx context.Context, booking *models.Booking) (string, error)
	GetBooking(ctx context.Context, trainerID, bookingID string) (*models.Booking, error)
	ListBookings(ctx context.Context, trainerID string, date *time.Time, status *string) ([]*models.Booking, error)
	ListBookedTimes(ctx context.Context, trainerID string, date time.Time) (map[string]bool, error)
	UpdateBookingStatus(ctx context.Context, trainerID, bookingID string, status models.BookingStatus) error
	RescheduleBooking(ctx context.Context, trainerID, bookingID string, date time.Time, bookingTime string) error
	DeleteBooking(ctx context.Context, trainerID, bookingID string) error

	// Notifications
	ListNotifications(ctx context.Context, trainerID string) ([]*models.Notification, error)
}

const lockTTL = 10 * time.Second

// #### settings ####

func (s *Service) GetSettings(ctx context.Context, trainerID string) (*api.SettingsResponse, error) {
	const op = "service.GetSettings"

	cfg, err := s.store.GetOrCreateAvailabilityConfig(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return settingsResponse(cfg), nil
}

func (s *Service) UpdateSettings(ctx context.Context, trainerID string, req *api.SettingsRequest) (*api.SettingsResponse, error) {
	const op = "service.UpdateSettings"

	days := make(map[time.Weekday]bool, 7)
	var enabled []string

	for name, on := range req.DaysAvailable {
		day, ok := schedule.ParseWeekday(name)
		if !ok {
			return nil, fmt.Errorf("%s: %w: unknown day %q", op, response.ErrInvalidConfig, name)
		}
		if on {
			days[day] = true
		}
	}

	// canonical Monday-first order for storage
	for d := time.Monday; ; d = (d + 1) % 7 {
		if days[d] {
			enabled = append(enabled, schedule.WeekdayName(d))
		}
		if d == time.Sunday {
			break
		}
	}

	schedCfg, err := scheduleConfig(&models.AvailabilityConfig{
		DaysAvailable:   enabled,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		BreakStart:      req.BreakStart,
		BreakEnd:        req.BreakEnd,
		SessionDuration: req.SessionDuration,
		BufferTime:      req.BufferTime,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := schedCfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cfg := &models.AvailabilityConfig{
		TrainerID:       trainerID,
		DaysAvailable:   enabled,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		BreakStart:      req.BreakStart,
		BreakEnd:        req.BreakEnd,
		SessionDuration: req.SessionDuration,
		BufferTime:      req.BufferTime,
		Timezone:        req.Timezone,
	}

	if err := s.store.UpsertAvailabilityConfig(ctx, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return settingsResponse(cfg), nil
}

// #### slots ####

// AvailableSlots is the client-facing preview: the generator's output for
// the date minus slots already taken by confirmed bookings. The server never
// trusts this list back; booking requests are re-validated from scratch.
func (s *Service) AvailableSlots(ctx context.Context, trainerID, dateStr string) (*api.SlotsResponse, error) {
	const op = "service.AvailableSlots"

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid date: %w", op, response.ErrBadRequest)
	}

	cfg, err := s.store.GetOrCreateAvailabilityConfig(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	schedCfg, err := scheduleConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slots := schedule.GenerateSlots(schedCfg, date)

	taken, err := s.store.ListBookedTimes(ctx, trainerID, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.SlotsResponse{
		Date:  dateStr,
		Slots: schedule.FilterBooked(slots, taken),
	}, nil
}

// #### bookings ####

// CreateBooking is the server-side authority for a booking request:
// day gate, slot-grid membership recomputed from the config, then an
// atomic check-and-insert guarded by the per-slot lock and decided by the
// storage unique constraint.
func (s *Service) CreateBooking(ctx context.Context, trainerID string, req *api.BookingRequest) (*api.BookingResponse, error) {
	const op = "service.CreateBooking"

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid date: %w", op, response.ErrBadRequest)
	}

	cfg, err := s.store.GetOrCreateAvailabilityConfig(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	schedCfg, err := scheduleConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !schedCfg.Days[date.Weekday()] {
		return nil, fmt.Errorf("%s: %w", op, response.ErrDayUnavailable)
	}

	if !schedule.HasSlot(schedCfg, date, req.Time) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSlotOutOfWindow)
	}

	if _, err := s.store.GetClient(ctx, trainerID, req.ClientID); err != nil {
		return nil, fmt.Errorf("%s: client: %w", op, err)
	}

	if _, err := s.store.GetSessionPricing(ctx, trainerID, req.SessionPricingID); err != nil {
		return nil, fmt.Errorf("%s: session pricing: %w", op, err)
	}

	lockKey := slotLockKey(trainerID, req.Date, req.Time)

	locked, err := s.locker.Lock(ctx, lockKey, lockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	booking := &models.Booking{
		TrainerID: trainerID,
		ClientID:  req.ClientID,
		PricingID: req.SessionPricingID,
		Date:      date,
		Time:      req.Time,
		Status:    models.BookingConfirmed,
		Notes:     req.Notes,
	}

	bookingID, err := s.store.CreateBooking(ctx, booking)
	if err != nil {
		if errors.Is(err, response.ErrSlotTaken) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrSlotTaken)
		}
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.notifier.Notify(ctx, trainerID, "New booking",
		fmt.Sprintf("Session booked for %s at %s", req.Date, req.Time), "booking")

	return s.GetBooking(ctx, trainerID, bookingID)
}

func (s *Service) GetBooking(ctx context.Context, trainerID, bookingID string) (*api.BookingResponse, error) {
	const op = "service.GetBooking"

	booking, err := s.store.GetBooking(ctx, trainerID, bookingID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookingResponse(booking), nil
}

func (s *Service) ListBookings(ctx context.Context, trainerID string, date *time.Time, status *string) ([]*api.BookingResponse, error) {
	const op = "service.ListBookings"

	bookings, err := s.store.ListBookings(ctx, trainerID, date, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		result = append(result, bookingResponse(booking))
	}

	return result, nil
}

// CancelBooking is a pure status transition confirmed -> cancelled. It does
// not re-run slot validation and frees the (date, time) pair immediately:
// the partial unique index only covers confirmed rows.
func (s *Service) CancelBooking(ctx context.Context, trainerID, bookingID string) (*api.BookingResponse, error) {
	const op = "service.CancelBooking"

	booking, err := s.store.GetBooking(ctx, trainerID, bookingID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if booking.Status != models.BookingConfirmed {
		return nil, fmt.Errorf("%s: booking is not confirmed: %w", op, response.ErrConflict)
	}

	if err := s.store.UpdateBookingStatus(ctx, trainerID, bookingID, models.BookingCancelled); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.notifier.Notify(ctx, trainerID, "Booking cancelled",
		fmt.Sprintf("Session on %s at %s was cancelled", booking.Date.Format("2006-01-02"), booking.Time), "booking")

	return s.GetBooking(ctx, trainerID, bookingID)
}

// RescheduleBooking re-runs the full validation for the new (date, time).
// The booking's previous slot is excluded from the conflict check by
// construction: the unique index entry moves with the row's update.
func (s *Service) RescheduleBooking(ctx context.Context, trainerID, bookingID string, req *api.RescheduleRequest) (*api.BookingResponse, error) {
	const op = "service.RescheduleBooking"

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid date: %w", op, response.ErrBadRequest)
	}

	booking, err := s.store.GetBooking(ctx, trainerID, bookingID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if booking.Status != models.BookingConfirmed {
		return nil, fmt.Errorf("%s: booking is not confirmed: %w", op, response.ErrConflict)
	}

	cfg, err := s.store.GetOrCreateAvailabilityConfig(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	schedCfg, err := scheduleConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !schedCfg.Days[date.Weekday()] {
		return nil, fmt.Errorf("%s: %w", op, response.ErrDayUnavailable)
	}

	if !schedule.HasSlot(schedCfg, date, req.Time) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSlotOutOfWindow)
	}

	lockKey := slotLockKey(trainerID, req.Date, req.Time)

	locked, err := s.locker.Lock(ctx, lockKey, lockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	if err := s.store.RescheduleBooking(ctx, trainerID, bookingID, date, req.Time); err != nil {
		if errors.Is(err, response.ErrSlotTaken) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrSlotTaken)
		}
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.notifier.Notify(ctx, trainerID, "Booking rescheduled",
		fmt.Sprintf("Session moved to %s at %s", req.Date, req.Time), "booking")

	return s.GetBooking(ctx, trainerID, bookingID)
}

func (s *Service) DeleteBooking(ctx context.Context, trainerID, bookingID string) error {
	const op = "service.DeleteBooking"

	err := s.store.DeleteBooking(ctx, trainerID, bookingID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// #### clients ####

func (s *Service) CreateClient(ctx context.Context, trainerID string, req *api.ClientRequest) (*api.ClientResponse, error) {
	const op = "service.CreateClient"

	client := &models.Client{
		TrainerID: trainerID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
	}

	id, err := s.store.CreateClient(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client.ClientID = id

	return clientResponse(client), nil
}

func (s *Service) GetClient(ctx context.Context, trainerID, clientID string) (*api.ClientResponse, error) {
	const op = "service.GetClient"

	client, err := s.store.GetClient(ctx, trainerID, clientID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return clientResponse(client), nil
}

func (s *Service) ListClients(ctx context.Context, trainerID string) ([]*api.ClientResponse, error) {
	const op = "service.ListClients"

	clients, err := s.store.ListClients(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.ClientResponse, 0, len(clients))
	for _, client := range clients {
		result = append(result, clientResponse(client))
	}

	return result, nil
}

// #### session pricing ####

func (s *Service) CreateSessionPricing(ctx context.Context, trainerID string, req *api.SessionPricingRequest) (*api.SessionPricingResponse, error) {
	const op = "service.CreateSessionPricing"

	pricing := &models.SessionPricing{
		TrainerID:       trainerID,
		Type:            req.Type,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Currency:        req.Currency,
		Active:          req.Active,
	}

	id, err := s.store.CreateSessionPricing(ctx, pricing)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pricing.PricingID = id

	return pricingResponse(pricing), nil
}

func (s *Service) ListSessionPricing(ctx context.Context, trainerID string) ([]*api.SessionPricingResponse, error) {
	const op = "service.ListSessionPricing"

	pricings, err := s.store.ListSessionPricing(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.SessionPricingResponse, 0, len(pricings))
	for _, pricing := range pricings {
		result = append(result, pricingResponse(pricing))
	}

	return result, nil
}

// #### notifications ####

func (s *Service) ListNotifications(ctx context.Context, trainerID string) ([]*api.NotificationResponse, error) {
	const op = "service.ListNotifications"

	notifications, err := s.store.ListNotifications(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, &api.NotificationResponse{
			ID:        n.NotificationID,
			TrainerID: n.TrainerID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      n.Type,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}

	return result, nil
}

// #### helpers ####

func slotLockKey(trainerID, date, bookingTime string) string {
	return fmt.Sprintf("slot:%s:%s:%s", trainerID, date, bookingTime)
}

// scheduleConfig converts the stored config into the pure engine's form.
func scheduleConfig(cfg *models.AvailabilityConfig) (schedule.Config, error) {
	days := make(map[time.Weekday]bool, 7)
	for _, name := range cfg.DaysAvailable {
		day, ok := schedule.ParseWeekday(name)
		if !ok {
			return schedule.Config{}, fmt.Errorf("%w: unknown day %q", response.ErrInvalidConfig, name)
		}
		days[day] = true
	}

	start, err := schedule.ParseClock(cfg.StartTime)
	if err != nil {
		return schedule.Config{}, fmt.Errorf("%w: %v", response.ErrInvalidConfig, err)
	}
	end, err := schedule.ParseClock(cfg.EndTime)
	if err != nil {
		return schedule.Config{}, fmt.Errorf("%w: %v", response.ErrInvalidConfig, err)
	}
	breakStart, err := schedule.ParseClock(cfg.BreakStart)
	if err != nil {
		return schedule.Config{}, fmt.Errorf("%w: %v", response.ErrInvalidConfig, err)
	}
	breakEnd, err := schedule.ParseClock(cfg.BreakEnd)
	if err != nil {
		return schedule.Config{}, fmt.Errorf("%w: %v", response.ErrInvalidConfig, err)
	}

	return schedule.Config{
		Days:            days,
		StartTime:       start,
		EndTime:         end,
		BreakStart:      breakStart,
		BreakEnd:        breakEnd,
		SessionDuration: cfg.SessionDuration,
		BufferTime:      cfg.BufferTime,
	}, nil
}

func settingsResponse(cfg *models.AvailabilityConfig) *api.SettingsResponse {
	days := make(map[string]bool, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		days[schedule.WeekdayName(d)] = false
	}
	for _, name := range cfg.DaysAvailable {
		if day, ok := schedule.ParseWeekday(name); ok {
			days[schedule.WeekdayName(day)] = true
		}
	}

	return &api.SettingsResponse{
		TrainerID:       cfg.TrainerID,
		DaysAvailable:   days,
		StartTime:       cfg.StartTime,
		EndTime:         cfg.EndTime,
		BreakStart:      cfg.BreakStart,
		BreakEnd:        cfg.BreakEnd,
		SessionDuration: cfg.SessionDuration,
		BufferTime:      cfg.BufferTime,
		Timezone:        cfg.Timezone,
	}
}

func bookingResponse(booking *models.Booking) *api.BookingResponse {
	return &api.BookingResponse{
		ID:               booking.BookingID,
		TrainerID:        booking.TrainerID,
		ClientID:         booking.ClientID,
		SessionPricingID: booking.PricingID,
		Date:             booking.Date.Format("2006-01-02"),
		Time:             booking.Time,
		Status:           string(booking.Status),
		Paid:             booking.Paid,
		Notes:            booking.Notes,
	}
}

func clientResponse(client *models.Client) *api.ClientResponse {
	return &api.ClientResponse{
		ID:        client.ClientID,
		TrainerID: client.TrainerID,
		Name:      client.Name,
		Email:     client.Email,
		Phone:     client.Phone,
	}
}

func pricingResponse(pricing *models.SessionPricing) *api.SessionPricingResponse {
	return &api.SessionPricingResponse{
		ID:              pricing.PricingID,
		TrainerID:       pricing.TrainerID,
		Type:            pricing.Type,
		DurationMinutes: pricing.DurationMinutes,
		Price:           pricing.Price,
		Currency:        pricing.Currency,
		Active:          pricing.Active,
	}
}
