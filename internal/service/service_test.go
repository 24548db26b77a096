package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"fitbook-service/api"
	"fitbook-service/internal/models"
	"fitbook-service/internal/notify"
	"fitbook-service/pkg/response"
)

// fakeStore is an in-memory Store that emulates the partial unique index:
// CreateBooking and RescheduleBooking fail with ErrSlotTaken when another
// confirmed booking holds the same (trainer, date, time).
type fakeStore struct {
	mu            sync.Mutex
	configs       map[string]*models.AvailabilityConfig
	clients       map[string]*models.Client
	pricings      map[string]*models.SessionPricing
	bookings      map[string]*models.Booking
	notifications []*models.Notification
	nextID        int
	failNotify    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		configs:  make(map[string]*models.AvailabilityConfig),
		clients:  make(map[string]*models.Client),
		pricings: make(map[string]*models.SessionPricing),
		bookings: make(map[string]*models.Booking),
	}
}

func (f *fakeStore) genID() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeStore) GetOrCreateAvailabilityConfig(_ context.Context, trainerID string) (*models.AvailabilityConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cfg, ok := f.configs[trainerID]; ok {
		copied := *cfg
		return &copied, nil
	}

	cfg := &models.AvailabilityConfig{
		TrainerID:       trainerID,
		DaysAvailable:   []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		StartTime:       "09:00",
		EndTime:         "17:00",
		BreakStart:      "12:00",
		BreakEnd:        "13:00",
		SessionDuration: 60,
		BufferTime:      0,
	}
	f.configs[trainerID] = cfg

	copied := *cfg
	return &copied, nil
}

func (f *fakeStore) UpsertAvailabilityConfig(_ context.Context, cfg *models.AvailabilityConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *cfg
	f.configs[cfg.TrainerID] = &copied

	return nil
}

func (f *fakeStore) CreateClient(_ context.Context, client *models.Client) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.genID()
	copied := *client
	copied.ClientID = id
	f.clients[id] = &copied

	return id, nil
}

func (f *fakeStore) GetClient(_ context.Context, trainerID, clientID string) (*models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	client, ok := f.clients[clientID]
	if !ok || client.TrainerID != trainerID {
		return nil, response.ErrNotFound
	}

	copied := *client
	return &copied, nil
}

func (f *fakeStore) ListClients(_ context.Context, trainerID string) ([]*models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var clients []*models.Client
	for _, client := range f.clients {
		if client.TrainerID == trainerID {
			copied := *client
			clients = append(clients, &copied)
		}
	}

	return clients, nil
}

func (f *fakeStore) CreateSessionPricing(_ context.Context, pricing *models.SessionPricing) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.genID()
	copied := *pricing
	copied.PricingID = id
	f.pricings[id] = &copied

	return id, nil
}

func (f *fakeStore) GetSessionPricing(_ context.Context, trainerID, pricingID string) (*models.SessionPricing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pricing, ok := f.pricings[pricingID]
	if !ok || pricing.TrainerID != trainerID {
		return nil, response.ErrNotFound
	}

	copied := *pricing
	return &copied, nil
}

func (f *fakeStore) ListSessionPricing(_ context.Context, trainerID string) ([]*models.SessionPricing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var pricings []*models.SessionPricing
	for _, pricing := range f.pricings {
		if pricing.TrainerID == trainerID {
			copied := *pricing
			pricings = append(pricings, &copied)
		}
	}

	return pricings, nil
}

func (f *fakeStore) CreateBooking(_ context.Context, booking *models.Booking) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.bookings {
		if existing.TrainerID == booking.TrainerID &&
			existing.Status == models.BookingConfirmed &&
			existing.Date.Equal(booking.Date) &&
			existing.Time == booking.Time {
			return "", response.ErrSlotTaken
		}
	}

	id := f.genID()
	copied := *booking
	copied.BookingID = id
	f.bookings[id] = &copied

	return id, nil
}

func (f *fakeStore) GetBooking(_ context.Context, trainerID, bookingID string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[bookingID]
	if !ok || booking.TrainerID != trainerID {
		return nil, response.ErrNotFound
	}

	copied := *booking
	return &copied, nil
}

func (f *fakeStore) ListBookings(_ context.Context, trainerID string, date *time.Time, status *string) ([]*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var bookings []*models.Booking
	for _, booking := range f.bookings {
		if booking.TrainerID != trainerID {
			continue
		}
		if date != nil && !booking.Date.Equal(*date) {
			continue
		}
		if status != nil && string(booking.Status) != *status {
			continue
		}
		copied := *booking
		bookings = append(bookings, &copied)
	}

	return bookings, nil
}

func (f *fakeStore) ListBookedTimes(_ context.Context, trainerID string, date time.Time) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	taken := make(map[string]bool)
	for _, booking := range f.bookings {
		if booking.TrainerID == trainerID && booking.Status == models.BookingConfirmed && booking.Date.Equal(date) {
			taken[booking.Time] = true
		}
	}

	return taken, nil
}

func (f *fakeStore) UpdateBookingStatus(_ context.Context, trainerID, bookingID string, status models.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[bookingID]
	if !ok || booking.TrainerID != trainerID {
		return response.ErrNotFound
	}

	booking.Status = status

	return nil
}

func (f *fakeStore) RescheduleBooking(_ context.Context, trainerID, bookingID string, date time.Time, bookingTime string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[bookingID]
	if !ok || booking.TrainerID != trainerID || booking.Status != models.BookingConfirmed {
		return response.ErrNotFound
	}

	for id, existing := range f.bookings {
		if id == bookingID {
			continue
		}
		if existing.TrainerID == trainerID &&
			existing.Status == models.BookingConfirmed &&
			existing.Date.Equal(date) &&
			existing.Time == bookingTime {
			return response.ErrSlotTaken
		}
	}

	booking.Date = date
	booking.Time = bookingTime

	return nil
}

func (f *fakeStore) DeleteBooking(_ context.Context, trainerID, bookingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[bookingID]
	if !ok || booking.TrainerID != trainerID {
		return response.ErrNotFound
	}

	delete(f.bookings, bookingID)

	return nil
}

func (f *fakeStore) CreateNotification(_ context.Context, notification *models.Notification) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNotify {
		return "", errors.New("notification store down")
	}

	id := f.genID()
	copied := *notification
	copied.NotificationID = id
	f.notifications = append(f.notifications, &copied)

	return id, nil
}

func (f *fakeStore) ListNotifications(_ context.Context, trainerID string) ([]*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var notifications []*models.Notification
	for _, n := range f.notifications {
		if n.TrainerID == trainerID {
			copied := *n
			notifications = append(notifications, &copied)
		}
	}

	return notifications, nil
}

// grantLocker always grants; the storage uniqueness check remains the
// authority, which is what the double-booking tests exercise.
type grantLocker struct{}

func (grantLocker) Lock(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (grantLocker) Unlock(context.Context, string) error                      { return nil }

type denyLocker struct{}

func (denyLocker) Lock(context.Context, string, time.Duration) (bool, error) { return false, nil }
func (denyLocker) Unlock(context.Context, string) error                      { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const trainerID = "trainer-1"

// 2026-03-02 is a Monday, 2026-03-01 a Sunday.
const (
	mondayStr = "2026-03-02"
	sundayStr = "2026-03-01"
)

func newTestService(t *testing.T, store *fakeStore) (*Service, string, string) {
	t.Helper()

	svc := NewService(store, grantLocker{}, notify.New(discardLogger(), store))

	ctx := context.Background()

	client, err := svc.CreateClient(ctx, trainerID, &api.ClientRequest{Name: "Alex"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	pricing, err := svc.CreateSessionPricing(ctx, trainerID, &api.SessionPricingRequest{
		Type:            "personal",
		DurationMinutes: 60,
		Price:           50,
		Currency:        "EUR",
		Active:          true,
	})
	if err != nil {
		t.Fatalf("create pricing: %v", err)
	}

	return svc, client.ID, pricing.ID
}

func bookingReq(clientID, pricingID, date, bookingTime string) *api.BookingRequest {
	return &api.BookingRequest{
		ClientID:         clientID,
		SessionPricingID: pricingID,
		Date:             date,
		Time:             bookingTime,
	}
}

func TestCreateBooking(t *testing.T) {
	store := newFakeStore()
	svc, clientID, pricingID := newTestService(t, store)
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, trainerID, bookingReq(clientID, pricingID, mondayStr, "09:00"))
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if booking.Status != "confirmed" {
		t.Fatalf("expected confirmed status, got %s", booking.Status)
	}
	if booking.Date != mondayStr || booking.Time != "09:00" {
		t.Fatalf("unexpected booking slot: %s %s", booking.Date, booking.Time)
	}

	notifications, err := svc.ListNotifications(ctx, trainerID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
}

func TestCreateBookingDayUnavailable(t *testing.T) {
	store := newFakeStore()
	svc, clientID, pricingID := newTestService(t, store)

	_, err := svc.CreateBooking(context.Background(), trainerID, bookingReq(clientID, pricingID, sundayStr, "09:00"))
	if !errors.Is(err, response.ErrDayUnavailable) {
		t.Fatalf("expected ErrDayUnavailable, got %v", err)
	}
}

func TestCreateBookingOutOfWindow(t *testing.T) {
	store := newFakeStore()
	svc, clientID, pricingID := newTestService(t, store)
	ctx := context.Background()

	// off the slot grid
	if _, err := svc.CreateBooking(ctx, trainerID, bookingReq(clientID, pricingID, mondayStr, "09:30")); !errors.Is(err, response.ErrSlotOutOfWindow) {
		t.Fatalf("expected ErrSlotOutOfWindow for 09:30, got %v", err)
	}

	// inside the break
	if _, err := svc.CreateBooking(ctx, trainerID, bookingReq(clientID, pricingID, mondayStr, "12:00")); !errors.Is(err, response.ErrSlotOutOfWindow) {
		t.Fatalf("expected ErrSlotOutOfWindow for 12:00, got %v", err)
	}

	// after working hours
	if _, err := svc.CreateBooking(ctx, trainerID, bookingReq(clientID, pricingID, mondayStr, "17:00")); !errors.Is(err, response.ErrSlotOutOfWindow) {
		t.Fatalf("expected ErrSlotOutOfWindow for 17:00, got %v", err)
	}
}

func TestCreateBookingUnknownClient(t *testing.T) {
	store := newFakeStore()
	svc, _, pricingID := newTestService(t, store)

	_, err := svc.CreateBooking(context.Background(), trainerID, bookingReq("missing", pricingID, mondayStr, "09:00"))
	if !errors.Is(err, response.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateBookingLocked(t *testing.T) {
	store := newFakeStore()
	_, clientID, pricingID := newTestService(t, store)

	locked := NewService(store, denyLocker{}, notify.New(discardLogger(), store))

	_, err := locked.CreateBooking(context.Background(), trainerID, bookingReq(clientID, pricingID, mondayStr, "09:00"))
	if !errors.Is(err, response.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestNoDoubleConfirm(t *testing.T) {
	store := newFakeStore()
	svc, clientID, pricingID := newTestService(t, store)
	ctx := context.Background()

	const attempts = 20

	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(ctx, trainerID, bookingReq(clientID, pricingID, mondayStr, "10:00"))
		}(i)
	}
	wg.Wait()

	var succeeded, taken int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, response.ErrSlotTaken):
			taken++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 {
		t.Fatalf("expected exactly 1 success, got %d", succeeded)
	}
	if taken != attempts-1 {
		t.Fatalf("expected %d ErrSlotTaken, got %d", attempts-1, taken)
	}
}

func TestCancelFreesSlot(t *testing.T) {
	store := newFakeStore()
	svc, clientID, pricingID := newTestService(t, store)
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, trainerID, bookingReq(clientID, pricingID, mondayStr, "09:00"))
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	cancelled, err := svc.CancelBooking(ctx, trainerID, booking.ID)
	if err != nil {
		t.Fatalf("cancel booking: %v", err)
	}
	if cancelled.Status != "cancelled" {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}

	if _, err := svc.CreateBooking(ctx, trainerID, bookingReq(clientID, pricingID, mondayStr, "09:00")); err != nil {
		t.Fatalf("expected freed slot to be bookable, got %v", err)
	}
}

func TestCancelIsTerminal(t *testing.T) {
	store := newFakeStore()
	svc, clientID, pricingID := newTestService(t, store)
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, trainerID, bookingReq(clientID, pricingID, mondayStr, "09:00"))
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if _, err := svc.CancelBooking(ctx, trainerID, booking.ID); err != nil {
		t.Fatalf("cancel booking: %v", err)
	}

	if _, err := svc.CancelBooking(ctx, trainerID, booking.ID); !errors.Is(err, response.ErrConflict) {
		t.Fatalf("expected ErrConflict on second cancel, got %v", err)
	}
}

func TestRescheduleSelfExclusion(t *testing.T) {
	store := newFakeStore()
	svc, clientID, pricingID := newTestService(t, store)
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, trainerID, bookingReq(clientID, pricingID, mondayStr, "09:00"))
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	// moving onto its own current slot must not collide with itself
	if _, err := svc.RescheduleBooking(ctx, trainerID, booking.ID, &api.RescheduleRequest{Date: mondayStr, Time: "09:00"}); err != nil {
		t.Fatalf("reschedule onto own slot: %v", err)
	}

	moved, err := svc.RescheduleBooking(ctx, trainerID, booking.ID, &api.RescheduleRequest{Date: mondayStr, Time: "14:00"})
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if moved.Time != "14:00" {
		t.Fatalf("expected 14:00, got %s", moved.Time)
	}

	// the old slot is free for others now
	if _, err := svc.CreateBooking(ctx, trainerID, bookingReq(clientID, pricingID, mondayStr, "09:00")); err != nil {
		t.Fatalf("expected old slot to be free, got %v", err)
	}
}

func TestRescheduleOntoTakenSlot(t *testing.T) {
	store := newFakeStore()
	svc, clientID, pricingID := newTestService(t, store)
	ctx := context.Background()

	first, err := svc.CreateBooking(ctx, trainerID, bookingReq(clientID, pricingID, mondayStr, "09:00"))
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := svc.CreateBooking(ctx, trainerID, bookingReq(clientID, pricingID, mondayStr, "10:00")); err != nil {
		t.Fatalf("create second: %v", err)
	}

	_, err = svc.RescheduleBooking(ctx, trainerID, first.ID, &api.RescheduleRequest{Date: mondayStr, Time: "10:00"})
	if !errors.Is(err, response.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestRescheduleOutOfWindow(t *testing.T) {
	store := newFakeStore()
	svc, clientID, pricingID := newTestService(t, store)
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, trainerID, bookingReq(clientID, pricingID, mondayStr, "09:00"))
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if _, err := svc.RescheduleBooking(ctx, trainerID, booking.ID, &api.RescheduleRequest{Date: sundayStr, Time: "09:00"}); !errors.Is(err, response.ErrDayUnavailable) {
		t.Fatalf("expected ErrDayUnavailable, got %v", err)
	}
	if _, err := svc.RescheduleBooking(ctx, trainerID, booking.ID, &api.RescheduleRequest{Date: mondayStr, Time: "09:30"}); !errors.Is(err, response.ErrSlotOutOfWindow) {
		t.Fatalf("expected ErrSlotOutOfWindow, got %v", err)
	}
}

func TestAvailableSlotsFiltersBooked(t *testing.T) {
	store := newFakeStore()
	svc, clientID, pricingID := newTestService(t, store)
	ctx := context.Background()

	if _, err := svc.CreateBooking(ctx, trainerID, bookingReq(clientID, pricingID, mondayStr, "10:00")); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	slots, err := svc.AvailableSlots(ctx, trainerID, mondayStr)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}

	for _, s := range slots.Slots {
		if s == "10:00" {
			t.Fatalf("booked slot must not appear in the preview: %v", slots.Slots)
		}
	}
	if slots.Slots[0] != "09:00" {
		t.Fatalf("expected first slot 09:00, got %s", slots.Slots[0])
	}
}

func TestNotificationFailureDoesNotFailBooking(t *testing.T) {
	store := newFakeStore()
	svc, clientID, pricingID := newTestService(t, store)
	store.failNotify = true

	booking, err := svc.CreateBooking(context.Background(), trainerID, bookingReq(clientID, pricingID, mondayStr, "09:00"))
	if err != nil {
		t.Fatalf("booking must not fail on notification error: %v", err)
	}
	if booking.Status != "confirmed" {
		t.Fatalf("expected confirmed, got %s", booking.Status)
	}
}

func TestGetSettingsCreatesDefaults(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, grantLocker{}, notify.New(discardLogger(), store))

	settings, err := svc.GetSettings(context.Background(), trainerID)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}

	if !settings.DaysAvailable["monday"] || settings.DaysAvailable["saturday"] {
		t.Fatalf("unexpected default days: %v", settings.DaysAvailable)
	}
	if settings.StartTime != "09:00" || settings.EndTime != "17:00" {
		t.Fatalf("unexpected default hours: %s-%s", settings.StartTime, settings.EndTime)
	}
	if len(settings.DaysAvailable) != 7 {
		t.Fatalf("expected all 7 days present, got %d", len(settings.DaysAvailable))
	}
}

func TestUpdateSettingsRejectsInvalid(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, grantLocker{}, notify.New(discardLogger(), store))
	ctx := context.Background()

	base := api.SettingsRequest{
		DaysAvailable:   map[string]bool{"monday": true},
		StartTime:       "08:00",
		EndTime:         "18:00",
		BreakStart:      "12:00",
		BreakEnd:        "13:00",
		SessionDuration: 60,
		BufferTime:      15,
	}

	bad := base
	bad.EndTime = "07:00"
	if _, err := svc.UpdateSettings(ctx, trainerID, &bad); !errors.Is(err, response.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for end before start, got %v", err)
	}

	bad = base
	bad.BreakStart = "06:00"
	bad.BreakEnd = "06:30"
	if _, err := svc.UpdateSettings(ctx, trainerID, &bad); !errors.Is(err, response.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for break outside hours, got %v", err)
	}

	updated, err := svc.UpdateSettings(ctx, trainerID, &base)
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if updated.StartTime != "08:00" || !updated.DaysAvailable["monday"] || updated.DaysAvailable["tuesday"] {
		t.Fatalf("unexpected settings: %+v", updated)
	}
}
