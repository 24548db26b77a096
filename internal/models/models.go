package models

import "time"

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// AvailabilityConfig holds a trainer's recurring weekly rules. One row per
// trainer, created with defaults on first read and upserted after that.
// Timezone is a display label only, never used in slot arithmetic.
type AvailabilityConfig struct {
	TrainerID       string   `db:"trainer_id"`
	DaysAvailable   []string `db:"days_available"` // lowercase weekday names, enabled days only
	StartTime       string   `db:"start_time"`     // "HH:MM"
	EndTime         string   `db:"end_time"`
	BreakStart      string   `db:"break_start"`
	BreakEnd        string   `db:"break_end"`
	SessionDuration int      `db:"session_duration"` // minutes
	BufferTime      int      `db:"buffer_time"`      // minutes
	Timezone        string   `db:"timezone"`
}

type Client struct {
	ClientID  string    `db:"client_id"`
	TrainerID string    `db:"trainer_id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
}

// SessionPricing duration is informational for display and cost; the slot
// grid always uses AvailabilityConfig.SessionDuration.
type SessionPricing struct {
	PricingID       string  `db:"pricing_id"`
	TrainerID       string  `db:"trainer_id"`
	Type            string  `db:"session_type"`
	DurationMinutes int     `db:"duration_minutes"`
	Price           float64 `db:"price"`
	Currency        string  `db:"currency"`
	Active          bool    `db:"active"`
}

type Booking struct {
	BookingID string        `db:"booking_id"`
	TrainerID string        `db:"trainer_id"`
	ClientID  string        `db:"client_id"`
	PricingID string        `db:"pricing_id"`
	Date      time.Time     `db:"booking_date"` // calendar date, midnight UTC
	Time      string        `db:"booking_time"` // "HH:MM"
	Status    BookingStatus `db:"status"`
	Paid      bool          `db:"paid"`
	Notes     string        `db:"notes"`
	CreatedAt time.Time     `db:"created_at"`
}

type Notification struct {
	NotificationID string    `db:"notification_id"`
	TrainerID      string    `db:"trainer_id"`
	Title          string    `db:"title"`
	Message        string    `db:"message"`
	Type           string    `db:"notification_type"`
	CreatedAt      time.Time `db:"created_at"`
}
