package api

type SettingsRequest struct {
	DaysAvailable   map[string]bool `json:"days_available" validate:"required"`
	StartTime       string          `json:"start_time" validate:"required,datetime=15:04"`
	EndTime         string          `json:"end_time" validate:"required,datetime=15:04"`
	BreakStart      string          `json:"break_start" validate:"required,datetime=15:04"`
	BreakEnd        string          `json:"break_end" validate:"required,datetime=15:04"`
	SessionDuration int             `json:"session_duration" validate:"required,min=1"`
	BufferTime      int             `json:"buffer_time" validate:"min=0"`
	Timezone        string          `json:"timezone"`
}

type SettingsResponse struct {
	TrainerID       string          `json:"trainer_id"`
	DaysAvailable   map[string]bool `json:"days_available"`
	StartTime       string          `json:"start_time"`
	EndTime         string          `json:"end_time"`
	BreakStart      string          `json:"break_start"`
	BreakEnd        string          `json:"break_end"`
	SessionDuration int             `json:"session_duration"`
	BufferTime      int             `json:"buffer_time"`
	Timezone        string          `json:"timezone"`
}

type SlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

type BookingRequest struct {
	ClientID         string `json:"client_id" validate:"required"`
	SessionPricingID string `json:"session_pricing_id" validate:"required"`
	Date             string `json:"date" validate:"required,datetime=2006-01-02"`
	Time             string `json:"time" validate:"required,datetime=15:04"`
	Notes            string `json:"notes"`
}

type RescheduleRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Time string `json:"time" validate:"required,datetime=15:04"`
}

type BookingResponse struct {
	ID               string `json:"id"`
	TrainerID        string `json:"trainer_id"`
	ClientID         string `json:"client_id"`
	SessionPricingID string `json:"session_pricing_id"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Status           string `json:"status"`
	Paid             bool   `json:"paid"`
	Notes            string `json:"notes,omitempty"`
}

type ClientRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

type ClientResponse struct {
	ID        string `json:"id"`
	TrainerID string `json:"trainer_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type SessionPricingRequest struct {
	Type            string  `json:"type" validate:"required"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,min=1"`
	Price           float64 `json:"price" validate:"min=0"`
	Currency        string  `json:"currency" validate:"required,len=3"`
	Active          bool    `json:"active"`
}

type SessionPricingResponse struct {
	ID              string  `json:"id"`
	TrainerID       string  `json:"trainer_id"`
	Type            string  `json:"type"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
	Active          bool    `json:"active"`
}

type NotificationResponse struct {
	ID        string `json:"id"`
	TrainerID string `json:"trainer_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}
