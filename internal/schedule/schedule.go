package schedule

import (
	"fmt"
	"strings"
	"time"

	"fitbook-service/pkg/response"
)

// Clock is a wall-clock time of day in minutes from midnight. No timezone
// is attached; the trainer's configured hours are local by definition.
type Clock int

func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}

	return Clock(t.Hour()*60 + t.Minute()), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Config is a trainer's recurring weekly availability.
type Config struct {
	Days            map[time.Weekday]bool
	StartTime       Clock
	EndTime         Clock
	BreakStart      Clock
	BreakEnd        Clock
	SessionDuration int // minutes
	BufferTime      int // minutes
}

// Validate rejects configurations that would distort generation instead of
// silently tolerating them.
func (c Config) Validate() error {
	if c.SessionDuration <= 0 {
		return fmt.Errorf("%w: session_duration must be positive", response.ErrInvalidConfig)
	}
	if c.BufferTime < 0 {
		return fmt.Errorf("%w: buffer_time must not be negative", response.ErrInvalidConfig)
	}
	if c.StartTime >= c.EndTime {
		return fmt.Errorf("%w: start_time must be before end_time", response.ErrInvalidConfig)
	}
	if c.BreakStart > c.BreakEnd {
		return fmt.Errorf("%w: break_start must not be after break_end", response.ErrInvalidConfig)
	}
	if c.BreakStart < c.BreakEnd {
		// non-empty break must lie inside working hours
		if c.BreakStart < c.StartTime || c.BreakEnd > c.EndTime {
			return fmt.Errorf("%w: break must be inside working hours", response.ErrInvalidConfig)
		}
	}

	return nil
}

// GenerateSlots expands the weekly config into the ordered bookable start
// times for one calendar date. Pure: identical inputs give identical output.
//
// The cursor walks from StartTime. A candidate occupies
// [cursor, cursor+SessionDuration); if that span overlaps the break window
// the cursor jumps to BreakEnd and the candidate is re-evaluated, if it runs
// past EndTime generation stops (no partial trailing slot), otherwise the
// slot is emitted and the cursor advances by SessionDuration+BufferTime.
func GenerateSlots(cfg Config, date time.Time) []string {
	if cfg.SessionDuration <= 0 {
		return nil
	}

	if !cfg.Days[date.Weekday()] {
		return nil
	}

	dur := Clock(cfg.SessionDuration)
	buf := Clock(cfg.BufferTime)
	hasBreak := cfg.BreakStart < cfg.BreakEnd

	var slots []string

	cur := cfg.StartTime
	for {
		end := cur + dur

		if hasBreak && cur < cfg.BreakEnd && cfg.BreakStart < end {
			cur = cfg.BreakEnd
			continue
		}

		if end > cfg.EndTime {
			break
		}

		slots = append(slots, cur.String())
		cur += dur + buf
	}

	return slots
}

// FilterBooked removes slots whose start time is already taken by a
// confirmed booking. Comparison is the exact "HH:MM" start time at minute
// granularity; overlapping-but-not-identical starts are not considered a
// conflict (current behavior, kept).
func FilterBooked(slots []string, taken map[string]bool) []string {
	filtered := make([]string, 0, len(slots))
	for _, s := range slots {
		if !taken[s] {
			filtered = append(filtered, s)
		}
	}

	return filtered
}

// HasSlot reports whether hhmm is one of the generated starts for the date.
// The server calls this to re-derive validity instead of trusting any
// client-side slot list.
func HasSlot(cfg Config, date time.Time, hhmm string) bool {
	for _, s := range GenerateSlots(cfg, date) {
		if s == hhmm {
			return true
		}
	}

	return false
}

// ParseWeekday maps stored day names to time.Weekday. Accepts the short and
// long lowercase forms that end up in TEXT[] columns.
func ParseWeekday(s string) (time.Weekday, bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "sun", "sunday":
		return time.Sunday, true
	case "mon", "monday":
		return time.Monday, true
	case "tue", "tues", "tuesday":
		return time.Tuesday, true
	case "wed", "wednesday":
		return time.Wednesday, true
	case "thu", "thur", "thursday":
		return time.Thursday, true
	case "fri", "friday":
		return time.Friday, true
	case "sat", "saturday":
		return time.Saturday, true
	default:
		return 0, false
	}
}

// WeekdayName is the canonical lowercase form used in storage and the API.
func WeekdayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}
