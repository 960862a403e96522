package shift

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/workpulse/hr-backend-go/internal/domain/business"
)

// Defaults is the injected fallback configuration used when a business has
// no shift or timezone of its own. There is no package-level default state.
type Defaults struct {
	Timezone   string
	ShiftStart string
	ShiftEnd   string
}

// Boundaries are shift instants expressed as minutes since business-local
// midnight. For overnight shifts ShiftEnd exceeds 1440 so that
// ShiftStart < Midpoint < ShiftEnd always holds.
type Boundaries struct {
	ShiftStart int
	ShiftEnd   int
	Midpoint   int
}

// Resolver turns per-business shift configuration into concrete local-time
// boundaries. It is stateless and safe for concurrent use.
type Resolver struct {
	defaults Defaults
	logger   *slog.Logger
}

func NewResolver(defaults Defaults, logger *slog.Logger) *Resolver {
	return &Resolver{defaults: defaults, logger: logger}
}

// ParseClock parses an "HH:mm" wall-clock string into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in clock value %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in clock value %q", s)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as "HH:mm", wrapping past 24h.
func FormatClock(minutes int) string {
	minutes %= 24 * 60
	if minutes < 0 {
		minutes += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Boundaries resolves the effective shift boundaries for a business. Missing
// or malformed clock values fall back to the injected defaults rather than
// failing, so attendance is never blocked by bad configuration.
func (r *Resolver) Boundaries(cfg business.ShiftConfig) Boundaries {
	start := r.clockOrDefault(cfg.StartTime, r.defaults.ShiftStart, "shift start")
	end := r.clockOrDefault(cfg.EndTime, r.defaults.ShiftEnd, "shift end")

	// Overnight shift: end lands on the next calendar day.
	if end <= start {
		end += 24 * 60
	}

	mid := start + (end-start)/2
	if cfg.HalfDay.Midpoint != "" {
		if m, err := ParseClock(cfg.HalfDay.Midpoint); err == nil {
			if m < start {
				m += 24 * 60
			}
			if m > start && m < end {
				mid = m
			} else {
				r.logger.Warn("configured midpoint outside shift, using arithmetic midpoint",
					slog.String("midpoint", cfg.HalfDay.Midpoint))
			}
		} else {
			r.logger.Warn("invalid midpoint clock value, using arithmetic midpoint",
				slog.String("midpoint", cfg.HalfDay.Midpoint))
		}
	}

	return Boundaries{ShiftStart: start, ShiftEnd: end, Midpoint: mid}
}

func (r *Resolver) clockOrDefault(raw, fallback, field string) int {
	if raw != "" {
		if m, err := ParseClock(raw); err == nil {
			return m
		}
		r.logger.Warn("invalid clock value in shift config, falling back to default",
			slog.String("field", field), slog.String("value", raw))
	}
	m, err := ParseClock(fallback)
	if err != nil {
		// Defaults are validated at startup; a broken default still must not
		// panic at request time.
		r.logger.Error("invalid default clock value", slog.String("field", field),
			slog.String("value", fallback))
		return 9 * 60
	}
	return m
}

// Sessions returns the half-day session windows as display strings.
func (b Boundaries) Sessions() (firstHalf, secondHalf string) {
	firstHalf = FormatClock(b.ShiftStart) + " - " + FormatClock(b.Midpoint)
	secondHalf = FormatClock(b.Midpoint) + " - " + FormatClock(b.ShiftEnd)
	return firstHalf, secondHalf
}

// Known UTC offsets for zones the platform primarily serves, used when the
// host tzdata is missing or stripped (common in scratch containers).
var fallbackOffsets = map[string]int{
	"Asia/Kolkata": 5*3600 + 1800,
	"Asia/Dubai":   4 * 3600,
	"Asia/Jakarta": 7 * 3600,
	"UTC":          0,
}

// Location resolves a timezone name to a *time.Location. The chain is:
// requested zone, fixed-offset table, configured default zone, host local
// time. Only the last step is degraded; callers should log it.
func (r *Resolver) Location(tz string) (*time.Location, bool) {
	for _, name := range []string{tz, r.defaults.Timezone} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc, false
		}
		if offset, ok := fallbackOffsets[name]; ok {
			return time.FixedZone(name, offset), false
		}
	}
	r.logger.Warn("timezone resolution degraded to host-local time",
		slog.String("requested", tz), slog.String("default", r.defaults.Timezone))
	return time.Local, true
}

// LocalNow returns the current time in the business timezone together with
// the degraded flag from Location.
func (r *Resolver) LocalNow(tz string) (time.Time, bool) {
	loc, degraded := r.Location(tz)
	return time.Now().In(loc), degraded
}

// MinuteOfDay returns t's wall clock as minutes since local midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// InstantAt converts a local calendar day plus a minute-of-day boundary into
// a UTC instant. Minutes beyond 1440 roll into the next day, matching the
// overnight representation of Boundaries.
func InstantAt(day time.Time, minute int, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, minute, 0, 0, loc).UTC()
}

// DateOnly truncates t, in loc, to midnight UTC of the local calendar day.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
