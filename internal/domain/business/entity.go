package business

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Business entity. Timezone is an IANA name ("Asia/Kolkata"); empty means
// the system default applies.
type Business struct {
	ID       string
	Name     string
	Timezone string

	Shift ShiftConfig
	Fine  FineConfig

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShiftConfig is the per-business (or per-staff override) shift definition.
// Times are "HH:mm" strings in business-local time. Stored as JSONB.
type ShiftConfig struct {
	StartTime          string        `json:"start_time"`
	EndTime            string        `json:"end_time"`
	GracePeriodMinutes int           `json:"grace_period_minutes"`
	HalfDay            HalfDayConfig `json:"half_day"`
}

// HalfDayConfig tunes half-day session boundaries. Midpoint, when set,
// overrides the arithmetic midpoint of the shift.
type HalfDayConfig struct {
	Midpoint                    string `json:"midpoint,omitempty"`
	FirstHalfLogoutGraceMinutes int    `json:"first_half_logout_grace_minutes"`
	SecondHalfLoginGraceMinutes int    `json:"second_half_login_grace_minutes"`
	StrictLogin                 bool   `json:"strict_login"`
}

type FineMethod string

const (
	FineShiftBased   FineMethod = "shift_based"
	FineFixedPerHour FineMethod = "fixed_per_hour"
)

type FineApplicability string

const (
	FineLateArrival FineApplicability = "late_arrival"
	FineEarlyExit   FineApplicability = "early_exit"
	FineBoth        FineApplicability = "both"
)

type FinePayout string

const (
	PayoutCustom   FinePayout = "custom"
	Payout1xSalary FinePayout = "1x_salary"
	Payout2xSalary FinePayout = "2x_salary"
	Payout3xSalary FinePayout = "3x_salary"
	PayoutHalfDay  FinePayout = "half_day"
	PayoutFullDay  FinePayout = "full_day"
)

// FineConfig is the per-business punctuality fine formula. Stored as JSONB.
type FineConfig struct {
	Enabled      bool       `json:"enabled"`
	GraceMinutes int        `json:"grace_minutes"`
	Method       FineMethod `json:"method"`
	RatePerHour  float64    `json:"rate_per_hour"`
	Rules        []FineRule `json:"rules,omitempty"`
}

// FineRule is one override rule; rules are evaluated in order and the first
// applicable rule wins.
type FineRule struct {
	AppliesTo    FineApplicability `json:"applies_to"`
	Payout       FinePayout        `json:"payout"`
	CustomAmount float64           `json:"custom_amount,omitempty"`
}

// Matches reports whether the rule applies to the given fine kind.
func (r FineRule) Matches(kind FineApplicability) bool {
	return r.AppliesTo == kind || r.AppliesTo == FineBoth
}

// Value implements driver.Valuer for database storage
func (c ShiftConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for database retrieval
func (c *ShiftConfig) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan ShiftConfig: invalid type")
	}
	return json.Unmarshal(bytes, c)
}

// Value implements driver.Valuer for database storage
func (c FineConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for database retrieval
func (c *FineConfig) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan FineConfig: invalid type")
	}
	return json.Unmarshal(bytes, c)
}
