package staff

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Staff entity
type Staff struct {
	ID         string
	BusinessID string
	FullName   string
	Email      *string

	// DailySalary feeds the fine calculator; nil means fines degrade to a
	// zero rate rather than failing.
	DailySalary *float64

	LeaveTemplateID *string
	JoinedAt        time.Time
	IsActive        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LeaveTemplate holds the per-business leave-type configurations. Read-mostly;
// mutated only by HR configuration.
type LeaveTemplate struct {
	ID         string
	BusinessID string
	Name       string
	Types      LeaveTypeConfigs

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LeaveTypeConfig is one configured leave type within a template.
type LeaveTypeConfig struct {
	Name         string  `json:"name"`
	DayLimit     float64 `json:"day_limit"`
	CarryForward bool    `json:"carry_forward"`
}

// LeaveTypeConfigs is stored as a JSONB column.
type LeaveTypeConfigs []LeaveTypeConfig

// Value implements driver.Valuer for database storage
func (c LeaveTypeConfigs) Value() (driver.Value, error) {
	if len(c) == 0 {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner for database retrieval
func (c *LeaveTypeConfigs) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan LeaveTypeConfigs: invalid type")
	}
	return json.Unmarshal(bytes, c)
}
