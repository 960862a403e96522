package attendance

import "errors"

var (
	ErrRecordNotFound     = errors.New("attendance record not found")
	ErrAlreadyPunchedIn   = errors.New("you have already checked in today")
	ErrAlreadyPunchedOut  = errors.New("you have already checked out today")
	ErrNotPunchedIn       = errors.New("you have not checked in yet")
	ErrStaffNotConfigured = errors.New("no shift configuration found for staff")
)
