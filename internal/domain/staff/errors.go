package staff

import "errors"

var (
	ErrStaffNotFound    = errors.New("staff member not found")
	ErrTemplateNotFound = errors.New("leave template not found")
)
