package domain

import "errors"

var (
	ErrInvalidID        = errors.New("invalid id")
	ErrInvalidTitle     = errors.New("invalid title")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidHours     = errors.New("invalid hours")
	ErrInvalidProgress  = errors.New("invalid progress")
	ErrInvalidRecurring = errors.New("invalid recurrence")
	ErrInvalidUserName  = errors.New("invalid user name")
)
