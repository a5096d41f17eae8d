package schedule

import "errors"

var (
	ErrInvalidTime    = errors.New("time must be in 24-hour HH:MM format")
	ErrInvalidDate    = errors.New("date must be in DD-MM-YYYY format")
	ErrInvalidUrgency = errors.New("urgency level must be between 1 (most critical) and 4")

	ErrSlotOverlap       = errors.New("a slot already exists at this time")
	ErrPoolFull          = errors.New("slot pool is at maximum capacity")
	ErrSlotUnavailable   = errors.New("no free slot matches the requested time")
	ErrAppointmentExists = errors.New("an appointment already occupies this date and time")

	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrNoMissedAppointment = errors.New("no missed appointment found for this patient")
)
