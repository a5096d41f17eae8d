package doctor

import "errors"

var (
	ErrDoctorNotFound        = errors.New("doctor not found")
	ErrDoctorAlreadyExists   = errors.New("a doctor with this ID already exists")
	ErrInvalidName           = errors.New("name must be 1-30 alphanumeric characters")
	ErrInvalidSpecialization = errors.New("specialization must be 1-20 alphanumeric characters")
	ErrInvalidCapacity       = errors.New("slot pool capacities must be positive")
)
