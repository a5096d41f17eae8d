package patient

import "errors"

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrPatientAlreadyExists = errors.New("a patient with this ID already exists")
	ErrInvalidName          = errors.New("name must be 1-30 alphanumeric characters")
)
